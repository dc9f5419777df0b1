package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/internity/ms-go-reservations/app/entity"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	APIBaseURL                string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
}

// StripeError carries a message Stripe itself produced. Only these messages
// may be surfaced to the client; every other failure collapses to a generic
// internal error upstream.
type StripeError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe error: status=%d type=%s message=%s", e.StatusCode, e.Type, e.Message)
}

type StripeProvider struct {
	cfg    StripeConfig
	client *http.Client
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tolerance := cfg.SignatureToleranceSeconds
	if tolerance <= 0 {
		tolerance = 300
	}
	cfg.SignatureToleranceSeconds = tolerance
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = defaultStripeAPIBaseURL
	}

	return &StripeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// CreateIntent opens a PaymentIntent for a reservation deposit. The intent
// carries the reservation as metadata so the asynchronous webhook can find
// its way back, and the guest's email for provider-side receipting.
func (p *StripeProvider) CreateIntent(ctx context.Context, input *IntentInput) (*IntentOutput, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	values := url.Values{}
	values.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	values.Set("currency", strings.ToLower(input.Currency))
	values.Set("metadata[reservationId]", input.ReservationID)
	values.Set("metadata[customerName]", input.CustomerName)
	values.Set("metadata[customerEmail]", input.CustomerEmail)
	values.Set("metadata[date]", input.Date)
	values.Set("metadata[time]", input.Time)
	values.Set("metadata[guests]", input.Guests)
	if strings.TrimSpace(input.CustomerEmail) != "" {
		values.Set("receipt_email", input.CustomerEmail)
	}

	body, err := p.postForm(ctx, "/v1/payment_intents", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.ID) == "" || strings.TrimSpace(payload.ClientSecret) == "" {
		return nil, errors.New("stripe payment intent response is missing id or client secret")
	}

	return &IntentOutput{
		IntentID:     strings.TrimSpace(payload.ID),
		ClientSecret: strings.TrimSpace(payload.ClientSecret),
	}, nil
}

// VerifyAndParseWebhook authenticates the raw payload against the
// Stripe-Signature header before any decoding. A failure here is a hard
// authentication boundary; no part of the payload is trusted.
func (p *StripeProvider) VerifyAndParseWebhook(_ context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if strings.TrimSpace(p.cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	if !verifyStripeSignature(payload, signature, p.cfg.WebhookSecret, p.cfg.SignatureToleranceSeconds) {
		return nil, errors.New("invalid stripe signature")
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	result := &WebhookEvent{
		EventType: event.Type,
	}
	if s := strings.TrimSpace(event.ID); s != "" {
		eventID := s
		result.ProviderEventID = &eventID
	}

	switch event.Type {
	case "payment_intent.succeeded":
		result.NewStatus = entity.PaymentStatusPaid
		assignPaymentIntentFields(result, event.Data.Object)
	case "payment_intent.payment_failed":
		result.NewStatus = entity.PaymentStatusFailed
		assignPaymentIntentFields(result, event.Data.Object)
	default:
		result.NewStatus = ""
	}

	return result, nil
}

func (p *StripeProvider) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, parseStripeError(resp.StatusCode, path, body)
	}

	return body, nil
}

func parseStripeError(statusCode int, path string, body []byte) error {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Error.Message) != "" {
		return &StripeError{
			StatusCode: statusCode,
			Type:       strings.TrimSpace(payload.Error.Type),
			Message:    strings.TrimSpace(payload.Error.Message),
		}
	}
	return fmt.Errorf("stripe request failed: path=%s status=%d body=%s", path, statusCode, string(body))
}

func verifyStripeSignature(payload []byte, signatureHeader string, webhookSecret string, toleranceSeconds int64) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" || strings.TrimSpace(webhookSecret) == "" {
		return false
	}

	parts := strings.Split(signatureHeader, ",")
	var ts string
	v1 := make([]string, 0, 1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			v1 = append(v1, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(v1) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-tsUnix > toleranceSeconds || tsUnix-now > toleranceSeconds {
		return false
	}

	signedPayload := []byte(ts + "." + string(payload))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write(signedPayload)
	expected := mac.Sum(nil)

	for _, sig := range v1 {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}

	return false
}

func assignPaymentIntentFields(event *WebhookEvent, payload json.RawMessage) {
	var object struct {
		ID       string `json:"id"`
		Metadata struct {
			ReservationID string `json:"reservationId"`
		} `json:"metadata"`
	}
	if json.Unmarshal(payload, &object) != nil {
		return
	}
	event.IntentID = strings.TrimSpace(object.ID)
	event.ReservationID = strings.TrimSpace(object.Metadata.ReservationID)
}
