package entity

import "testing"

func TestPaymentStatusTerminal(t *testing.T) {
	if !PaymentStatusPaid.Terminal() || !PaymentStatusFailed.Terminal() {
		t.Fatal("expected paid and failed to be terminal")
	}
	if PaymentStatusNone.Terminal() || PaymentStatusPending.Terminal() {
		t.Fatal("expected none and pending to be non-terminal")
	}
}

func TestPaymentStatusValid(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentStatusNone, PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed} {
		if !status.Valid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if PaymentStatus("refunded").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestGuestName(t *testing.T) {
	r := &Reservation{FirstName: "Ada", LastName: "Lovelace"}
	if r.GuestName() != "Ada Lovelace" {
		t.Fatalf("unexpected guest name: %q", r.GuestName())
	}
}
