package cmd

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/internity/ms-go-reservations/app/controller"
	appmiddleware "github.com/internity/ms-go-reservations/app/middleware"
	"github.com/internity/ms-go-reservations/app/provider"
	"github.com/internity/ms-go-reservations/app/queue"
	"github.com/internity/ms-go-reservations/app/repository"
	"github.com/internity/ms-go-reservations/app/service"
	"github.com/internity/ms-go-reservations/app/types"
	"github.com/internity/ms-go-reservations/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server for reservation intake, payment intents, and the Stripe webhook.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, reservationService, cleanup := mustCreateReservationService()
	defer cleanup()

	reservationController := controller.NewReservationController(reservationService)
	paymentController := controller.NewPaymentController(reservationService)

	rdb := newRedisClient(cfg)
	e := setupHTTPServer(cfg, reservationController, paymentController, rdb)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	reservationController *controller.ReservationController,
	paymentController *controller.PaymentController,
	rdb *redis.Client,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	rateLimiter := appmiddleware.NewRateLimiter(cfg.RateLimit, rdb, logrus.WithField("module", "rate-limit"))

	e.GET("/health", reservationController.Health)

	api := e.Group("/api")
	api.POST("/reservations", reservationController.CreateReservation, rateLimiter)

	payment := api.Group("/payment")
	payment.POST("/create-intent", paymentController.CreateIntent, rateLimiter)
	// The webhook is authenticated by signature, not throttled; the
	// provider controls its own delivery rate.
	payment.POST("/webhook", paymentController.HandleStripeWebhook)

	internal := e.Group("/internal", requireAPIKey(cfg.App.APIKey))
	internal.GET("/reservations/:id", reservationController.GetReservation)

	return e
}

// requireAPIKey gates store-facing routes that must never be reachable from
// the public site.
func requireAPIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			provided := strings.TrimSpace(ctx.Request().Header.Get("X-API-Key"))
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "unauthorized"})
			}
			return next(ctx)
		}
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, rate limiting disabled")
		_ = client.Close()
		return nil
	}

	return client
}

func mustCreateReservationService() (*config.Config, *service.ReservationService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	reservationRepo := repository.NewReservationRepository(db)
	eventRepo := repository.NewReservationEventRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	stripeProvider := provider.NewStripeProvider(provider.StripeConfig{
		SecretKey:                 cfg.Stripe.SecretKey,
		WebhookSecret:             cfg.Stripe.WebhookSecret,
		SignatureToleranceSeconds: cfg.Stripe.SignatureToleranceSeconds,
		HTTPTimeout:               cfg.Stripe.HTTPTimeout,
	})

	var publisher *queue.Publisher
	if cfg.Queue.Enabled {
		publisher = queue.NewPublisher(cfg.Queue.URL, logrus.WithField("module", "queue-publisher"))
	}

	reservationService := newReservationService(reservationRepo, eventRepo, webhookRepo, stripeProvider, cfg, publisher)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, reservationService, cleanup
}

// newReservationService keeps the nil-publisher case a true nil interface.
func newReservationService(
	reservationRepo *repository.ReservationRepository,
	eventRepo *repository.ReservationEventRepository,
	webhookRepo *repository.WebhookEventRepository,
	stripeProvider *provider.StripeProvider,
	cfg *config.Config,
	publisher *queue.Publisher,
) *service.ReservationService {
	if publisher == nil {
		return service.NewReservationService(reservationRepo, eventRepo, webhookRepo, stripeProvider, cfg.Reservations, nil)
	}
	return service.NewReservationService(reservationRepo, eventRepo, webhookRepo, stripeProvider, cfg.Reservations, publisher)
}
