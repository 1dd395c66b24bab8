package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio/backend/internal/config"
	"github.com/folio/backend/internal/handler"
	"github.com/folio/backend/internal/logging"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/internal/service"
	"github.com/folio/backend/pkg/auth"
	"github.com/folio/backend/pkg/mailer"
	"github.com/folio/backend/pkg/mobilemoney"
	pkgstripe "github.com/folio/backend/pkg/stripe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	contactRepo := repository.NewPgContactRepository(pool)
	subscriberRepo := repository.NewPgSubscriberRepository(pool)
	newsletterRepo := repository.NewPgNewsletterRepository(pool)
	paymentRepo := repository.NewPgPaymentRepository(pool)
	analyticsRepo := repository.NewPgAnalyticsRepository(pool)
	adminStateRepo := repository.NewPgAdminStateRepository(pool)

	// Mail, Stripe and mobile money stay disabled until their keys are set;
	// the clients then fail each call with ErrNotConfigured.
	mail := mailer.NewHTTPSender(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFrom)
	if cfg.MailAPIKey == "" {
		slog.Warn("MAIL_API_KEY not set, email delivery disabled")
	}
	stripeClient := pkgstripe.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mobileClient := mobilemoney.NewClient(cfg.MobileMoneyAPIKey, cfg.MobileMoneyAPIURL)

	contactService := service.NewContactService(contactRepo, mail, cfg.OwnerEmail)
	subscriberService := service.NewSubscriberService(subscriberRepo)
	newsletterService := service.NewNewsletterService(subscriberRepo, newsletterRepo, mail, cfg.NewsletterConcurrency)
	paymentService := service.NewPaymentService(paymentRepo, stripeClient, mobileClient)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	adminService := service.NewAdminAuthService(
		auth.NewPasswordChecker(cfg.AdminPasswordHash, cfg.AdminPassword),
		auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL, nil),
		adminStateRepo,
		cfg.AdminResetKey,
	)

	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	defer limiter.Close()

	h := handler.New(pool, cfg.FrontendURL)
	routes := handler.Routes{
		AnonKey:     cfg.AnonKey,
		Sessions:    adminService,
		Limiter:     limiter,
		Health:      h,
		Contacts:    handler.NewContactHandler(contactService),
		Subscribers: handler.NewSubscriberHandler(subscriberService),
		Newsletters: handler.NewNewsletterHandler(newsletterService),
		Admin:       handler.NewAdminHandler(adminService),
		Payments:    handler.NewPaymentHandler(paymentService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
	}
	if cfg.StaticDir != "" {
		routes.Static = handler.NewStaticHandler(os.DirFS(cfg.StaticDir))
		slog.Info("serving static site", "dir", cfg.StaticDir)
	}

	mux := http.NewServeMux()
	routes.Register(mux)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler.SecurityHeaders(handler.RequestLogger(h.CORS(mux))),
		ReadTimeout: 10 * time.Second,
		// Mobile money charges block until the customer answers the USSD prompt.
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
