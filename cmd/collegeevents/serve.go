package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "collegeevents/docs"
	"collegeevents/internal/adapters/auth"
	"collegeevents/internal/adapters/email"
	"collegeevents/internal/adapters/payment"
	deliveryhttp "collegeevents/internal/delivery/http"
	"collegeevents/internal/delivery/http/controllers"
	"collegeevents/internal/services"
	"collegeevents/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	shutdownTracing, err := telemetry.Setup(ctx, "collegeevents", cfg.TraceStdout, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("flush traces", "error", err)
		}
	}()

	if err := a.store.InitializeDemoData(ctx); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
			Endpoint:        cfg.SESEndpoint,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	notifications := services.NewNotificationService(cfg.NotificationTTL, time.Second)
	defer notifications.Close()

	sessions := services.NewSessionService(a.store, a.hasher, emailService, logger)
	events := services.NewEventService(a.store, logger, services.EventServiceConfig{
		Notifier:           notifications,
		EmailService:       emailService,
		AllowAnyCompletion: cfg.AllowAnyCompletion,
	})
	attendees := services.NewAttendeeService(a.store, payment.NewMockProcessor(cfg.PaymentDelay, logger), notifications, logger)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Auth:           controllers.NewAuthController(logger, sessions, auth.NewJWTIssuer(cfg.JWTSecret), cfg.TokenExpiry),
		Events:         controllers.NewEventController(logger, events),
		Attendees:      controllers.NewAttendeeController(logger, attendees, sessions),
		Notifications:  controllers.NewNotificationController(notifications),
		Admin:          controllers.NewAdminController(logger, a.store, notifications),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return run(ctx, srv, logger)
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
