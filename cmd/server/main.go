// Command server runs the form autoresponder HTTP service.
//
// @title                      Form Autoresponder API
// @version                    1.0
// @description                Receives form webhooks and sends one email and one SMS confirmation per submission.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Notho-freedom/Autoresponder/internal/config"
	httpapi "github.com/Notho-freedom/Autoresponder/internal/http"
	"github.com/Notho-freedom/Autoresponder/internal/notify"
	"github.com/Notho-freedom/Autoresponder/internal/observability"
	"github.com/Notho-freedom/Autoresponder/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logCloser := sysutil.SetupLogger(cfg.Log, cfg.OTEL.ServiceName)
	defer logCloser.Close()

	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, appVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	ledger, closeLedger, err := openLedger(ctx, cfg.Ledger, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("driver", string(cfg.Ledger.Driver)).Msg("ledger unavailable")
	}

	tpl := notify.NewTemplates(cfg.Notify.Locale, cfg.Notify.OrganizationName)
	email := notify.NewEmailChannel(cfg.Notify, tpl)
	sms := notify.NewSMSChannel(cfg.Notify, tpl)

	if cfg.WriteTimeout <= cfg.Notify.Timeout+cfg.Ledger.Timeout {
		log.Warn().
			Dur("write_timeout", cfg.WriteTimeout).
			Dur("channel_timeout", cfg.Notify.Timeout).
			Msg("WRITE_TIMEOUT may cut off slow webhook responses")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Ledger:  ledger,
		Email:   email,
		SMS:     sms,
		Version: appVersion,
	}, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", appVersion).
			Str("ledger", string(cfg.Ledger.Driver)).
			Str("email", email.Name()+"/"+string(cfg.Notify.EmailProvider)).
			Str("sms", sms.Name()+"/"+string(cfg.Notify.SMSProvider)).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := closeLedger(); err != nil {
		log.Error().Err(err).Msg("ledger close")
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("server stopped")
}
