package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/auth"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/category"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/config"
	apphttp "github.com/samurainet-antonius/duitkita-financial-hub/internal/http"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/journal"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/logger"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/notify"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/receipts"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/router"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/sharing"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/summary"
	"github.com/samurainet-antonius/duitkita-financial-hub/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("")
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating pgx pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("error pinging database")
	}

	receiptStore, err := receipts.NewStore(ctx, cfg.ReceiptsBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating receipt store")
	}
	defer receiptStore.Close()

	var emitter notify.Emitter = &notify.LogEmitter{Log: log}
	if cfg.NotifyWebhookURL != "" {
		emitter = notify.NewWebhookEmitter(cfg.NotifyWebhookURL, cfg.NotifyTimeout)
	}

	settingsRepo := notify.NewSettingsRepo(pool)
	ledger := wallet.NewLedger(pool)
	jrnl := journal.New(pool, settingsRepo, emitter, log)

	app := fiber.New(fiber.Config{
		BodyLimit:    12 << 20, // receipts go through multipart
		ErrorHandler: errorHandler(),
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	r := &router.Router{
		AuthHandler:     &apphttp.AuthHandler{DB: pool, JWTSecret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL},
		ProfileHandler:  &apphttp.ProfileHandler{DB: pool},
		WalletHandler:   wallet.NewHandler(ledger),
		JournalHandler:  journal.NewHandler(jrnl),
		SharingHandler:  sharing.NewHandler(sharing.NewDirectory(pool)),
		CategoryHandler: category.NewHandler(category.NewRepository(pool)),
		SummaryHandler:  &summary.Handler{Repo: summary.Repo{Pool: pool}},
		NotifyHandler:   notify.NewHandler(settingsRepo),
		AuthMW:          authMiddleware(cfg),
		WriteLimitMW:    router.RateLimitWrite(cfg.RateLimitWriteMax, cfg.RateLimitWindow),
	}
	if receiptStore != nil {
		r.ReceiptsHandler = receipts.NewHandler(receiptStore, pool)
	}

	app.Use("/api/auth", router.RateLimitAuth())
	r.RegisterRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(cfg.ShutdownGracePeriod)
	}()

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// errorHandler maps the service error taxonomy to HTTP responses: a kind
// plus message for domain errors, fiber's own status for transport errors,
// and a bare 500 for everything unexpected.
func errorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return c.Status(apperr.HTTPStatus(ae.Kind)).JSON(fiber.Map{
				"error":   ae.Kind.String(),
				"message": ae.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}

// authMiddleware builds the bearer-token middleware from the configured
// secret.
func authMiddleware(cfg config.Config) fiber.Handler {
	return auth.Middleware([]byte(cfg.JWTSecret))
}
