package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/auraplay/fortune-server-go/internal/clock"
	"github.com/auraplay/fortune-server-go/internal/config"
	"github.com/auraplay/fortune-server-go/internal/handler"
	"github.com/auraplay/fortune-server-go/internal/middleware"
	"github.com/auraplay/fortune-server-go/internal/qr"
	"github.com/auraplay/fortune-server-go/internal/repository"
	"github.com/auraplay/fortune-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	paymentRepo := repository.NewMemoryPaymentRepository()
	qrGen := qr.NewGenerator()

	paymentService := service.NewPaymentService(
		paymentRepo, qrGen, clock.System(),
		cfg.PayBaseURL, cfg.PaymentTTL(), cfg.DefaultAmount,
	)
	geminiClient := service.NewGeminiClient(cfg)
	readingService := service.NewReadingService(paymentService, geminiClient, cfg.PaymentRequired)

	if !geminiClient.Enabled() {
		log.Warn().Msg("GEMINI_API_KEY not set: generation endpoints run in disabled mode")
	}
	if !cfg.PaymentRequired {
		log.Warn().Msg("payment enforcement disabled: generation endpoints are open")
	}

	paymentHandler := handler.NewPaymentHandler(paymentService)
	readingHandler := handler.NewReadingHandler(readingService)
	healthHandler := handler.NewHealthHandler(paymentRepo)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(config.DefaultRateLimitPerMin)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Origins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/api/health", healthHandler.ServeHTTP)

	r.Route("/api/pay", func(r chi.Router) {
		r.Mount("/", paymentHandler.Routes())
	})

	r.Get("/pay-wallet", paymentHandler.PayWallet)

	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)
		r.Post("/api/hook", readingHandler.Hook)
		r.Post("/api/report", readingHandler.Report)
	})

	r.Get("/*", handler.StaticFileServer(cfg.StaticDir).ServeHTTP)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
