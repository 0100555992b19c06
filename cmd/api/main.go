package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"translator/internal/adapter/repo"
	"translator/internal/eligibility"
	"translator/internal/http/handlers"
	httpapi "translator/internal/http/httpapi"
	"translator/internal/infra"
	"translator/internal/langdetect"
	"translator/internal/memory"
	"translator/internal/pipeline"
	"translator/internal/providers/deepseek"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	jobs := repo.NewJobRepository(pool)
	translations := repo.NewTranslationRepository(pool)
	queue := repo.NewQueueRepository(pool)
	apiLogs := repo.NewAPILogRepository(pool)

	cache := memory.NewCache(memory.Options{
		Durable: repo.NewMemoryRepository(pool),
		Logger:  logger,
	})
	client := deepseek.NewClient(deepseek.Options{
		APIKey:            cfg.ProviderAPIKey,
		Endpoint:          cfg.ProviderURL,
		Model:             cfg.ProviderModel,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		MaxAttempts:       cfg.MaxRetries,
		RequestsPerMinute: cfg.RateLimitPerMin,
		HTTPClient:        &http.Client{Timeout: cfg.ProviderTimeout},
		Cache:             cache,
		Logs:              apiLogs,
		Logger:            logger,
	})

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorOptions{
		Jobs:         jobs,
		Translations: translations,
		Translator:   client,
		Scheduler:    queue,
		Logger:       logger,
	})
	trigger := pipeline.NewTrigger(pipeline.TriggerOptions{
		Fields: pipeline.FieldTable(cfg.TranslatableFields),
		Checker: eligibility.NewChecker(
			eligibility.WithMinLength(cfg.EligibilityMinLength),
			eligibility.WithMaxDigitRatio(cfg.EligibilityMaxDigitRatio),
		),
		Detector:     langdetect.NewDetector(cfg.DefaultLanguage),
		Orchestrator: orchestrator,
		Jobs:         jobs,
		Languages:    cfg.EnabledLanguages,
		Logger:       logger,
	})

	app := &handlers.App{
		Config:       cfg,
		Logger:       logger,
		SQL:          infra.NewSQLRunner(pool, logger),
		Trigger:      trigger,
		Jobs:         jobs,
		Translations: translations,
		Logs:         apiLogs,
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
