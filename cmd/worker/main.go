package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"translator/internal/adapter/repo"
	"translator/internal/infra"
	"translator/internal/memory"
	"translator/internal/pipeline"
	"translator/internal/providers/deepseek"
)

type jobWorker struct {
	ctx          context.Context
	queue        *repo.QueueRepositoryPG
	orchestrator *pipeline.Orchestrator
	logger       infra.Logger
	pollInterval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
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

	// One client for the whole process: its rate-limit window is the
	// provider quota, so every goroutine must draw from the same instance.
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

	worker := &jobWorker{
		ctx:          ctx,
		queue:        queue,
		orchestrator: orchestrator,
		logger:       logger,
		pollInterval: cfg.WorkerPollInterval,
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerConcurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker.Run(id)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.RetrySweep(cfg.RetrySweepInterval)
	}()

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker: started")
	wg.Wait()
	logger.Info().Msg("worker: stopped")
}

// Run claims due jobs until the context ends.
func (w *jobWorker) Run(id int) {
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		jobID, err := w.queue.ClaimDue(w.ctx)
		if err != nil {
			if errors.Is(err, repo.ErrQueueEmpty) {
				w.sleep(w.pollInterval)
				continue
			}
			if w.ctx.Err() != nil {
				return
			}
			w.logger.Error().Err(err).Int("worker", id).Msg("worker: claim failed")
			w.sleep(w.pollInterval)
			continue
		}

		if err := w.orchestrator.Process(w.ctx, jobID); err != nil {
			w.logger.Error().Err(err).Int("worker", id).Str("job_id", jobID).Msg("worker: job failed")
		}
	}
}

// RetrySweep periodically puts retryable failed jobs back on the queue. It
// catches jobs whose scheduled retry delivery was lost.
func (w *jobWorker) RetrySweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			n, err := w.queue.RequeueRetryableFailed(w.ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("worker: retry sweep failed")
				continue
			}
			if n > 0 {
				w.logger.Info().Int("requeued", n).Msg("worker: retry sweep requeued jobs")
			}
		}
	}
}

func (w *jobWorker) sleep(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-w.ctx.Done():
	case <-timer.C:
	}
}
