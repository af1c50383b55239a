// cmd/claims-client/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"claims-client/internal/audit"
	"claims-client/internal/backend"
	"claims-client/internal/claims"
	"claims-client/internal/common/config"
	"claims-client/internal/common/database"
	"claims-client/internal/common/httpx"
	"claims-client/internal/common/logger"
	"claims-client/internal/common/observability"
	"claims-client/internal/models"
	"claims-client/internal/session"
	"claims-client/internal/store"
	"claims-client/internal/tracker"
	"claims-client/internal/upload"
)

const sessionTokenTTL = 30 * time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	docType := flag.String("doc-type", "policy", "document type for uploaded files")
	claimFile := flag.String("claim", "", "path to a JSON claim to submit once uploads finish")
	explain := flag.Bool("explain", false, "fetch the detailed explanation after a decision")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting claims client...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("claims-client")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Init Redis cache with retry (optional) ---
	var cache *store.Store
	if cfg.Database.Redis.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		cache = store.New(redisClient.GetClient(), 24*time.Hour, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init PostgreSQL audit trail with retry (optional) ---
	var auditor *audit.Recorder
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		auditor = audit.NewRecorder(pg.GetDB(), log)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Session ---
	transport := httpx.NewClient(config.GetDuration(cfg.Backend.RequestTimeout))
	sess := session.New(cfg.Backend.BaseURL, transport)

	if cache != nil {
		if token, err := cache.LoadToken(ctx); err != nil {
			zapLog.Warn("Cached token lookup failed", zap.Error(err))
		} else if token != "" {
			sess.SetToken(token)
			zapLog.Info("Resumed session from cached token")
		}
	}

	if !sess.Authenticated() && cfg.Auth.Username != "" {
		err = retryWithBackoff(func() error {
			return sess.Login(ctx, cfg.Auth.Username, cfg.Auth.Password)
		}, 3, 2*time.Second, zapLog, "Backend login")
		if err != nil {
			zapLog.Fatal("login failed after retries", zap.Error(err))
		}
		zapLog.Info("Logged in to claims backend")

		if cache != nil {
			if err := cache.SaveToken(ctx, sess.Token(), sessionTokenTTL); err != nil {
				zapLog.Warn("Failed to cache session token", zap.Error(err))
			}
		}
	}

	// --- Backend clients ---
	// Claim submission carries its own deadline, so it gets a transport
	// that will not cut it short.
	api := backend.NewClient(cfg.Backend.BaseURL, transport, sess, log)
	submitTransport := httpx.NewClient(2 * config.GetDuration(cfg.Claims.SubmitTimeout))
	claimsAPI := backend.NewClient(cfg.Backend.BaseURL, submitTransport, sess, log)

	// --- Document tracker ---
	jobs := tracker.New(
		api,
		config.GetDuration(cfg.Tracker.PollInterval),
		cfg.Tracker.EventBuffer,
		obs,
		log,
	)
	defer jobs.Stop()

	trackingDone := make(chan struct{})
	go func() {
		defer close(trackingDone)
		for event := range jobs.Events() {
			if event.Status == models.StatusFailed {
				zapLog.Warn("Document processing failed",
					zap.String("docID", event.JobID),
					zap.String("filename", event.Filename),
					zap.String("error", event.Error),
				)
			} else {
				zapLog.Info("Document ready",
					zap.String("docID", event.JobID),
					zap.String("filename", event.Filename),
				)
			}

			if auditor != nil {
				if err := auditor.RecordJobEvent(ctx, event); err != nil {
					zapLog.Warn("Audit trail write failed", zap.Error(err))
				}
			}

			if jobs.TrackedCount() == 0 {
				return
			}
		}
	}()

	// --- Upload the requested documents ---
	dispatcher := upload.NewDispatcher(api, jobs, log)

	files := make([]upload.File, 0, flag.NArg())
	handles := make([]*os.File, 0, flag.NArg())
	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			zapLog.Fatal("cannot open document", zap.String("path", path), zap.Error(err))
		}
		handles = append(handles, f)
		files = append(files, upload.File{
			Name:    filepath.Base(path),
			Content: f,
			DocType: *docType,
		})
	}

	results := dispatcher.DispatchAll(ctx, files)
	for _, h := range handles {
		h.Close()
	}
	for _, result := range results {
		if result.Err != nil {
			zapLog.Warn("Upload rejected",
				zap.String("filename", result.Filename),
				zap.Error(result.Err),
			)
		}
	}

	// --- Claim orchestrator ---
	var sinks []claims.DecisionSink
	if cache != nil {
		sinks = append(sinks, cache)
	}
	if auditor != nil {
		sinks = append(sinks, auditor)
	}
	orchestrator := claims.New(
		claimsAPI,
		config.GetDuration(cfg.Claims.SubmitTimeout),
		obs,
		log,
		sinks...,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Wait for document processing before submitting the claim.
	if jobs.TrackedCount() > 0 {
		select {
		case <-trackingDone:
			zapLog.Info("All documents processed")
		case <-sigCh:
			zapLog.Info("Shutdown signal received, stopping tracker...")
			jobs.Stop()
			return
		}
	}

	if *claimFile != "" {
		payload, err := os.ReadFile(*claimFile)
		if err != nil {
			zapLog.Fatal("cannot read claim file", zap.String("path", *claimFile), zap.Error(err))
		}
		var claim models.ClaimRequest
		if err := json.Unmarshal(payload, &claim); err != nil {
			zapLog.Fatal("claim file is not valid JSON", zap.Error(err))
		}

		decision, err := orchestrator.Submit(ctx, &claim)
		if err != nil {
			zapLog.Fatal("claim submission failed", zap.Error(err))
		}

		fmt.Printf("Claim %s: %s (approved %.2f of %.2f)\n",
			decision.ClaimID, decision.Decision, decision.ApprovedAmount, decision.ClaimedAmount)
		fmt.Printf("Reason: %s\n", decision.Explanation.Reason)

		if *explain {
			explanation, err := orchestrator.FetchExplanation(ctx)
			if err != nil {
				zapLog.Warn("Explanation unavailable", zap.Error(err))
			} else {
				fmt.Printf("\n%s\n", explanation.DecisionSummary)
				for _, factor := range explanation.Reasoning.DecisionFactors {
					fmt.Printf("  - %s: %s (%s)\n", factor.Factor, factor.Value, factor.Description)
				}
				for _, step := range explanation.NextSteps {
					fmt.Printf("  next: %s\n", step)
				}
			}
		}
	}

	zapLog.Info("Claims client finished")
}
