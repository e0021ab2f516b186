package main

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/amirkadri46/medi-report-analysis-agent/internal/ai"
    cfgpkg "github.com/amirkadri46/medi-report-analysis-agent/internal/config"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/limiter"
    logpkg "github.com/amirkadri46/medi-report-analysis-agent/internal/logger"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/metrics"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/orchestrator"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/statuscheck"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/storage"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/store"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/web"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    _ = logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey,
        AxiomOrgID: cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval,
    })
    defer logpkg.Close()

    metrics.Init()

    // Report store
    var reports store.Store
    if cfg.Store.RedisURL != "" {
        rs, err := store.NewRedisStore(cfg.Store.RedisURL, cfg.Store.ReportTTL)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init redis report store")
        }
        reports = rs
    } else {
        reports = store.NewMemoryStore(cfg.Store.ReportTTL)
        log.Info().Msg("using in-memory report store")
    }
    defer reports.Close()

    // Inference clients
    clients := map[string]ai.Client{
        "gemini":    ai.NewGeminiClient(),
        "openai":    ai.NewOpenAIClient(),
        "anthropic": ai.NewAnthropicClient(),
    }

    // Optional report archive
    var archive orchestrator.Archiver
    if cfg.Archive.S3Bucket != "" {
        s3c, err := storage.NewS3Client(context.Background(), cfg.Archive.S3Bucket)
        if err != nil {
            log.Warn().Err(err).Msg("report archive disabled")
        } else {
            archive = s3c
        }
    }

    orch := orchestrator.New(orchestrator.Dependencies{
        Clients: clients,
        Reports: reports,
        Archive: archive,
        Limiter: limiter.New(cfg.Limiter.MaxConcurrent),
        Config:  cfg,
    })
    mux := http.NewServeMux()
    orch.RegisterRoutes(mux)

    mux.Handle("/metrics", metrics.Handler())

    checker := statuscheck.New(statuscheck.Options{
        Store: reports,
        S3Bucket: cfg.Archive.S3Bucket,
        GeminiKey: os.Getenv("GEMINI_API_KEY"),
        OpenAIKey: os.Getenv("OPENAI_API_KEY"),
        AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
    })
    mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request){
        w.Header().Set("Content-Type", "application/json")
        _ = json.NewEncoder(w).Encode(checker.Summary(r.Context()))
    })

    // Browser UI
    ui := web.New()
    ui.RegisterRoutes(mux)

    // Background sweep for stray analysis temp files
    go func(){
        ticker := time.NewTicker(30 * time.Minute)
        defer ticker.Stop()
        for range ticker.C {
            orchestrator.CleanupTemps(time.Hour)
        }
    }()

    srv := &http.Server{Addr: ":"+cfg.Server.Port, Handler: mux}

    go func(){
        log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
    defer cancel()
    _ = srv.Shutdown(ctx)
    fmt.Println("shutdown complete")
}
