package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
    Port            string
    ShutdownTimeout time.Duration
}

// ProviderConfig selects the inference engine and its models.
type ProviderConfig struct {
    Engine         string // "gemini"|"openai"|"anthropic"
    GeminiModel    string
    OpenAIModel    string
    AnthropicModel string
    RequestTimeout time.Duration
}

// UploadConfig bounds what the acquisition surface accepts.
type UploadConfig struct {
    MaxBytes    int64
    PDFRenderDPI int
}

// ReportConfig tunes document composition.
type ReportConfig struct {
    Validate bool // structural PDF validation after compose
}

// StoreConfig defines where finished reports are held for download.
type StoreConfig struct {
    RedisURL  string // empty selects the in-memory store
    ReportTTL time.Duration
}

// ArchiveConfig enables optional S3 archival of finished reports.
type ArchiveConfig struct {
    S3Bucket string
    Prefix   string
}

// LimiterConfig caps simultaneous analyses.
type LimiterConfig struct {
    MaxConcurrent int
}

// Config is the top-level configuration.
type Config struct {
    Logging  LoggingConfig
    Axiom    AxiomConfig
    Server   ServerConfig
    Provider ProviderConfig
    Upload   UploadConfig
    Report   ReportConfig
    Store    StoreConfig
    Archive  ArchiveConfig
    Limiter  LimiterConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/mediagent.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_mediagent",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Server = ServerConfig{
        Port:            getEnv("PORT", "8080"),
        ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
    }

    cfg.Provider = ProviderConfig{
        Engine:         strings.ToLower(getEnv("AI_ENGINE", "gemini")),
        GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
        OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
        AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet"),
        RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "60s"), 60*time.Second),
    }

    cfg.Upload = UploadConfig{
        MaxBytes:     int64(parseInt(getEnv("UPLOAD_MAX_MB", "16"), 16)) << 20,
        PDFRenderDPI: parseInt(getEnv("PDF_RENDER_DPI", "200"), 200),
    }

    cfg.Report = ReportConfig{
        Validate: parseBool(getEnv("REPORT_VALIDATE", "0")),
    }

    cfg.Store = StoreConfig{
        RedisURL:  getEnv("REDIS_URL", ""),
        ReportTTL: parseDuration(getEnv("REPORT_TTL", "1h"), time.Hour),
    }

    cfg.Archive = ArchiveConfig{
        S3Bucket: getEnv("ARCHIVE_S3_BUCKET", ""),
        Prefix:   getEnv("ARCHIVE_S3_PREFIX", "reports"),
    }

    cfg.Limiter = LimiterConfig{
        MaxConcurrent: parseInt(getEnv("MAX_CONCURRENT_ANALYSES", "2"), 2),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
