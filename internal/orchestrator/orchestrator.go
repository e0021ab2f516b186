package orchestrator

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "image"
    "io"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/amirkadri46/medi-report-analysis-agent/internal/ai"
    cfgpkg "github.com/amirkadri46/medi-report-analysis-agent/internal/config"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/filetype"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/imagerender"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/imaging"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/limiter"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/metrics"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/pdfcheck"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/report"
    "github.com/amirkadri46/medi-report-analysis-agent/internal/store"
)

// Archiver copies finished reports to long-term storage. Optional; a nil
// archiver disables archival, an archive failure never fails the analysis.
type Archiver interface {
    UploadReport(ctx context.Context, key string, pdf []byte) error
    Bucket() string
}

type Dependencies struct {
    Clients  map[string]ai.Client
    Reports  store.Store
    Archive  Archiver
    Limiter  *limiter.Slots
    Detector *filetype.Detector
    Config   cfgpkg.Config
}

type Orchestrator struct {
    deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
    if deps.Detector == nil { deps.Detector = filetype.New() }
    if deps.Limiter == nil { deps.Limiter = limiter.New(deps.Config.Limiter.MaxConcurrent) }
    return &Orchestrator{deps: deps}
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request){ w.WriteHeader(http.StatusOK); _,_ = w.Write([]byte("ok")) })
    mux.HandleFunc("/analyze", o.handleAnalyze)
    mux.HandleFunc("/report/", o.handleReport)
}

type analyzeResp struct {
    Status   string `json:"status"`
    ReportID string `json:"report_id"`
    Filename string `json:"filename"`
    Markdown string `json:"markdown"`
    Engine   string `json:"engine"`
    Model    string `json:"model"`
    Message  string `json:"message,omitempty"`
}

// handleAnalyze runs the whole pipeline for one uploaded image: acquire,
// optionally enhance, infer, compose, store. Synchronous; the caller gets the
// markdown and a report id for download.
func (o *Orchestrator) handleAnalyze(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }

    release, ok := o.deps.Limiter.Allow()
    if !ok {
        metrics.IncAnalysis("busy")
        writeJSONError(w, http.StatusTooManyRequests, "another analysis is in progress")
        return
    }
    defer release()

    cfg := o.deps.Config
    r.Body = http.MaxBytesReader(w, r.Body, cfg.Upload.MaxBytes)
    if err := r.ParseMultipartForm(cfg.Upload.MaxBytes); err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
        return
    }
    file, _, err := r.FormFile("file")
    if err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusBadRequest, "missing file")
        return
    }
    defer file.Close()

    meta := report.Metadata{
        Name:      strings.TrimSpace(r.FormValue("patient_name")),
        Age:       strings.TrimSpace(r.FormValue("patient_age")),
        Sex:       strings.TrimSpace(r.FormValue("patient_sex")),
        StudyDate: strings.TrimSpace(r.FormValue("study_date")),
    }
    if meta.StudyDate == "" { meta.StudyDate = time.Now().Format("2006-01-02") }
    enhance := formBool(r.FormValue("enhance"), true)
    engine := strings.ToLower(strings.TrimSpace(r.FormValue("ai_engine")))
    if engine == "" { engine = cfg.Provider.Engine }

    client, ok := o.deps.Clients[engine]
    if !ok {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown ai_engine %q", engine))
        return
    }

    // Persist the upload to a scoped temp file for magic-byte detection.
    uploadPath, err := saveTemp("mediimg-upload-*", file)
    if err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusInternalServerError, "cannot store upload")
        return
    }
    defer os.Remove(uploadPath)

    img, err := o.acquire(uploadPath)
    if err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusBadRequest, err.Error())
        return
    }
    if enhance {
        img = imaging.Enhance(img)
    }

    // One PNG serves display, model input and the document embed.
    pngBytes, err := imaging.EncodePNG(img)
    if err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusInternalServerError, "cannot encode image")
        return
    }
    displayPath, err := saveTemp("mediimg-display-*.png", bytes.NewReader(pngBytes))
    if err != nil {
        metrics.IncAnalysis("acquisition_error")
        writeJSONError(w, http.StatusInternalServerError, "cannot store image")
        return
    }
    defer os.Remove(displayPath)

    reportID := uuid.NewString()
    model := o.modelFor(engine)
    log.Info().Str("report_id", reportID).Str("engine", engine).Str("model", model).Bool("enhance", enhance).Msg("analysis started")

    ctx, cancel := context.WithTimeout(r.Context(), cfg.Provider.RequestTimeout)
    defer cancel()
    start := time.Now()
    resp, err := client.Do(ctx, ai.Request{
        ReportID:     reportID,
        Model:        model,
        Timeout:      cfg.Provider.RequestTimeout,
        ImageBase64:  imaging.ToBase64(pngBytes),
        ImageMIME:    "image/png",
        SystemPrompt: SystemPrompt,
        UserPrompt:   AnalysisPrompt,
    })
    if err != nil {
        metrics.ObserveProvider(engine, model, "error", time.Since(start))
        metrics.IncAnalysis("inference_error")
        log.Error().Err(err).Str("report_id", reportID).Str("engine", engine).Msg("inference failed")
        switch {
        case ai.IsRateLimited(err):
            writeJSONError(w, http.StatusTooManyRequests, "inference rate limited")
        case ai.IsFatal(err):
            writeJSONError(w, http.StatusBadGateway, "inference request rejected")
        case ai.IsEmptyResponse(err):
            writeJSONError(w, http.StatusBadGateway, "inference returned no content")
        case ai.IsTimeout(err):
            writeJSONError(w, http.StatusBadGateway, "inference timed out")
        default:
            writeJSONError(w, http.StatusBadGateway, "inference failed")
        }
        return
    }
    metrics.ObserveProvider(engine, model, "success", time.Since(start))

    composeStart := time.Now()
    pdfBytes, err := report.Compose(meta, resp.Text, displayPath)
    if err == nil && cfg.Report.Validate {
        err = pdfcheck.Validate(pdfBytes)
    }
    if err != nil {
        metrics.IncAnalysis("compose_error")
        log.Error().Err(err).Str("report_id", reportID).Msg("composition failed")
        writeJSONError(w, http.StatusInternalServerError, "report composition failed")
        return
    }
    metrics.ObserveCompose(time.Since(composeStart), len(pdfBytes))

    rec := store.Report{
        ID:       reportID,
        Filename: reportFilename(meta.Name, meta.StudyDate),
        Markdown: resp.Text,
        PDF:      pdfBytes,
        Image:    pngBytes,
        Engine:   engine,
        Model:    model,
        Created:  time.Now(),
    }
    if err := o.deps.Reports.Put(r.Context(), rec); err != nil {
        metrics.IncAnalysis("compose_error")
        log.Error().Err(err).Str("report_id", reportID).Msg("report store failed")
        writeJSONError(w, http.StatusInternalServerError, "cannot store report")
        return
    }

    if o.deps.Archive != nil {
        key := strings.TrimSuffix(cfg.Archive.Prefix, "/") + "/" + reportID + ".pdf"
        if err := o.deps.Archive.UploadReport(r.Context(), key, pdfBytes); err != nil {
            log.Warn().Err(err).Str("report_id", reportID).Str("bucket", o.deps.Archive.Bucket()).Msg("archive failed")
        }
    }

    metrics.IncAnalysis("success")
    log.Info().Str("report_id", reportID).Int("pdf_bytes", len(pdfBytes)).Int("tokens_in", resp.TokensIn).Int("tokens_out", resp.TokensOut).Msg("analysis completed")

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    _ = json.NewEncoder(w).Encode(analyzeResp{
        Status:   "ok",
        ReportID: reportID,
        Filename: rec.Filename,
        Markdown: resp.Text,
        Engine:   engine,
        Model:    model,
    })
}

// acquire turns the uploaded file into an in-memory image, rasterizing the
// first page of PDF studies.
func (o *Orchestrator) acquire(path string) (image.Image, error) {
    info, err := o.deps.Detector.Detect(path)
    if err != nil {
        return nil, fmt.Errorf("invalid or corrupt upload")
    }
    switch info.Kind {
    case filetype.KindImage:
        b, err := os.ReadFile(path)
        if err != nil {
            return nil, fmt.Errorf("invalid or corrupt upload")
        }
        img, err := imaging.Decode(b)
        if err != nil {
            return nil, fmt.Errorf("invalid or corrupt image")
        }
        return img, nil
    case filetype.KindPDF:
        img, err := imagerender.RenderFirstPage(path, o.deps.Config.Upload.PDFRenderDPI)
        if err != nil {
            return nil, fmt.Errorf("cannot render PDF study")
        }
        return img, nil
    default:
        return nil, fmt.Errorf("%s", info.Description)
    }
}

// handleReport serves /report/{id} (JSON), /report/{id}/download (PDF) and
// /report/{id}/image (the displayed PNG).
func (o *Orchestrator) handleReport(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    rest := strings.TrimPrefix(r.URL.Path, "/report/")
    var download, display bool
    switch {
    case strings.HasSuffix(rest, "/download"):
        download = true
        rest = strings.TrimSuffix(rest, "/download")
    case strings.HasSuffix(rest, "/image"):
        display = true
        rest = strings.TrimSuffix(rest, "/image")
    }
    id := strings.Trim(rest, "/")
    if id == "" { http.Error(w, "missing report id", http.StatusBadRequest); return }

    rec, ok, err := o.deps.Reports.Get(r.Context(), id)
    if err != nil { http.Error(w, "store error", http.StatusInternalServerError); return }
    if !ok || len(rec.PDF) == 0 {
        http.Error(w, "report not found or expired", http.StatusNotFound); return
    }

    if download {
        w.Header().Set("Content-Type", "application/pdf")
        w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", rec.Filename))
        _, _ = w.Write(rec.PDF)
        return
    }

    if display {
        if len(rec.Image) == 0 {
            http.Error(w, "report not found or expired", http.StatusNotFound)
            return
        }
        w.Header().Set("Content-Type", "image/png")
        _, _ = w.Write(rec.Image)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(map[string]any{
        "report_id": rec.ID,
        "filename":  rec.Filename,
        "markdown":  rec.Markdown,
        "engine":    rec.Engine,
        "model":     rec.Model,
        "created":   rec.Created,
    })
}

func (o *Orchestrator) modelFor(engine string) string {
    switch engine {
    case "openai":
        return o.deps.Config.Provider.OpenAIModel
    case "anthropic":
        return o.deps.Config.Provider.AnthropicModel
    default:
        return o.deps.Config.Provider.GeminiModel
    }
}

// saveTemp writes src to a fresh temp file and returns its path.
func saveTemp(pattern string, src io.Reader) (string, error) {
    tmp, err := os.CreateTemp("", pattern)
    if err != nil { return "", err }
    if _, err := io.Copy(tmp, src); err != nil {
        tmp.Close()
        os.Remove(tmp.Name())
        return "", err
    }
    if err := tmp.Close(); err != nil {
        os.Remove(tmp.Name())
        return "", err
    }
    return tmp.Name(), nil
}

// reportFilename builds the download name, e.g. report_Jane_Doe_2026-08-31.pdf.
func reportFilename(name, date string) string {
    if name == "" { name = "patient" }
    base := strings.Trim(fmt.Sprintf("report_%s_%s", name, date), "_")
    base = strings.Map(func(r rune) rune {
        switch {
        case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
            return r
        case r == '-' || r == '.' || r == '_':
            return r
        case r == ' ':
            return '_'
        default:
            return '_'
        }
    }, base)
    return base + ".pdf"
}

func formBool(v string, def bool) bool {
    if v == "" { return def }
    v = strings.ToLower(strings.TrimSpace(v))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": msg})
}
