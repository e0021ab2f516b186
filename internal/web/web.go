package web

import (
    "bytes"
    "encoding/json"
    "fmt"
    "html/template"
    "io"
    "mime/multipart"
    "net/http"
    "os"
    "path/filepath"
    "strings"

    "github.com/yuin/goldmark"
    "github.com/yuin/goldmark/extension"
)

type Web struct {
    tpl  *template.Template
    md   goldmark.Markdown
    port string
}

func New() *Web {
    // load templates
    tpl := template.Must(template.ParseGlob(filepath.Join("web", "templates", "*.html")))
    return &Web{
        tpl:  tpl,
        md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
        port: getenv("PORT", "8080"),
    }
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/web/", w.handleIndex)
    mux.HandleFunc("/web/analyze", w.handleAnalyze)
    mux.HandleFunc("/web/report/", w.handleDownload)
}

func (w *Web) render(wr http.ResponseWriter, name string, data any) {
    _ = w.tpl.ExecuteTemplate(wr, name, data)
}

func (w *Web) handleIndex(wr http.ResponseWriter, r *http.Request) {
    w.render(wr, "index.html", map[string]any{"Error": r.URL.Query().Get("error")})
}

// handleAnalyze proxies the browser form to the API endpoint /analyze and
// renders the result page with the analysis markdown converted to HTML.
func (w *Web) handleAnalyze(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    if err := r.ParseMultipartForm(64 << 20); err != nil { http.Error(wr, "invalid multipart form", 400); return }

    var b bytes.Buffer
    mw := multipart.NewWriter(&b)

    file, hdr, err := r.FormFile("file")
    if err != nil { w.render(wr, "index.html", map[string]any{"Error": "please choose an image to analyze"}); return }
    defer file.Close()
    fw, err := mw.CreateFormFile("file", hdr.Filename)
    if err != nil { http.Error(wr, "upload error", 500); return }
    if _, err := io.Copy(fw, file); err != nil { http.Error(wr, "upload error", 500); return }

    for _, k := range []string{"patient_name", "patient_age", "patient_sex", "study_date", "ai_engine"} {
        if v := r.FormValue(k); v != "" {
            _ = mw.WriteField(k, v)
        }
    }
    // checkbox is absent when unchecked; the API defaults to on
    if r.FormValue("enhance") == "" {
        _ = mw.WriteField("enhance", "off")
    }
    _ = mw.Close()

    url := fmt.Sprintf("http://127.0.0.1:%s/analyze", w.port)
    req, _ := http.NewRequest(http.MethodPost, url, &b)
    req.Header.Set("Content-Type", mw.FormDataContentType())
    resp, err := http.DefaultClient.Do(req)
    if err != nil { w.render(wr, "index.html", map[string]any{"Error": "analysis request failed"}); return }
    defer resp.Body.Close()

    var out struct {
        Status   string `json:"status"`
        ReportID string `json:"report_id"`
        Filename string `json:"filename"`
        Markdown string `json:"markdown"`
        Message  string `json:"message"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || resp.StatusCode >= 400 || out.Status != "ok" {
        msg := out.Message
        if msg == "" { msg = "analysis failed" }
        w.render(wr, "index.html", map[string]any{"Error": msg})
        return
    }

    var html bytes.Buffer
    if err := w.md.Convert([]byte(out.Markdown), &html); err != nil {
        // fall back to preformatted text
        html.Reset()
        html.WriteString("<pre>")
        template.HTMLEscape(&html, []byte(out.Markdown))
        html.WriteString("</pre>")
    }

    w.render(wr, "result.html", map[string]any{
        "ReportID": out.ReportID,
        "Filename": out.Filename,
        "Analysis": template.HTML(html.String()),
    })
}

// handleDownload proxies /web/report/{id}/download and /web/report/{id}/image
// to the API; headers (type, disposition) pass through.
func (w *Web) handleDownload(wr http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/web/report/")
    url := fmt.Sprintf("http://127.0.0.1:%s/report/%s", w.port, rest)
    resp, err := http.Get(url)
    if err != nil { http.Error(wr, "download failed", 500); return }
    defer resp.Body.Close()
    wr.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
    if cd := resp.Header.Get("Content-Disposition"); cd != "" {
        wr.Header().Set("Content-Disposition", cd)
    }
    wr.WriteHeader(resp.StatusCode)
    _, _ = io.Copy(wr, resp.Body)
}

func getenv(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
