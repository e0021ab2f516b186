package ai

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

func newTestGemini(srv *httptest.Server) *GeminiClient {
    return &GeminiClient{http: srv.Client(), apiKey: "test-key", baseURL: srv.URL}
}

func geminiSuccessBody(text string) string {
    return `{"candidates":[{"content":{"parts":[{"text":` + jsonStr(text) + `}]}}],` +
        `"usageMetadata":{"promptTokenCount":120,"candidatesTokenCount":340}}`
}

func jsonStr(s string) string {
    b, _ := json.Marshal(s)
    return string(b)
}

func TestGeminiDoSuccess(t *testing.T) {
    var gotPath, gotKey string
    var gotPayload geminiGenReq
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotPath = r.URL.Path
        gotKey = r.Header.Get("x-goog-api-key")
        if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
            t.Errorf("decode request payload: %v", err)
        }
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(geminiSuccessBody("## Findings\n\nClear lungs.")))
    }))
    defer srv.Close()

    c := newTestGemini(srv)
    resp, err := c.Do(context.Background(), Request{
        Model:        "gemini-2.0-flash",
        ImageBase64:  "aGVsbG8=",
        ImageMIME:    "image/png",
        SystemPrompt: "you are a radiologist",
        UserPrompt:   "analyze this study",
    })
    if err != nil {
        t.Fatalf("Do: %v", err)
    }
    if !strings.Contains(gotPath, "gemini-2.0-flash:generateContent") {
        t.Errorf("model missing from path: %s", gotPath)
    }
    if gotKey != "test-key" {
        t.Errorf("api key header = %q", gotKey)
    }
    if resp.Text != "## Findings\n\nClear lungs." {
        t.Errorf("text = %q", resp.Text)
    }
    if resp.TokensIn != 120 || resp.TokensOut != 340 {
        t.Errorf("tokens = %d/%d", resp.TokensIn, resp.TokensOut)
    }
    if gotPayload.SystemInstruction == nil || gotPayload.SystemInstruction.Parts[0].Text != "you are a radiologist" {
        t.Error("system instruction not forwarded")
    }
    parts := gotPayload.Contents[0].Parts
    if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/png" {
        t.Errorf("image part not first: %+v", parts)
    }
    if parts[1].Text != "analyze this study" {
        t.Errorf("prompt part = %q", parts[1].Text)
    }
}

func TestGeminiDoConcatenatesParts(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"first "},{"text":"second"}]}}]}`))
    }))
    defer srv.Close()

    resp, err := newTestGemini(srv).Do(context.Background(), Request{Model: "m", UserPrompt: "p"})
    if err != nil {
        t.Fatalf("Do: %v", err)
    }
    if resp.Text != "first second" {
        t.Errorf("text = %q", resp.Text)
    }
}

func TestGeminiDoStatusMapping(t *testing.T) {
    cases := []struct {
        name   string
        status int
        body   string
        check  func(error) bool
        desc   string
    }{
        {"rate limited", 429, `{}`, IsRateLimited, "IsRateLimited"},
        {"server error transient", 500, `{}`, func(err error) bool {
            var h *HTTPError
            return errors.As(err, &h) && h.StatusCode == 500 && !IsFatal(err)
        }, "HTTPError 500, not fatal"},
        {"auth fatal", 401, `{}`, IsFatal, "IsFatal"},
        {"bad request fatal", 400, `{}`, IsFatal, "IsFatal"},
        {"empty candidates", 200, `{"candidates":[]}`, IsEmptyResponse, "IsEmptyResponse"},
        {"blank text", 200, `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`, IsEmptyResponse, "IsEmptyResponse"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                w.WriteHeader(tc.status)
                w.Write([]byte(tc.body))
            }))
            defer srv.Close()

            _, err := newTestGemini(srv).Do(context.Background(), Request{Model: "m", UserPrompt: "p"})
            if err == nil {
                t.Fatal("expected an error")
            }
            if !tc.check(err) {
                t.Errorf("error %v does not satisfy %s", err, tc.desc)
            }
        })
    }
}

func TestGeminiDoMissingKey(t *testing.T) {
    c := &GeminiClient{http: http.DefaultClient, baseURL: "http://127.0.0.1:0"}
    if _, err := c.Do(context.Background(), Request{Model: "m"}); err == nil {
        t.Fatal("expected error without an API key")
    }
}

func TestErrorClassifiers(t *testing.T) {
    if IsFatal(ErrRateLimited) {
        t.Error("rate limiting must stay retryable")
    }
    if !IsFatal(&HTTPError{StatusCode: 403, Provider: "gemini"}) {
        t.Error("403 should be fatal")
    }
    if IsFatal(&HTTPError{StatusCode: 429, Provider: "gemini"}) {
        t.Error("429 via HTTPError should not be fatal")
    }
    if IsFatal(&HTTPError{StatusCode: 503, Provider: "gemini"}) {
        t.Error("503 should be retryable")
    }
    if !IsTimeout(context.DeadlineExceeded) {
        t.Error("deadline exceeded is a timeout")
    }
    if !IsTimeout(errors.New("net/http: request canceled (Client.Timeout exceeded)")) {
        t.Error("client timeout string should classify as timeout")
    }
    if IsTimeout(nil) {
        t.Error("nil is not a timeout")
    }
}
