package statuscheck

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// roundTripFunc lets the provider probes answer locally instead of hitting
// the real endpoints.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func staticClient(status int) *http.Client {
    return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
        return &http.Response{StatusCode: status, Body: http.NoBody, Request: r}, nil
    })}
}

func TestSummaryAllHealthy(t *testing.T) {
    c := New(Options{
        Store:        pingFunc(func(ctx context.Context) error { return nil }),
        HTTPClient:   staticClient(200),
        GeminiKey:    "g",
        OpenAIKey:    "o",
        AnthropicKey: "a",
    })
    s := c.Summary(context.Background())
    if !s.Store.OK || s.Store.Message != "Connected" {
        t.Errorf("store = %+v", s.Store)
    }
    for name, st := range map[string]Status{"gemini": s.Gemini, "openai": s.OpenAI, "anthropic": s.Anthropic} {
        if !st.OK {
            t.Errorf("%s = %+v", name, st)
        }
    }
    if s.S3.OK {
        t.Error("unconfigured archive must not report healthy")
    }
}

func TestSummaryMissingKeys(t *testing.T) {
    c := New(Options{
        Store:      pingFunc(func(ctx context.Context) error { return nil }),
        HTTPClient: staticClient(200),
    })
    s := c.Summary(context.Background())
    for name, st := range map[string]Status{"gemini": s.Gemini, "openai": s.OpenAI, "anthropic": s.Anthropic} {
        if st.OK || st.Message != "API key missing" {
            t.Errorf("%s = %+v", name, st)
        }
    }
}

func TestSummaryProviderDown(t *testing.T) {
    c := New(Options{
        Store:      pingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
        HTTPClient: staticClient(503),
        GeminiKey:  "g",
    })
    s := c.Summary(context.Background())
    if s.Store.OK || !strings.Contains(s.Store.Message, "connection refused") {
        t.Errorf("store = %+v", s.Store)
    }
    if s.Gemini.OK || s.Gemini.Message != "HTTP 503" {
        t.Errorf("gemini = %+v", s.Gemini)
    }
}

func TestSummaryNilStore(t *testing.T) {
    c := New(Options{HTTPClient: staticClient(200)})
    if s := c.Summary(context.Background()); s.Store.OK {
        t.Errorf("nil store reported healthy: %+v", s.Store)
    }
}

func TestTrimError(t *testing.T) {
    if trimError(nil) != "" {
        t.Error("nil error should trim to empty")
    }
    long := errors.New(strings.Repeat("x", 300))
    if got := trimError(long); len(got) != 120 {
        t.Errorf("long message trimmed to %d chars", len(got))
    }
}
