package ai

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"
)

// Request represents a generic vision inference request for one analysis.
type Request struct {
    ReportID     string
    Model        string
    Timeout      time.Duration
    ImageBase64  string // Base64 encoded displayed image
    ImageMIME    string // Image MIME type (image/png)
    SystemPrompt string // System prompt for AI
    UserPrompt   string // Instructional prompt sent with the image
}

type Response struct {
    Text      string
    TokensIn  int
    TokensOut int
}

// Client interface for providers like Gemini, OpenAI, Anthropic.
type Client interface {
    Name() string
    Do(ctx context.Context, req Request) (Response, error)
}

var (
    ErrRateLimited    = errors.New("rate_limited")
    ErrContentRefused = errors.New("content_refused")
    ErrEmptyResponse  = errors.New("empty_response")
)

// HTTPError carries a non-2xx provider status for classification upstream.
type HTTPError struct {
    StatusCode int
    Provider   string
}

func (e *HTTPError) Error() string { return fmt.Sprintf("%s status %d", e.Provider, e.StatusCode) }

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
func IsContentRefused(err error) bool { return errors.Is(err, ErrContentRefused) }
func IsEmptyResponse(err error) bool { return errors.Is(err, ErrEmptyResponse) }

// IsFatal reports whether the failure is a request problem that re-sending
// the same analysis cannot fix (auth, quota exhaustion, bad payload).
func IsFatal(err error) bool {
    var httpErr *HTTPError
    if errors.As(err, &httpErr) {
        return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != 429
    }
    return false
}

// IsTimeout reports whether the provider call ran out of time.
func IsTimeout(err error) bool {
    if err == nil { return false }
    if errors.Is(err, context.DeadlineExceeded) { return true }
    s := strings.ToLower(err.Error())
    return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}
