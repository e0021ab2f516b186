package ai

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
)

func newTestAnthropic(srv *httptest.Server) *AnthropicClient {
    return &AnthropicClient{http: srv.Client(), apiKey: "ak-test", baseURL: srv.URL}
}

func TestAnthropicDoSuccess(t *testing.T) {
    var gotVersion, gotKey string
    var gotPayload anthropicMsgReq
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/messages" {
            t.Errorf("path = %s", r.URL.Path)
        }
        gotVersion = r.Header.Get("anthropic-version")
        gotKey = r.Header.Get("x-api-key")
        json.NewDecoder(r.Body).Decode(&gotPayload)
        w.Write([]byte(`{"content":[{"text":"Stable appearance."}],` +
            `"usage":{"input_tokens":40,"output_tokens":70}}`))
    }))
    defer srv.Close()

    resp, err := newTestAnthropic(srv).Do(context.Background(), Request{
        Model:        "claude-3-5-sonnet",
        ImageBase64:  "aW1n",
        ImageMIME:    "image/png",
        SystemPrompt: "system",
        UserPrompt:   "analyze",
    })
    if err != nil {
        t.Fatalf("Do: %v", err)
    }
    if gotVersion != "2023-06-01" || gotKey != "ak-test" {
        t.Errorf("headers = %q / %q", gotVersion, gotKey)
    }
    if resp.Text != "Stable appearance." || resp.TokensIn != 40 || resp.TokensOut != 70 {
        t.Errorf("response = %+v", resp)
    }
    if gotPayload.Model != "claude-3-5-sonnet" || gotPayload.MaxTokens != 4096 {
        t.Errorf("payload = %+v", gotPayload)
    }
    if gotPayload.System != "system" {
        t.Errorf("system = %q", gotPayload.System)
    }
    // image block first, then the instructional text
    content := gotPayload.Messages[0].Content
    if len(content) != 2 || content[0].Type != "image" || content[0].Source == nil {
        t.Fatalf("content = %+v", content)
    }
    if content[0].Source.MediaType != "image/png" || content[0].Source.Type != "base64" || content[0].Source.Data != "aW1n" {
        t.Errorf("image source = %+v", content[0].Source)
    }
    if content[1].Type != "text" || content[1].Text != "analyze" {
        t.Errorf("text block = %+v", content[1])
    }
}

func TestAnthropicDoStatusMapping(t *testing.T) {
    cases := []struct {
        name   string
        status int
        body   string
        check  func(error) bool
        desc   string
    }{
        {"rate limited", 429, ``, IsRateLimited, "IsRateLimited"},
        {"auth fatal", 401, ``, IsFatal, "IsFatal"},
        {"bad request fatal", 400, ``, IsFatal, "IsFatal"},
        {"server error transient", 500, ``, func(err error) bool {
            var h *HTTPError
            return errors.As(err, &h) && h.StatusCode == 500 && !IsFatal(err)
        }, "HTTPError 500, not fatal"},
        {"empty content", 200, `{"content":[]}`, IsEmptyResponse, "IsEmptyResponse"},
        {"blank text", 200, `{"content":[{"text":"  "}]}`, IsEmptyResponse, "IsEmptyResponse"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
                if tc.status != 200 {
                    w.WriteHeader(tc.status)
                }
                w.Write([]byte(tc.body))
            }))
            defer srv.Close()

            _, err := newTestAnthropic(srv).Do(context.Background(), Request{Model: "m", UserPrompt: "p"})
            if err == nil {
                t.Fatal("expected an error")
            }
            if !tc.check(err) {
                t.Errorf("error %v does not satisfy %s", err, tc.desc)
            }
        })
    }
}

func TestAnthropicDoMissingKey(t *testing.T) {
    c := &AnthropicClient{http: http.DefaultClient, baseURL: "http://127.0.0.1:0"}
    if _, err := c.Do(context.Background(), Request{Model: "m"}); err == nil {
        t.Fatal("expected error without an API key")
    }
}
