package ai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "os"
    "strings"
)

const anthropicDefaultBaseURL = "https://api.anthropic.com/v1"

type AnthropicClient struct{
    http *http.Client
    apiKey string
    baseURL string
}

func NewAnthropicClient() *AnthropicClient {
    return &AnthropicClient{http: &http.Client{}, apiKey: os.Getenv("ANTHROPIC_API_KEY"), baseURL: anthropicDefaultBaseURL}
}
func (c *AnthropicClient) Name() string { return "anthropic" }

type anthropicImageSource struct {
    Type      string `json:"type"`
    MediaType string `json:"media_type"`
    Data      string `json:"data"`
}

type anthropicContent struct {
    Type   string                `json:"type"`
    Text   string                `json:"text,omitempty"`
    Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicMessage struct {
    Role    string             `json:"role"`
    Content []anthropicContent `json:"content"`
}

type anthropicMsgReq struct {
    Model     string             `json:"model"`
    MaxTokens int                `json:"max_tokens"`
    System    string             `json:"system,omitempty"`
    Messages  []anthropicMessage `json:"messages"`
}

type anthropicMsgResp struct {
    Content []struct{ Text string `json:"text"` } `json:"content"`
    Usage   struct {
        InputTokens  int `json:"input_tokens"`
        OutputTokens int `json:"output_tokens"`
    } `json:"usage"`
}

func (c *AnthropicClient) Do(ctx context.Context, req Request) (Response, error) {
    if c.apiKey == "" {
        return Response{}, errors.New("missing ANTHROPIC_API_KEY")
    }

    var content []anthropicContent
    if req.ImageBase64 != "" {
        content = append(content, anthropicContent{
            Type:   "image",
            Source: &anthropicImageSource{Type: "base64", MediaType: req.ImageMIME, Data: req.ImageBase64},
        })
    }
    content = append(content, anthropicContent{Type: "text", Text: req.UserPrompt})

    payload := anthropicMsgReq{
        Model:     req.Model,
        MaxTokens: 4096,
        System:    req.SystemPrompt,
        Messages:  []anthropicMessage{{Role: "user", Content: content}},
    }

    body, _ := json.Marshal(payload)
    httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
    httpReq.Header.Set("x-api-key", c.apiKey)
    httpReq.Header.Set("anthropic-version", "2023-06-01")
    httpReq.Header.Set("Content-Type", "application/json")

    resp, err := c.http.Do(httpReq)
    if err != nil {
        return Response{}, err
    }
    defer resp.Body.Close()

    if resp.StatusCode == 429 {
        return Response{}, ErrRateLimited
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return Response{}, &HTTPError{StatusCode: resp.StatusCode, Provider: "anthropic"}
    }

    var r anthropicMsgResp
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        return Response{}, err
    }
    if len(r.Content) == 0 {
        return Response{}, ErrEmptyResponse
    }
    text := strings.TrimSpace(r.Content[0].Text)
    if text == "" {
        return Response{}, ErrEmptyResponse
    }

    return Response{
        Text:      text,
        TokensIn:  r.Usage.InputTokens,
        TokensOut: r.Usage.OutputTokens,
    }, nil
}
