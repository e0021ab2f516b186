package ai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "os"
    "strings"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct{
    http *http.Client
    apiKey string
    baseURL string
}

func NewGeminiClient() *GeminiClient {
    return &GeminiClient{http: &http.Client{}, apiKey: os.Getenv("GEMINI_API_KEY"), baseURL: geminiDefaultBaseURL}
}
func (c *GeminiClient) Name() string { return "gemini" }

type geminiInlineData struct {
    MIMEType string `json:"mime_type"`
    Data     string `json:"data"`
}

type geminiPart struct {
    Text       string            `json:"text,omitempty"`
    InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
    Role  string       `json:"role,omitempty"`
    Parts []geminiPart `json:"parts"`
}

type geminiGenReq struct {
    SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
    Contents          []geminiContent `json:"contents"`
    GenerationConfig  struct {
        Temperature float64 `json:"temperature"`
    } `json:"generationConfig"`
}

type geminiGenResp struct {
    Candidates []struct {
        Content struct {
            Parts []struct {
                Text string `json:"text"`
            } `json:"parts"`
        } `json:"content"`
    } `json:"candidates"`
    UsageMetadata struct {
        PromptTokenCount     int `json:"promptTokenCount"`
        CandidatesTokenCount int `json:"candidatesTokenCount"`
    } `json:"usageMetadata"`
}

func (c *GeminiClient) Do(ctx context.Context, req Request) (Response, error) {
    if c.apiKey == "" {
        return Response{}, errors.New("missing GEMINI_API_KEY")
    }

    // User content: image part first (if any), then the instructional prompt
    var parts []geminiPart
    if req.ImageBase64 != "" {
        parts = append(parts, geminiPart{InlineData: &geminiInlineData{MIMEType: req.ImageMIME, Data: req.ImageBase64}})
    }
    parts = append(parts, geminiPart{Text: req.UserPrompt})

    payload := geminiGenReq{Contents: []geminiContent{{Role: "user", Parts: parts}}}
    if req.SystemPrompt != "" {
        payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
    }

    body, _ := json.Marshal(payload)
    url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, req.Model)
    httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
    httpReq.Header.Set("x-goog-api-key", c.apiKey)
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
        return Response{}, &HTTPError{StatusCode: resp.StatusCode, Provider: "gemini"}
    }

    var r geminiGenResp
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        return Response{}, err
    }
    if len(r.Candidates) == 0 {
        return Response{}, ErrEmptyResponse
    }
    var sb strings.Builder
    for _, p := range r.Candidates[0].Content.Parts {
        sb.WriteString(p.Text)
    }
    text := strings.TrimSpace(sb.String())
    if text == "" {
        return Response{}, ErrEmptyResponse
    }

    return Response{
        Text:      text,
        TokensIn:  r.UsageMetadata.PromptTokenCount,
        TokensOut: r.UsageMetadata.CandidatesTokenCount,
    }, nil
}
