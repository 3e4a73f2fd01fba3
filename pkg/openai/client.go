package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.openai.com/v1"
	defaultImageModel          = "dall-e-3"
	defaultImageSize           = "1024x1024"
	defaultVisionModel         = "gpt-4o-mini"
	defaultMaxKeywords         = 5
	responseBodyReadLimit      = 1 << 20
	errorBodyReadLimit   int64 = 2048
)

var errAPIKeyRequired = errors.New("openai api key is required")

// Client wraps the OpenAI endpoints used for image generation and
// search-by-image keyword extraction.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	imageModel  string
	imageSize   string
	visionModel string
	maxKeywords int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithImageModel overrides the generation model.
func WithImageModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.imageModel = model
		}
	}
}

// WithImageSize overrides the generated image size.
func WithImageSize(size string) Option {
	return func(c *Client) {
		if strings.TrimSpace(size) != "" {
			c.imageSize = size
		}
	}
}

// WithVisionModel overrides the keyword-extraction model.
func WithVisionModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.visionModel = model
		}
	}
}

// WithMaxKeywords caps how many keywords extraction may return.
func WithMaxKeywords(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxKeywords = n
		}
	}
}

// NewClient builds the OpenAI client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:      trimmedKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		imageModel:  defaultImageModel,
		imageSize:   defaultImageSize,
		visionModel: defaultVisionModel,
		maxKeywords: defaultMaxKeywords,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage submits a text prompt and returns the transient URL of the
// generated image. The URL expires on the vendor side; callers are expected to
// re-host the bytes before persisting a record.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}

	payload := imageGenerationRequest{
		Model:  c.imageModel,
		Prompt: trimmed,
		N:      1,
		Size:   c.imageSize,
	}

	var parsed imageGenerationResponse
	if err := c.post(ctx, "/images/generations", payload, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "generation returned no image")
	}
	return parsed.Data[0].URL, nil
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractKeywords asks the vision model for short descriptive tags for the
// provided image. Returns the tags lowercased, most relevant first.
func (c *Client) ExtractKeywords(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	instruction := fmt.Sprintf(
		"List up to %d short keywords describing this image, comma separated, lowercase, no explanations.",
		c.maxKeywords,
	)

	payload := chatCompletionRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []chatContent{
					{Type: "text", Text: instruction},
					{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: 100,
	}

	var parsed chatCompletionResponse
	if err := c.post(ctx, "/chat/completions", payload, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, nil
	}

	return parseKeywords(parsed.Choices[0].Message.Content, c.maxKeywords), nil
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode openai request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build openai request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call openai")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.New(pkgerrors.CodeDependency, "openai request failed").
			WithDetails(map[string]any{"status": resp.Status, "body": strings.TrimSpace(string(snippet))})
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode openai response")
	}
	return nil
}

func parseKeywords(raw string, max int) []string {
	cleaned := strings.NewReplacer("\n", ",", ";", ",").Replace(raw)
	parts := strings.Split(cleaned, ",")
	keywords := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, part := range parts {
		kw := strings.ToLower(strings.Trim(strings.TrimSpace(part), ".\"'"))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		if max > 0 && len(keywords) == max {
			break
		}
	}
	return keywords
}
