package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
)

const (
	defaultBaseURL        = "https://api.cloudinary.com/v1_1"
	defaultTransformation = "q_auto,f_auto"
	errorBodyReadLimit    = 2048
	uploadTimeout         = 60 * time.Second
)

var (
	errCloudNameRequired = errors.New("cloudinary cloud name is required")
	errAPIKeyRequired    = errors.New("cloudinary api key is required")
	errAPISecretRequired = errors.New("cloudinary api secret is required")
)

// Client wraps the Cloudinary upload API. Uploads are signed server-side so
// the API secret never reaches a browser.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	now        func() time.Time
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

// WithBaseURL overrides the configured upload base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds the Cloudinary client for the given account.
func NewClient(cloudName, apiKey, apiSecret string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cloudName) == "" {
		return nil, errCloudNameRequired
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errAPIKeyRequired
	}
	if strings.TrimSpace(apiSecret) == "" {
		return nil, errAPISecretRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: uploadTimeout},
		baseURL:    defaultBaseURL,
		cloudName:  strings.TrimSpace(cloudName),
		apiKey:     strings.TrimSpace(apiKey),
		apiSecret:  strings.TrimSpace(apiSecret),
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload pushes image data (a base64 data URL or a remote HTTP URL) into the
// given folder and returns the durable CDN URL.
func (c *Client) Upload(ctx context.Context, imageData, folder string) (string, error) {
	if strings.TrimSpace(imageData) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}

	timestamp := fmt.Sprintf("%d", c.now().Unix())
	publicID := fmt.Sprintf("image_%d", c.now().UnixMilli())

	params := map[string]string{
		"timestamp":      timestamp,
		"public_id":      publicID,
		"transformation": defaultTransformation,
	}
	if strings.TrimSpace(folder) != "" {
		params["folder"] = strings.TrimSpace(folder)
	}

	form := url.Values{}
	form.Set("file", imageData)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(params))
	for key, value := range params {
		form.Set(key, value)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, url.PathEscape(c.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call cloudinary")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image upload failed").
			WithDetails(map[string]any{"status": resp.Status, "body": strings.TrimSpace(string(snippet))})
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upload response")
	}
	if parsed.SecureURL == "" {
		msg := parsed.Error.Message
		if msg == "" {
			msg = "upload returned no url"
		}
		return "", pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	return parsed.SecureURL, nil
}

// sign produces the Cloudinary request signature: the sorted key=value pairs
// joined by '&', concatenated with the API secret, hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
