package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implements Client against a JSON completion endpoint.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// NewHTTPClient creates a client for the given completion endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// completionBody is the wire response on success.
type completionBody struct {
	Output  string `json:"output"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// errorBody is the wire response on failure.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Client.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, NewError(KindValidation, fmt.Sprintf("encode request: %v", err), false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewError(KindInternal, fmt.Sprintf("build request: %v", err), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewError(KindInternal, ctx.Err().Error(), false)
		}
		return nil, NewError(KindInternal, "Unable to reach the model service. Check your connection and try again.", true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindInternal, fmt.Sprintf("read response: %v", err), true)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body)
	}

	var out completionBody
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewError(KindInternal, fmt.Sprintf("decode response: %v", err), false)
	}

	text := out.Output
	if text == "" {
		text = out.Content
	}
	model := out.Model
	if model == "" {
		model = req.Model
	}

	return &Response{
		Output:   text,
		Model:    model,
		Duration: time.Since(start),
	}, nil
}

// decodeError maps a non-200 response to a classified error.
func decodeError(status int, body []byte) *Error {
	kind := kindFromStatus(status)
	message := http.StatusText(status)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		message = eb.Error.Message
		if k := kindFromCode(eb.Error.Code); k != "" {
			kind = k
		}
	}

	return NewError(kind, message, retryableStatus(status))
}

// kindFromCode maps a backend error code string to an error kind.
// Returns "" when the code is unrecognized, leaving the HTTP-status
// mapping in effect.
func kindFromCode(code string) ErrorKind {
	switch strings.ToLower(code) {
	case "validation", "invalid_request":
		return KindValidation
	case "rate_limit", "rate_limited", "overloaded":
		return KindRateLimit
	case "auth", "unauthorized", "forbidden":
		return KindAuth
	case "model_not_found", "unknown_model":
		return KindModelNotFound
	case "safety", "safety_blocked", "content_filtered":
		return KindSafetyBlocked
	case "internal":
		return KindInternal
	default:
		return ""
	}
}
