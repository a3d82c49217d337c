package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultPreviewLength bounds how much of a response body ends up in errors.
const DefaultPreviewLength = 400

type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
	// Client replaces the pooled client built from options when set.
	Client *http.Client
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	client := config.Client
	if client == nil {
		client = NewClient(options...)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
	maxBodySize int64
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// WithMaxBodySize rejects responses whose body exceeds n bytes with
// ErrBodyTooLarge. At most n+1 bytes are read.
func WithMaxBodySize(n int64) RequestOpt {
	return func(c *requestConfig) {
		c.maxBodySize = n
	}
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// LooksLikeJSON reports whether the body is declared or sniffed as JSON.
func (r *Response) LooksLikeJSON() bool {
	if strings.Contains(r.ContentType(), "application/json") {
		return true
	}
	trimmed := bytes.TrimLeft(r.Body, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// Preview returns at most n characters of the body.
func (r *Response) Preview(n int) string {
	return Preview(r.Body, n)
}

// Preview truncates body to n runes.
func Preview(body []byte, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	runes := []rune(string(body))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}

// Do sends a request with an optional raw body. Statuses outside 2xx/3xx
// are returned as *HTTPError, transport failures as *NetworkError.
func (c *Connector) Do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, opts ...RequestOpt) (*Response, error) {
	// Apply request options
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Use override URL if provided, otherwise use baseURL + endpoint
	var url string
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	} else {
		url = c.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	// Add custom headers
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if cfg.maxBodySize > 0 {
		reader = io.LimitReader(resp.Body, cfg.maxBodySize+1)
	}

	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}
	if cfg.maxBodySize > 0 && int64(len(bodyBytes)) > cfg.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, cfg.maxBodySize)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       bodyBytes,
	}

	// 3xx only reaches here when the redirect was not followed
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return out, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    out.Preview(DefaultPreviewLength),
		}
	}

	return out, nil
}

// DoJSON sends reqBody encoded as JSON.
func (c *Connector) DoJSON(ctx context.Context, method, endpoint string, reqBody any, opts ...RequestOpt) (*Response, error) {
	if reqBody == nil {
		return c.Do(ctx, method, endpoint, nil, "", opts...)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	// Attach payload to context for logging transport
	ctx = context.WithValue(ctx, payloadContextKey{}, jsonData)

	return c.Do(ctx, method, endpoint, bytes.NewReader(jsonData), "application/json", opts...)
}

// DoForm sends form as application/x-www-form-urlencoded.
func (c *Connector) DoForm(ctx context.Context, method, endpoint string, form url.Values, opts ...RequestOpt) (*Response, error) {
	encoded := form.Encode()
	ctx = context.WithValue(ctx, payloadContextKey{}, []byte(encoded))

	return c.Do(ctx, method, endpoint, strings.NewReader(encoded), "application/x-www-form-urlencoded", opts...)
}

// DoMultipart sends a multipart/form-data body filled in by prepareBody.
func (c *Connector) DoMultipart(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, opts ...RequestOpt) (*Response, error) {
	// Prepare multipart body
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := prepareBody(writer); err != nil {
		return nil, fmt.Errorf("prepare multipart body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	ctx = context.WithValue(ctx, payloadContextKey{}, body.Bytes())

	return c.Do(ctx, method, endpoint, body, writer.FormDataContentType(), opts...)
}

// ErrBodyTooLarge is returned when a response exceeds WithMaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
