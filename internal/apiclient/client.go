package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"

	"ilanportali/internal/util"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero means no timeout.
	Timeout time.Duration
}

// Client is the single chokepoint for calls to the marketplace API.
// One Client is built per process and shared by the auth service and the
// listing repository.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// New constructs an API client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: util.NewLoggingTransport(nil),
		}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// SetAuthToken sets the bearer token attached to subsequent requests.
// An empty token removes the Authorization header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// AuthToken returns the bearer token currently attached to requests.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil, nil)
}

// Post issues a POST request with a JSON or multipart body.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, body, headers)
}

// Request performs an API call and returns the parsed JSON payload.
//
// A *Multipart body is sent as multipart/form-data and any Content-Type in
// the merged headers is dropped in favour of the writer's boundary type.
// Any other non-nil body is JSON encoded. The response body is parsed as
// JSON whatever the status; a body that is not JSON yields a nil payload.
// Non-2xx statuses return *HTTPError, transport failures *TransportError.
// An X-Request-Id passed in headers wins over the one carried by ctx.
func (c *Client) Request(ctx context.Context, method, path string, body any, headers http.Header) (json.RawMessage, error) {
	reqHeaders := c.defaultHeaders()
	for key, values := range headers {
		reqHeaders[textproto.CanonicalMIMEHeaderKey(key)] = append([]string(nil), values...)
	}
	if id := strings.TrimSpace(reqHeaders.Get(util.RequestIDHeader)); id != "" {
		ctx = util.ContextWithRequestID(ctx, id)
	}
	ctx, requestID := util.EnsureRequestID(ctx)
	reqHeaders.Set(util.RequestIDHeader, requestID)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case *Multipart:
		if b == nil {
			break
		}
		reqHeaders.Del("Content-Type")
		encoded, contentType, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		reader = encoded
		reqHeaders.Set("Content-Type", contentType)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		reader = bytes.NewReader(data)
		reqHeaders.Set("Content-Type", "application/json")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header = reqHeaders

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("api response read failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	payload := parsePayload(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newHTTPError(resp.StatusCode, statusText(resp), payload)
		slog.Warn("api request rejected", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID, "err", apiErr.Message)
		return nil, apiErr
	}
	return payload, nil
}

func (c *Client) defaultHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if token := c.AuthToken(); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func parsePayload(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// statusText returns the reason phrase sent by the server, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// Multipart is a form-data payload mixing text fields and files.
type Multipart struct {
	fields []formField
	files  []FormFile
}

type formField struct {
	name  string
	value string
}

// FormFile is a file part of a multipart payload.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// NewMultipart returns an empty multipart payload.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a text field. Fields keep insertion order.
func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// AddFile appends a file part.
func (m *Multipart) AddFile(f FormFile) *Multipart {
	m.files = append(m.files, f)
	return m
}

func (m *Multipart) encode() (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range m.fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.files {
		part, err := createFilePart(writer, f)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func createFilePart(w *multipart.Writer, f FormFile) (io.Writer, error) {
	if f.ContentType == "" {
		return w.CreateFormFile(f.Field, f.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
	h.Set("Content-Type", f.ContentType)
	return w.CreatePart(h)
}
