// Package apiclient implements the HTTP transport to the payroll API.
//
// Every call carries a request ID and, unless anonymous, the bearer token of the
// current session. Non-success responses are classified into the error codes of
// internal/errors; nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/ports"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "paystream-client"
	maxBodyBytes     = 32 << 20

	// HeaderRequestID correlates client logs with server logs.
	HeaderRequestID = "X-Request-ID"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Tokens     ports.TokenSource
	Logger     *slog.Logger
}

// Client is a thin JSON/binary client for the payroll API.
type Client struct {
	base      *url.URL
	userAgent string
	hc        *http.Client
	tokens    ports.TokenSource
	logger    *slog.Logger
}

// New builds a Client. BaseURL must be absolute.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute: %q", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		userAgent: fallbackString(strings.TrimSpace(cfg.UserAgent), defaultUserAgent),
		hc:        hc,
		tokens:    cfg.Tokens,
		logger:    logger.With("component", "apiclient"),
	}, nil
}

// HTTPClient exposes the underlying client for transports that share it.
func (c *Client) HTTPClient() *http.Client { return c.hc }

// Endpoint resolves an API path against the base URL.
func (c *Client) Endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// WithToken returns a copy of the client that always presents tok.
func (c *Client) WithToken(tok string) *Client {
	cp := *c
	cp.tokens = staticToken(tok)
	return &cp
}

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is encoded as JSON when non-nil.
	Body any
	// Binary asks for the raw payload instead of a JSON document.
	Binary bool
	// Anonymous skips the bearer token.
	Anonymous bool
}

// Response is a successful API response.
type Response struct {
	Status      int
	Header      http.Header
	Body        []byte
	RequestID   string
	ContentType string
	// Filename comes from Content-Disposition when the server names the payload.
	Filename string
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnknown, "malformed api response")
	}
	return nil
}

// Do executes req and classifies failures.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var bearer string
	if !req.Anonymous {
		tok, ok := c.token()
		if !ok {
			return nil, apperrors.Unauthenticated("not logged in")
		}
		bearer = tok
	}

	httpReq, reqID, err := c.newRequest(ctx, req, bearer)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			"method", httpReq.Method, "path", req.Path, "request_id", reqID,
			"duration", time.Since(start), "error", err)
		return nil, apperrors.Transport(err)
	}

	body, err := readBody(resp)
	c.logger.DebugContext(ctx, "api request",
		"method", httpReq.Method, "path", req.Path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))
	if err != nil {
		return nil, apperrors.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(resp.StatusCode, body)
	}

	out := &Response{
		Status:      resp.StatusCode,
		Header:      resp.Header,
		Body:        body,
		RequestID:   reqID,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
	}
	return out, nil
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	tok, ok := c.tokens.Token()
	return tok, ok && tok != ""
}

func (c *Client) newRequest(ctx context.Context, req Request, bearer string) (*http.Request, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "create api request")
	}

	reqID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, reqID)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Binary {
		httpReq.Header.Set("Accept", "application/pdf, application/octet-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	return httpReq, reqID, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		if closeErr != nil {
			return nil, errors.Join(
				fmt.Errorf("read api response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return nil, fmt.Errorf("read api response: %w", readErr)
	}
	return body, nil
}

// classify maps a non-success status to an AppError, keeping the server's detail as the message.
func classify(status int, body []byte) error {
	var code apperrors.ErrorCode
	switch status {
	case http.StatusUnauthorized:
		code = apperrors.ErrCodeUnauthenticated
	case http.StatusForbidden:
		code = apperrors.ErrCodeForbidden
	case http.StatusNotFound:
		code = apperrors.ErrCodeNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		code = apperrors.ErrCodeValidation
	default:
		code = apperrors.ErrCodeUnknown
	}

	msg := detailMessage(body)
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", status)
	}
	return &apperrors.AppError{Code: code, Message: msg, Status: status}
}

// detailMessage extracts {"detail": "..."} or a list of {"msg": "..."} entries.
func detailMessage(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var errEmptyDocument = errors.New("server returned an empty document")
