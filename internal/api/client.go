// Package api is the JSON-over-HTTP transport shared by the backend clients.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medops-mobile/internal/model"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
)

const (
	HeaderXRequestID  = "X-Request-ID"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json; charset=UTF-8"
)

// Client issues requests against the configured backend base URL.
// It never retries and sets no timeout of its own.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
	metrics *metrics.ClientMetrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call
type Request struct {
	// Operation names the call in logs and metrics.
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	// Expect is the status the backend uses for success.
	Expect int
}

// Response is a fully read backend response
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// OK reports whether the backend answered with the expected status.
func (r *Response) OK(expect int) bool {
	return r.StatusCode == expect
}

// Do sends req and reads the whole response. A transport failure, meaning no
// response at all, is returned as a Connectivity error. Logs carry the path
// only; queries hold emails.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", req.Operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", req.Operation, err)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set(HeaderXRequestID, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set(HeaderContentType, ContentTypeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.Operation, metrics.OutcomeUnreachable, time.Since(start))
		c.logger.Error(err, "backend unreachable",
			"operation", req.Operation, "method", req.Method, "path", req.Path, "request_id", requestID)
		return nil, apperrors.Connectivity(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(req.Operation, metrics.OutcomeUnreachable, time.Since(start))
		c.logger.Error(err, "failed to read backend response",
			"operation", req.Operation, "status", resp.StatusCode, "request_id", requestID)
		return nil, apperrors.Connectivity(err)
	}

	outcome := metrics.OutcomeSuccess
	if req.Expect != 0 && resp.StatusCode != req.Expect {
		outcome = metrics.OutcomeRejected
	}
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(req.Operation, outcome, elapsed)
	c.logger.Debug("backend request",
		"operation", req.Operation,
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", elapsed.String(),
		"request_id", requestID)

	return &Response{StatusCode: resp.StatusCode, Body: data, RequestID: requestID}, nil
}

// Decode unmarshals a success body into v; an unparseable body is an Unknown error.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperrors.Unknown(r.StatusCode, err)
	}
	return nil
}

// Failure interprets a non-success body. A parseable {errors} list yields a
// Validation error; anything else yields an Unknown error.
func (r *Response) Failure() *apperrors.AppError {
	var body model.ErrorResponse
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return apperrors.Unknown(r.StatusCode, err)
	}
	return apperrors.Validation(r.StatusCode, body.Errors)
}

// Text returns the raw body, for logging opaque failures.
func (r *Response) Text() string {
	return string(r.Body)
}
