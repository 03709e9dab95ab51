// Package fuzz mutates a base request at a chosen insertion point with
// payloads from a named set, drives a bounded-rate sequential execution
// loop, and classifies results worth human review.
package fuzz

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/seclab/seclab/pkg/exchange"
	"github.com/seclab/seclab/pkg/httpclient"
	"github.com/seclab/seclab/pkg/iohelper"
)

// Executor dispatches a mutated request and returns the response. The
// engine never performs raw socket I/O itself; this is the seam where
// a real transport, a replaying proxy, or a test double plugs in.
type Executor interface {
	Dispatch(ctx context.Context, req *exchange.Request) (*exchange.Response, error)
}

// HTTPExecutor is the default Executor, sending requests over a pooled
// HTTP client and measuring response latency.
type HTTPExecutor struct {
	client *http.Client
}

// NewHTTPExecutor wraps the given client; nil uses the shared default.
func NewHTTPExecutor(client *http.Client) *HTTPExecutor {
	if client == nil {
		client = httpclient.Default()
	}
	return &HTTPExecutor{client: client}
}

// Dispatch sends the request and captures the response with bounded
// body reading.
func (e *HTTPExecutor) Dispatch(ctx context.Context, req *exchange.Request) (*exchange.Response, error) {
	var body *bytes.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(), body)
	if err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		httpReq.Header.Set(h.Name, h.Value)
	}

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer iohelper.DrainAndClose(httpResp.Body)

	respBody, err := iohelper.ReadBodyDefault(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var headers exchange.Headers
	for name, values := range httpResp.Header {
		for _, v := range values {
			headers = append(headers, exchange.Header{Name: name, Value: v})
		}
	}

	return &exchange.Response{
		ID:         uuid.New().String(),
		RequestID:  req.ID,
		StatusCode: httpResp.StatusCode,
		StatusText: http.StatusText(httpResp.StatusCode),
		Headers:    headers,
		Body:       respBody,
		Latency:    latency,
		ReceivedAt: time.Now(),
	}, nil
}
