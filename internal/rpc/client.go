// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package rpc is a small JSON-RPC 2.0 client for the Soroban RPC service.
package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/tokenctl/internal/simulator"
)

const (
	// DefaultHTTPTimeout applies to clients created without a custom http.Client.
	DefaultHTTPTimeout = 15 * time.Second

	tracerName = "github.com/dotandev/tokenctl/internal/rpc"
)

// Error carries a JSON-RPC error object returned by the node.
type Error struct {
	Method  string
	Code    int
	Message string
	Data    interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc %s: %s", e.Method, e.Message)
}

// Client talks to one Soroban RPC endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	headers    http.Header
	log        *logrus.Entry
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader sets a header on every request, e.g. an API key for a hosted provider.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("rpc url is not configured")
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		headers:    http.Header{},
		log:        logrus.NewEntry(logrus.StandardLogger()),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "rpc")
	return c, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) GetHealth(ctx context.Context) (*GetHealthResponse, error) {
	var resp GetHealthResponse
	if err := c.call(ctx, "getHealth", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetNetwork(ctx context.Context) (*GetNetworkResponse, error) {
	var resp GetNetworkResponse
	if err := c.call(ctx, "getNetwork", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetVersionInfo(ctx context.Context) (*GetVersionInfoResponse, error) {
	var resp GetVersionInfoResponse
	if err := c.call(ctx, "getVersionInfo", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetLatestLedger(ctx context.Context) (*GetLatestLedgerResponse, error) {
	var resp GetLatestLedgerResponse
	if err := c.call(ctx, "getLatestLedger", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (*GetLedgerEntriesResponse, error) {
	var resp GetLedgerEntriesResponse
	if err := c.call(ctx, "getLedgerEntries", GetLedgerEntriesRequest{Keys: keys}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SimulateTransaction(ctx context.Context, req *simulator.SimulationRequest) (*simulator.SimulationResponse, error) {
	var resp simulator.SimulationResponse
	if err := c.call(ctx, "simulateTransaction", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendTransaction(ctx context.Context, envelope string) (*SendTransactionResponse, error) {
	var resp SendTransactionResponse
	if err := c.call(ctx, "sendTransaction", SendTransactionRequest{Transaction: envelope}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	var resp GetTransactionResponse
	if err := c.call(ctx, "getTransaction", GetTransactionRequest{Hash: hash}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) call(ctx context.Context, method string, params, reply interface{}) error {
	ctx, span := c.tracer.Start(ctx, "rpc."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", method)),
	)
	defer span.End()

	start := time.Now()
	err := c.do(ctx, method, params, reply)
	log := c.log.WithFields(logrus.Fields{"method": method, "duration": time.Since(start)})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Debug("rpc call failed")
		return err
	}
	log.Debug("rpc call")
	return nil
}

func (c *Client) do(ctx context.Context, method string, params, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return errors.Wrapf(err, "rpc %s: encode request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "rpc %s", method)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "rpc %s", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("rpc %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		var rpcErr *json2.Error
		if errors.As(err, &rpcErr) {
			return &Error{Method: method, Code: int(rpcErr.Code), Message: rpcErr.Message, Data: rpcErr.Data}
		}
		return errors.Wrapf(err, "rpc %s: decode response", method)
	}
	return nil
}
