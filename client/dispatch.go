package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// do wraps one call in a span and reports its outcome.
func (c *Client) do(ctx context.Context, target Target, cfg *Config) (*Response, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "client.request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	resp, desc, err := c.pipeline(ctx, target, cfg)
	c.observe(span, desc, resp, err, time.Since(start))

	return resp, err
}

// pipeline runs resolve, request interceptors, transport, classification,
// response interceptors and schema validation in that order. The first
// failing step ends the call.
func (c *Client) pipeline(ctx context.Context, target Target, cfg *Config) (*Response, Config, error) {
	desc, err := c.resolve(target, cfg)
	if err != nil {
		return nil, Config{}, err
	}

	desc, err = c.Interceptors.Request.Run(ctx, desc, merge)
	if err != nil {
		c.Interceptors.Request.Reject(ctx, err)
		return nil, desc, fmt.Errorf("request phase: %w", err)
	}

	desc.Method = strings.ToUpper(desc.Method)
	if err := checkDescriptor(desc); err != nil {
		return nil, desc, err
	}

	req, err := c.newRequest(ctx, desc)
	if err != nil {
		return nil, desc, err
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.exec(req, desc)
	if err != nil {
		c.Interceptors.Response.Reject(ctx, err)
		return nil, desc, err
	}

	resp, err = c.Interceptors.Response.Run(ctx, resp, keepEnvelope)
	if err != nil {
		return nil, desc, fmt.Errorf("response phase: %w", err)
	}

	if desc.ResponseType == ResponseJSON && desc.Schema != nil {
		data, err := desc.Schema.Validate(ctx, resp.Data)
		if err != nil {
			return nil, desc, newSchemaError(desc, resp.Data, err)
		}
		resp.Data = data
	}

	return resp, desc, nil
}

// exec sends req and builds the envelope, rejecting statuses that fail
// classification.
func (c *Client) exec(req *http.Request, desc Config) (*Response, error) {
	hc := c.c
	if desc.WithCredentials && c.jarC != nil {
		hc = c.jarC
	}

	c.logger.Debug("sending request", "method", req.Method, "url", req.URL.String())

	httpResp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: exec http do: %w", ErrTransport, err)
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	resp := &Response{
		Config: desc,
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Data:   c.deserialize(desc.ResponseType, body),
	}

	if !classify(desc, resp.Status) {
		c.logger.Debug("response status rejected", "status", resp.Status, "url", req.URL.String())

		if len(body) > maxErrBodySize {
			body = body[:maxErrBodySize]
		}

		sentinel := ErrUnexpectedStatusCode
		if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
			sentinel = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
		}

		return nil, &StatusError{
			StatusCode: resp.Status,
			Body:       string(body),
			Response:   resp,
			Err:        sentinel,
		}
	}

	return resp, nil
}

// classify applies the descriptor's status predicate, or the 2xx range.
func classify(desc Config, status int) bool {
	if desc.ValidateStatus != nil {
		return desc.ValidateStatus(status)
	}

	return status >= 200 && status <= 299
}

// deserialize decodes body per rt. A body that does not parse leaves the
// data absent rather than failing the call.
func (c *Client) deserialize(rt ResponseType, body []byte) any {
	if rt == ResponseText {
		return string(body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	d := json.NewDecoder(bytes.NewReader(body))
	if c.jsonNumber {
		d.UseNumber()
	}

	var v any
	if err := d.Decode(&v); err != nil {
		c.logger.Debug("response body not decoded", "error", err)
		return nil
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		c.logger.Debug("response body not decoded", "error", "trailing data")
		return nil
	}

	return v
}

func keepEnvelope(cur, next *Response) *Response {
	if next == nil {
		return cur
	}

	return next
}

// observe records the call outcome on the span and the metrics collector.
func (c *Client) observe(span trace.Span, desc Config, resp *Response, err error, took time.Duration) {
	status := 0
	if resp != nil {
		status = resp.Status
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		status = serr.StatusCode
	}

	host := endpointHost(desc)
	kind := errorKind(err)

	span.SetAttributes(
		attribute.String("http.request.method", desc.Method),
		attribute.String("server.address", host),
		attribute.Int("http.response.status_code", status),
		attribute.String("fetcher.outcome", kind),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.metrics.Observe(desc.Method, host, status, kind, took)

	if err != nil {
		c.logger.Debug("request failed", "method", desc.Method, "host", host, "outcome", kind, "error", err)
		return
	}
	c.logger.Debug("request completed", "method", desc.Method, "host", host, "status", status, "took", took.String())
}

func endpointHost(desc Config) string {
	raw := desc.URL
	if desc.BaseURL != "" && !isAbsolute(raw) {
		raw = desc.BaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return u.Host
}
