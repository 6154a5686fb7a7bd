package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/fetcher/client/interceptor"
	"github.com/adamwoolhether/fetcher/client/metrics"
	"github.com/adamwoolhether/fetcher/client/throttle"
)

// Client wraps the std-lib *http.Client with instance defaults and
// interceptor chains. Instances share no mutable state.
type Client struct {
	c          *http.Client
	jarC       *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *metrics.Collector
	defaults   Config
	jsonNumber bool
	requestID  bool

	// Interceptors holds the request and response handler chains.
	Interceptors Interceptors
}

// Interceptors groups a Client's two handler chains.
type Interceptors struct {
	Request  *interceptor.Registry[Config]
	Response *interceptor.Registry[*Response]
}

// Build creates a Client from the given options.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:          &http.Client{},
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("no-op tracer"),
		metrics:    opts.metrics,
		defaults:   opts.defaults,
		jsonNumber: opts.jsonNumber,
		requestID:  opts.requestID,
		Interceptors: Interceptors{
			Request:  interceptor.New[Config](),
			Response: interceptor.New[*Response](),
		},
	}

	if opts.client != nil {
		hc := *opts.client
		client.c = &hc
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	// Credentials are opt-in per call: the base client never carries a jar.
	jar := opts.jar
	if jar == nil && opts.client != nil {
		jar = opts.client.Jar
	}
	if jar != nil {
		jarC := *client.c
		jarC.Jar = jar
		client.jarC = &jarC
	}
	client.c.Jar = nil

	return client, nil
}

// Create builds an independent Client whose defaults are the given config.
func Create(defaults Config, optFns ...Option) (*Client, error) {
	return Build(append([]Option{WithDefaults(defaults)}, optFns...)...)
}

// Defaults returns a copy of the instance defaults.
func (c *Client) Defaults() Config {
	d := c.defaults
	d.Headers = d.Headers.Clone()
	return d
}

// Request runs the full pipeline for target. cfg may be nil.
//
//	resp, err := c.Request(ctx, client.URL("/users"), &client.Config{
//		Params: map[string]string{"page": "2"},
//	})
func (c *Client) Request(ctx context.Context, target Target, cfg *Config) (*Response, error) {
	return c.do(ctx, target, cfg)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, cfg *Config) (*Response, error) {
	return c.verb(ctx, http.MethodGet, url, nil, cfg)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, cfg *Config) (*Response, error) {
	return c.verb(ctx, http.MethodDelete, url, nil, cfg)
}

// Post issues a POST request carrying body.
func (c *Client) Post(ctx context.Context, url string, body any, cfg *Config) (*Response, error) {
	return c.verb(ctx, http.MethodPost, url, body, cfg)
}

// Put issues a PUT request carrying body.
func (c *Client) Put(ctx context.Context, url string, body any, cfg *Config) (*Response, error) {
	return c.verb(ctx, http.MethodPut, url, body, cfg)
}

// Patch issues a PATCH request carrying body.
func (c *Client) Patch(ctx context.Context, url string, body any, cfg *Config) (*Response, error) {
	return c.verb(ctx, http.MethodPatch, url, body, cfg)
}

func (c *Client) verb(ctx context.Context, method, url string, body any, cfg *Config) (*Response, error) {
	var call Config
	if cfg != nil {
		call = *cfg
	}
	call.Method = method
	if body != nil {
		call.Body = body
	}

	return c.do(ctx, URL(url), &call)
}
