package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/adamwoolhether/fetcher/client/metrics"
	"github.com/adamwoolhether/fetcher/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tracer            trace.Tracer
	metrics           *metrics.Collector
	jar               http.CookieJar
	jsonNumber        bool
	requestID         bool
	defaults          Config
}

// WithClient replaces the default [http.Client] used by the [Client].
// The given client is copied, never mutated. Its Jar, if any, is only
// consulted by calls with WithCredentials set, unless [WithCookieJar]
// supplies another.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records a span for every call with the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithMetrics reports every call's outcome to the collector.
func WithMetrics(mc *metrics.Collector) Option {
	return func(c *options) error {
		c.metrics = mc
		return nil
	}
}

// WithCookieJar sets the jar consulted by calls with WithCredentials set.
// A nil jar creates an in-memory jar backed by the public suffix list.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *options) error {
		if jar == nil {
			j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
			if err != nil {
				return fmt.Errorf("creating cookie jar: %w", err)
			}
			jar = j
		}
		c.jar = jar
		return nil
	}
}

// WithJSONNumber decodes JSON numbers as [encoding/json.Number]
// instead of float64, preserving precision.
func WithJSONNumber() Option {
	return func(c *options) error {
		c.jsonNumber = true
		return nil
	}
}

// WithRequestID stamps each request with a random X-Request-Id header
// unless the caller already set one.
func WithRequestID() Option {
	return func(c *options) error {
		c.requestID = true
		return nil
	}
}

// WithDefaults merges cfg into the instance defaults.
func WithDefaults(cfg Config) Option {
	return func(c *options) error {
		c.defaults = merge(c.defaults, cfg)
		return nil
	}
}

// WithBaseURL sets the default BaseURL.
func WithBaseURL(baseURL string) Option {
	return WithDefaults(Config{BaseURL: baseURL})
}

// WithHeaders merges headers into the default headers.
func WithHeaders(headers map[string]string) Option {
	return WithDefaults(Config{Headers: headers})
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
