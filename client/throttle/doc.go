// Package throttle provides an [http.RoundTripper] that rate-limits a
// client's outbound calls with a token bucket from [golang.org/x/time/rate].
//
// The client installs it beneath its interceptor pipeline when built with
// WithThrottle, so every call that reaches the transport first waits for a
// token:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//
// A waiting call gives up when its request context ends.
package throttle
