// Package client provides a configurable HTTP request pipeline built on
// [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options, or [Create]
// to start from a set of instance defaults:
//
//	c, err := client.Create(client.Config{BaseURL: "https://api.example.com"},
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Making Requests
//
// Every call merges the instance defaults, the call target and the
// call-site [Config] into a single descriptor, then runs it through the
// pipeline:
//
//	resp, err := c.Get(ctx, "/users", &client.Config{
//		Params: map[string]string{"page": "2"},
//	})
//
// [Client.Request] accepts either a [URL] or a full [Config] as target.
//
// # Interceptors
//
// Request interceptors see the resolved descriptor before it is sent and
// may return a changed one. Response interceptors see the envelope after
// status classification and before schema validation. Both chains run in
// registration order, and a handle returned by Use can be ejected later:
//
//	id := c.Interceptors.Request.Use(func(ctx context.Context, cfg client.Config) (client.Config, error) {
//		cfg.Headers.Set("Authorization", "Bearer "+token)
//		return cfg, nil
//	}, nil)
//	defer c.Interceptors.Request.Eject(id)
//
// # Errors
//
// A call fails with one of:
//
//   - [*UsageError] when the descriptor cannot be sent. Nothing reaches
//     the network.
//   - [*StatusError] when the response status fails classification.
//   - [*SchemaValidationError] when JSON data fails the call's schema.
//   - an error wrapping [ErrTransport] when the round trip itself fails.
//
// # Schemas
//
// Set [Config.Schema] to validate and convert JSON response data. On
// success the envelope's Data holds the validator's output:
//
//	resp, err := c.Get(ctx, "/users/7", &client.Config{Schema: schema.Struct[User]()})
//	u := resp.Data.(User)
//
// See [github.com/adamwoolhether/fetcher/client/schema].
package client
