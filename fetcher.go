// Package fetcher exposes the client builder.
//
// See [github.com/adamwoolhether/fetcher/client] for the request pipeline.
package fetcher

import (
	"github.com/adamwoolhether/fetcher/client"
)

// New instantiates a new *client.Client with the provided options.
// Each call returns an independent instance.
func New(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// Create instantiates a new *client.Client whose defaults are the given config.
func Create(defaults client.Config, opts ...client.Option) (*client.Client, error) {
	return client.Create(defaults, opts...)
}
