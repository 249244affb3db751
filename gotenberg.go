// Package gotenberg exposes the Gotenberg client builder.
package gotenberg

import (
	"github.com/adamwoolhether/gotenberg/client"
)

// NewClient instantiates a new *Client for the Gotenberg instance at baseURL.
// If not specified, the default http.Client and http.Transport are used.
func NewClient(baseURL string, opts ...client.Option) (*client.Client, error) {
	return client.Build(baseURL, opts...)
}
