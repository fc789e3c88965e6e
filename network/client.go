// Package network provides the shared HTTP client used for playlist and release lookups.
package network

import (
	"context"
	"net/http"
	"time"

	"github.com/scrubline/scrubline/constant"
)

// Client is the singleton HTTP client shared across the application.
// https requests present a browser TLS fingerprint, plain http goes through a tuned stdlib transport.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: NewTransport(),
}

// newPlainTransport initializes a tuned http.Transport with pool and timeout parameters.
func newPlainTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// Get issues a GET request carrying the default browser headers.
func Get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if client == nil {
		client = Client
	}

	return client.Do(req)
}
