// Package httpclient builds the HTTP client used for Telegram API calls,
// with transport tuning and retries for transient network failures.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	// clientTimeoutSlack is added on top of the long poll timeout so the
	// client does not cut off a poll the server is still holding open.
	clientTimeoutSlack = 20 * time.Second

	defaultRetryAttempts = 3
	defaultRetryBackoff  = 2 * time.Second
)

// New returns an HTTP client sized for long polling with pollTimeout.
// A zero pollTimeout falls back to the default client timeout.
func New(pollTimeout time.Duration) *http.Client {
	timeout := defaultClientTimeout
	if pollTimeout > 0 {
		timeout = pollTimeout + clientTimeoutSlack
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: defaultRetryAttempts,
			backoff:    defaultRetryBackoff,
		},
	}
}
