// Package http holds HTTP plumbing shared across features.
package http

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultTimeout      = 10 * time.Second
	dialTimeout         = 5 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// NewHTTPClient returns the client used to post account mails to the relay webhook.
// timeout bounds a whole delivery attempt (MAIL_TIMEOUT); zero or less falls back to ten seconds
// so a stalled relay can never hang a password reset request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// the relay is a single host
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
