// Package http builds outbound HTTP clients for quote gateways.
package http

import (
	"net"
	"net/http"
	"time"
)

// UserAgent identifies this client to upstream gateways.
const UserAgent = "quote_backend/1.0"

// NewHTTPClient creates a client for external API calls.
//
// http.DefaultClient has no timeout, so callers always go through here.
// The transport uses a short dial timeout, keeps idle connections for reuse,
// honours HTTP_PROXY and stamps every request with UserAgent.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &userAgentTransport{next: t}}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return u.next.RoundTrip(r)
}
