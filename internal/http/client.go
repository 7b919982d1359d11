// Package http builds the tuned net/http client shared by all API calls.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
)

// Transport tuning for a client that interleaves small JSON calls with
// large multipart uploads and full-body downloads.
const (
	idleConnTimeout       = 90 * time.Second
	tlsHandshakeTimeout   = 30 * time.Second
	expectContinueTimeout = 5 * time.Second
	responseHeaderTimeout = 60 * time.Second
	maxIdleConns          = 64
	maxIdleConnsPerHost   = 16
)

// ConfigureHTTPClient creates the HTTP client used for all backend traffic.
//
// No overall client timeout is set: file transfers can legitimately run for
// a long time, so deadlines come from the per-request context. The response
// header timeout still bounds how long a stalled server can hold a request
// before it surfaces as a transport error.
//
// Proxy settings are honored from the environment (HTTP_PROXY, HTTPS_PROXY,
// NO_PROXY). HTTP/2 is enabled by default and can be switched off with
// DISABLE_HTTP2=true for debugging proxy incompatibilities.
func ConfigureHTTPClient() (*nethttp.Client, error) {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	return &nethttp.Client{Transport: tr}, nil
}
