package utils

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates a pooled HTTP client. One instance is shared by the
// uploader, the attachment downloads and the points API calls of a bot, and
// released with ReleaseHTTPClient on shutdown.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ReleaseHTTPClient drops the client's idle connections.
func ReleaseHTTPClient(client *http.Client) {
	if transport, ok := client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
