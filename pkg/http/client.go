package http

import (
	"net"
	"net/http"
	"time"
)

const (
	idlePoolSize    = 100
	idlePerHostSize = 10

	// longPollGrace keeps the client deadline past the server-side hold.
	longPollGrace = 10 * time.Second
)

// TransportFunc wraps a round tripper, see WithTransport.
type TransportFunc func(http.RoundTripper) http.RoundTripper

type httpConfig struct {
	dialTimeout           time.Duration
	requestTimeout        time.Duration
	keepAlive             time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	wrappers              []TransportFunc
	jar                   http.CookieJar
}

func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		dialTimeout:           30 * time.Second,
		requestTimeout:        30 * time.Second,
		keepAlive:             90 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
		idleConnTimeout:       90 * time.Second,
	}
}

// NewClient builds a pooled *http.Client. Each WithTransport wrapper
// encloses the ones added before it.
func NewClient(opts ...HttpOpts) *http.Client {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: cfg.roundTripper(),
		Jar:       cfg.jar,
	}
}

func (cfg *httpConfig) roundTripper() http.RoundTripper {
	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          idlePoolSize,
		MaxIdleConnsPerHost:   idlePerHostSize,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}

	for _, wrap := range cfg.wrappers {
		rt = wrap(rt)
	}
	return rt
}
