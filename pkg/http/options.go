package http

import (
	"net/http"
	"time"
)

type HttpOpts func(*httpConfig)

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if keepAlive > 0 {
			c.keepAlive = keepAlive
		}
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if timeout > 0 {
			c.responseHeaderTimeout = timeout
		}
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if timeout > 0 {
			c.idleConnTimeout = timeout
		}
	}
}

// WithLongPoll sizes the client for requests the server holds open for up
// to hold, such as Bot API getUpdates.
func WithLongPoll(hold time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.requestTimeout = hold + longPollGrace
		c.responseHeaderTimeout = hold + longPollGrace
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.wrappers = append(c.wrappers, transport)
	}
}

// WithCookieJar makes the client store and replay cookies through jar.
func WithCookieJar(jar http.CookieJar) HttpOpts {
	return func(c *httpConfig) {
		c.jar = jar
	}
}
