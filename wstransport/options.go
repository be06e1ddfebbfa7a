// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wstransport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by Dial and New.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 15 * time.Second
	DefaultCapacity         = 64
)

type config struct {
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	readLimit        int64
	capacity         int
	header           http.Header
	logger           zerolog.Logger
}

func defaultConfig() config {
	return config{
		handshakeTimeout: DefaultHandshakeTimeout,
		writeTimeout:     DefaultWriteTimeout,
		capacity:         DefaultCapacity,
		logger:           zerolog.Nop(),
	}
}

// Option configures a Transport.
type Option func(*config)

// WithHandshakeTimeout bounds the opening handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *config) { c.handshakeTimeout = d }
}

// WithWriteTimeout bounds each frame write. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithReadLimit sets the maximum size of an inbound frame in bytes.
// Zero means no limit.
func WithReadLimit(n int64) Option {
	return func(c *config) { c.readLimit = n }
}

// WithCapacity sets the capacity of each frame queue.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithHeader sets extra request headers for the opening handshake.
func WithHeader(h http.Header) Option {
	return func(c *config) { c.header = h }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}
