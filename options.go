// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"github.com/rs/zerolog"
)

// SendHook observes every call whose frame the transport accepted.
// It runs on the goroutine driving Advance and must not block.
type SendHook func(call *MethodCall, frame []byte)

type options[T any] struct {
	codec        Codec[T]
	dialer       Dialer
	logger       zerolog.Logger
	sendHook     SendHook
	backlogLimit int
}

// Option configures a Connection.
type Option[T any] func(*options[T])

// WithCodec sets the codec. The default is a JSONCodec with no event
// decoder, which reports every event as a DecodeError; most callers pass
// WithEvents or WithCodec.
func WithCodec[T any](c Codec[T]) Option[T] {
	return func(o *options[T]) { o.codec = c }
}

// WithEvents sets a JSONCodec decoding events with events.
func WithEvents[T any](events EventDecoder[T]) Option[T] {
	return func(o *options[T]) { o.codec = NewJSONCodec(events) }
}

// WithDialer sets the dialer used by Connect.
func WithDialer[T any](d Dialer) Option[T] {
	return func(o *options[T]) { o.dialer = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger[T any](l zerolog.Logger) Option[T] {
	return func(o *options[T]) { o.logger = l }
}

// WithSendHook installs h. See SendHook.
func WithSendHook[T any](h SendHook) Option[T] {
	return func(o *options[T]) { o.sendHook = h }
}

// WithBacklogLimit bounds the number of calls waiting for transmission.
// Submit returns ErrBacklogFull when the limit is reached. n <= 0 means
// unbounded, which is the default.
func WithBacklogLimit[T any](n int) Option[T] {
	return func(o *options[T]) { o.backlogLimit = n }
}

func buildOptions[T any](opts []Option[T]) options[T] {
	o := options[T]{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec = NewJSONCodec[T](nil)
	}
	return o
}
