// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import "context"

// Transport is a duplex channel of framed messages with two-phase send.
//
// Every method is non-blocking. Not-ready is reported as
// [code.hybscloud.com/iox.ErrWouldBlock]; the caller retries on a later cycle.
//
//   - SendBuffer accepts a frame into the transport's send buffer. It does not
//     guarantee the frame reached the wire.
//   - PollSendReady returns nil when another frame may be buffered.
//   - PollFlush returns nil once every buffered frame reached the wire.
//   - PollReceive returns the next inbound frame, or io.EOF at end of stream.
//
// A Transport is driven by a single goroutine.
type Transport interface {
	SendBuffer(frame []byte) error
	PollSendReady() error
	PollFlush() error
	PollReceive() ([]byte, error)
	Close() error
}

// Dialer establishes a Transport to an endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Transport, error)
}

// DialFunc adapts a function to a Dialer.
type DialFunc func(ctx context.Context, endpoint string) (Transport, error)

// Dial implements Dialer.
func (f DialFunc) Dial(ctx context.Context, endpoint string) (Transport, error) {
	return f(ctx, endpoint)
}
