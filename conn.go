// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"context"
	"errors"
	"io"
	"iter"

	"code.hybscloud.com/iox"
	"github.com/rs/zerolog"
)

// Connection multiplexes outbound calls and inbound messages over one
// Transport.
//
// All progress happens in Advance. Submit only queues. A Connection is not
// safe for concurrent use: Submit, Advance and Close must be called from
// the goroutine that owns it.
type Connection[T any] struct {
	transport Transport
	codec     Codec[T]
	log       zerolog.Logger
	sendHook  SendHook
	limit     int

	ids         idAllocator
	backlog     backlog
	inFlight    MethodCall
	hasInFlight bool
	needsFlush  bool
	done        bool
	closed      bool
}

// Connect dials endpoint and returns an empty Connection over the
// resulting transport. The default dialer speaks WebSocket; see WithDialer.
func Connect[T any](ctx context.Context, endpoint string, opts ...Option[T]) (*Connection[T], error) {
	o := buildOptions(opts)
	d := o.dialer
	if d == nil {
		d = webSocketDialer(o.logger)
	}
	tr, err := d.Dial(ctx, endpoint)
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: err}
	}
	o.logger.Debug().Str("component", "callmux").Str("endpoint", endpoint).Msg("connected")
	return newConnection(tr, o), nil
}

// New returns a Connection over an established transport.
func New[T any](tr Transport, opts ...Option[T]) *Connection[T] {
	return newConnection(tr, buildOptions(opts))
}

func newConnection[T any](tr Transport, o options[T]) *Connection[T] {
	return &Connection[T]{
		transport: tr,
		codec:     o.codec,
		log:       o.logger.With().Str("component", "callmux").Logger(),
		sendHook:  o.sendHook,
		limit:     o.backlogLimit,
	}
}

// Submit queues a call to method and returns its ID.
//
// params is marshalled to JSON immediately; nil sends an empty object and a
// json.RawMessage is sent as is. Submit never touches the transport, so it
// may be called between any two Advance steps.
func (c *Connection[T]) Submit(method string, sessionID SessionID, params any) (CallID, error) {
	if c.done {
		return 0, ErrClosed
	}
	if c.limit > 0 && c.backlog.len() >= c.limit {
		return 0, ErrBacklogFull
	}
	raw, err := marshalParams(params)
	if err != nil {
		return 0, &EncodeError{Method: method, Err: err}
	}
	id := c.ids.allocate()
	c.backlog.push(MethodCall{
		ID:        id,
		Method:    method,
		SessionID: sessionID,
		Params:    raw,
	})
	return id, nil
}

// Advance makes at most one unit of outbound progress and checks for at
// most one inbound message. It never blocks.
//
// It returns a message, or:
//   - iox.ErrWouldBlock when nothing was received this cycle,
//   - io.EOF once the transport reached end of stream, and on every later call,
//   - an *EncodeError, *SendError, *DecodeError or *ReceiveError item.
//
// Error items do not end the sequence.
func (c *Connection[T]) Advance() (Message[T], error) {
	var zero Message[T]
	if c.done {
		return zero, io.EOF
	}
	if err := c.advanceSend(); err != nil {
		return zero, err
	}
	return c.advanceRecv()
}

// advanceSend drives the two-phase send of the backlog head.
func (c *Connection[T]) advanceSend() error {
	if c.needsFlush {
		err := c.transport.PollFlush()
		switch {
		case err == nil:
			c.needsFlush = false
		case iox.IsWouldBlock(err):
			return nil
		default:
			c.needsFlush = false
			return &SendError{Op: OpFlush, Err: err}
		}
	}

	if !c.hasInFlight {
		call, ok := c.backlog.pop()
		if ok {
			frame, err := c.codec.Encode(&call)
			if err != nil {
				c.log.Warn().Err(err).Uint64("id", call.ID).Str("method", call.Method).Msg("dropping call")
				return &EncodeError{Method: call.Method, ID: call.ID, Err: err}
			}
			if err := c.transport.SendBuffer(frame); err != nil {
				return &SendError{Op: OpBuffer, ID: call.ID, Method: call.Method, Err: err}
			}
			c.inFlight = call
			c.hasInFlight = true
			c.log.Debug().Uint64("id", call.ID).Str("method", call.Method).Int("bytes", len(frame)).Msg("send")
			if c.sendHook != nil {
				c.sendHook(&c.inFlight, frame)
			}
		}
	}

	if c.hasInFlight {
		err := c.transport.PollSendReady()
		switch {
		case err == nil:
			c.needsFlush = true
			c.clearInFlight()
		case iox.IsWouldBlock(err):
		default:
			call := c.inFlight
			c.clearInFlight()
			return &SendError{Op: OpReady, ID: call.ID, Method: call.Method, Err: err}
		}
	}
	return nil
}

// advanceRecv polls the transport for one inbound frame.
func (c *Connection[T]) advanceRecv() (Message[T], error) {
	var zero Message[T]
	frame, err := c.transport.PollReceive()
	switch {
	case err == nil:
	case iox.IsWouldBlock(err):
		return zero, iox.ErrWouldBlock
	case errors.Is(err, io.EOF):
		c.terminate()
		return zero, io.EOF
	default:
		return zero, &ReceiveError{Err: err}
	}

	msg, err := c.codec.Decode(frame)
	if err != nil {
		var derr *DecodeError
		if !errors.As(err, &derr) {
			err = &DecodeError{Frame: frame, Err: err}
		}
		c.log.Warn().Err(err).Msg("undecodable frame")
		return zero, err
	}
	return msg, nil
}

func (c *Connection[T]) clearInFlight() {
	c.inFlight = MethodCall{}
	c.hasInFlight = false
}

// terminate ends the sequence after end of stream and releases the transport.
func (c *Connection[T]) terminate() {
	if n := c.backlog.len(); n > 0 || c.hasInFlight {
		c.log.Debug().Int("pending", n).Bool("in_flight", c.hasInFlight).Msg("end of stream with unsent calls")
	}
	c.done = true
	c.backlog.reset()
	c.clearInFlight()
	c.needsFlush = false
	if !c.closed {
		c.closed = true
		if err := c.transport.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close transport")
		}
	}
}

// Next advances c until it yields a message, an error item or io.EOF,
// backing off between empty cycles. It returns ctx.Err() when ctx ends first.
func (c *Connection[T]) Next(ctx context.Context) (Message[T], error) {
	var bo iox.Backoff
	for {
		msg, err := c.Advance()
		if !iox.IsWouldBlock(err) {
			return msg, err
		}
		if cerr := ctx.Err(); cerr != nil {
			return msg, cerr
		}
		bo.Wait()
	}
}

// All returns the message sequence of c. Error items are yielded and the
// sequence continues; it ends at end of stream, when the consumer stops,
// or after yielding ctx.Err().
func (c *Connection[T]) All(ctx context.Context) iter.Seq2[Message[T], error] {
	return func(yield func(Message[T], error) bool) {
		for {
			msg, err := c.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if cerr := ctx.Err(); cerr != nil && err == cerr {
				yield(msg, err)
				return
			}
			if !yield(msg, err) {
				return
			}
		}
	}
}

// Close closes the transport and ends the sequence. Calls not yet sent are
// discarded. Close is idempotent.
func (c *Connection[T]) Close() error {
	c.done = true
	c.backlog.reset()
	c.clearInFlight()
	c.needsFlush = false
	if c.closed {
		return nil
	}
	c.closed = true
	return c.transport.Close()
}

// Pending returns the number of calls waiting for transmission, excluding
// the in-flight call.
func (c *Connection[T]) Pending() int { return c.backlog.len() }

// InFlight returns the call handed to the transport and not yet confirmed
// ready, if any.
func (c *Connection[T]) InFlight() (MethodCall, bool) { return c.inFlight, c.hasInFlight }

// FlushPending reports whether a buffered frame awaits flush confirmation.
func (c *Connection[T]) FlushPending() bool { return c.needsFlush }

// Done reports whether the sequence ended.
func (c *Connection[T]) Done() bool { return c.done }
