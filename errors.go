// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Submit after the Connection was closed
	// or its transport reached end of stream.
	ErrClosed = errors.New("callmux: connection closed")

	// ErrBacklogFull is returned by Submit when a backlog limit is set
	// and that many calls are already waiting for transmission.
	ErrBacklogFull = errors.New("callmux: backlog full")

	// ErrUnknownEvent is wrapped by a DecodeError when an event method
	// has no registered decoder and the registry has no fallback.
	ErrUnknownEvent = errors.New("callmux: unknown event method")
)

// ConnectError reports that the transport could not be established.
// No Connection is produced.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("callmux: connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// EncodeError reports a call that could not be serialized.
// The call is not queued (from Submit) or is dropped (from Advance).
type EncodeError struct {
	Method string
	ID     CallID
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("callmux: encode %s (id %d): %v", e.Method, e.ID, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// SendOp names the transport phase a SendError happened in.
type SendOp string

const (
	OpBuffer SendOp = "buffer"
	OpReady  SendOp = "ready"
	OpFlush  SendOp = "flush"
)

// SendError reports a transport failure on the outbound path.
// ID and Method are zero for flush failures, which are not tied to one call.
type SendError struct {
	Op     SendOp
	ID     CallID
	Method string
	Err    error
}

func (e *SendError) Error() string {
	if e.Op == OpFlush {
		return fmt.Sprintf("callmux: send %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("callmux: send %s %s (id %d): %v", e.Op, e.Method, e.ID, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// DecodeError reports an inbound frame that is not a valid envelope.
// It does not terminate the message sequence.
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("callmux: decode frame (%d bytes): %v", len(e.Frame), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReceiveError reports a transport-level read failure.
type ReceiveError struct {
	Err error
}

func (e *ReceiveError) Error() string {
	return fmt.Sprintf("callmux: receive: %v", e.Err)
}

func (e *ReceiveError) Unwrap() error { return e.Err }

// ProtocolError is the error object of a failed call, as sent by the peer.
type ProtocolError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ProtocolError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("callmux: protocol error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("callmux: protocol error %d: %s", e.Code, e.Message)
}
