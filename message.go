// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"encoding/json"

	"code.hybscloud.com/kont"
)

// Kind tags the variant held by a Message.
type Kind uint8

const (
	// KindEvent is an unsolicited notification from the peer.
	KindEvent Kind = iota + 1
	// KindResponse is the reply to a previously submitted call.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindResponse:
		return "response"
	}
	return "invalid"
}

// Message is one decoded inbound envelope.
// For KindEvent, Method, SessionID and Event are set.
// For KindResponse, Response is set.
type Message[T any] struct {
	Kind      Kind
	Method    string
	SessionID SessionID
	Event     T
	Response  *Response
}

// IsEvent reports whether m carries an event.
func (m Message[T]) IsEvent() bool { return m.Kind == KindEvent }

// IsResponse reports whether m carries a call result.
func (m Message[T]) IsResponse() bool { return m.Kind == KindResponse }

// Response is the result of a call, correlated by ID.
// Result is Left on a protocol error and Right with the raw result payload
// on success.
type Response struct {
	ID        CallID
	SessionID SessionID
	Result    kont.Either[*ProtocolError, json.RawMessage]
}

// Err returns the protocol error of r, or nil on success.
func (r *Response) Err() error {
	if perr, ok := r.Result.GetLeft(); ok {
		return perr
	}
	return nil
}

// Decode unmarshals a successful result into v.
// It returns the protocol error instead when the call failed.
func (r *Response) Decode(v any) error {
	if perr, ok := r.Result.GetLeft(); ok {
		return perr
	}
	raw, _ := r.Result.GetRight()
	return json.Unmarshal(raw, v)
}

// RawEvent is an event kept in wire form, for open event sets.
type RawEvent struct {
	Method string
	Params json.RawMessage
}
