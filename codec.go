// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"bytes"
	"encoding/json"
	"errors"

	"code.hybscloud.com/kont"
)

// Codec converts calls to frames and frames to messages.
type Codec[T any] interface {
	Encode(call *MethodCall) ([]byte, error)
	Decode(frame []byte) (Message[T], error)
}

var (
	errEmptyMethod    = errors.New("empty method name")
	errNotObject      = errors.New("envelope is not a JSON object")
	errNoDiscriminant = errors.New("envelope has neither id nor method")
	nullResult        = json.RawMessage("null")
)

// envelope is the union of every inbound wire shape.
type envelope struct {
	ID        *CallID         `json:"id"`
	Method    string          `json:"method"`
	SessionID SessionID       `json:"sessionId"`
	Params    json.RawMessage `json:"params"`
	Result    json.RawMessage `json:"result"`
	Error     *ProtocolError  `json:"error"`
}

// JSONCodec is the JSON text-frame codec.
// Events are decoded through Events.
type JSONCodec[T any] struct {
	Events EventDecoder[T]
}

// NewJSONCodec returns a JSONCodec decoding events with events.
func NewJSONCodec[T any](events EventDecoder[T]) *JSONCodec[T] {
	return &JSONCodec[T]{Events: events}
}

// Encode implements Codec.
func (c *JSONCodec[T]) Encode(call *MethodCall) ([]byte, error) {
	if call.Method == "" {
		return nil, errEmptyMethod
	}
	wire := *call
	if len(wire.Params) == 0 {
		wire.Params = emptyParams
	}
	return json.Marshal(&wire)
}

// Decode implements Codec.
// An object carrying an id is a response; an object carrying only a method
// is an event.
func (c *JSONCodec[T]) Decode(frame []byte) (Message[T], error) {
	var msg Message[T]
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return msg, &DecodeError{Frame: frame, Err: errNotObject}
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return msg, &DecodeError{Frame: frame, Err: err}
	}
	switch {
	case env.ID != nil:
		resp := &Response{ID: *env.ID, SessionID: env.SessionID}
		if env.Error != nil {
			resp.Result = kont.Left[*ProtocolError, json.RawMessage](env.Error)
		} else {
			result := env.Result
			if len(result) == 0 {
				result = nullResult
			}
			resp.Result = kont.Right[*ProtocolError, json.RawMessage](result)
		}
		msg.Kind = KindResponse
		msg.Response = resp
		return msg, nil
	case env.Method != "":
		if c.Events == nil {
			return msg, &DecodeError{Frame: frame, Err: ErrUnknownEvent}
		}
		ev, err := c.Events.DecodeEvent(env.Method, env.Params)
		if err != nil {
			return msg, &DecodeError{Frame: frame, Err: err}
		}
		msg.Kind = KindEvent
		msg.Method = env.Method
		msg.SessionID = env.SessionID
		msg.Event = ev
		return msg, nil
	}
	return msg, &DecodeError{Frame: frame, Err: errNoDiscriminant}
}
