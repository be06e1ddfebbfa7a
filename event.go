// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"encoding/json"
	"fmt"
)

// EventDecoder decodes the params of an event into the event type T.
// It is the capability a Connection needs to surface events.
type EventDecoder[T any] interface {
	DecodeEvent(method string, params json.RawMessage) (T, error)
}

// EventFunc decodes the params of one event method.
type EventFunc[T any] func(params json.RawMessage) (T, error)

// Registry maps event method names to decoders.
// A Registry is populated before use and read-only afterwards.
type Registry[T any] struct {
	decoders map[string]EventFunc[T]
	fallback func(method string, params json.RawMessage) (T, error)
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{decoders: make(map[string]EventFunc[T])}
}

// Register binds method to fn, replacing any earlier binding.
func (r *Registry[T]) Register(method string, fn EventFunc[T]) *Registry[T] {
	r.decoders[method] = fn
	return r
}

// Fallback sets the decoder used for methods without a binding.
func (r *Registry[T]) Fallback(fn func(method string, params json.RawMessage) (T, error)) *Registry[T] {
	r.fallback = fn
	return r
}

// DecodeEvent implements EventDecoder.
func (r *Registry[T]) DecodeEvent(method string, params json.RawMessage) (T, error) {
	if fn, ok := r.decoders[method]; ok {
		return fn(params)
	}
	if r.fallback != nil {
		return r.fallback(method, params)
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrUnknownEvent, method)
}

// RegisterEvent binds method to a decoder that unmarshals params into E
// and converts the result to T. Typical T is an interface implemented by
// every event struct.
func RegisterEvent[E, T any](r *Registry[T], method string, conv func(E) T) *Registry[T] {
	return r.Register(method, func(params json.RawMessage) (T, error) {
		var ev E
		if len(params) > 0 {
			if err := json.Unmarshal(params, &ev); err != nil {
				var zero T
				return zero, fmt.Errorf("event %s: %w", method, err)
			}
		}
		return conv(ev), nil
	})
}

// RawEvents decodes every event as a RawEvent.
type RawEvents struct{}

// DecodeEvent implements EventDecoder.
func (RawEvents) DecodeEvent(method string, params json.RawMessage) (RawEvent, error) {
	return RawEvent{Method: method, Params: params}, nil
}
