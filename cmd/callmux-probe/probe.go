// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"code.hybscloud.com/callmux"
	"github.com/rs/zerolog"
)

// errNoResponse is returned when the peer ends the stream before replying.
var errNoResponse = errors.New("connection closed before the response arrived")

// line is one JSON line written to the output.
type line struct {
	Kind      string                 `json:"kind"`
	ID        *callmux.CallID        `json:"id,omitempty"`
	Method    string                 `json:"method,omitempty"`
	SessionID string                 `json:"sessionId,omitempty"`
	Params    json.RawMessage        `json:"params,omitempty"`
	Result    json.RawMessage        `json:"result,omitempty"`
	Error     *callmux.ProtocolError `json:"error,omitempty"`
}

// probe connects, submits one call and writes messages to out until the
// call's response arrives. It returns the response's protocol error, if any.
func probe(ctx context.Context, cfg Config, method string, dialer callmux.Dialer, logger zerolog.Logger, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := []callmux.Option[callmux.RawEvent]{
		callmux.WithEvents[callmux.RawEvent](callmux.RawEvents{}),
		callmux.WithLogger[callmux.RawEvent](logger),
	}
	if dialer != nil {
		opts = append(opts, callmux.WithDialer[callmux.RawEvent](dialer))
	}
	conn, err := callmux.Connect(ctx, cfg.Endpoint, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug().Err(err).Msg("close connection")
		}
	}()

	var params any
	if cfg.Params != "" {
		params = json.RawMessage(cfg.Params)
	}
	id, err := conn.Submit(method, cfg.Session, params)
	if err != nil {
		return err
	}
	logger.Info().Uint64("id", id).Str("method", method).Msg("submitted")

	enc := json.NewEncoder(out)
	for msg, err := range conn.All(ctx) {
		if err != nil {
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return fmt.Errorf("waiting for %s (id %d): %w", method, id, err)
			}
			var derr *callmux.DecodeError
			if errors.As(err, &derr) {
				logger.Warn().Err(err).Msg("skipping frame")
				continue
			}
			return err
		}
		switch {
		case msg.IsEvent():
			if !cfg.Events {
				continue
			}
			if err := enc.Encode(line{
				Kind:      msg.Kind.String(),
				Method:    msg.Method,
				SessionID: msg.SessionID,
				Params:    msg.Event.Params,
			}); err != nil {
				return err
			}
		case msg.Response.ID == id:
			resp := msg.Response
			l := line{Kind: msg.Kind.String(), ID: &resp.ID, SessionID: resp.SessionID}
			if perr, ok := resp.Result.GetLeft(); ok {
				l.Error = perr
			} else {
				l.Result, _ = resp.Result.GetRight()
			}
			if err := enc.Encode(l); err != nil {
				return err
			}
			return resp.Err()
		default:
			logger.Debug().Uint64("id", msg.Response.ID).Msg("ignoring unrelated response")
		}
	}
	return errNoResponse
}
