// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"bytes"
	"encoding/json"
)

// emptyParams is sent when a call carries no parameters.
var emptyParams = json.RawMessage(`{}`)

// MethodCall is one outbound remote call.
// A MethodCall is immutable once built by Submit.
type MethodCall struct {
	ID        CallID          `json:"id"`
	Method    string          `json:"method"`
	SessionID SessionID       `json:"sessionId,omitempty"`
	Params    json.RawMessage `json:"params"`
}

// marshalParams converts caller-supplied params to their wire form.
// nil becomes an empty object; raw JSON is validated and compacted.
func marshalParams(params any) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return emptyParams, nil
	case json.RawMessage:
		if len(p) == 0 {
			return emptyParams, nil
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, p); err != nil {
			return nil, err
		}
		return json.RawMessage(buf.Bytes()), nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		if bytes.Equal(b, []byte("null")) {
			return emptyParams, nil
		}
		return json.RawMessage(b), nil
	}
}
