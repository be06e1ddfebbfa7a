// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux_test

import (
	"testing"

	"code.hybscloud.com/callmux"
)

// BenchmarkSubmitAdvance measures one call through submit, encode and
// the two-phase send over a Pipe.
func BenchmarkSubmitAdvance(b *testing.B) {
	b.ReportAllocs()
	a, peer := callmux.Pipe(64)
	c := newConn(a)
	params := map[string]string{"url": "https://example.com"}
	for b.Loop() {
		c.Submit("Page.navigate", "", params)
		c.Advance()
		peer.PollReceive()
	}
}

// BenchmarkDecodeEvent measures decoding one registered event.
func BenchmarkDecodeEvent(b *testing.B) {
	b.ReportAllocs()
	codec := callmux.NewJSONCodec[pageEvent](pageEvents())
	frame := []byte(`{"method":"Page.loadEventFired","params":{"timestamp":1234.5}}`)
	for b.Loop() {
		if _, err := codec.Decode(frame); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecodeResponse measures decoding one successful response.
func BenchmarkDecodeResponse(b *testing.B) {
	b.ReportAllocs()
	codec := callmux.NewJSONCodec[pageEvent](pageEvents())
	frame := []byte(`{"id":42,"result":{"frameId":"F1","loaderId":"L1"}}`)
	for b.Loop() {
		if _, err := codec.Decode(frame); err != nil {
			b.Fatal(err)
		}
	}
}
