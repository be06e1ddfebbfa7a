// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package callmux multiplexes a JSON call/event protocol, such as the
// DevTools protocol used to drive a browser, over a single duplex
// message transport.
//
// # Architecture
//
//   - Transport: a non-blocking duplex channel with two-phase send (buffer, then flush).
//     [Pipe] is an in-memory pair over lock-free SPSC queues from [code.hybscloud.com/lfq];
//     package wstransport speaks WebSocket.
//   - Codec: [JSONCodec] encodes a [MethodCall] and decodes inbound envelopes into [Message]
//     values, resolving events through an [EventDecoder] such as a [Registry].
//   - Connection: owns the transport, a FIFO backlog of submitted calls, at most one
//     in-flight call and the call ID counter.
//
// # Stepping
//
// [Connection.Submit] only queues. All progress happens in [Connection.Advance], which
// never blocks: each call makes at most one unit of outbound progress and checks for at
// most one inbound frame. Advance returns [code.hybscloud.com/iox.ErrWouldBlock] when
// nothing arrived, io.EOF once the transport ended, and typed error items otherwise.
// [Connection.Next] and [Connection.All] wait between empty steps with adaptive backoff.
//
// A Connection has exactly one owner. Submit and Advance are not safe for concurrent use.
//
// # Example
//
//	conn, err := callmux.Connect(ctx, wsURL, callmux.WithEvents[callmux.RawEvent](callmux.RawEvents{}))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//	id, _ := conn.Submit("Page.navigate", "", map[string]string{"url": "https://example.com"})
//	for msg, err := range conn.All(ctx) {
//		if err != nil {
//			continue // decode or transport error item
//		}
//		if msg.IsResponse() && msg.Response.ID == id {
//			break
//		}
//	}
package callmux
