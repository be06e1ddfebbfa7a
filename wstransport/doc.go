// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wstransport adapts a WebSocket client connection to the
// non-blocking two-phase transport contract of [code.hybscloud.com/callmux].
//
// The socket is served by two goroutines. The writer drains a bounded SPSC
// queue filled by SendBuffer/PollSendReady and writes one text frame per
// entry; the reader pushes every received frame into a second bounded SPSC
// queue consumed by PollReceive. The owning goroutine never blocks: a full
// or empty queue surfaces as [code.hybscloud.com/iox.ErrWouldBlock].
//
// A normal close from the peer is reported as io.EOF. Any other read failure
// is reported once, followed by io.EOF.
package wstransport
