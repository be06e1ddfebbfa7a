// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

// backlog is the FIFO of calls waiting for transmission.
// Position head is always the next call to send.
type backlog struct {
	calls []MethodCall
	head  int
}

func (b *backlog) len() int { return len(b.calls) - b.head }

func (b *backlog) push(call MethodCall) {
	if b.head > 0 && b.head == len(b.calls) {
		b.calls = b.calls[:0]
		b.head = 0
	}
	b.calls = append(b.calls, call)
}

func (b *backlog) pop() (MethodCall, bool) {
	if b.head == len(b.calls) {
		return MethodCall{}, false
	}
	call := b.calls[b.head]
	b.calls[b.head] = MethodCall{}
	b.head++
	// Reclaim the consumed prefix once it dominates the slice.
	if b.head >= 32 && b.head*2 >= len(b.calls) {
		n := copy(b.calls, b.calls[b.head:])
		clear(b.calls[n:])
		b.calls = b.calls[:n]
		b.head = 0
	}
	return call, true
}

func (b *backlog) reset() {
	clear(b.calls)
	b.calls = nil
	b.head = 0
}
