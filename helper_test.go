// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux_test

import (
	"encoding/json"
	"io"
	"testing"

	"code.hybscloud.com/callmux"
	"code.hybscloud.com/iox"
)

// recvResult is one scripted PollReceive outcome.
type recvResult struct {
	frame []byte
	err   error
}

// fakeTransport is a scripted Transport recording every outbound frame.
// Readiness is controlled per call through the notReady/flushBlocked
// counters; inbound frames come from recv, then iox.ErrWouldBlock, or
// io.EOF when eof is set.
type fakeTransport struct {
	frames       [][]byte
	unflushed    int
	maxUnflushed int

	notReady     int // PollSendReady answers ErrWouldBlock this many times
	flushBlocked int // PollFlush answers ErrWouldBlock this many times

	bufferErr error
	readyErr  error
	flushErr  error

	recv   []recvResult
	eof    bool
	closed int

	readyCalls int
	flushCalls int
	recvCalls  int
}

func (f *fakeTransport) SendBuffer(frame []byte) error {
	if f.bufferErr != nil {
		return f.bufferErr
	}
	f.frames = append(f.frames, frame)
	f.unflushed++
	f.maxUnflushed = max(f.maxUnflushed, f.unflushed)
	return nil
}

func (f *fakeTransport) PollSendReady() error {
	f.readyCalls++
	if f.readyErr != nil {
		return f.readyErr
	}
	if f.notReady > 0 {
		f.notReady--
		return iox.ErrWouldBlock
	}
	return nil
}

func (f *fakeTransport) PollFlush() error {
	f.flushCalls++
	if f.flushErr != nil {
		return f.flushErr
	}
	if f.flushBlocked > 0 {
		f.flushBlocked--
		return iox.ErrWouldBlock
	}
	f.unflushed = 0
	return nil
}

func (f *fakeTransport) PollReceive() ([]byte, error) {
	f.recvCalls++
	if len(f.recv) > 0 {
		r := f.recv[0]
		f.recv = f.recv[1:]
		return r.frame, r.err
	}
	if f.eof {
		return nil, io.EOF
	}
	return nil, iox.ErrWouldBlock
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

// methods returns the method of every recorded frame, in order.
func (f *fakeTransport) methods() []string {
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var call callmux.MethodCall
		if err := json.Unmarshal(fr, &call); err != nil {
			out = append(out, "!"+err.Error())
			continue
		}
		out = append(out, call.Method)
	}
	return out
}

// pageEvent is the closed set of page events used by the tests.
type pageEvent interface{ pageEvent() }

type loadEventFired struct {
	Timestamp float64 `json:"timestamp"`
}

type frameNavigated struct {
	Frame struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"frame"`
}

func (loadEventFired) pageEvent() {}
func (frameNavigated) pageEvent() {}

func pageEvents() *callmux.Registry[pageEvent] {
	r := callmux.NewRegistry[pageEvent]()
	callmux.RegisterEvent(r, "Page.loadEventFired", func(e loadEventFired) pageEvent { return e })
	callmux.RegisterEvent(r, "Page.frameNavigated", func(e frameNavigated) pageEvent { return e })
	return r
}

func newConn(tr callmux.Transport, opts ...callmux.Option[pageEvent]) *callmux.Connection[pageEvent] {
	opts = append([]callmux.Option[pageEvent]{callmux.WithEvents[pageEvent](pageEvents())}, opts...)
	return callmux.New(tr, opts...)
}

// advanceN calls Advance n times and fails on anything other than
// iox.ErrWouldBlock.
func advanceN(tb testing.TB, c *callmux.Connection[pageEvent], n int) {
	tb.Helper()
	for i := range n {
		if _, err := c.Advance(); !iox.IsWouldBlock(err) {
			tb.Fatalf("advance %d: got %v, want ErrWouldBlock", i, err)
		}
	}
}
