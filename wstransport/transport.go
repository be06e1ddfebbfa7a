// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wstransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by send operations after Close.
var ErrClosed = errors.New("wstransport: closed")

// closeGrace bounds the close handshake frame written by Close.
const closeGrace = time.Second

// inbound is one entry of the receive queue.
type inbound struct {
	frame []byte
	err   error
	eof   bool
}

// Transport is a WebSocket connection exposed through non-blocking
// two-phase send and polled receive. SendBuffer, PollSendReady, PollFlush
// and PollReceive must be called from one goroutine.
type Transport struct {
	conn *websocket.Conn
	log  zerolog.Logger

	outQ lfq.SPSC[[]byte]
	inQ  lfq.SPSC[inbound]

	// owner side
	staged   [][]byte
	slot     []byte
	buffered uint64
	eof      bool

	// shared with the socket goroutines
	written atomix.Uint64
	closed  atomix.Uint32
	wake    chan struct{}
	quit    chan struct{}

	errMu    sync.Mutex
	writeErr error

	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
	wg           sync.WaitGroup
}

// Dial opens a WebSocket connection to endpoint.
func Dial(ctx context.Context, endpoint string, opts ...Option) (*Transport, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, cfg.header)
	if resp != nil && resp.Body != nil {
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				cfg.logger.Debug().Err(cerr).Msg("close handshake response body")
			}
		}()
	}
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return newTransport(conn, cfg), nil
}

// New wraps an established WebSocket connection. The Transport takes
// ownership of conn.
func New(conn *websocket.Conn, opts ...Option) *Transport {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newTransport(conn, cfg)
}

func newTransport(conn *websocket.Conn, cfg config) *Transport {
	if cfg.readLimit > 0 {
		conn.SetReadLimit(cfg.readLimit)
	}
	t := &Transport{
		conn:         conn,
		log:          cfg.logger.With().Str("component", "wstransport").Str("remote", conn.RemoteAddr().String()).Logger(),
		wake:         make(chan struct{}, 1),
		quit:         make(chan struct{}),
		writeTimeout: cfg.writeTimeout,
	}
	t.outQ.Init(cfg.capacity)
	t.inQ.Init(cfg.capacity)
	t.wg.Add(2)
	go t.writeLoop()
	go t.readLoop()
	return t
}

// SendBuffer stages frame for the writer. The frame is owned by the
// transport afterwards.
func (t *Transport) SendBuffer(frame []byte) error {
	if t.closed.Load() != 0 {
		return ErrClosed
	}
	if err := t.loadWriteErr(); err != nil {
		return err
	}
	t.staged = append(t.staged, frame)
	t.buffered++
	return nil
}

// PollSendReady returns nil once every staged frame is queued for the writer.
func (t *Transport) PollSendReady() error {
	return t.drain()
}

// PollFlush returns nil once every buffered frame was written to the socket.
func (t *Transport) PollFlush() error {
	if err := t.drain(); err != nil {
		return err
	}
	if t.written.Load() < t.buffered {
		if err := t.loadWriteErr(); err != nil {
			return err
		}
		return iox.ErrWouldBlock
	}
	return nil
}

func (t *Transport) drain() error {
	if t.closed.Load() != 0 {
		return ErrClosed
	}
	if err := t.loadWriteErr(); err != nil {
		return err
	}
	moved := false
	for len(t.staged) > 0 {
		t.slot = t.staged[0]
		if err := t.outQ.Enqueue(&t.slot); err != nil {
			break
		}
		t.staged[0] = nil
		t.staged = t.staged[1:]
		moved = true
	}
	t.slot = nil
	if moved {
		select {
		case t.wake <- struct{}{}:
		default:
		}
	}
	if len(t.staged) > 0 {
		return iox.ErrWouldBlock
	}
	t.staged = nil
	return nil
}

// PollReceive returns the next inbound frame.
func (t *Transport) PollReceive() ([]byte, error) {
	if t.eof {
		return nil, io.EOF
	}
	in, err := t.inQ.Dequeue()
	if err != nil {
		if t.closed.Load() != 0 {
			t.eof = true
			return nil, io.EOF
		}
		return nil, iox.ErrWouldBlock
	}
	switch {
	case in.eof:
		t.eof = true
		return nil, io.EOF
	case in.err != nil:
		return nil, in.err
	}
	return in.frame, nil
}

// Close sends a close frame, closes the socket and waits for the socket
// goroutines to exit.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Add(1)
		close(t.quit)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace)); err != nil &&
			!errors.Is(err, websocket.ErrCloseSent) {
			t.log.Debug().Err(err).Msg("write close frame")
		}
		t.closeErr = t.conn.Close()
		t.wg.Wait()
	})
	return t.closeErr
}

func (t *Transport) writeLoop() {
	defer t.wg.Done()
	for {
		frame, err := t.outQ.Dequeue()
		if err != nil {
			select {
			case <-t.wake:
				continue
			case <-t.quit:
				return
			}
		}
		if t.writeTimeout > 0 {
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
		}
		if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			t.storeWriteErr(err)
			t.log.Debug().Err(err).Msg("write failed")
			return
		}
		t.written.Add(1)
	}
}

func (t *Transport) readLoop() {
	defer t.wg.Done()
	for {
		_, frame, err := t.conn.ReadMessage()
		if err != nil {
			if t.closed.Load() == 0 && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Debug().Err(err).Msg("read failed")
				if !t.push(inbound{err: err}) {
					return
				}
			}
			t.push(inbound{eof: true})
			return
		}
		if !t.push(inbound{frame: frame}) {
			return
		}
	}
}

// push enqueues in, backing off while the owner lags behind. It gives up
// once the transport is closed.
func (t *Transport) push(in inbound) bool {
	var bo iox.Backoff
	for {
		if err := t.inQ.Enqueue(&in); err == nil {
			return true
		}
		if t.closed.Load() != 0 {
			return false
		}
		bo.Wait()
	}
}

func (t *Transport) storeWriteErr(err error) {
	t.errMu.Lock()
	if t.writeErr == nil {
		t.writeErr = err
	}
	t.errMu.Unlock()
}

func (t *Transport) loadWriteErr() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.writeErr
}
