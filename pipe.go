// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"errors"
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// DefaultPipeCapacity is the queue capacity used by Pipe when capacity <= 0.
const DefaultPipeCapacity = 16

// errPipeClosed is returned by send operations on a closed pipe end.
var errPipeClosed = errors.New("callmux: pipe closed")

// PipeEnd is one side of an in-memory Transport pair.
// Each direction is a single-producer single-consumer bounded queue, so
// each end must be driven by one goroutine.
type PipeEnd struct {
	sendQ     *lfq.SPSC[[]byte]
	recvQ     *lfq.SPSC[[]byte]
	closed    *atomix.Uint32
	staged    [][]byte
	sendSlot  []byte
	buffered  int
	delivered int
}

// pipePair holds both ends, the queues and the shared close counter
// in a single allocation.
type pipePair struct {
	a      PipeEnd
	b      PipeEnd
	closed atomix.Uint32
	dataAB lfq.SPSC[[]byte]
	dataBA lfq.SPSC[[]byte]
}

// Pipe creates a connected pair of in-memory transports.
// Frames buffered on one end are delivered to the other in order once
// flushed. A full queue surfaces as iox.ErrWouldBlock on PollSendReady and
// PollFlush. Closing either end closes the pipe; the peer drains what was
// already delivered and then observes io.EOF.
func Pipe(capacity int) (*PipeEnd, *PipeEnd) {
	if capacity <= 0 {
		capacity = DefaultPipeCapacity
	}
	pair := &pipePair{}
	pair.dataAB.Init(capacity)
	pair.dataBA.Init(capacity)

	pair.a = PipeEnd{
		sendQ:  &pair.dataAB,
		recvQ:  &pair.dataBA,
		closed: &pair.closed,
	}
	pair.b = PipeEnd{
		sendQ:  &pair.dataBA,
		recvQ:  &pair.dataAB,
		closed: &pair.closed,
	}
	return &pair.a, &pair.b
}

// SendBuffer stages frame for delivery. The frame is owned by the pipe
// afterwards.
func (p *PipeEnd) SendBuffer(frame []byte) error {
	if p.closed.Load() != 0 {
		return errPipeClosed
	}
	p.staged = append(p.staged, frame)
	p.buffered++
	return nil
}

// PollSendReady implements Transport. It is ready once every staged frame
// moved into the peer's queue.
func (p *PipeEnd) PollSendReady() error {
	return p.drain()
}

// PollFlush implements Transport.
func (p *PipeEnd) PollFlush() error {
	return p.drain()
}

// drain moves staged frames into the peer queue until it is full.
func (p *PipeEnd) drain() error {
	if len(p.staged) == 0 {
		return nil
	}
	if p.closed.Load() != 0 {
		return errPipeClosed
	}
	for len(p.staged) > 0 {
		p.sendSlot = p.staged[0]
		if err := p.sendQ.Enqueue(&p.sendSlot); err != nil {
			return iox.ErrWouldBlock
		}
		p.staged[0] = nil
		p.staged = p.staged[1:]
		p.delivered++
	}
	p.staged = nil
	return nil
}

// PollReceive implements Transport.
func (p *PipeEnd) PollReceive() ([]byte, error) {
	frame, err := p.recvQ.Dequeue()
	if err == nil {
		return frame, nil
	}
	if p.closed.Load() == 0 {
		return nil, iox.ErrWouldBlock
	}
	// The peer may have enqueued just before closing.
	if frame, err = p.recvQ.Dequeue(); err == nil {
		return frame, nil
	}
	return nil, io.EOF
}

// Close closes both directions of the pipe. Frames still staged on this
// end are discarded.
func (p *PipeEnd) Close() error {
	p.closed.Add(1)
	p.staged = nil
	return nil
}

// Buffered returns the number of frames accepted by SendBuffer so far.
func (p *PipeEnd) Buffered() int { return p.buffered }

// Delivered returns the number of frames moved into the peer's queue.
func (p *PipeEnd) Delivered() int { return p.delivered }
