// In-memory transceiver.Line for tests and the no-hardware default mode.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim implements an in-memory transceiver.Line standing in
// for real RS-485 hardware: it lets the full controller and responder
// cycle run, loop back, and be asserted on without a UART.
//
// Each Line holds its own receive queues (breaks and frames), and a
// write lands in the peer Line's queues, so a controller-mode Engine and a responder-mode Engine on opposite
// ends of a Connect()ed pair exercise the real break/mark/slot framing
// end to end.
package sim

import (
	"context"
	"sync"
	"time"
)

// frame is one transmission captured by WriteSlots, tagged with
// whether it was preceded by Break/Mark (a normal frame) or sent raw
// (a DUB reply).
type frame struct {
	startCode byte
	payload   []byte
	breakDur  time.Duration
	raw       bool
}

// Line is an in-memory stand-in for transceiver.Line. The zero value is
// not connected to anything; use NewLine for a loopback-only Line (its
// own writes are immediately its own reads) or
// Connect two Lines to model a controller talking to a responder.
type Line struct {
	mu   sync.Mutex
	peer *Line

	pendingBreak chan time.Duration
	pendingFrame chan frame

	// remainder holds bytes of the current frame a previous ReadSlots
	// call did not consume, so a reader can take the start code first
	// and the body in a second call, the way a real UART FIFO drains.
	remainder []byte

	selfTestErr error

	direction bool // true = driving (tx)
}

// NewLine returns an unconnected Line: writes loop back to its own
// reader. SelfTest does not use the loopback; it reports the error set
// with SetSelfTestError.
func NewLine() *Line {
	l := &Line{
		pendingBreak: make(chan time.Duration, 8),
		pendingFrame: make(chan frame, 8),
	}
	l.peer = l
	return l
}

// Connect wires a and b so each one's TX is the other's RX, modeling a
// controller and a responder on the same bus.
func Connect(a, b *Line) {
	a.peer = b
	b.peer = a
}

func (l *Line) SetDirection(tx bool) {
	l.mu.Lock()
	l.direction = tx
	l.mu.Unlock()
}

func (l *Line) Break(d time.Duration) {
	select {
	case l.peer.pendingBreak <- d:
	default:
	}
}

func (l *Line) Mark(time.Duration) {}

func (l *Line) WriteSlots(ctx context.Context, buf []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	f := frame{payload: append([]byte(nil), buf...)}
	if len(f.payload) > 0 {
		f.startCode = f.payload[0]
		f.payload = f.payload[1:]
	}

	select {
	case l.peer.pendingFrame <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteRaw delivers buf directly to the peer's ReadRaw window, bypassing
// break/mark framing. It is not part of transceiver.Line: the engine
// sends DUB replies with WriteSlots, and WriteRaw lets a test place a
// raw window in front of a peer directly.
func (l *Line) WriteRaw(buf []byte) {
	f := frame{raw: true, payload: append([]byte(nil), buf...)}
	select {
	case l.peer.pendingFrame <- f:
	default:
	}
}

func (l *Line) ReadBreak(ctx context.Context) (time.Duration, error) {
	select {
	case d := <-l.pendingBreak:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (l *Line) ReadSlots(ctx context.Context, interSlot time.Duration, max int) ([]byte, error) {
	l.mu.Lock()
	if len(l.remainder) > 0 {
		n := max
		if n > len(l.remainder) {
			n = len(l.remainder)
		}
		out := append([]byte(nil), l.remainder[:n]...)
		l.remainder = l.remainder[n:]
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	timer := time.NewTimer(interSlot)
	defer timer.Stop()

	select {
	case f := <-l.pendingFrame:
		bytes := f.payload
		if !f.raw {
			bytes = append([]byte{f.startCode}, f.payload...)
		}
		n := max
		if n > len(bytes) {
			n = len(bytes)
		}
		l.mu.Lock()
		l.remainder = append([]byte(nil), bytes[n:]...)
		l.mu.Unlock()
		return bytes[:n], nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Line) ReadRaw(ctx context.Context, window time.Duration) ([]byte, error) {
	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case f := <-l.pendingFrame:
		if f.raw {
			return f.payload, nil
		}
		return append([]byte{f.startCode}, f.payload...), nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetSelfTestError makes the next SelfTest call report err, for
// exercising the failure path.
func (l *Line) SetSelfTestError(err error) {
	l.mu.Lock()
	l.selfTestErr = err
	l.mu.Unlock()
}

func (l *Line) SelfTest(ctx context.Context) error {
	l.mu.Lock()
	err := l.selfTestErr
	l.mu.Unlock()
	return err
}
