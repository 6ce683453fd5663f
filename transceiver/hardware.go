package transceiver

import (
	"context"
	"time"

	"github.com/jarule/core/coarsetimer"
)

// Line is the capability object the engine drives to move bytes on the
// wire, passed once at init. Implementations live under hardware/* in
// this module: a bare-metal backend for the production board, hosted
// Linux backends for development rigs, and an in-memory backend for
// tests. The core package never imports any of them.
//
// Every method that can take an unbounded time honors ctx cancellation;
// implementations must return promptly once ctx is done rather than
// block past it, since the engine's timeouts are expressed as
// cancellation, not polling.
type Line interface {
	// SetDirection switches the RS-485 transceiver's driver enable: tx
	// true drives the bus, false puts the line in receive mode.
	SetDirection(tx bool)

	// Break drives the line to its break (space) condition for d, then
	// returns. d has already been validated against
	// [MinTxBreak, MaxTxBreak] by the caller.
	Break(d time.Duration)

	// Mark drives the line to its idle (mark) condition for d, then
	// returns. d has already been validated against
	// [MinTxMark, MaxTxMark].
	Mark(d time.Duration)

	// WriteSlots transmits buf as 8N2 slot bytes, blocking until the
	// UART shift register is empty or ctx is done.
	WriteSlots(ctx context.Context, buf []byte) error

	// ReadBreak blocks until a break condition is detected (a falling
	// edge followed by a qualifying low period) and returns its
	// measured duration. Returns context.DeadlineExceeded-wrapping
	// errors or ctx.Err() on cancellation/timeout with no break seen.
	ReadBreak(ctx context.Context) (time.Duration, error)

	// ReadSlots reads payload bytes into a fresh slice, stopping after
	// max bytes or once interSlot passes with no further byte ready,
	// whichever comes first.
	ReadSlots(ctx context.Context, interSlot time.Duration, max int) ([]byte, error)

	// ReadRaw captures whatever appears on the line for up to window,
	// with no break/mark framing expected. Used for DUB response
	// capture; the host classifies the window.
	ReadRaw(ctx context.Context, window time.Duration) ([]byte, error)

	// SelfTest exercises the UART/RS-485 path without requiring the
	// bus to be connected. Returns a non-nil error if the hardware
	// path does not loop back cleanly.
	SelfTest(ctx context.Context) error
}

// Clock is the subset of coarsetimer.Timer: a monotonic,
// wraparound-safe tick source. *coarsetimer.Timer satisfies this
// directly. responder.Device.Service uses it for LED cadence. Engine
// keeps the Clock passed to New but does not read it: backoff is timed
// with the fine clock (see WithFineClock) and response timeouts with
// context deadlines.
type Clock interface {
	Now() coarsetimer.Tick
	HasElapsed(start, duration coarsetimer.Tick) bool
}
