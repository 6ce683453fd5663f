package transceiver

import (
	"context"
	"sync"
	"time"

	"github.com/jarule/core/counters"
	"github.com/jarule/core/rdm"
)

// NoResponse is the Dispatcher return value meaning "send nothing".
const NoResponse = 0

// DUBReplyLen is the fixed length of a raw DISC_UNIQUE_BRANCH response:
// 7 preamble bytes, 1 delimiter, 12 encoded UID bytes, 4 encoded
// checksum bytes (E1.20 discovery). A Dispatcher signals "send these
// bytes immediately, with no break/mark" by returning -DUBReplyLen.
const DUBReplyLen = 24

// Dispatcher hands a received, length-validated frame (buf[:reqLen]) to
// the RDM responder logic and reports how to answer it:
//
//	>0           reply of that byte length is in buf, send after
//	             the responder turnaround delay with break/mark framing
//	<=0          no response
//	-DUBReplyLen a raw DUB response of DUBReplyLen bytes is already in
//	             buf; send immediately, no break/mark
//
// buf is the engine's shared frame buffer: the dispatcher may overwrite
// it in place.
type Dispatcher func(buf []byte, reqLen int) (replyLen int)

// Engine is the line-level transceiver state machine. The zero value is
// not ready to use; construct with New.
type Engine struct {
	line     Line
	clock    Clock
	counters *counters.Counters
	dispatch Dispatcher
	onEvent  EventFunc
	onReply  func([]byte)
	fineNow  func() time.Time

	mu          sync.Mutex
	mode        Mode
	timing      Timing
	queue       chan Operation
	wake        chan struct{}
	buf         []byte
	hasLastTx   bool
	lastTxEnd   time.Time
	lastBackoff time.Duration
	cancelOp    context.CancelFunc
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithFineClock overrides the wall-clock source used for break-to-break
// spacing and backoff enforcement. Tests use this to drive the engine
// through exact backoff timings without sleeping in real time.
func WithFineClock(now func() time.Time) Option {
	return func(e *Engine) { e.fineNow = now }
}

// WithEventFunc sets the completion callback.
func WithEventFunc(f EventFunc) Option {
	return func(e *Engine) { e.onEvent = f }
}

// WithReplyFunc sets an observer invoked with every responder reply
// actually written to the wire. Diagnostics only.
func WithReplyFunc(f func([]byte)) Option {
	return func(e *Engine) { e.onReply = f }
}

// New constructs an Engine. line and clock are the platform capability
// objects; dispatcher is called for every responder-mode frame.
func New(line Line, clock Clock, counters *counters.Counters, dispatcher Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		line:     line,
		clock:    clock,
		counters: counters,
		dispatch: dispatcher,
		fineNow:  time.Now,
		timing:   NewTiming(),
		queue:    make(chan Operation, 32),
		wake:     make(chan struct{}, 1),
		buf:      make([]byte, rdm.MaxFrameLen),
		mode:     ModeController,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Timing returns a copy of the current timing configuration.
func (e *Engine) Timing() Timing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing
}

// SetBreakTime validates and applies a new transmit break duration.
func (e *Engine) SetBreakTime(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetBreakTime(d)
}

// SetMarkTime validates and applies a new transmit mark duration.
func (e *Engine) SetMarkTime(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetMarkTime(d)
}

// SetResponderDelay validates and applies a new responder turnaround
// delay.
func (e *Engine) SetResponderDelay(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetResponderDelay(d)
}

// SetResponseTimeout applies a new unicast-response timeout.
func (e *Engine) SetResponseTimeout(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetResponseTimeout(d)
}

// SetJitter applies a responder-delay jitter bound.
func (e *Engine) SetJitter(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetJitter(d)
}

// SetDUBLimit validates and stores the DUB limit; the engine itself does
// not read it.
func (e *Engine) SetDUBLimit(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timing.SetDUBLimit(n)
}

// Mode returns the engine's current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode changes the engine's role. Changing mode flushes any
// in-flight transmission and cancels pending read state; token is
// echoed on the completion event.
func (e *Engine) SetMode(mode Mode, token Token) {
	e.mu.Lock()
	e.abortInFlightLocked()
	e.mode = mode
	e.drainQueueLocked(token)
	e.mu.Unlock()

	// kick Run out of a blocked dequeue so it re-reads the mode
	select {
	case e.wake <- struct{}{}:
	default:
	}

	e.emit(Event{Token: token, Class: ClassModeChange, Result: ResultSent})
}

// Reset aborts any in-flight operation (reporting it as ResultAborted),
// drains the queue, and returns both state machines to idle with the
// direction line set to receive.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.abortInFlightLocked()
	e.drainQueueLocked(0)
	e.mu.Unlock()

	e.line.SetDirection(false)
}

func (e *Engine) abortInFlightLocked() {
	if e.cancelOp != nil {
		e.cancelOp()
		e.cancelOp = nil
	}
}

func (e *Engine) drainQueueLocked(token Token) {
	for {
		select {
		case op := <-e.queue:
			e.emit(Event{Token: op.Token, Class: op.Class, Result: ResultAborted})
		default:
			return
		}
	}
}

func (e *Engine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

// enqueue is the common admission path for every host queue operation:
// it admits iff the engine is in controller mode and the FIFO has room.
func (e *Engine) enqueue(op Operation) bool {
	e.mu.Lock()
	mode := e.mode
	e.mu.Unlock()

	if mode != ModeController {
		return false
	}

	select {
	case e.queue <- op:
		return true
	default:
		return false
	}
}

// QueueDMX admits a DMX frame for transmission.
func (e *Engine) QueueDMX(token Token, slots []byte) bool {
	if len(slots) > 512 {
		return false
	}
	return e.enqueue(Operation{Token: token, Class: ClassDMX, StartCode: 0x00, Payload: slots})
}

// QueueASC admits an Alternate Start Code frame.
func (e *Engine) QueueASC(token Token, startCode byte, slots []byte) bool {
	if len(slots) > 512 {
		return false
	}
	return e.enqueue(Operation{Token: token, Class: ClassASC, StartCode: startCode, Payload: slots})
}

// QueueRDMDUB admits a DISC_UNIQUE_BRANCH transmission.
func (e *Engine) QueueRDMDUB(token Token, frame []byte) bool {
	return e.enqueue(Operation{Token: token, Class: ClassRDMDUB, StartCode: rdm.StartCode, Payload: frame})
}

// QueueRDMRequest admits an RDM GET/SET/DISCOVERY request frame.
func (e *Engine) QueueRDMRequest(token Token, frame []byte, broadcast bool) bool {
	class := ClassRDMUnicastRequest
	if broadcast {
		class = ClassRDMBroadcastRequest
	}
	return e.enqueue(Operation{Token: token, Class: class, StartCode: rdm.StartCode, Payload: frame})
}

// QueueSelfTest admits a self-test operation.
func (e *Engine) QueueSelfTest(token Token) bool {
	return e.enqueue(Operation{Token: token, Class: ClassSelfTest})
}

// Run drives the engine until ctx is cancelled. It is meant to be
// called once, from a single goroutine, in the role a firmware
// foreground loop would play. Instead of a non-blocking poll loop, each
// iteration blocks on exactly the next thing the state machine is
// waiting for: a queued operation, a break edge, or ctx cancellation.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if e.Mode() == ModeController {
			e.controllerStep(ctx)
		} else {
			e.responderStep(ctx)
		}
	}
}

func (e *Engine) opContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	e.mu.Lock()
	e.cancelOp = cancel
	e.mu.Unlock()

	return ctx, cancel
}

func (e *Engine) clearOpContext() {
	e.mu.Lock()
	e.cancelOp = nil
	e.mu.Unlock()
}

func (e *Engine) controllerStep(ctx context.Context) {
	var op Operation

	select {
	case <-ctx.Done():
		return
	case <-e.wake:
		return
	case op = <-e.queue:
	}

	e.waitBackoff(ctx)

	opCtx, cancel := e.opContext(ctx)
	defer cancel()
	defer e.clearOpContext()

	ev := e.runControllerOp(opCtx, op)
	e.emit(ev)
}

// waitBackoff blocks until both the break-to-break minimum spacing and
// the class-specific backoff recorded after the previous operation have
// elapsed. A dequeued operation may not begin its break before then.
func (e *Engine) waitBackoff(ctx context.Context) {
	e.mu.Lock()
	has := e.hasLastTx
	last := e.lastTxEnd
	required := e.lastBackoff
	e.mu.Unlock()

	if !has {
		return
	}

	if required < CtrlBreakToBreakMin {
		required = CtrlBreakToBreakMin
	}

	deadline := last.Add(required)

	for {
		remaining := deadline.Sub(e.fineNow())
		if remaining <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(remaining):
		}
	}
}

func (e *Engine) finishOp(class Class, backoff time.Duration) {
	e.mu.Lock()
	e.hasLastTx = true
	e.lastTxEnd = e.fineNow()
	e.lastBackoff = backoff
	e.mu.Unlock()
}

func (e *Engine) runControllerOp(ctx context.Context, op Operation) Event {
	if op.Class == ClassSelfTest {
		err := e.line.SelfTest(ctx)
		e.finishOp(op.Class, CtrlNonRDMBackoff)

		if err != nil {
			return Event{Token: op.Token, Class: op.Class, Result: ResultRejected}
		}
		return Event{Token: op.Token, Class: op.Class, Result: ResultSent}
	}

	timing := e.Timing()

	e.line.SetDirection(true)
	e.line.Break(timing.BreakTime)
	e.line.Mark(timing.MarkTime)

	// DMX and ASC payloads are the slots after the start code; RDM
	// payloads are complete frames that already begin with rdm.StartCode.
	frame := op.Payload
	if op.Class == ClassDMX || op.Class == ClassASC {
		frame = make([]byte, 0, len(op.Payload)+1)
		frame = append(frame, op.StartCode)
		frame = append(frame, op.Payload...)
	}

	if err := e.line.WriteSlots(ctx, frame); err != nil {
		e.line.SetDirection(false)
		e.finishOp(op.Class, backoffFor(op.Class, false))
		if ctx.Err() != nil {
			return Event{Token: op.Token, Class: op.Class, Result: ResultAborted}
		}
		return Event{Token: op.Token, Class: op.Class, Result: ResultRejected}
	}

	e.line.SetDirection(false)

	switch op.Class {
	case ClassDMX, ClassASC, ClassRDMBroadcastRequest:
		e.finishOp(op.Class, backoffFor(op.Class, false))
		return Event{Token: op.Token, Class: op.Class, Result: ResultSent}

	case ClassRDMDUB:
		window, err := e.line.ReadRaw(ctx, DefaultDUBWindow)
		e.finishOp(op.Class, CtrlDUBBackoff)

		if err != nil || len(window) == 0 {
			if ctx.Err() != nil {
				return Event{Token: op.Token, Class: op.Class, Result: ResultAborted}
			}
			return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
		}
		return Event{Token: op.Token, Class: op.Class, Result: ResultResponse, Bytes: window}

	case ClassRDMUnicastRequest:
		return e.awaitUnicastResponse(ctx, op)

	default:
		e.finishOp(op.Class, CtrlNonRDMBackoff)
		return Event{Token: op.Token, Class: op.Class, Result: ResultSent}
	}
}

func (e *Engine) awaitUnicastResponse(ctx context.Context, op Operation) Event {
	timing := e.Timing()

	waitCtx, cancel := context.WithTimeout(ctx, timing.ResponseTimeout)
	defer cancel()

	breakDur, err := e.line.ReadBreak(waitCtx)
	if err != nil {
		e.finishOp(op.Class, CtrlMissingResponseBackoff)
		if ctx.Err() != nil {
			return Event{Token: op.Token, Class: op.Class, Result: ResultAborted}
		}
		return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
	}

	if breakDur < CtrlRxBreakMin || breakDur > CtrlRxBreakMax {
		e.counters.IncRDMShortFrame()
		e.finishOp(op.Class, CtrlMissingResponseBackoff)
		return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
	}

	payload, err := e.line.ReadSlots(ctx, RespRDMInterslotTimeout, len(e.buf))
	e.finishOp(op.Class, 0)

	if err != nil {
		if isLineFault(err) {
			return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
		}
		if ctx.Err() != nil {
			return Event{Token: op.Token, Class: op.Class, Result: ResultAborted}
		}
		return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
	}

	header, result := rdm.Validate(payload, len(payload))
	e.countValidation(result)

	if result != rdm.ResultOK {
		return Event{Token: op.Token, Class: op.Class, Result: ResultNoResponse}
	}

	_ = header
	return Event{Token: op.Token, Class: op.Class, Result: ResultResponse, Bytes: payload}
}

func (e *Engine) countValidation(result rdm.ValidateResult) {
	switch result {
	case rdm.ResultOK:
		e.counters.IncRDMFrames()
	case rdm.ResultShortFrame:
		e.counters.IncRDMShortFrame()
	case rdm.ResultLengthMismatch:
		e.counters.IncRDMLengthMismatch()
	case rdm.ResultChecksumInvalid:
		e.counters.IncRDMChecksumInvalid()
	}
}

// responderStep runs one iteration of the responder RX state machine:
// wait for a break, qualify it, collect slots, validate, dispatch, and
// reply.
func (e *Engine) responderStep(ctx context.Context) {
	opCtx, cancel := e.opContext(ctx)
	defer cancel()
	defer e.clearOpContext()

	breakDur, err := e.line.ReadBreak(opCtx)
	if err != nil {
		return
	}

	if breakDur < RespRxBreakMin {
		e.counters.IncRDMShortFrame()
		return
	}
	if breakDur > RespRxBreakMax {
		e.counters.IncRDMLengthMismatch()
		return
	}

	first, err := e.line.ReadSlots(opCtx, RespRDMInterslotTimeout, 1)
	if err != nil || len(first) == 0 {
		if isLineFault(err) {
			e.counters.IncRDMShortFrame()
		}
		return
	}

	startCode := first[0]

	interSlot := RespRDMInterslotTimeout
	max := rdm.MaxFrameLen - 1

	if startCode == 0x00 {
		interSlot = RespDMXInterslotTimeout
		max = 512
	}

	rest, err := e.line.ReadSlots(opCtx, interSlot, max)
	if err != nil {
		if isLineFault(err) {
			e.counters.IncRDMShortFrame()
		}
		return
	}

	frame := e.buf[:0]
	frame = append(frame, startCode)
	frame = append(frame, rest...)
	copy(e.buf, frame)
	n := len(frame)

	if startCode == 0x00 {
		e.counters.IncDMXFrames()
		return
	}

	if startCode != rdm.StartCode {
		// unknown alternate start code: not RDM, not DMX; no counter
		// tracks it.
		return
	}

	header, result := rdm.Validate(e.buf, n)
	e.countValidation(result)

	if result != rdm.ResultOK {
		return
	}

	replyLen := e.dispatch(e.buf, header.MessageLength()+rdm.ChecksumLen)
	e.sendReply(ctx, replyLen)
}

func (e *Engine) sendReply(ctx context.Context, replyLen int) {
	switch {
	case replyLen == NoResponse || replyLen < 0 && replyLen != -DUBReplyLen:
		return

	case replyLen == -DUBReplyLen:
		e.line.SetDirection(true)
		_ = e.line.WriteSlots(ctx, e.buf[:DUBReplyLen])
		e.line.SetDirection(false)

		if e.onReply != nil {
			e.onReply(append([]byte(nil), e.buf[:DUBReplyLen]...))
		}

	case replyLen > 0:
		timing := e.Timing()

		select {
		case <-time.After(timing.ResponderDelay + timing.Jitter):
		case <-ctx.Done():
			return
		}

		e.line.SetDirection(true)
		e.line.Break(timing.BreakTime)
		e.line.Mark(timing.MarkTime)
		_ = e.line.WriteSlots(ctx, e.buf[:replyLen])
		e.line.SetDirection(false)

		if e.onReply != nil {
			e.onReply(append([]byte(nil), e.buf[:replyLen]...))
		}
	}
}
