package transceiver

import (
	"fmt"
	"time"
)

// Line timing constants per ANSI E1.11 and E1.20. Values are expressed
// as time.Duration so callers never have to track units by convention.
const (
	MinTxBreak = 44 * time.Microsecond
	MaxTxBreak = 800 * time.Microsecond

	MinTxMark = 4 * time.Microsecond
	MaxTxMark = 800 * time.Microsecond

	CtrlRxBreakMin = 88 * time.Microsecond
	CtrlRxBreakMax = 352 * time.Microsecond
	CtrlRxMarkMax  = 88 * time.Microsecond

	CtrlBreakToBreakMin        = 1300 * time.Microsecond
	CtrlDUBBackoff             = 5800 * time.Microsecond
	CtrlBroadcastBackoff       = 200 * time.Microsecond
	CtrlMissingResponseBackoff = 3000 * time.Microsecond
	CtrlNonRDMBackoff          = 200 * time.Microsecond

	RespRxBreakMin = 88 * time.Microsecond
	RespRxBreakMax = 1000 * time.Millisecond

	RespDelayMin = 176 * time.Microsecond
	RespDelayMax = 2 * time.Millisecond

	RespRDMInterslotTimeout = 2100 * time.Microsecond
	RespDMXInterslotTimeout = 1 * time.Second
)

// DefaultDUBWindow bounds how long a controller listens for a DUB
// reply's preamble before giving up. It must be at least long enough to
// see the worst-case 7-byte preamble plus 16 encoded bytes at
// 250kbit/s (about 1.01ms at 44us per byte).
const DefaultDUBWindow = 2 * time.Millisecond

// Timing holds the host-configurable subset of the timing table:
// break, mark, response timeout, responder delay, jitter, and DUB retry
// limit. The zero value is invalid; NewTiming returns sane defaults.
type Timing struct {
	BreakTime       time.Duration
	MarkTime        time.Duration
	ResponderDelay  time.Duration
	ResponseTimeout time.Duration
	Jitter          time.Duration
	DUBLimit        int
}

// NewTiming returns a Timing populated with conservative defaults
// within every validated range.
func NewTiming() Timing {
	return Timing{
		BreakTime:       176 * time.Microsecond,
		MarkTime:        12 * time.Microsecond,
		ResponderDelay:  RespDelayMin,
		ResponseTimeout: CtrlMissingResponseBackoff,
		Jitter:          0,
		DUBLimit:        1,
	}
}

// SetBreakTime validates and applies a new transmit break duration.
// Succeeds iff MinTxBreak <= d <= MaxTxBreak; on rejection the existing
// value is left untouched.
func (t *Timing) SetBreakTime(d time.Duration) error {
	if d < MinTxBreak || d > MaxTxBreak {
		return fmt.Errorf("transceiver: break time %s outside [%s, %s]", d, MinTxBreak, MaxTxBreak)
	}
	t.BreakTime = d
	return nil
}

// SetMarkTime validates and applies a new mark-after-break duration.
func (t *Timing) SetMarkTime(d time.Duration) error {
	if d < MinTxMark || d > MaxTxMark {
		return fmt.Errorf("transceiver: mark time %s outside [%s, %s]", d, MinTxMark, MaxTxMark)
	}
	t.MarkTime = d
	return nil
}

// SetResponderDelay validates and applies a new responder turnaround
// delay.
func (t *Timing) SetResponderDelay(d time.Duration) error {
	if d < RespDelayMin || d > RespDelayMax {
		return fmt.Errorf("transceiver: responder delay %s outside [%s, %s]", d, RespDelayMin, RespDelayMax)
	}
	t.ResponderDelay = d
	return nil
}

// SetResponseTimeout applies a new bound on how long a controller
// waits for a unicast RDM response before declaring it missing.
func (t *Timing) SetResponseTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("transceiver: response timeout must be positive, got %s", d)
	}
	t.ResponseTimeout = d
	return nil
}

// SetJitter applies a non-negative jitter bound. The engine waits
// ResponderDelay plus Jitter before sending each responder reply.
func (t *Timing) SetJitter(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("transceiver: jitter must be non-negative, got %s", d)
	}
	t.Jitter = d
	return nil
}

// SetDUBLimit validates and stores the DUB limit; must be at least one.
// The value is kept and reported with the rest of the timing table, but
// the engine does not read it: each queued DUB operation is transmitted
// once, with no retries.
func (t *Timing) SetDUBLimit(n int) error {
	if n < 1 {
		return fmt.Errorf("transceiver: dub-limit must be >= 1, got %d", n)
	}
	t.DUBLimit = n
	return nil
}

// backoffFor returns the post-transmission backoff for the given class
// outcome.
func backoffFor(class Class, gotResponse bool) time.Duration {
	switch class {
	case ClassRDMDUB:
		return CtrlDUBBackoff
	case ClassRDMBroadcastRequest:
		return CtrlBroadcastBackoff
	case ClassRDMUnicastRequest:
		if !gotResponse {
			return CtrlMissingResponseBackoff
		}
		return 0
	default:
		return CtrlNonRDMBackoff
	}
}
