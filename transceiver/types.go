// DMX/RDM line-level transceiver engine.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package transceiver implements the line-level state machine that
// frames DMX/RDM at the bit level: break/mark generation, slot
// transmission and reception, DUB raw-window capture, and
// controller/responder arbitration. It takes no direct dependency on
// any platform; hardware access goes through the Line and Clock
// interfaces in hardware.go, wired once at construction.
package transceiver

// Mode selects which of the two roles the engine currently plays.
// Exactly one is active; SetMode flushes in-flight work and re-arms for
// the new role.
type Mode int

const (
	ModeController Mode = iota
	ModeResponder
)

func (m Mode) String() string {
	if m == ModeResponder {
		return "responder"
	}
	return "controller"
}

// Class identifies the kind of payload a controller operation carries,
// which in turn determines the post-transmission backoff and whether a
// response is awaited.
type Class int

const (
	ClassDMX Class = iota
	ClassASC
	ClassRDMDUB
	ClassRDMUnicastRequest
	ClassRDMBroadcastRequest
	ClassSelfTest
	ClassModeChange
)

// Token is the correlation id a caller attaches to a queued operation
// and a mode change, echoed back on completion.
type Token uint16

// Result names the outcome an Event reports.
type Result int

const (
	// ResultSent: a non-RDM or broadcast transmission completed; no
	// response was expected.
	ResultSent Result = iota
	// ResultResponse: a response (RDM reply or DUB window) was
	// captured and is attached to the Event.
	ResultResponse
	// ResultNoResponse: an RDM unicast request completed with no
	// response observed before RESP_TIMEOUT.
	ResultNoResponse
	// ResultAborted: the operation was discarded by Reset or a mode
	// change before it completed.
	ResultAborted
	// ResultRejected: the operation was not admitted (bad parameters,
	// or hardware self-test failure).
	ResultRejected
)

func (r Result) String() string {
	switch r {
	case ResultSent:
		return "sent"
	case ResultResponse:
		return "response"
	case ResultNoResponse:
		return "no-response"
	case ResultAborted:
		return "aborted"
	case ResultRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Event is delivered through the upstream event callback when a queued
// operation or a mode change completes.
type Event struct {
	Token  Token
	Class  Class
	Result Result
	Bytes  []byte
}

// EventFunc receives completion events. It must not block: in a
// bare-metal deployment it runs on the same foreground loop that drives
// the engine, so a slow callback stalls everything.
type EventFunc func(Event)

// Operation is a controller-queued transmission.
type Operation struct {
	Token     Token
	Class     Class
	StartCode byte // sent before Payload for DMX (0x00) and ASC; RDM Payloads already begin with rdm.StartCode
	Payload   []byte
}
