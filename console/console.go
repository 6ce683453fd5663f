// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package console implements the device's single-character command
// table: mode, counters, UID, timing dump, log level, reset, plus test
// log lines. The command table writes to an io.Writer, so it drives
// both cmd/dmxcored's raw terminal and cmd/consoletui's bubbletea
// dashboard. board/dmxbridge has no console of its own.
package console

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/jarule/core/hostapi"
	"github.com/jarule/core/transceiver"
)

// Level is the console's log verbosity, adjusted by the `+`/`-` commands
// and used to gate the `d/i/w/e/f` test log lines.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var level atomic.Int32

// CurrentLevel reports the console's active log level.
func CurrentLevel() Level {
	return Level(level.Load())
}

const helpText = `+/-  raise/lower log level
c    dump receive counters
h    this help
m    show mode
M    toggle mode (controller/responder)
r    reset
t    dump transceiver timing
d/i/w/e/f  emit a test log line at debug/info/warn/error/fatal
u    show responder UID
`

var resetToken transceiver.Token

// Dispatch executes the single-character command b against core, writing
// any response text to w. Unrecognized input is echoed back as a log line
// at the current level.
func Dispatch(b byte, core *hostapi.Core, w io.Writer) {
	switch b {
	case '+':
		if l := level.Add(1); l > int32(LevelFatal) {
			level.Store(int32(LevelFatal))
		}
		logLine(w, LevelInfo, "log level raised to %s", CurrentLevel())
	case '-':
		if l := level.Add(-1); l < int32(LevelDebug) {
			level.Store(int32(LevelDebug))
		}
		logLine(w, LevelInfo, "log level lowered to %s", CurrentLevel())
	case 'c':
		snap := core.Counters()
		fmt.Fprintf(w, "dmx=%d rdm=%d short=%d len-mismatch=%d checksum-invalid=%d\n",
			snap.DMXFrames, snap.RDMFrames, snap.RDMShortFrame, snap.RDMLengthMismatch, snap.RDMChecksumInvalid)
	case 'h':
		io.WriteString(w, helpText)
	case 'm':
		fmt.Fprintf(w, "mode=%s\n", core.Mode())
	case 'M':
		next := transceiver.ModeResponder
		if core.Mode() == transceiver.ModeResponder {
			next = transceiver.ModeController
		}
		resetToken++
		core.SetMode(next, resetToken)
		fmt.Fprintf(w, "mode=%s\n", next)
	case 'r':
		core.Reset()
		io.WriteString(w, "reset\n")
	case 't':
		timing := core.Timing()
		fmt.Fprintf(w, "break=%s mark=%s responder-delay=%s timeout=%s jitter=%s dub-limit=%d\n",
			timing.BreakTime, timing.MarkTime, timing.ResponderDelay, timing.ResponseTimeout,
			timing.Jitter, timing.DUBLimit)
	case 'd':
		logLine(w, LevelDebug, "test log line")
	case 'i':
		logLine(w, LevelInfo, "test log line")
	case 'w':
		logLine(w, LevelWarn, "test log line")
	case 'e':
		logLine(w, LevelError, "test log line")
	case 'f':
		logLine(w, LevelFatal, "test log line")
	case 'u':
		device := core.Device()
		fmt.Fprintf(w, "uid=%s\n", device.Root.UID)
	default:
		logLine(w, CurrentLevel(), "%c", b)
	}
}

// logLine writes msg if at is at or above the console's current level,
// mirroring the gate every real log line in this module passes through.
func logLine(w io.Writer, at Level, format string, args ...interface{}) {
	if at < CurrentLevel() {
		return
	}
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]interface{}{at}, args...)...)
}
