package responder

import (
	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/transceiver"
)

// FlashFastTicks is the identify LED's toggle period: 1.0 s expressed
// in coarse-timer ticks at its 10 ms resolution.
const FlashFastTicks = coarsetimer.Tick(1000 / coarsetimer.Resolution)

// FlashSlowTicks is the mute LED's toggle period when unmuted: 10.0 s.
const FlashSlowTicks = coarsetimer.Tick(10000 / coarsetimer.Resolution)

// LEDs is the capability object driving the two status indicators. A
// board backend wires this to real GPIO pins; tests and hosted
// backends can use a trivial in-memory implementation.
type LEDs interface {
	SetIdentify(on bool)
	SetMute(on bool)
}

// ledCadence tracks the last-toggle tick for each LED so Service can
// decide when a period has elapsed.
type ledCadence struct {
	identifyOn       bool
	muteOn           bool
	lastIdentifyTick coarsetimer.Tick
	lastMuteTick     coarsetimer.Tick
	armed            bool
}

func (l *ledCadence) resetMuteTimer() {
	l.muteOn = false
	l.armed = false
}

// Service drives the identify/mute LED cadence; it is meant to be
// called once per coarse tick from the same foreground loop that calls
// transceiver.Engine.Run.
//
// Identify blinks at FlashFastTicks whenever Root.IdentifyOn is set.
// The mute LED blinks at FlashSlowTicks while unmuted and is held
// solid off while muted.
func (d *Device) Service(now coarsetimer.Tick, clock transceiver.Clock) {
	if d.leds == nil {
		return
	}

	ls := &d.ledState
	if !ls.armed {
		ls.lastIdentifyTick = now
		ls.lastMuteTick = now
		ls.armed = true
	}

	if d.Root.IdentifyOn {
		if clock.HasElapsed(ls.lastIdentifyTick, FlashFastTicks) {
			ls.identifyOn = !ls.identifyOn
			ls.lastIdentifyTick = now
			d.leds.SetIdentify(ls.identifyOn)
		}
	} else if ls.identifyOn {
		ls.identifyOn = false
		d.leds.SetIdentify(false)
	}

	if d.Root.IsMuted {
		if ls.muteOn {
			ls.muteOn = false
			d.leds.SetMute(false)
		}
		return
	}

	if clock.HasElapsed(ls.lastMuteTick, FlashSlowTicks) {
		ls.muteOn = !ls.muteOn
		ls.lastMuteTick = now
		d.leds.SetMute(ls.muteOn)
	}
}
