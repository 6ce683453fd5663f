// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Package tamago wires board/dmxbridge up as the production
// transceiver.Line/Clock pair and responder.LEDs, so cmd/dmxcored can stay
// free of any board import when built for other targets (hardware/sim,
// hardware/serial, hardware/periphrs485).
package tamago

import (
	"github.com/jarule/core/board/dmxbridge"
	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

// Open brings up the board and returns the Line, Clock, and LEDs the rest
// of the module drives through their respective interfaces.
func Open() (transceiver.Line, *coarsetimer.Timer, responder.LEDs) {
	dmxbridge.Init()

	line := dmxbridge.NewLine()
	leds := dmxbridge.NewLEDs()

	var clock coarsetimer.Timer

	return line, &clock, leds
}
