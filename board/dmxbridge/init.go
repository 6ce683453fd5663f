//go:build tamago && arm

package dmxbridge

import _ "unsafe"

// Init performs the lower level SoC bring-up triggered early in runtime
// setup, the dmxbridge equivalent of the USB armory's own hwinit: there is
// no SoC-wide PLL/TZASC/CAAM bring-up package in this tree (out of scope for
// a DMX/RDM bridge), so this is limited to what NewLine and NewLEDs need:
// the GPIO1 and UART2 clock gates, enabled lazily by gpio.GPIO.Init and
// uart.UART.Init themselves.
//
//go:linkname Init runtime.hwinit
func Init() {}
