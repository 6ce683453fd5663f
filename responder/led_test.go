package responder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/coarsetimer"
)

func TestIdentifyLEDBlinksAtFlashFast(t *testing.T) {
	d := newTestDevice(t)
	leds := d.leds.(*noopLEDs)
	d.Root.IdentifyOn = true

	var clock coarsetimer.Timer

	d.Service(clock.Now(), &clock)
	require.Empty(t, leds.identify, "no toggle before a period elapses")

	clock.SetCounter(FlashFastTicks + 1)
	d.Service(clock.Now(), &clock)
	require.Equal(t, []bool{true}, leds.identify)
}

func TestMuteLEDSolidOffWhileMuted(t *testing.T) {
	d := newTestDevice(t)
	leds := d.leds.(*noopLEDs)
	d.Root.IsMuted = true

	var clock coarsetimer.Timer
	d.Service(clock.Now(), &clock)
	clock.SetCounter(FlashSlowTicks + 1)
	d.Service(clock.Now(), &clock)

	require.Empty(t, leds.mute, "muted: no blinking, solid off")
}

func TestMuteLEDBlinksWhenUnmuted(t *testing.T) {
	d := newTestDevice(t)
	leds := d.leds.(*noopLEDs)

	var clock coarsetimer.Timer
	d.Service(clock.Now(), &clock)
	clock.SetCounter(FlashSlowTicks + 1)
	d.Service(clock.Now(), &clock)

	require.Equal(t, []bool{true}, leds.mute)
}
