//go:build tamago && arm

package dmxbridge

import "github.com/jarule/core/soc/nxp/gpio"

// LEDs drives the board's two status LEDs and satisfies responder.LEDs,
// keeping the responder package free of any platform import.
type LEDs struct {
	identify *gpio.Pin
	mute     *gpio.Pin
}

// NewLEDs initializes GPIO1.17 (identify) and GPIO1.18 (mute) as outputs,
// both off.
func NewLEDs() *LEDs {
	identify, err := gpio1.Init(pinIdentify)
	if err != nil {
		panic(err)
	}
	identify.Out()
	identify.Low()

	mute, err := gpio1.Init(pinMute)
	if err != nil {
		panic(err)
	}
	mute.Out()
	mute.Low()

	return &LEDs{identify: identify, mute: mute}
}

func (l *LEDs) SetIdentify(on bool) {
	if on {
		l.identify.High()
	} else {
		l.identify.Low()
	}
}

func (l *LEDs) SetMute(on bool) {
	if on {
		l.mute.High()
	} else {
		l.mute.Low()
	}
}
