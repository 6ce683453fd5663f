// dmxbridge board support for tamago/arm
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Package dmxbridge provides hardware initialization and a transceiver.Line
// implementation for the production board this firmware targets: an i.MX6UL
// SoC (the same family the USB armory Mk II uses) wired to an RS-485
// transceiver in place of the armory's USB Type-C console, plus two status
// LEDs (identify, mute).
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm`.
package dmxbridge

import (
	"context"
	"time"

	"github.com/jarule/core/soc/nxp/gpio"
	"github.com/jarule/core/soc/nxp/uart"
)

const (
	// i.MX6UL memory map (IMX6ULRM Table 2-1). This board reuses UART2
	// and GPIO1 exactly as the USB armory Mk II wires them, just to
	// different peripherals: UART2 drives the RS-485 transceiver instead
	// of a USB-CDC console, and GPIO1 pins drive the transceiver's
	// direction enable and the two status LEDs instead of Type-C muxing.
	uart2Base = 0x021e8000
	gpio1Base = 0x0209c000

	ccmCCGR0 = 0x020c4068
	ccgrCG14 = 28
	ccgrCG13 = 26

	// Pin assignments, GPIO1.
	pinDirection = 16 // RS-485 driver enable (high = transmit)
	pinIdentify  = 17 // identify status LED
	pinMute      = 18 // mute status LED

	// uartClockHz is the UART_CLK_ROOT frequency with this board's clock
	// tree left at its power-on-reset configuration (24MHz crystal,
	// default PLL3 divider chain). A board that reconfigures the PLLs
	// for a different root frequency must update this.
	uartClockHz = 80000000
)

var gpio1 = &gpio.GPIO{
	Index: 1,
	Base:  gpio1Base,
	CCGR:  ccmCCGR0,
	CG:    ccgrCG13,
}

// Line is the board's transceiver.Line implementation: UART2 framed as
// DMX512 8N2, with GPIO1.16 as the RS-485 driver enable.
type Line struct {
	hw        *uart.UART
	direction *gpio.Pin

	interByte time.Duration
}

// NewLine initializes UART2 and GPIO1 and returns a ready-to-drive Line.
// The GPIO1 clock gate is enabled by gpio.GPIO.Init when a pin is first
// set up; the package-level Init does not touch it.
func NewLine() *Line {
	hw := &uart.UART{
		Index:    2,
		Base:     uart2Base,
		CCGR:     ccmCCGR0,
		CG:       ccgrCG14,
		Clock:    func() uint32 { return uartClockHz },
		Baudrate: 250000,
	}
	hw.Init()

	dir, err := gpio1.Init(pinDirection)
	if err != nil {
		panic(err)
	}
	dir.Out()
	dir.Low()

	return &Line{hw: hw, direction: dir, interByte: 44 * time.Microsecond}
}

func (l *Line) SetDirection(tx bool) {
	if tx {
		l.direction.High()
	} else {
		l.direction.Low()
	}
}

func (l *Line) Break(d time.Duration) {
	l.hw.SendBreak(d)
}

func (l *Line) Mark(d time.Duration) {
	time.Sleep(d)
}

func (l *Line) WriteSlots(ctx context.Context, buf []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_, err := l.hw.Write(buf)
	return err
}

func (l *Line) ReadBreak(ctx context.Context) (time.Duration, error) {
	for {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if l.hw.BreakDetected() {
			// The UART flags break on the framing byte itself; this
			// driver has no capture timer to measure the low period's
			// actual width, so it reports the shortest acceptable
			// responder break as a nominal value. Callers only use
			// ReadBreak to confirm a break happened and to pace the
			// subsequent read.
			return 88 * time.Microsecond, nil
		}
		time.Sleep(10 * time.Microsecond)
	}
}

func (l *Line) ReadSlots(ctx context.Context, interSlot time.Duration, max int) ([]byte, error) {
	out := make([]byte, 0, max)
	deadline := time.Now().Add(interSlot)

	for len(out) < max {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		c, valid := l.hw.Rx()
		if !valid {
			if time.Now().After(deadline) {
				return out, nil
			}
			time.Sleep(10 * time.Microsecond)
			continue
		}

		out = append(out, c)
		deadline = time.Now().Add(interSlot)
	}

	return out, nil
}

func (l *Line) ReadRaw(ctx context.Context, window time.Duration) ([]byte, error) {
	var out []byte
	deadline := time.Now().Add(window)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		c, valid := l.hw.Rx()
		if !valid {
			time.Sleep(10 * time.Microsecond)
			continue
		}

		out = append(out, c)
	}

	return out, nil
}

// SelfTest checks that the UART and direction GPIO are configured and
// responsive. It cannot exercise the RS-485 transceiver chip itself,
// since that requires an external loopback fixture this board does not
// wire by default, so it only verifies the controller side of the
// path.
func (l *Line) SelfTest(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	before := l.direction.Value()
	l.direction.Out()
	l.direction.High()

	if !l.direction.Value() {
		return errSelfTestDirection
	}

	if before {
		l.direction.High()
	} else {
		l.direction.Low()
	}

	return nil
}
