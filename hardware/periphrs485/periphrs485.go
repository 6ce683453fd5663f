// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package periphrs485 implements transceiver.Line for single-board
// computers (Raspberry Pi and similar) wired to a discrete RS-485
// transceiver chip with its driver-enable pin on a general-purpose GPIO,
// rather than an adapter with its own auto-direction logic: periph.io
// drives the direction pin, tarm/serial drives the UART byte stream, the
// same two-capability split hardware/tamago uses between soc/nxp/gpio and
// soc/nxp/uart.
package periphrs485

import (
	"context"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const baudRate = 250000

// Line wraps a tarm/serial.Port and a periph.io direction gpio.PinIO.
type Line struct {
	port      *serial.Port
	direction gpio.PinIO
}

// Open opens dev (e.g. "/dev/ttyAMA0") at DMX512 framing and directionPin
// (e.g. "GPIO17") as the RS-485 driver enable. host.Init must run exactly
// once per process; Open calls it, which is a safe no-op on repeat calls.
func Open(dev, directionPin string) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	pin := gpioreg.ByName(directionPin)
	if pin == nil {
		return nil, errUnknownPin(directionPin)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        dev,
		Baud:        baudRate,
		Size:        8,
		StopBits:    serial.Stop2,
		Parity:      serial.ParityNone,
		ReadTimeout: 10 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	return &Line{port: port, direction: pin}, nil
}

func (l *Line) SetDirection(tx bool) {
	if tx {
		l.direction.Out(gpio.High)
	} else {
		l.direction.Out(gpio.Low)
	}
}

// Break approximates a DMX512 break by holding the UART's TX line low for
// d. tarm/serial exposes no break-generation ioctl, so this writes enough
// null bytes at the port's configured baud to cover d; unlike
// hardware/serial's SetBreak/ClearBreak hold this is not a true unframed break
// condition, a documented limitation of this backend.
func (l *Line) Break(d time.Duration) {
	byteTime := time.Second / (baudRate / 10)
	n := int(d/byteTime) + 1
	l.port.Write(make([]byte, n))
}

func (l *Line) Mark(d time.Duration) {
	time.Sleep(d)
}

func (l *Line) WriteSlots(ctx context.Context, buf []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_, err := l.port.Write(buf)
	if err != nil {
		return err
	}
	return l.port.Flush()
}

func (l *Line) ReadBreak(ctx context.Context) (time.Duration, error) {
	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, err := l.port.Read(buf)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 88 * time.Microsecond, nil
		}
	}
}

func (l *Line) ReadSlots(ctx context.Context, interSlot time.Duration, max int) ([]byte, error) {
	out := make([]byte, 0, max)
	buf := make([]byte, 1)

	for len(out) < max {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		n, err := l.port.Read(buf)
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}

		out = append(out, buf[0])
	}

	return out, nil
}

func (l *Line) ReadRaw(ctx context.Context, window time.Duration) ([]byte, error) {
	deadline := time.Now().Add(window)
	var out []byte
	buf := make([]byte, 1)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return out, nil
		}

		n, err := l.port.Read(buf)
		if err != nil {
			return out, err
		}
		if n > 0 {
			out = append(out, buf[0])
		}
	}

	return out, nil
}

// SelfTest requires an external TX/RX loopback fixture; not attempted
// automatically.
func (l *Line) SelfTest(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Close releases the serial port.
func (l *Line) Close() error {
	return l.port.Close()
}

type errUnknownPin string

func (e errUnknownPin) Error() string { return "periphrs485: unknown gpio pin " + string(e) }
