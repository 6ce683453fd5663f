// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package serial implements transceiver.Line over a Linux tty, for
// development rigs using an off-the-shelf USB-RS485 adapter instead of the
// production board (hardware/tamago). It configures the port for DMX512's
// 250000 8N2 framing and toggles RTS by hand for direction control, rather
// than relying on the adapter's hardware auto-direction feature, so the
// same break/mark/slot timing the engine drives on bare metal applies here
// too.
package serial

import (
	"context"
	"time"

	goserial "github.com/daedaluz/goserial"
)

const baudRate = 250000

// Line wraps a goserial.Port as a transceiver.Line.
type Line struct {
	port *goserial.Port
}

// Open opens path (e.g. "/dev/ttyUSB0") and configures it for DMX512
// framing: 8 data bits, no parity, 2 stop bits, custom 250000 baud, RTS
// under manual control for the RS-485 direction enable.
func Open(path string) (*Line, error) {
	port, err := goserial.Open(path, goserial.NewOptions().SetReadTimeout(0))
	if err != nil {
		return nil, err
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, err
	}

	attrs.MakeRaw()
	attrs.Cflag &= ^goserial.PARENB
	attrs.Cflag |= goserial.CS8 | goserial.CSTOPB | goserial.CLOCAL | goserial.CREAD
	attrs.SetCustomSpeed(baudRate)

	if err := port.SetAttr2(goserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, err
	}

	l := &Line{port: port}
	l.SetDirection(false)

	return l, nil
}

func (l *Line) SetDirection(tx bool) {
	if tx {
		l.port.EnableModemLines(goserial.TIOCM_RTS)
	} else {
		l.port.DisableModemLines(goserial.TIOCM_RTS)
	}
}

// Break sends a line break of approximately d by setting the tty's BREAK
// condition, sleeping for d, and clearing it; the hold is only as exact
// as time.Sleep.
func (l *Line) Break(d time.Duration) {
	l.port.SetBreak()
	time.Sleep(d)
	l.port.ClearBreak()
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
	return l.port.Drain()
}

func (l *Line) ReadBreak(ctx context.Context) (time.Duration, error) {
	// The tty layer reports a break as a zero-length read with no error
	// on most line disciplines; this driver instead polls for the idle
	// gap DMX512 guarantees precedes every break and treats the first
	// read timeout as "a break is in progress", since goserial has no
	// direct break-detection event.
	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, err := l.port.ReadTimeout(buf, 50*time.Millisecond)
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

		n, err := l.port.ReadTimeout(buf, interSlot)
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

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 || ctx.Err() != nil {
			return out, nil
		}

		n, err := l.port.ReadTimeout(buf, remaining)
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}

		out = append(out, buf[0])
	}
}

// SelfTest requires an external loopback adapter (TX wired to RX) attached
// to the port; it is not attempted automatically since most development
// rigs are connected to real RS-485 hardware instead.
func (l *Line) SelfTest(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Close releases the underlying tty.
func (l *Line) Close() error {
	return l.port.Close()
}
