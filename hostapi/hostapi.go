// External operations facade over the DMX/RDM core.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hostapi is the external operations facade: the set of
// operations a USB transport (or, in this module, a hosted stand-in,
// see cmd/dmxcored) drives the core through, plus the completion-event
// callback. It is the single place that wires coarsetimer, rdm,
// transceiver, responder, and counters together.
package hostapi

import (
	"context"
	"time"

	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/counters"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

// Core is the wired-up facade: one Engine in one Mode, backed by one
// Line/Clock pair, with a responder.Device available whenever Mode is
// switched to Responder.
type Core struct {
	engine   *transceiver.Engine
	counters *counters.Counters
	timer    *coarsetimer.Timer
	device   *responder.Device

	cancel context.CancelFunc
	done   chan struct{}
}

// New wires a Core around line/clock (the platform capability objects)
// and device (the RDM responder state this unit answers discovery and
// PID requests as). Run must be called once to start the engine's
// foreground loop.
func New(line transceiver.Line, clock *coarsetimer.Timer, device *responder.Device, onEvent transceiver.EventFunc, onReply func([]byte)) *Core {
	cnt := &counters.Counters{}
	device.Root.Counters = cnt
	for _, sub := range device.Sub {
		sub.Counters = cnt
	}

	engine := transceiver.New(line, clock, cnt, device.Dispatch,
		transceiver.WithEventFunc(onEvent),
		transceiver.WithReplyFunc(onReply),
	)

	return &Core{
		engine:   engine,
		counters: cnt,
		timer:    clock,
		device:   device,
		done:     make(chan struct{}),
	}
}

// Run starts the engine's foreground loop and the LED-cadence service
// tick in the calling goroutine's place: it blocks until ctx is
// cancelled or Close is called. Callers that need non-blocking startup
// should run it in its own goroutine, exactly like cmd/dmxcored does.
func (c *Core) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	defer close(c.done)

	errc := make(chan error, 1)
	go func() { errc <- c.engine.Run(ctx) }()

	ticker := time.NewTicker(coarsetimer.Resolution * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-errc
			return ctx.Err()
		case <-ticker.C:
			c.timer.Advance()
			c.device.Service(c.timer.Now(), c.timer)
		}
	}
}

// Close stops Run and waits for it to return.
func (c *Core) Close() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
}

// SetMode changes the engine's role.
func (c *Core) SetMode(mode transceiver.Mode, token transceiver.Token) {
	c.engine.SetMode(mode, token)
}

// Mode reports the engine's current role.
func (c *Core) Mode() transceiver.Mode { return c.engine.Mode() }

// QueueDMX admits a DMX frame for transmission.
func (c *Core) QueueDMX(token transceiver.Token, slots []byte) bool {
	return c.engine.QueueDMX(token, slots)
}

// QueueASC admits an Alternate Start Code frame.
func (c *Core) QueueASC(token transceiver.Token, startCode byte, slots []byte) bool {
	return c.engine.QueueASC(token, startCode, slots)
}

// QueueRDMDUB admits a DISC_UNIQUE_BRANCH transmission.
func (c *Core) QueueRDMDUB(token transceiver.Token, frame []byte) bool {
	return c.engine.QueueRDMDUB(token, frame)
}

// QueueRDMRequest admits an RDM GET/SET/DISCOVERY request frame.
func (c *Core) QueueRDMRequest(token transceiver.Token, frame []byte, broadcast bool) bool {
	return c.engine.QueueRDMRequest(token, frame, broadcast)
}

// QueueSelfTest admits a self-test operation.
func (c *Core) QueueSelfTest(token transceiver.Token) bool {
	return c.engine.QueueSelfTest(token)
}

// Reset aborts in-flight work and returns the engine to idle.
func (c *Core) Reset() { c.engine.Reset() }

// Timing returns the engine's current timing configuration.
func (c *Core) Timing() transceiver.Timing { return c.engine.Timing() }

// SetBreakTime validates and applies a new transmit break duration.
func (c *Core) SetBreakTime(d time.Duration) error { return c.engine.SetBreakTime(d) }

// SetMarkTime validates and applies a new transmit mark duration.
func (c *Core) SetMarkTime(d time.Duration) error { return c.engine.SetMarkTime(d) }

// SetResponderDelay validates and applies a new responder turnaround
// delay.
func (c *Core) SetResponderDelay(d time.Duration) error { return c.engine.SetResponderDelay(d) }

// SetResponseTimeout applies a new unicast-response timeout.
func (c *Core) SetResponseTimeout(d time.Duration) error { return c.engine.SetResponseTimeout(d) }

// SetJitter applies a responder-delay jitter bound.
func (c *Core) SetJitter(d time.Duration) error { return c.engine.SetJitter(d) }

// SetDUBLimit validates and stores the DUB limit; the engine itself does
// not read it.
func (c *Core) SetDUBLimit(n int) error { return c.engine.SetDUBLimit(n) }

// Counters returns a snapshot of the receiver diagnostic counters.
func (c *Core) Counters() counters.Snapshot { return c.counters.Snapshot() }

// Device exposes the wired responder.Device, e.g. for the console's
// `u` (show UID) command or direct test injection.
func (c *Core) Device() *responder.Device { return c.device }
