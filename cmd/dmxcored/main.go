// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command dmxcored is the hosted stand-in for the bare-metal firmware
// image: it wires the same hostapi.Core the production board builds,
// picks a transceiver.Line backend by flag, and drives the console
// command table over its own stdin/stdout. It is the one place in this
// module that takes configuration from flags and the environment
// rather than a hand-wired Init().
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/console"
	"github.com/jarule/core/hardware/periphrs485"
	"github.com/jarule/core/hardware/serial"
	"github.com/jarule/core/hardware/sim"
	"github.com/jarule/core/hostapi"
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

// logLEDs is a stand-in responder.LEDs that just logs transitions; the
// hosted daemon has no GPIO, the way hardware/sim stands in for a
// missing UART.
type logLEDs struct{}

func (logLEDs) SetIdentify(on bool) { log.Printf("led: identify=%v", on) }
func (logLEDs) SetMute(on bool)     { log.Printf("led: mute=%v", on) }

func main() {
	hw := flag.String("hw", "sim", "transceiver backend: sim, serial, periphrs485")
	devicePath := flag.String("device", os.Getenv("DMXCORE_DEVICE"), "serial device path (hw=serial) or tty (hw=periphrs485)")
	directionPin := flag.String("direction-pin", os.Getenv("DMXCORE_DIRECTION_PIN"), "GPIO line name for DE/RE (hw=periphrs485)")
	uidFlag := flag.String("uid", "7a70:00000001", "responder UID, manufacturer:device hex")
	mode := flag.String("mode", "responder", "initial mode: controller or responder")
	flag.Parse()

	uid, err := parseUID(*uidFlag)
	if err != nil {
		log.Fatalf("dmxcored: %v", err)
	}

	line, err := openLine(*hw, *devicePath, *directionPin)
	if err != nil {
		log.Fatalf("dmxcored: %v", err)
	}
	if closer, ok := line.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	clock := &coarsetimer.Timer{}
	dev := responder.NewReferenceDevice(uid, nil, logLEDs{})

	core := hostapi.New(line, clock, dev, onEvent, onReply)
	switch *mode {
	case "controller":
		core.SetMode(transceiver.ModeController, 0)
	case "responder":
		core.SetMode(transceiver.ModeResponder, 0)
	default:
		log.Fatalf("dmxcored: unknown -mode %q (want controller or responder)", *mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	go func() {
		if err := core.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("dmxcored: engine stopped: %v", err)
		}
	}()

	fmt.Printf("dmxcored: hw=%s uid=%s mode=%s (h for help)\n", *hw, uid, core.Mode())
	runConsole(ctx, core)
	cancel()
}

func runConsole(ctx context.Context, core *hostapi.Core) {
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == '\n' || b == '\r' {
			continue
		}
		console.Dispatch(b, core, os.Stdout)
	}
}

func onEvent(ev transceiver.Event) {
	log.Printf("event: token=%d class=%v result=%v bytes=%d", ev.Token, ev.Class, ev.Result, len(ev.Bytes))
}

func onReply(buf []byte) {
	log.Printf("responder reply: %d bytes", len(buf))
}

func openLine(hw, device, directionPin string) (transceiver.Line, error) {
	switch hw {
	case "sim":
		return sim.NewLine(), nil
	case "serial":
		if device == "" {
			return nil, fmt.Errorf("hw=serial requires -device or DMXCORE_DEVICE")
		}
		return serial.Open(device)
	case "periphrs485":
		if device == "" || directionPin == "" {
			return nil, fmt.Errorf("hw=periphrs485 requires -device and -direction-pin")
		}
		return periphrs485.Open(device, directionPin)
	default:
		return nil, fmt.Errorf("unknown -hw %q (want sim, serial, periphrs485)", hw)
	}
}

func parseUID(s string) (rdm.UID, error) {
	var mfr uint32
	var dev uint32
	if _, err := fmt.Sscanf(s, "%04x:%08x", &mfr, &dev); err != nil {
		return rdm.UID{}, fmt.Errorf("invalid UID %q, want manufacturer:device hex (e.g. 7a70:00000001): %w", s, err)
	}
	return rdm.UID{Manufacturer: uint16(mfr), Device: dev}, nil
}
