//go:build gousb

// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command hostctl is a minimal reference client of the device's host
// interface: it drives a real device over libusb vendor control
// transfers. Vendor-class USB framing lives entirely in this command,
// never in hostapi or transceiver. It is gated behind the gousb build
// tag because libusb is a cgo, not a pure-Go, dependency.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/gousb"
)

// Vendor request codes. These are this module's own convention for
// the USB control-transfer encoding of the host operations; the core
// itself never sees them; they exist only at this host/device
// boundary.
const (
	reqSetMode         = 0x01
	reqQueueDMX        = 0x02
	reqQueueASC        = 0x03
	reqQueueRDMDUB     = 0x04
	reqQueueRDMRequest = 0x05
	reqQueueSelfTest   = 0x06
	reqReset           = 0x07
	reqGetCounters     = 0x08
)

const (
	modeController = 0
	modeResponder  = 1
)

func main() {
	vidFlag := flag.String("vid", "1209", "USB vendor id, hex")
	pidFlag := flag.String("pid", "ab01", "USB product id, hex")
	op := flag.String("op", "counters", "operation: mode-controller, mode-responder, dmx, reset, counters")
	tokenFlag := flag.Uint("token", 0, "16-bit correlation token echoed on completion")
	dmxFile := flag.String("file", "", "path to raw DMX slot bytes (op=dmx)")
	flag.Parse()

	vid, err := strconv.ParseUint(*vidFlag, 16, 16)
	if err != nil {
		fatalf("invalid -vid %q: %v", *vidFlag, err)
	}
	pid, err := strconv.ParseUint(*pidFlag, 16, 16)
	if err != nil {
		fatalf("invalid -pid %q: %v", *pidFlag, err)
	}

	ctx := gousb.NewContext()
	defer ctx.Close()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		fatalf("open device %04x:%04x: %v", vid, pid, err)
	}
	if dev == nil {
		fatalf("no device found at %04x:%04x", vid, pid)
	}
	defer dev.Close()

	token := uint16(*tokenFlag)

	switch *op {
	case "mode-controller":
		fatalIfErr(setMode(dev, modeController, token))
	case "mode-responder":
		fatalIfErr(setMode(dev, modeResponder, token))
	case "dmx":
		if *dmxFile == "" {
			fatalf("op=dmx requires -file")
		}
		slots, err := os.ReadFile(*dmxFile)
		if err != nil {
			fatalf("reading %s: %v", *dmxFile, err)
		}
		fatalIfErr(queueDMX(dev, token, slots))
	case "reset":
		fatalIfErr(resetDevice(dev))
	case "counters":
		snap, err := getCounters(dev)
		fatalIfErr(err)
		fmt.Printf("dmx=%d rdm=%d short=%d len-mismatch=%d checksum-invalid=%d\n",
			snap[0], snap[1], snap[2], snap[3], snap[4])
	default:
		fatalf("unknown -op %q", *op)
	}
}

// bmRequestType bits per the USB 2.0 spec table 9-2: bit 7 is transfer
// direction, bits 6:5 select the vendor request type, bits 4:0 the
// device recipient.
const (
	bmReqDirOut = 0x00 << 7
	bmReqDirIn  = 0x01 << 7
	bmReqVendor = 0x02 << 5
	bmReqDevice = 0x00
)

// controlOut issues a host-to-device vendor control transfer, treating
// any non-nil error as a rejected request.
func controlOut(dev *gousb.Device, request uint8, value, index uint16, data []byte) error {
	_, err := dev.Control(bmReqDirOut|bmReqVendor|bmReqDevice, request, value, index, data)
	return err
}

func controlIn(dev *gousb.Device, request uint8, value, index uint16, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := dev.Control(bmReqDirIn|bmReqVendor|bmReqDevice, request, value, index, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func setMode(dev *gousb.Device, mode int, token uint16) error {
	return controlOut(dev, reqSetMode, uint16(mode), token, nil)
}

func queueDMX(dev *gousb.Device, token uint16, slots []byte) error {
	if len(slots) > 512 {
		return fmt.Errorf("dmx frame too long: %d slots (max 512)", len(slots))
	}
	return controlOut(dev, reqQueueDMX, token, 0, slots)
}

func resetDevice(dev *gousb.Device) error {
	return controlOut(dev, reqReset, 0, 0, nil)
}

func getCounters(dev *gousb.Device) ([5]uint16, error) {
	var snap [5]uint16
	raw, err := controlIn(dev, reqGetCounters, 0, 0, 10)
	if err != nil {
		return snap, err
	}
	if len(raw) < 10 {
		return snap, fmt.Errorf("short counters reply: %d bytes", len(raw))
	}
	for i := range snap {
		snap[i] = binary.BigEndian.Uint16(raw[i*2 : i*2+2])
	}
	return snap, nil
}

func fatalIfErr(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "hostctl: "+format+"\n", args...)
	os.Exit(1)
}
