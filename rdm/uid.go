// RDM wire framing and UID handling.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package rdm implements RDM frame serialization, parsing, and the
// 16-bit additive checksum that terminates every frame on the wire.
// It has no knowledge of the transceiver or responder state machines
// that use it.
package rdm

import (
	"encoding/binary"
	"fmt"
)

// UIDLen is the wire length of a UID: 2 bytes manufacturer id, 4 bytes
// device id.
const UIDLen = 6

// BroadcastDeviceID is the device-id value that makes a UID a broadcast
// address for its manufacturer (or for all manufacturers, when paired
// with BroadcastAllManufacturers).
const BroadcastDeviceID = 0xFFFFFFFF

// BroadcastAllManufacturers is the manufacturer id of the "all
// manufacturers" broadcast UID.
const BroadcastAllManufacturers = 0xFFFF

// UID is a 48-bit RDM Unique Identifier: 2 bytes manufacturer id, 4
// bytes device id.
type UID struct {
	Manufacturer uint16
	Device       uint32
}

// Bytes returns the 6-byte big-endian wire encoding of the UID.
func (u UID) Bytes() [UIDLen]byte {
	var b [UIDLen]byte
	binary.BigEndian.PutUint16(b[0:2], u.Manufacturer)
	binary.BigEndian.PutUint32(b[2:6], u.Device)
	return b
}

// ParseUID decodes a 6-byte big-endian UID. The caller must ensure b has
// at least UIDLen bytes.
func ParseUID(b []byte) UID {
	return UID{
		Manufacturer: binary.BigEndian.Uint16(b[0:2]),
		Device:       binary.BigEndian.Uint32(b[2:6]),
	}
}

// Compare returns -1, 0, or 1 as u is lexicographically less than,
// equal to, or greater than v, comparing manufacturer id first.
func (u UID) Compare(v UID) int {
	switch {
	case u.Manufacturer < v.Manufacturer:
		return -1
	case u.Manufacturer > v.Manufacturer:
		return 1
	case u.Device < v.Device:
		return -1
	case u.Device > v.Device:
		return 1
	default:
		return 0
	}
}

// Less reports whether u sorts before v.
func (u UID) Less(v UID) bool { return u.Compare(v) < 0 }

// InRange reports whether lower <= u <= upper lexicographically, the
// containment test used by DISC_UNIQUE_BRANCH.
func (u UID) InRange(lower, upper UID) bool {
	return lower.Compare(u) <= 0 && u.Compare(upper) <= 0
}

// IsBroadcast reports whether the UID is a broadcast address: device id
// all-ones, either for the stated manufacturer or for every
// manufacturer.
func (u UID) IsBroadcast() bool {
	return u.Device == BroadcastDeviceID
}

// IsUnicast reports whether the UID is unicast, i.e. not a broadcast
// address in either its manufacturer or device position.
func (u UID) IsUnicast() bool {
	return !u.IsBroadcast()
}

// String renders the UID in the conventional manufacturer:device hex
// form, e.g. "7a70:00000001".
func (u UID) String() string {
	return fmt.Sprintf("%04x:%08x", u.Manufacturer, u.Device)
}

// BroadcastAll is the "all devices of all manufacturers" broadcast UID.
var BroadcastAll = UID{Manufacturer: BroadcastAllManufacturers, Device: BroadcastDeviceID}
