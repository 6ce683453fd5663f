// RDM responder: PID dispatch, discovery, and per-device state.
// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package responder implements the RDM responder side of the core: a
// PID dispatch table, the handlers for the PID set a compliant device
// must answer, discovery (DUB/MUTE/UN-MUTE), and the
// sensor/personality/DMX-address model a responder carries. It is
// driven by transceiver.Engine through the Dispatch method, which
// satisfies transceiver.Dispatcher by structural typing alone; it
// imports transceiver only for the NoResponse/DUBReplyLen return-value
// contract.
package responder

import (
	"github.com/jarule/core/counters"
	"github.com/jarule/core/rdm"
)

// SensorValueUnsupported is written into a SensorData's Lowest/Highest/
// Recorded fields when the sensor definition does not support that
// kind of tracking.
const SensorValueUnsupported = 0

// InvalidStartAddress marks a responder that has not been assigned a
// DMX start address.
const InvalidStartAddress uint16 = 0xFFFF

// MaxProductDetails bounds PRODUCT_DETAIL_IDS replies. E1.20 leaves
// the exact cap to the implementer; six is the conventional value.
const MaxProductDetails = 6

// RecordedValueSupport bit flags.
const (
	SupportsRecording     = 1 << 0
	SupportsLowestHighest = 1 << 1
)

// SensorDef is the immutable shape of one sensor.
type SensorDef struct {
	Type        byte
	Unit        byte
	Prefix      byte
	RangeMin    int16
	RangeMax    int16
	NormalMin   int16
	NormalMax   int16
	Support     byte // RecordedValueSupport bits
	Description string
}

// SensorData is the mutable per-sensor reading state.
type SensorData struct {
	Present    bool
	Lowest     int16
	Highest    int16
	Recorded   int16
	ShouldNack bool
	NackReason rdm.NackReason
}

// Slot describes one DMX slot of a personality's footprint.
type Slot struct {
	SlotType     byte
	SlotLabelID  uint16
	DefaultValue byte
	Description  string
}

// Personality is one selectable operating mode of a responder. Index
// is 1-based, matching DMX_PERSONALITY's wire encoding.
type Personality struct {
	Index       uint8
	Footprint   uint16
	Description string
	Slots       []Slot
}

// HandlerFunc answers a single GET or SET request addressed to one
// device, given its already-resolved mutable State. It reports either
// a successful reply's parameter data or a NACK reason; the caller
// decides ACK vs NACK framing.
type HandlerFunc func(s *State, req *rdm.Header) (paramData []byte, nack rdm.NackReason, ok bool)

// PIDDescriptor is one row of a responder definition's dispatch table.
type PIDDescriptor struct {
	PID          rdm.PID
	Get          HandlerFunc
	Set          HandlerFunc
	GetParamSize int
}

// Definition is the immutable, shared-by-reference descriptor of a
// responder type: everything that does not vary per instance. PIDs
// must be sorted by PID value ascending; NewDefinition enforces this.
type Definition struct {
	ModelID                  uint16
	ProductCategory          uint16
	ModelDescription         string
	ManufacturerLabel        string
	SoftwareVersionLabel     string
	SoftwareVersionID        uint32
	BootSoftwareVersionID    uint32
	BootSoftwareVersionLabel string
	ProductDetailIDs         []uint16
	Personalities            []Personality
	Sensors                  []SensorDef
	PIDs                     []PIDDescriptor
}

// State is the mutable state of one logical responder, root device or
// sub-device, sharing a Definition. The zero value is not ready to
// use; construct with NewState.
type State struct {
	UID   rdm.UID
	Def   *Definition
	IsSub bool

	IsMuted              bool
	IdentifyOn           bool
	UsingFactoryDefaults bool
	CurrentPersonality   uint8
	DMXStartAddress      uint16
	QueuedMessageCount   uint8
	SubDeviceCount       uint16
	DeviceLabel          string
	IsManagedProxy       bool
	IsProxiedDevice      bool

	Sensors []SensorData

	// Counters is the shared receiver counter set COMMS_STATUS reports
	// and resets. It is the same instance across root and every
	// sub-device of one physical responder, since the counters describe
	// the line, not a logical sub-device.
	Counters *counters.Counters
}
