package responder

import (
	"fmt"
	"sort"

	"github.com/jarule/core/rdm"
)

// NewDefinition validates and sorts pids by PID ascending (required
// for Dispatch's binary search) and returns a ready Definition. It
// panics on a duplicate PID, which is a programming error in the
// responder's own static table, not a runtime condition.
func NewDefinition(pids []PIDDescriptor, opts Definition) *Definition {
	sorted := append([]PIDDescriptor(nil), pids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PID < sorted[j].PID })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].PID == sorted[i-1].PID {
			panic(fmt.Sprintf("responder: duplicate PID %#04x in definition table", sorted[i].PID))
		}
	}

	opts.PIDs = sorted
	return &opts
}

func (d *Definition) find(pid rdm.PID) *PIDDescriptor {
	pids := d.PIDs
	i := sort.Search(len(pids), func(i int) bool { return pids[i].PID >= pid })
	if i < len(pids) && pids[i].PID == pid {
		return &pids[i]
	}
	return nil
}

// NewState constructs a responder instance sharing def, with every
// mutable field at its factory-default value.
func NewState(uid rdm.UID, def *Definition, isSub bool, label string) *State {
	s := &State{
		UID:   uid,
		Def:   def,
		IsSub: isSub,
	}
	s.resetFactoryDefaultsInto(label)
	return s
}

func (s *State) resetFactoryDefaultsInto(label string) {
	s.IsMuted = false
	s.IdentifyOn = false
	s.CurrentPersonality = 1
	s.DMXStartAddress = 1
	s.QueuedMessageCount = 0
	s.DeviceLabel = label

	s.Sensors = make([]SensorData, len(s.Def.Sensors))
	for i, def := range s.Def.Sensors {
		s.Sensors[i] = SensorData{}
		if def.Support&SupportsLowestHighest == 0 {
			s.Sensors[i].Lowest = SensorValueUnsupported
			s.Sensors[i].Highest = SensorValueUnsupported
		}
		if def.Support == 0 {
			s.Sensors[i].Recorded = SensorValueUnsupported
		}
	}

	s.UsingFactoryDefaults = true
}

// ResetToFactoryDefaults restores every mutable field to its initial
// value and sets UsingFactoryDefaults. The device label reverts to
// factoryLabel; the original construction label is not retained
// separately once SET has run, so callers pass it again here.
func (s *State) ResetToFactoryDefaults(factoryLabel string) {
	s.resetFactoryDefaultsInto(factoryLabel)
}

// clearFactoryDefaults drops the factory-defaults flag when changed is
// true. Only a SET that actually changes the value clears the flag.
func clearFactoryDefaults(s *State, changed bool) {
	if changed {
		s.UsingFactoryDefaults = false
	}
}

// rootOnlyPIDs names the administrative PIDs that a sub-device must
// never answer, even if its own definition lists them; such requests
// are dropped silently, with no NACK (E1.20 §6.3).
var rootOnlyPIDs = map[rdm.PID]bool{
	rdm.PIDDiscUniqueBranch:     true,
	rdm.PIDDiscMute:             true,
	rdm.PIDDiscUnMute:           true,
	rdm.PIDSupportedParameters:  true,
	rdm.PIDParameterDescription: true,
	rdm.PIDDeviceInfo:           true,
	rdm.PIDSoftwareVersionLabel: true,
	rdm.PIDDMXStartAddress:      true,
	rdm.PIDIdentifyDevice:       true,
}

// controlField computes the bits a DISC_MUTE/DISC_UN_MUTE reply's
// 2-byte parameter carries: bit 0 when the device has sub-devices, bit
// 1 when it is a managed proxy, bit 2 when it is a proxied device.
func (s *State) controlField() uint16 {
	var v uint16
	if s.SubDeviceCount > 0 {
		v |= 1 << 0
	}
	if s.IsManagedProxy {
		v |= 1 << 1
	}
	if s.IsProxiedDevice {
		v |= 1 << 2
	}
	return v
}

// Device is the aggregate a dispatcher is built from: one root State
// plus zero or more sub-devices keyed by their sub-device number. Each
// dispatch resolves the addressed State explicitly; there is no
// package-level current-responder pointer.
type Device struct {
	Root *State
	Sub  map[uint16]*State

	leds     LEDs
	ledState ledCadence
}

// NewDevice builds a Device around an already-constructed root State.
// Sub-devices are added with AddSubDevice.
func NewDevice(root *State, leds LEDs) *Device {
	return &Device{
		Root: root,
		Sub:  make(map[uint16]*State),
		leds: leds,
	}
}

// AddSubDevice registers a sub-device under number (1..0xFFFE; 0 is
// root and 0xFFFF is the all-sub-devices broadcast address) and keeps
// the root's SubDeviceCount in sync for the control field. A State
// without counters is given the root's instance.
func (d *Device) AddSubDevice(number uint16, s *State) {
	if s.Counters == nil {
		s.Counters = d.Root.Counters
	}
	d.Sub[number] = s
	d.Root.SubDeviceCount = uint16(len(d.Sub))
}

// resolve returns the State a sub-device field addresses, or nil if it
// names neither root nor a known sub-device.
func (d *Device) resolve(subDevice uint16) *State {
	if subDevice == rdm.RootDevice {
		return d.Root
	}
	return d.Sub[subDevice]
}
