package responder

import (
	"github.com/jarule/core/counters"
	"github.com/jarule/core/rdm"
)

// NewReferenceDefinition builds the Definition used by
// NewReferenceDevice and by this package's own tests: a single-
// personality dimmer with one temperature sensor, exercising every
// field a PID handler in this package reads.
func NewReferenceDefinition() *Definition {
	return NewDefinition(DefaultPIDs(), Definition{
		ModelID:                  0x0001,
		ProductCategory:          0x0101, // FIXTURE_DIMMER
		ModelDescription:         "Reference 1-Channel Dimmer",
		ManufacturerLabel:        "jarule",
		SoftwareVersionLabel:     "1.0.0",
		SoftwareVersionID:        0x00010000,
		BootSoftwareVersionID:    0x00010000,
		BootSoftwareVersionLabel: "1.0.0",
		ProductDetailIDs:         []uint16{0x0001}, // PRODUCT_DETAIL_TEST
		Personalities: []Personality{
			{
				Index:       1,
				Footprint:   1,
				Description: "1-channel dimmer",
				Slots: []Slot{
					{SlotType: 0x00, SlotLabelID: 0x0001, DefaultValue: 0, Description: "Intensity"},
				},
			},
		},
		Sensors: []SensorDef{
			{
				Type:        0x00, // SENS_TEMPERATURE
				Unit:        0x01, // UNITS_DEGREE_C
				Prefix:      0x00,
				RangeMin:    -20,
				RangeMax:    100,
				NormalMin:   0,
				NormalMax:   60,
				Support:     SupportsRecording | SupportsLowestHighest,
				Description: "board temperature",
			},
		},
	})
}

// NewReferenceDevice builds a single-root Device around
// NewReferenceDefinition, with no sub-devices, sharing cnt for
// COMMS_STATUS.
func NewReferenceDevice(uid rdm.UID, cnt *counters.Counters, leds LEDs) *Device {
	def := NewReferenceDefinition()
	root := NewState(uid, def, false, "reference dimmer")
	root.Counters = cnt

	return NewDevice(root, leds)
}
