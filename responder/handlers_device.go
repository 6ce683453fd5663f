package responder

import "github.com/jarule/core/rdm"

// protocolVersion is the RDM protocol version DEVICE_INFO reports
// (1.0, encoded as major.minor bytes per E1.20 Table A-1).
const protocolVersion uint16 = 0x0100

func currentPersonality(s *State) *Personality {
	if int(s.CurrentPersonality) < 1 || int(s.CurrentPersonality) > len(s.Def.Personalities) {
		return nil
	}
	return &s.Def.Personalities[s.CurrentPersonality-1]
}

// getDeviceInfo answers DEVICE_INFO: the fixed 19-byte structure every
// RDM responder must carry.
func getDeviceInfo(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	var footprint uint16
	if p := currentPersonality(s); p != nil {
		footprint = p.Footprint
	}

	buf := make([]byte, 0, 19)
	buf = rdm.PushU16(buf, protocolVersion)
	buf = rdm.PushU16(buf, s.Def.ModelID)
	buf = rdm.PushU16(buf, s.Def.ProductCategory)
	buf = rdm.PushU32(buf, s.Def.SoftwareVersionID)
	buf = rdm.PushU16(buf, footprint)
	buf = append(buf, s.CurrentPersonality, uint8(len(s.Def.Personalities)))
	buf = rdm.PushU16(buf, s.DMXStartAddress)
	buf = rdm.PushU16(buf, s.SubDeviceCount)
	buf = append(buf, uint8(len(s.Def.Sensors)))

	return buf, 0, true
}

// getSupportedParameters answers SUPPORTED_PARAMETERS, filtering
// root-only PIDs when the responder is a sub-device and mandatory PIDs
// always.
func getSupportedParameters(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	buf := make([]byte, 0, len(s.Def.PIDs)*2)
	for _, d := range s.Def.PIDs {
		if mandatoryPIDs[d.PID] {
			continue
		}
		if s.IsSub && rootOnlyPIDs[d.PID] {
			continue
		}
		buf = rdm.PushU16(buf, uint16(d.PID))
	}
	return buf, 0, true
}

// mandatoryPIDs are never listed in SUPPORTED_PARAMETERS: every
// responder answers them unconditionally, per E1.20.
var mandatoryPIDs = map[rdm.PID]bool{
	rdm.PIDDiscUniqueBranch:     true,
	rdm.PIDDiscMute:             true,
	rdm.PIDDiscUnMute:           true,
	rdm.PIDSupportedParameters:  true,
	rdm.PIDDeviceInfo:           true,
	rdm.PIDSoftwareVersionLabel: true,
	rdm.PIDIdentifyDevice:       true,
}

func getProductDetailIDs(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	ids := s.Def.ProductDetailIDs
	if len(ids) > MaxProductDetails {
		ids = ids[:MaxProductDetails]
	}
	buf := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		buf = rdm.PushU16(buf, id)
	}
	return buf, 0, true
}

func getDeviceModelDescription(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte(s.Def.ModelDescription), 0, true
}

func getManufacturerLabel(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte(s.Def.ManufacturerLabel), 0, true
}

func getSoftwareVersionLabel(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte(s.Def.SoftwareVersionLabel), 0, true
}

func getBootSoftwareVersionID(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return rdm.PushU32(nil, s.Def.BootSoftwareVersionID), 0, true
}

func getBootSoftwareVersionLabel(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte(s.Def.BootSoftwareVersionLabel), 0, true
}

// maxDeviceLabelLen bounds DEVICE_LABEL's SET payload; anything longer
// is a FORMAT_ERROR.
const maxDeviceLabelLen = 32

func getDeviceLabel(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte(s.DeviceLabel), 0, true
}

func setDeviceLabel(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) > maxDeviceLabelLen {
		return nil, rdm.NackFormatError, false
	}

	label := string(req.ParamData)
	clearFactoryDefaults(s, label != s.DeviceLabel)
	s.DeviceLabel = label

	return nil, 0, true
}

func getIdentifyDevice(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if s.IdentifyOn {
		return []byte{1}, 0, true
	}
	return []byte{0}, 0, true
}

func setIdentifyDevice(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 || req.ParamData[0] > 1 {
		return nil, rdm.NackFormatError, false
	}

	on := req.ParamData[0] != 0
	clearFactoryDefaults(s, on != s.IdentifyOn)
	s.IdentifyOn = on

	return nil, 0, true
}

func getFactoryDefaults(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if s.UsingFactoryDefaults {
		return []byte{1}, 0, true
	}
	return []byte{0}, 0, true
}

func setFactoryDefaults(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	s.ResetToFactoryDefaults(s.DeviceLabel)
	return nil, 0, true
}
