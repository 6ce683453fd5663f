package responder

import "github.com/jarule/core/rdm"

func getDMXPersonality(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return []byte{s.CurrentPersonality, uint8(len(s.Def.Personalities))}, 0, true
}

func setDMXPersonality(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	idx := req.ParamData[0]
	if idx < 1 || int(idx) > len(s.Def.Personalities) {
		return nil, rdm.NackDataOutOfRange, false
	}

	clearFactoryDefaults(s, idx != s.CurrentPersonality)
	s.CurrentPersonality = idx

	return nil, 0, true
}

func getDMXPersonalityDescription(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 1 {
		return nil, rdm.NackFormatError, false
	}

	idx := req.ParamData[0]
	if idx < 1 || int(idx) > len(s.Def.Personalities) {
		return nil, rdm.NackDataOutOfRange, false
	}
	p := s.Def.Personalities[idx-1]

	buf := []byte{idx}
	buf = rdm.PushU16(buf, p.Footprint)
	buf = append(buf, []byte(p.Description)...)

	return buf, 0, true
}

func getDMXStartAddress(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	return rdm.PushU16(nil, s.DMXStartAddress), 0, true
}

func setDMXStartAddress(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 2 {
		return nil, rdm.NackFormatError, false
	}

	addr := uint16(req.ParamData[0])<<8 | uint16(req.ParamData[1])
	if addr < 1 || addr > 512 {
		return nil, rdm.NackDataOutOfRange, false
	}

	clearFactoryDefaults(s, addr != s.DMXStartAddress)
	s.DMXStartAddress = addr

	return nil, 0, true
}

func getSlotInfo(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	p := currentPersonality(s)
	if p == nil {
		return nil, 0, true
	}

	buf := make([]byte, 0, len(p.Slots)*5)
	for i, slot := range p.Slots {
		buf = rdm.PushU16(buf, uint16(i))
		buf = append(buf, slot.SlotType)
		buf = rdm.PushU16(buf, slot.SlotLabelID)
	}
	return buf, 0, true
}

func getSlotDescription(s *State, req *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if len(req.ParamData) != 2 {
		return nil, rdm.NackFormatError, false
	}

	offset := uint16(req.ParamData[0])<<8 | uint16(req.ParamData[1])
	p := currentPersonality(s)
	if p == nil || int(offset) >= len(p.Slots) {
		return nil, rdm.NackDataOutOfRange, false
	}

	buf := rdm.PushU16(nil, offset)
	buf = append(buf, []byte(p.Slots[offset].Description)...)
	return buf, 0, true
}

func getDefaultSlotValue(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	p := currentPersonality(s)
	if p == nil {
		return nil, 0, true
	}

	buf := make([]byte, 0, len(p.Slots)*3)
	for i, slot := range p.Slots {
		buf = rdm.PushU16(buf, uint16(i))
		buf = append(buf, slot.DefaultValue)
	}
	return buf, 0, true
}
