package responder

import "github.com/jarule/core/rdm"

// getCommsStatus answers COMMS_STATUS with the shared receiver
// counters: short-frame, length-mismatch, and checksum-invalid, each
// as a big-endian uint16.
func getCommsStatus(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if s.Counters == nil {
		return nil, rdm.NackHardwareFault, false
	}

	snap := s.Counters.Snapshot()
	buf := make([]byte, 0, 6)
	buf = rdm.PushU16(buf, snap.RDMShortFrame)
	buf = rdm.PushU16(buf, snap.RDMLengthMismatch)
	buf = rdm.PushU16(buf, snap.RDMChecksumInvalid)

	return buf, 0, true
}

// setCommsStatus clears only the three comms counters, leaving the
// DMX/RDM frame totals untouched.
func setCommsStatus(s *State, _ *rdm.Header) ([]byte, rdm.NackReason, bool) {
	if s.Counters == nil {
		return nil, rdm.NackHardwareFault, false
	}
	s.Counters.ResetCommsStatus()
	return nil, 0, true
}
