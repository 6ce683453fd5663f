package responder

import (
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/transceiver"
)

// dubPreambleLen is the number of 0xFE preamble bytes before a DUB
// response's 0xAA delimiter.
const dubPreambleLen = 7

// encodeDUBReply writes the full 24-byte raw DUB response for uid into
// buf: 7×0xFE, one 0xAA delimiter, the 12 bit-expanded UID bytes, then
// the 4 bit-expanded checksum bytes of those 12 bytes (E1.20 §7.5).
func encodeDUBReply(buf []byte, uid rdm.UID) {
	i := 0
	for ; i < dubPreambleLen; i++ {
		buf[i] = 0xFE
	}
	buf[i] = 0xAA
	i++

	raw := uid.Bytes()
	var expanded [rdm.UIDLen * 2]byte
	for j, b := range raw {
		expanded[j*2] = b | 0xAA
		expanded[j*2+1] = b | 0x55
	}
	copy(buf[i:], expanded[:])
	i += len(expanded)

	checksum := rdm.Checksum(expanded[:])
	hi, lo := byte(checksum>>8), byte(checksum)
	buf[i+0] = hi | 0xAA
	buf[i+1] = hi | 0x55
	buf[i+2] = lo | 0xAA
	buf[i+3] = lo | 0x55
}

// DecodeDUBReply recovers the UID and checksum a captured raw DUB
// window encodes, masking out the 0xAA/0x55 tags. It scans for the
// 0xAA delimiter after the preamble rather than assuming window starts
// exactly at the first 0xFE, since the controller hands up a raw
// capture window that may include leading noise.
func DecodeDUBReply(window []byte) (uid rdm.UID, checksumOK bool) {
	delim := -1
	for i, b := range window {
		if b == 0xAA {
			delim = i
			break
		}
	}
	if delim < 0 || len(window) < delim+1+12+4 {
		return rdm.UID{}, false
	}

	expanded := window[delim+1 : delim+1+12]
	var raw [6]byte
	for j := range raw {
		raw[j] = expanded[j*2] & expanded[j*2+1]
	}
	uid = rdm.ParseUID(raw[:])

	csumBytes := window[delim+13 : delim+17]
	hi := csumBytes[0] & csumBytes[1]
	lo := csumBytes[2] & csumBytes[3]
	got := uint16(hi)<<8 | uint16(lo)

	return uid, got == rdm.Checksum(expanded)
}

// handleDUB implements the DISC_UNIQUE_BRANCH containment test: a muted
// responder, or a payload that is not exactly lower||upper (12 bytes),
// never replies. Otherwise it replies iff its own UID falls within
// [lower, upper] lexicographically.
func handleDUB(buf []byte, target *State, paramData []byte) int {
	if target.IsMuted || len(paramData) != 2*rdm.UIDLen {
		return transceiver.NoResponse
	}

	lower := rdm.ParseUID(paramData[0:rdm.UIDLen])
	upper := rdm.ParseUID(paramData[rdm.UIDLen : 2*rdm.UIDLen])

	if !target.UID.InRange(lower, upper) {
		return transceiver.NoResponse
	}

	encodeDUBReply(buf, target.UID)
	return -transceiver.DUBReplyLen
}

// handleMute answers DISC_MUTE (mute=true) or DISC_UN_MUTE
// (mute=false): the response is suppressed for a non-unicast request,
// and otherwise carries the 2-byte control field. Muting or unmuting
// also resets the mute LED blink timer.
func (d *Device) handleMute(buf []byte, target *State, req *rdm.Header, mute bool) int {
	target.IsMuted = mute
	d.ledState.resetMuteTimer()

	if req.DestUID.IsBroadcast() {
		return transceiver.NoResponse
	}

	data := rdm.PushU16(nil, target.controlField())
	return buildReply(buf, target, req, rdm.ResponseTypeAck, data)
}
