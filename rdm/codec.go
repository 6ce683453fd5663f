package rdm

import "encoding/binary"

// PushU16 appends v to buf in big-endian order, as required for every
// multi-byte field on the RDM wire.
func PushU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// PushU32 appends v to buf in big-endian order.
func PushU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PushUID appends the 6-byte big-endian encoding of u to buf.
func PushUID(buf []byte, u UID) []byte {
	b := u.Bytes()
	return append(buf, b[:]...)
}

// Checksum computes the 16-bit additive sum of every byte in buf,
// including the start codes.
func Checksum(buf []byte) uint16 {
	var sum uint16
	for _, b := range buf {
		sum += uint16(b)
	}
	return sum
}

// AppendChecksum computes the additive checksum of buf and appends it
// as two big-endian bytes, returning the extended slice.
func AppendChecksum(buf []byte) []byte {
	return PushU16(buf, Checksum(buf))
}

// Serialize renders h as a complete RDM frame: start code, sub-start
// code, message length, header fields, parameter data, and checksum.
// The returned slice is always h.MessageLength()+ChecksumLen bytes.
func Serialize(h *Header) []byte {
	buf := make([]byte, 0, h.MessageLength()+ChecksumLen)

	buf = append(buf, StartCode, SubStartCode)
	buf = append(buf, byte(h.MessageLength()))
	buf = PushUID(buf, h.DestUID)
	buf = PushUID(buf, h.SrcUID)
	buf = append(buf, h.TransactionNumber, h.PortIDOrResponseType, h.MessageCount)
	buf = PushU16(buf, h.SubDevice)
	buf = append(buf, byte(h.CommandClass))
	buf = PushU16(buf, uint16(h.ParamID))
	buf = append(buf, byte(len(h.ParamData)))
	buf = append(buf, h.ParamData...)
	buf = AppendChecksum(buf)

	return buf
}

// ValidateResult names the structural outcome of parsing a received
// frame. Exactly one of the four is ever returned from Validate.
type ValidateResult int

const (
	// ResultOK: buf is a structurally valid RDM frame.
	ResultOK ValidateResult = iota
	// ResultShortFrame: buf is too small to contain a full header.
	ResultShortFrame
	// ResultLengthMismatch: the declared message length disagrees
	// with the number of bytes actually received, or is outside the
	// legal range.
	ResultLengthMismatch
	// ResultChecksumInvalid: the trailing checksum does not match the
	// computed additive sum.
	ResultChecksumInvalid
)

// Validate parses buf (the first len bytes of which are significant;
// buf may be longer, e.g. a reusable frame buffer) as an RDM frame. It
// never looks past declared message length + ChecksumLen.
//
// A header is structurally valid when:
//   - start code is StartCode and sub-start code is SubStartCode
//   - the declared message length is >= HeaderLen and <= len-ChecksumLen
//   - the trailing checksum matches the additive sum of the preceding
//     bytes
//
// Validate does not increment receiver counters; callers that want one
// increment per error kind do so themselves, since Validate has no
// dependency on the counters package.
func Validate(buf []byte, length int) (*Header, ValidateResult) {
	if length < HeaderLen+ChecksumLen {
		return nil, ResultShortFrame
	}

	if buf[0] != StartCode || buf[1] != SubStartCode {
		return nil, ResultShortFrame
	}

	msgLen := int(buf[2])

	if msgLen < HeaderLen || msgLen > length-ChecksumLen {
		return nil, ResultLengthMismatch
	}

	frame := buf[:msgLen]
	want := binary.BigEndian.Uint16(buf[msgLen : msgLen+ChecksumLen])

	if Checksum(frame) != want {
		return nil, ResultChecksumInvalid
	}

	h := &Header{
		DestUID:              ParseUID(frame[3:9]),
		SrcUID:               ParseUID(frame[9:15]),
		TransactionNumber:    frame[15],
		PortIDOrResponseType: frame[16],
		MessageCount:         frame[17],
		SubDevice:            binary.BigEndian.Uint16(frame[18:20]),
		CommandClass:         CommandClass(frame[20]),
		ParamID:              PID(binary.BigEndian.Uint16(frame[21:23])),
	}

	pdl := int(frame[23])

	if HeaderLen+pdl != msgLen {
		return nil, ResultLengthMismatch
	}

	if pdl > 0 {
		h.ParamData = append([]byte(nil), frame[HeaderLen:HeaderLen+pdl]...)
	}

	return h, ResultOK
}
