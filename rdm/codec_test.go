package rdm

import (
	"bytes"
	"testing"
)

func testHeader() *Header {
	return &Header{
		DestUID:              UID{Manufacturer: 0x7a70, Device: 0x00000001},
		SrcUID:               UID{Manufacturer: 0x0001, Device: 0x00000001},
		TransactionNumber:    5,
		PortIDOrResponseType: byte(ResponseTypeAck),
		MessageCount:         0,
		SubDevice:            RootDevice,
		CommandClass:         GetCommandResponse,
		ParamID:              PIDDeviceLabel,
		ParamData:            []byte("bridge"),
	}
}

// TestRoundTrip checks Validate(Serialize(f)) recovers f.
func TestRoundTrip(t *testing.T) {
	h := testHeader()
	buf := Serialize(h)

	got, result := Validate(buf, len(buf))
	if result != ResultOK {
		t.Fatalf("Validate result = %v, want ResultOK", result)
	}

	if got.DestUID != h.DestUID || got.SrcUID != h.SrcUID {
		t.Fatalf("UID mismatch: got %+v", got)
	}

	if got.TransactionNumber != h.TransactionNumber ||
		got.CommandClass != h.CommandClass ||
		got.ParamID != h.ParamID ||
		got.SubDevice != h.SubDevice {
		t.Fatalf("header field mismatch: got %+v, want %+v", got, h)
	}

	if !bytes.Equal(got.ParamData, h.ParamData) {
		t.Fatalf("ParamData = %q, want %q", got.ParamData, h.ParamData)
	}
}

func TestValidateShortFrame(t *testing.T) {
	buf := Serialize(testHeader())

	if _, result := Validate(buf, HeaderLen); result != ResultShortFrame {
		t.Fatalf("result = %v, want ResultShortFrame", result)
	}

	if _, result := Validate(nil, 0); result != ResultShortFrame {
		t.Fatalf("result = %v, want ResultShortFrame for empty buffer", result)
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	buf := Serialize(testHeader())

	// corrupt the declared message length
	buf[2] = byte(len(buf)) // too large: claims more than is present

	if _, result := Validate(buf, len(buf)); result != ResultLengthMismatch {
		t.Fatalf("result = %v, want ResultLengthMismatch", result)
	}
}

func TestValidateChecksumInvalid(t *testing.T) {
	buf := Serialize(testHeader())
	buf[len(buf)-1] ^= 0xFF

	if _, result := Validate(buf, len(buf)); result != ResultChecksumInvalid {
		t.Fatalf("result = %v, want ResultChecksumInvalid", result)
	}
}

func TestChecksumAdditive(t *testing.T) {
	buf := []byte{0xCC, 0x01, 0x01}
	if got := Checksum(buf); got != 0xCC+0x01+0x01 {
		t.Fatalf("Checksum = %d, want %d", got, 0xCC+0x01+0x01)
	}
}

func TestUIDCompareAndRange(t *testing.T) {
	lower := UID{Manufacturer: 0x7a70, Device: 0}
	upper := UID{Manufacturer: 0x7a70, Device: 2}
	own := UID{Manufacturer: 0x7a70, Device: 1}

	if !own.InRange(lower, upper) {
		t.Fatal("own UID should be within [lower, upper]")
	}

	missUpper := UID{Manufacturer: 0x7a70, Device: 0}
	if own.InRange(lower, missUpper) {
		t.Fatal("own UID should not be within a range excluding it")
	}
}

func TestUIDBroadcast(t *testing.T) {
	if !BroadcastAll.IsBroadcast() {
		t.Fatal("BroadcastAll should be a broadcast UID")
	}

	unicast := UID{Manufacturer: 0x7a70, Device: 1}
	if unicast.IsBroadcast() || !unicast.IsUnicast() {
		t.Fatal("unicast UID misclassified")
	}
}
