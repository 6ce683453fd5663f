package responder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/counters"
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/transceiver"
)

var ownUID = rdm.UID{Manufacturer: 0x7a70, Device: 1}
var controllerUID = rdm.UID{Manufacturer: 0x0001, Device: 1}

type noopLEDs struct{ identify, mute []bool }

func (l *noopLEDs) SetIdentify(on bool) { l.identify = append(l.identify, on) }
func (l *noopLEDs) SetMute(on bool)     { l.mute = append(l.mute, on) }

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	return NewReferenceDevice(ownUID, &counters.Counters{}, &noopLEDs{})
}

// frameInBuf serializes h into a freshly-sized response buffer and
// returns both the buffer (sized for the reply) and the original
// request length, exactly the shape Device.Dispatch receives from
// transceiver.Engine.
func frameInBuf(h *rdm.Header) ([]byte, int) {
	req := rdm.Serialize(h)
	buf := make([]byte, rdm.MaxFrameLen)
	n := copy(buf, req)
	return buf, n
}

// TestDiscMuteRoot mutes the root device with a unicast DISC_MUTE and
// checks the ACK carries an empty control field.
func TestDiscMuteRoot(t *testing.T) {
	d := newTestDevice(t)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.DiscoveryCommand,
		ParamID:      rdm.PIDDiscMute,
	})

	replyLen := d.Dispatch(buf, n)
	require.Greater(t, replyLen, 0)

	reply, result := rdm.Validate(buf, replyLen)
	require.Equal(t, rdm.ResultOK, result)
	require.Equal(t, rdm.DiscoveryCommandResponse, reply.CommandClass)
	require.Equal(t, []byte{0x00, 0x00}, reply.ParamData)
	require.True(t, d.Root.IsMuted)

	// header echo
	require.Equal(t, controllerUID, reply.DestUID)
	require.Equal(t, ownUID, reply.SrcUID)
	require.Equal(t, uint16(rdm.RootDevice), reply.SubDevice)
}

// TestDUBHit sends a DISC_UNIQUE_BRANCH whose range contains the
// responder's UID and decodes the raw reply back.
func TestDUBHit(t *testing.T) {
	d := newTestDevice(t)

	param := dubRange(rdm.UID{Manufacturer: 0x7a70, Device: 0}, rdm.UID{Manufacturer: 0x7a70, Device: 2})

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      rdm.BroadcastAll,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.DiscoveryCommand,
		ParamID:      rdm.PIDDiscUniqueBranch,
		ParamData:    param,
	})

	replyLen := d.Dispatch(buf, n)
	require.Equal(t, -transceiver.DUBReplyLen, replyLen)

	window := buf[:transceiver.DUBReplyLen]
	uid, csumOK := DecodeDUBReply(window)
	require.True(t, csumOK)
	require.Equal(t, ownUID, uid)
}

// TestDUBMiss sends a DISC_UNIQUE_BRANCH whose range excludes the
// responder's UID and expects silence.
func TestDUBMiss(t *testing.T) {
	d := newTestDevice(t)

	param := dubRange(rdm.UID{Manufacturer: 0x7a70, Device: 0}, rdm.UID{Manufacturer: 0x7a70, Device: 0})

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      rdm.BroadcastAll,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.DiscoveryCommand,
		ParamID:      rdm.PIDDiscUniqueBranch,
		ParamData:    param,
	})

	replyLen := d.Dispatch(buf, n)
	require.LessOrEqual(t, replyLen, 0)
}

func dubRange(lower, upper rdm.UID) []byte {
	lb, ub := lower.Bytes(), upper.Bytes()
	return append(append([]byte{}, lb[:]...), ub[:]...)
}

// TestRootOnlyPIDDroppedOnSubDevice checks a root-only PID addressed
// to a sub-device is dropped silently, with no NACK.
func TestRootOnlyPIDDroppedOnSubDevice(t *testing.T) {
	d := newTestDevice(t)
	sub := NewState(ownUID, NewReferenceDefinition(), true, "sub 1")
	d.AddSubDevice(1, sub)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    1,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDDMXStartAddress,
	})

	replyLen := d.Dispatch(buf, n)
	require.LessOrEqual(t, replyLen, 0)
}

// TestDiscMuteDroppedOnSubDevice checks a discovery command addressed
// to a sub-device is dropped silently like any other root-only PID: the
// sub-device must neither answer nor change its mute state.
func TestDiscMuteDroppedOnSubDevice(t *testing.T) {
	d := newTestDevice(t)
	sub := NewState(ownUID, NewReferenceDefinition(), true, "sub 1")
	d.AddSubDevice(1, sub)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    1,
		CommandClass: rdm.DiscoveryCommand,
		ParamID:      rdm.PIDDiscMute,
	})

	replyLen := d.Dispatch(buf, n)
	require.LessOrEqual(t, replyLen, 0)
	require.False(t, sub.IsMuted)
	require.False(t, d.Root.IsMuted)
}

// TestSetStartAddressOutOfRange checks SET DMX_START_ADDRESS to 513 is
// NACKed DATA_OUT_OF_RANGE and leaves the address unchanged.
func TestSetStartAddressOutOfRange(t *testing.T) {
	d := newTestDevice(t)
	before := d.Root.DMXStartAddress

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDDMXStartAddress,
		ParamData:    []byte{0x02, 0x01}, // 513
	})

	replyLen := d.Dispatch(buf, n)
	require.Greater(t, replyLen, 0)

	reply, result := rdm.Validate(buf, replyLen)
	require.Equal(t, rdm.ResultOK, result)
	require.Equal(t, uint8(rdm.ResponseTypeNackReason), reply.PortIDOrResponseType)
	require.Equal(t, []byte{0x00, byte(rdm.NackDataOutOfRange)}, reply.ParamData)
	require.Equal(t, before, d.Root.DMXStartAddress)
}

func TestUnknownPIDNacks(t *testing.T) {
	d := newTestDevice(t)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PID(0x7FFF),
	})

	replyLen := d.Dispatch(buf, n)
	require.Greater(t, replyLen, 0)

	reply, result := rdm.Validate(buf, replyLen)
	require.Equal(t, rdm.ResultOK, result)
	require.Equal(t, []byte{0x00, byte(rdm.NackUnknownPID)}, reply.ParamData)
}

func TestGetBroadcastDestNoResponse(t *testing.T) {
	d := newTestDevice(t)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      rdm.BroadcastAll,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDDeviceInfo,
	})

	replyLen := d.Dispatch(buf, n)
	require.LessOrEqual(t, replyLen, 0)
}
