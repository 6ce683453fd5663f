package responder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/rdm"
)

func TestRecordAndGetSensorValue(t *testing.T) {
	d := newTestDevice(t)
	d.Root.Sensors[0].Recorded = 42

	recBuf, recN := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDRecordSensors,
		ParamData:    []byte{0},
	})
	replyLen := d.Dispatch(recBuf, recN)
	require.Greater(t, replyLen, 0)
	require.True(t, d.Root.Sensors[0].Present)
	require.Equal(t, int16(42), d.Root.Sensors[0].Highest)
	require.Equal(t, int16(42), d.Root.Sensors[0].Lowest)

	getBuf, getN := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDSensorValue,
		ParamData:    []byte{0},
	})
	replyLen = d.Dispatch(getBuf, getN)
	require.Greater(t, replyLen, 0)

	reply, result := rdm.Validate(getBuf, replyLen)
	require.Equal(t, rdm.ResultOK, result)
	require.Equal(t, byte(0), reply.ParamData[0])
}

func TestSensorValueOutOfRangeNacks(t *testing.T) {
	d := newTestDevice(t)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDSensorValue,
		ParamData:    []byte{9},
	})

	replyLen := d.Dispatch(buf, n)
	require.Greater(t, replyLen, 0)

	reply, result := rdm.Validate(buf, replyLen)
	require.Equal(t, rdm.ResultOK, result)
	require.Equal(t, []byte{0x00, byte(rdm.NackDataOutOfRange)}, reply.ParamData)
}

func TestSetSensorValueResets(t *testing.T) {
	d := newTestDevice(t)
	d.Root.Sensors[0].Recorded = 77
	d.Root.Sensors[0].Present = true

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDSensorValue,
		ParamData:    []byte{0},
	})

	d.Dispatch(buf, n)
	require.False(t, d.Root.Sensors[0].Present)
	require.Equal(t, int16(0), d.Root.Sensors[0].Recorded)
}
