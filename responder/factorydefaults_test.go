package responder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/rdm"
)

// TestFactoryDefaultsFlag checks the flag clears on a changing SET and
// is restored by FACTORY_DEFAULTS.
func TestFactoryDefaultsFlag(t *testing.T) {
	d := newTestDevice(t)
	require.True(t, d.Root.UsingFactoryDefaults)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDIdentifyDevice,
		ParamData:    []byte{1},
	})

	replyLen := d.Dispatch(buf, n)
	require.Greater(t, replyLen, 0)
	require.False(t, d.Root.UsingFactoryDefaults)
	require.True(t, d.Root.IdentifyOn)

	buf2, n2 := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDFactoryDefaults,
	})
	d.Dispatch(buf2, n2)
	require.True(t, d.Root.UsingFactoryDefaults)
	require.False(t, d.Root.IdentifyOn)
}

// TestFactoryDefaultsFlagUnchangedValueNoClear verifies that a SET
// that does not actually change the field leaves the flag set.
func TestFactoryDefaultsFlagUnchangedValueNoClear(t *testing.T) {
	d := newTestDevice(t)
	require.Equal(t, uint8(1), d.Root.CurrentPersonality)

	buf, n := frameInBuf(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		SubDevice:    rdm.RootDevice,
		CommandClass: rdm.SetCommand,
		ParamID:      rdm.PIDDMXPersonality,
		ParamData:    []byte{1}, // already 1, no change
	})

	d.Dispatch(buf, n)
	require.True(t, d.Root.UsingFactoryDefaults)
}
