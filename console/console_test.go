package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/hardware/sim"
	"github.com/jarule/core/hostapi"
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

func newTestCore(t *testing.T) *hostapi.Core {
	t.Helper()
	var timer coarsetimer.Timer
	device := responder.NewReferenceDevice(rdm.UID{Manufacturer: 0x7a70, Device: 1}, nil, nil)
	core := hostapi.New(sim.NewLine(), &timer, device, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go core.Run(ctx)
	t.Cleanup(core.Close)

	return core
}

func TestDispatchModeQuery(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('m', core, &buf)
	require.Equal(t, "mode=controller\n", buf.String())
}

func TestDispatchToggleMode(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('M', core, &buf)
	require.Equal(t, transceiver.ModeResponder, core.Mode())
	require.Equal(t, "mode=responder\n", buf.String())
}

func TestDispatchCounters(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('c', core, &buf)
	require.Equal(t, "dmx=0 rdm=0 short=0 len-mismatch=0 checksum-invalid=0\n", buf.String())
}

func TestDispatchShowUID(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('u', core, &buf)
	require.Equal(t, "uid=7a70:00000001\n", buf.String())
}

func TestDispatchHelp(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('h', core, &buf)
	require.True(t, strings.Contains(buf.String(), "dump receive counters"))
}

func TestDispatchUnknownIsEchoedAsLogLine(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('z', core, &buf)
	require.Equal(t, "["+CurrentLevel().String()+"] z\n", buf.String())
}

func TestDispatchLogLevelAdjust(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	start := CurrentLevel()
	t.Cleanup(func() { level.Store(int32(start)) })

	Dispatch('+', core, &buf)
	require.Greater(t, int32(CurrentLevel()), int32(start))
}

func TestDispatchReset(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('r', core, &buf)
	require.Equal(t, "reset\n", buf.String())
}

func TestDispatchTiming(t *testing.T) {
	core := newTestCore(t)
	var buf bytes.Buffer

	Dispatch('t', core, &buf)
	require.True(t, strings.HasPrefix(buf.String(), "break="))
}
