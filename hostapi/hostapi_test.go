package hostapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/hardware/sim"
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

func newTestCore(t *testing.T) (*Core, *sim.Line) {
	t.Helper()

	line := sim.NewLine()
	var timer coarsetimer.Timer
	device := responder.NewReferenceDevice(rdm.UID{Manufacturer: 0x7a70, Device: 1}, nil, nil)

	core := New(line, &timer, device, nil, nil)
	return core, line
}

func TestQueueDMXThenEventFires(t *testing.T) {
	line := sim.NewLine()
	var timer coarsetimer.Timer
	device := responder.NewReferenceDevice(rdm.UID{Manufacturer: 0x7a70, Device: 1}, nil, nil)

	events := make(chan transceiver.Event, 4)
	core := New(line, &timer, device, func(ev transceiver.Event) { events <- ev }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)
	defer core.Close()

	require.True(t, core.QueueDMX(7, []byte{1, 2, 3}))

	select {
	case ev := <-events:
		require.Equal(t, transceiver.Token(7), ev.Token)
		require.Equal(t, transceiver.ResultSent, ev.Result)
	case <-time.After(2 * time.Second):
		t.Fatal("no completion event")
	}
}

func TestModeSwitchAndCounters(t *testing.T) {
	core, _ := newTestCore(t)
	core.SetMode(transceiver.ModeResponder, 1)
	require.Equal(t, transceiver.ModeResponder, core.Mode())

	snap := core.Counters()
	require.Equal(t, uint16(0), snap.DMXFrames)
}

func TestResetClearsQueue(t *testing.T) {
	core, _ := newTestCore(t)
	require.True(t, core.QueueDMX(1, []byte{1}))
	core.Reset()
}

// TestControllerResponderRoundTrip wires two Cores over a connected
// line pair, one controller and one responder, and runs a GET
// DEVICE_INFO request end to end: break, slots, dispatch, turnaround,
// and the reply frame back at the controller.
func TestControllerResponderRoundTrip(t *testing.T) {
	a, b := sim.NewLine(), sim.NewLine()
	sim.Connect(a, b)

	ownUID := rdm.UID{Manufacturer: 0x7a70, Device: 1}
	controllerUID := rdm.UID{Manufacturer: 1, Device: 1}

	var ctrlTimer, respTimer coarsetimer.Timer

	events := make(chan transceiver.Event, 4)
	ctrl := New(a, &ctrlTimer,
		responder.NewReferenceDevice(controllerUID, nil, nil),
		func(ev transceiver.Event) { events <- ev }, nil)
	require.NoError(t, ctrl.SetResponseTimeout(2*time.Second))

	resp := New(b, &respTimer,
		responder.NewReferenceDevice(ownUID, nil, nil), nil, nil)
	resp.SetMode(transceiver.ModeResponder, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	go resp.Run(ctx)
	defer ctrl.Close()
	defer resp.Close()

	req := rdm.Serialize(&rdm.Header{
		DestUID:      ownUID,
		SrcUID:       controllerUID,
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDDeviceInfo,
	})
	require.True(t, ctrl.QueueRDMRequest(9, req, false))

	select {
	case ev := <-events:
		require.Equal(t, transceiver.Token(9), ev.Token)
		require.Equal(t, transceiver.ResultResponse, ev.Result)

		reply, result := rdm.Validate(ev.Bytes, len(ev.Bytes))
		require.Equal(t, rdm.ResultOK, result)
		require.Equal(t, rdm.GetCommandResponse, reply.CommandClass)
		require.Equal(t, controllerUID, reply.DestUID)
		require.Equal(t, ownUID, reply.SrcUID)
		require.Len(t, reply.ParamData, 19)
	case <-time.After(5 * time.Second):
		t.Fatal("no response event")
	}
}
