package transceiver

import (
	"context"
	"testing"
	"time"

	"github.com/jarule/core/counters"
	"github.com/jarule/core/rdm"
)

// fakeLine is a scriptable Line used only by this package's own tests.
// hardware/sim provides the richer, reusable fake used by the hostapi
// and console tests.
type fakeLine struct {
	writes [][]byte
	dirs   []bool

	breakDur time.Duration
	breakErr error

	slotSeq [][]byte
	slotErr []error
	slotIdx int

	rawWindow []byte
	rawErr    error

	selfTestErr error
}

func (f *fakeLine) SetDirection(tx bool) { f.dirs = append(f.dirs, tx) }
func (f *fakeLine) Break(d time.Duration) {}
func (f *fakeLine) Mark(d time.Duration)  {}

func (f *fakeLine) WriteSlots(ctx context.Context, buf []byte) error {
	cp := append([]byte(nil), buf...)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeLine) ReadBreak(ctx context.Context) (time.Duration, error) {
	if f.breakErr != nil {
		return 0, f.breakErr
	}
	return f.breakDur, nil
}

func (f *fakeLine) ReadSlots(ctx context.Context, interSlot time.Duration, max int) ([]byte, error) {
	if f.slotIdx >= len(f.slotSeq) {
		return nil, nil
	}
	i := f.slotIdx
	f.slotIdx++
	var err error
	if i < len(f.slotErr) {
		err = f.slotErr[i]
	}
	return f.slotSeq[i], err
}

func (f *fakeLine) ReadRaw(ctx context.Context, window time.Duration) ([]byte, error) {
	return f.rawWindow, f.rawErr
}

func (f *fakeLine) SelfTest(ctx context.Context) error { return f.selfTestErr }

func newTestEngine(line Line, now func() time.Time, dispatch Dispatcher) (*Engine, *counters.Counters) {
	c := &counters.Counters{}
	e := New(line, nil, c, dispatch, WithFineClock(now))
	return e, c
}

func TestQueueDMXRejectsOversize(t *testing.T) {
	e, _ := newTestEngine(&fakeLine{}, time.Now, nil)
	if e.QueueDMX(1, make([]byte, 513)) {
		t.Fatal("QueueDMX admitted 513 slots, want rejected")
	}
}

func TestQueueRejectedInResponderMode(t *testing.T) {
	e, _ := newTestEngine(&fakeLine{}, time.Now, nil)
	e.SetMode(ModeResponder, 0)

	if e.QueueDMX(1, []byte{1, 2, 3}) {
		t.Fatal("QueueDMX admitted while in responder mode")
	}
}

func TestControllerDMXSent(t *testing.T) {
	line := &fakeLine{}
	var events []Event
	e, _ := newTestEngine(line, time.Now, nil)
	e.onEvent = func(ev Event) { events = append(events, ev) }

	if !e.QueueDMX(42, []byte{1, 2, 3}) {
		t.Fatal("QueueDMX rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go e.Run(ctx)

	deadline := time.After(time.Second)
	for {
		if len(events) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no event received")
		case <-time.After(time.Millisecond):
		}
	}

	if events[0].Token != 42 || events[0].Result != ResultSent {
		t.Fatalf("event = %+v, want Token 42 ResultSent", events[0])
	}

	if len(line.writes) != 1 || line.writes[0][0] != 0x00 {
		t.Fatalf("wrote %v, want DMX start code first", line.writes)
	}
}

// TestControllerTXBackoff exercises the DUB backoff rule: queue a DUB at
// t=0; queuing an RDM request at t=5.7ms must stay queued past
// CTRL_DUB_BACKOFF (5.8ms after the DUB's completion), and proceed once
// t=5.9ms is reached.
func TestControllerTXBackoff(t *testing.T) {
	var now time.Time
	clock := func() time.Time { return now }

	line := &fakeLine{rawWindow: nil}

	var events []Event
	e, _ := newTestEngine(line, clock, nil)
	e.onEvent = func(ev Event) { events = append(events, ev) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.Run(ctx)

	e.QueueRDMDUB(1, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	waitFor(t, func() bool { return len(events) == 1 })

	if events[0].Result != ResultNoResponse {
		t.Fatalf("DUB result = %v, want ResultNoResponse (empty window)", events[0].Result)
	}

	// second op queued, but backoff (5.8ms from DUB completion) not
	// elapsed yet at a relative +5.7ms
	now = now.Add(5700 * time.Microsecond)
	e.QueueRDMRequest(2, makeValidRDMFrame(), false)

	time.Sleep(20 * time.Millisecond) // let the goroutine observe the queue
	if len(events) != 1 {
		t.Fatalf("second op completed before backoff elapsed: events=%+v", events)
	}

	now = now.Add(300 * time.Microsecond) // relative +6.0ms total, past 5.8ms backoff

	waitFor(t, func() bool { return len(events) == 2 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition never became true")
		case <-time.After(time.Millisecond):
		}
	}
}

func makeValidRDMFrame() []byte {
	h := &rdm.Header{
		DestUID:      rdm.UID{Manufacturer: 0x7a70, Device: 1},
		SrcUID:       rdm.UID{Manufacturer: 1, Device: 1},
		CommandClass: rdm.GetCommand,
		ParamID:      rdm.PIDDeviceInfo,
	}
	return rdm.Serialize(h)
}

func TestSetBreakTimeRange(t *testing.T) {
	e, _ := newTestEngine(&fakeLine{}, time.Now, nil)

	if err := e.SetBreakTime(43 * time.Microsecond); err == nil {
		t.Fatal("accepted break time below MinTxBreak")
	}
	if err := e.SetBreakTime(801 * time.Microsecond); err == nil {
		t.Fatal("accepted break time above MaxTxBreak")
	}
	if err := e.SetBreakTime(100 * time.Microsecond); err != nil {
		t.Fatalf("rejected valid break time: %v", err)
	}
}

func TestSetResponderDelayRange(t *testing.T) {
	e, _ := newTestEngine(&fakeLine{}, time.Now, nil)

	if err := e.SetResponderDelay(175 * time.Microsecond); err == nil {
		t.Fatal("accepted responder delay below RespDelayMin")
	}
	if err := e.SetResponderDelay(2*time.Millisecond + 1); err == nil {
		t.Fatal("accepted responder delay above RespDelayMax")
	}
}

func TestResetAbortsQueuedOps(t *testing.T) {
	var events []Event
	e, _ := newTestEngine(&fakeLine{breakErr: context.DeadlineExceeded}, time.Now, nil)
	e.onEvent = func(ev Event) { events = append(events, ev) }

	e.QueueDMX(1, []byte{1})
	e.QueueDMX(2, []byte{2})
	e.Reset()

	found := 0
	for _, ev := range events {
		if ev.Result == ResultAborted {
			found++
		}
	}

	if found == 0 {
		t.Fatal("Reset did not abort any queued operation")
	}
}
