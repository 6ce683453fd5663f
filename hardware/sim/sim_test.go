package sim

import (
	"context"
	"testing"
	"time"
)

func TestSelfTestLoopback(t *testing.T) {
	l := NewLine()

	l.SetDirection(true)
	l.Break(100 * time.Microsecond)
	l.Mark(10 * time.Microsecond)

	ctx := context.Background()
	if err := l.WriteSlots(ctx, []byte{0x00, 1, 2, 3}); err != nil {
		t.Fatalf("WriteSlots: %v", err)
	}

	d, err := l.ReadBreak(ctx)
	if err != nil || d != 100*time.Microsecond {
		t.Fatalf("ReadBreak = %v, %v", d, err)
	}

	got, err := l.ReadSlots(ctx, time.Millisecond, 512)
	if err != nil {
		t.Fatalf("ReadSlots: %v", err)
	}
	want := []byte{0x00, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConnectedPairPassesFrame(t *testing.T) {
	a, b := NewLine(), NewLine()
	Connect(a, b)

	ctx := context.Background()
	if err := a.WriteSlots(ctx, []byte{0x00, 9}); err != nil {
		t.Fatalf("WriteSlots: %v", err)
	}

	got, err := b.ReadSlots(ctx, time.Millisecond, 512)
	if err != nil {
		t.Fatalf("ReadSlots: %v", err)
	}
	if len(got) != 2 || got[0] != 0x00 || got[1] != 9 {
		t.Fatalf("got %v, want [0 9]", got)
	}
}

func TestReadRawTimesOutEmpty(t *testing.T) {
	l := NewLine()
	ctx := context.Background()

	got, err := l.ReadRaw(ctx, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty window", got)
	}
}
