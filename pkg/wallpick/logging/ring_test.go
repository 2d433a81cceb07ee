package logging

import (
	"fmt"
	"sync"
	"testing"
)

func TestRingOrder(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Push(Entry{Message: fmt.Sprintf("m%d", i)})
	}

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	got := r.Snapshot()
	want := []string{"m2", "m3", "m4"}
	for i, e := range got {
		if e.Message != want[i] {
			t.Errorf("Snapshot()[%d] = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestRingPartial(t *testing.T) {
	r := NewRing(4)
	r.Push(Entry{Message: "a"})
	r.Push(Entry{Message: "b"})

	got := r.Snapshot()
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestRingExactlyFull(t *testing.T) {
	r := NewRing(2)
	r.Push(Entry{Message: "a"})
	r.Push(Entry{Message: "b"})

	got := r.Snapshot()
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing(2)
	r.Push(Entry{Message: "a"})
	r.Push(Entry{Message: "b"})
	r.Push(Entry{Message: "c"})
	r.Reset()

	if r.Len() != 0 || len(r.Snapshot()) != 0 {
		t.Error("Reset() should empty the ring")
	}
}

func TestRingDefaultSize(t *testing.T) {
	r := NewRing(0)
	if len(r.buf) != DefaultRingSize {
		t.Errorf("NewRing(0) capacity = %d, want %d", len(r.buf), DefaultRingSize)
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRing(50)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Push(Entry{Message: "x"})
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("Len() = %d, want 50", r.Len())
	}
}
