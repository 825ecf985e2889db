package shamring_test

import (
	"testing"

	"shamring.dev/shamring"
)

func TestPlaceAndOpenFixedMpmc(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 1<<16)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { seg.Close() })

	q, off, ok := shamring.PlaceFixedMpmc[uint64](seg, 8)
	if !ok {
		t.Fatal("PlaceFixedMpmc failed")
	}
	q.Push(1)
	q.Push(2)

	opened, err := shamring.Open(name, 1<<16)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()

	q2, err := shamring.OpenFixedMpmc[uint64](opened, off, 8)
	if err != nil {
		t.Fatalf("OpenFixedMpmc: %v", err)
	}

	if got := q2.Pop(); got != 1 {
		t.Fatalf("Pop() = %d, want 1", got)
	}
	if got := q2.Pop(); got != 2 {
		t.Fatalf("Pop() = %d, want 2", got)
	}
}

func TestOpenFixedMpmcOutOfBounds(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 256)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { seg.Close() })

	if _, err := shamring.OpenFixedMpmc[uint64](seg, 0, 1000); err != shamring.ErrCapacityExceeded {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestPlaceFixedMpmcCapacityExceeded(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 64)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { seg.Close() })

	if _, _, ok := shamring.PlaceFixedMpmc[uint64](seg, 1000); ok {
		t.Fatal("PlaceFixedMpmc should fail when the ring does not fit")
	}
}
