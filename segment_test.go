package shamring_test

import (
	"strings"
	"testing"

	"shamring.dev/shamring"
)

func uniqueSegmentName(t *testing.T) string {
	t.Helper()
	return "shamring-test-" + strings.ReplaceAll(t.Name(), "/", "-")
}

func TestSegmentCreateOpenRoundTrip(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { seg.Close() })

	if !seg.Valid() {
		t.Fatal("created segment reports invalid")
	}
	if seg.Mode() != shamring.ModeCreate {
		t.Fatalf("Mode() = %v, want ModeCreate", seg.Mode())
	}
	if seg.Capacity() != 4096 {
		t.Fatalf("Capacity() = %d, want 4096", seg.Capacity())
	}

	opened, err := shamring.Open(name, 4096)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()

	if opened.Mode() != shamring.ModeOpen {
		t.Fatalf("Mode() = %v, want ModeOpen", opened.Mode())
	}

	seg.Data()[0] = 0x42
	if opened.Data()[0] != 0x42 {
		t.Fatal("writes through the creator are not visible to the opener")
	}
}

func TestSegmentCreateExisting(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { seg.Close() })

	if _, err := shamring.Create(name, 4096); err != shamring.ErrSegmentExists {
		t.Fatalf("second Create err = %v, want ErrSegmentExists", err)
	}
}

func TestSegmentOpenMissing(t *testing.T) {
	name := uniqueSegmentName(t)
	if _, err := shamring.Open(name, 4096); err != shamring.ErrSegmentNotFound {
		t.Fatalf("Open err = %v, want ErrSegmentNotFound", err)
	}
}

func TestSegmentCloseUnlinksOnlyForCreator(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	opened, err := shamring.Open(name, 4096)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := opened.Close(); err != nil {
		t.Fatalf("closing an open-mode segment: %v", err)
	}

	// The name must still be attachable: a non-owning Close must not
	// have unlinked it.
	reopened, err := shamring.Open(name, 4096)
	if err != nil {
		t.Fatalf("reopen after non-owning close: %v", err)
	}
	reopened.Close()

	if err := seg.Close(); err != nil {
		t.Fatalf("closing the creator segment: %v", err)
	}
	if _, err := shamring.Open(name, 4096); err != shamring.ErrSegmentNotFound {
		t.Fatalf("Open after owner close err = %v, want ErrSegmentNotFound", err)
	}
}

func TestSegmentDoubleCloseIsNoOp(t *testing.T) {
	name := uniqueSegmentName(t)
	seg, err := shamring.Create(name, 4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := seg.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := seg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if seg.Valid() {
		t.Fatal("segment should report invalid after Close")
	}
}
