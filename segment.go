package shamring

import (
	"sync/atomic"

	"shamring.dev/shamring/internal/shm"
)

//go:generate go tool stringer -type=SegmentMode

// SegmentMode records whether a Segment created its backing mapping
// or merely attached to one an existing creator owns.
type SegmentMode int

const (
	// ModeCreate segments own the backing mapping: Close unlinks it.
	ModeCreate SegmentMode = iota
	// ModeOpen segments attach to a mapping owned by its creator:
	// Close never unlinks.
	ModeOpen
)

// Segment is a named, fixed-capacity byte range mapped into the
// process's address space, per spec.md's Segment model. It is
// move-only in spirit: copying a Segment value and closing both
// copies double-unmaps the same mapping, so callers should pass
// *Segment, never dereference and copy it.
type Segment struct {
	name   string
	handle *shm.Handle
	mode   SegmentMode
	offset atomic.Uintptr // bump allocator cursor, §4.B
}

// Create allocates a new named segment of the given capacity in
// bytes. The calling process owns the returned segment: closing it
// unlinks the name so no future Open can attach.
func Create(name string, capacity int) (*Segment, error) {
	h, err := shm.Create(name, capacity)
	if err != nil {
		switch err {
		case shm.ErrAlreadyExists:
			return nil, ErrSegmentExists
		default:
			return nil, ErrSegmentInvalid
		}
	}
	return &Segment{name: name, handle: h, mode: ModeCreate}, nil
}

// Open attaches to an existing segment created by another (or the
// same) process via Create. The returned segment never unlinks the
// name on Close.
func Open(name string, capacity int) (*Segment, error) {
	h, err := shm.Open(name, capacity)
	if err != nil {
		switch err {
		case shm.ErrNotFound:
			return nil, ErrSegmentNotFound
		default:
			return nil, ErrSegmentInvalid
		}
	}
	return &Segment{name: name, handle: h, mode: ModeOpen}, nil
}

// Name returns the segment's name.
func (s *Segment) Name() string {
	return s.name
}

// Mode reports whether this segment owns its mapping.
func (s *Segment) Mode() SegmentMode {
	return s.mode
}

// Data returns the segment's full backing byte range. It is nil for
// an invalid or closed segment.
func (s *Segment) Data() []byte {
	if s.handle == nil {
		return nil
	}
	return s.handle.Bytes()
}

// Capacity returns the segment's total size in bytes.
func (s *Segment) Capacity() int {
	return len(s.Data())
}

// Size returns the number of bytes claimed so far by the bump
// allocator (§4.B). It is meaningful only for create-mode segments.
func (s *Segment) Size() int {
	return int(s.offset.Load())
}

// Valid reports whether the segment has a live mapping.
func (s *Segment) Valid() bool {
	return s.handle != nil
}

// Close unmaps the segment and, if this segment created the mapping,
// unlinks its name. Closing an already-closed or invalid segment is a
// no-op.
func (s *Segment) Close() error {
	if s == nil || s.handle == nil {
		return nil
	}
	err := shm.Close(s.handle, s.mode == ModeCreate)
	s.handle = nil
	return err
}
