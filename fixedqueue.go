package shamring

import (
	"unsafe"

	"shamring.dev/shamring/internal/mpmc"
)

// PlaceFixedMpmc bump-allocates and constructs a new fixed-size MPMC
// ring of the given element type and capacity inside s, cache-line
// aligned so its own internal slot/turn layout starts on a clean
// boundary. It returns the queue along with the byte offset it was
// placed at, which the creating process must hand to any other
// process that will call OpenFixedMpmc on the same segment.
func PlaceFixedMpmc[T any](s *Segment, capacity uint64) (*mpmc.FixedMpmc[T], uintptr, bool) {
	size := mpmc.Size[T](capacity)
	off, ok := s.allocateAligned(size, cacheLineAlign)
	if !ok {
		return nil, 0, false
	}
	base := uintptr(unsafe.Pointer(&s.Data()[off]))
	return mpmc.New[T](base, capacity), off, true
}

// OpenFixedMpmc reinterprets the bytes at offset in s as an existing
// fixed-size MPMC ring of the given element type and capacity. The
// caller must supply the same offset and capacity PlaceFixedMpmc
// returned for this ring; unlike VarMpmc, FixedMpmc stores no
// discoverable capacity of its own in shared memory.
func OpenFixedMpmc[T any](s *Segment, offset uintptr, capacity uint64) (*mpmc.FixedMpmc[T], error) {
	data := s.Data()
	size := mpmc.Size[T](capacity)
	if offset+uintptr(size) > uintptr(len(data)) {
		return nil, ErrCapacityExceeded
	}
	base := uintptr(unsafe.Pointer(&data[offset]))
	return mpmc.Open[T](base, capacity), nil
}
