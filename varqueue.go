package shamring

import (
	"unsafe"

	"shamring.dev/shamring/internal/varmpmc"
)

// cacheLineAlign is the alignment PlaceFixedMpmc and PlaceVarMpmc
// bump-allocate their queues at, matching the 128-byte cache line
// both queue layouts assume internally (spec.md §3).
const cacheLineAlign = 128

// PlaceVarMpmc bump-allocates and constructs a new variable-size MPMC
// byte ring of n bytes inside s. n must be a power of two of at least
// 128 bytes. It returns the queue and the byte offset it was placed
// at.
func PlaceVarMpmc(s *Segment, n uint64) (*varmpmc.VarMpmc, uintptr, bool) {
	size := varmpmc.Size(n)
	off, ok := s.allocateAligned(size, cacheLineAlign)
	if !ok {
		return nil, 0, false
	}
	base := uintptr(unsafe.Pointer(&s.Data()[off]))
	return varmpmc.New(base, n), off, true
}

// OpenVarMpmc reinterprets the bytes at offset in s as an existing
// variable-size MPMC byte ring of capacity n. The caller must supply
// the same offset and n PlaceVarMpmc returned for this ring.
func OpenVarMpmc(s *Segment, offset uintptr, n uint64) (*varmpmc.VarMpmc, error) {
	data := s.Data()
	size := varmpmc.Size(n)
	if offset+uintptr(size) > uintptr(len(data)) {
		return nil, ErrCapacityExceeded
	}
	base := uintptr(unsafe.Pointer(&data[offset]))
	return varmpmc.Open(base, n), nil
}
