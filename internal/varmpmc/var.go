// Package varmpmc implements the variable-size-element multi-producer
// / multi-consumer byte ring described in spec.md §4.D: a bounded
// lock-free queue of opaque, heterogeneously-sized byte records living
// in place inside a shared byte range, reclaimed with a three-cursor
// (tail/read/head) scheme and a stabilising bit hidden in head's low
// bit.
//
// No example in the retrieval pack implements this exact protocol —
// the C++ this system was distilled from
// (original_source/queue_mpmc_var.h) is an inconsistent draft spec.md
// itself flags as unreliable, so this file follows spec.md §4.D
// directly. The wrap-around two-span copy technique is grounded on
// the WriteAcquire/ReadAcquire split-span style of
// jangala-dev-devicecode-go's shmring (an SPSC byte ring), adapted
// here to the three-cursor MPMC scheme; the raw-uintptr, cache-line
// padded layout follows the same discipline used in this module's
// sibling package, internal/mpmc.
package varmpmc

import (
	"sync/atomic"
	"unsafe"
)

// cacheLine is the assumed false-sharing / block-alignment boundary,
// per spec.md §3 ("128 bytes assumed").
const cacheLine = 128

// header is the in-band per-block header. Its size field has three
// states: 0 = reserved but not yet published, >0 = holds a payload of
// that length, <0 = tombstoned, awaiting reclamation (absolute value
// is the payload length). It occupies exactly one cache line.
type header struct {
	size atomic.Int32
	_    [cacheLine - 4]byte
}

var headerSize = uint64(unsafe.Sizeof(header{}))

// control holds the three cursors, each on its own cache line.
// head's low bit is the stabilising flag described in spec.md §4.D;
// all space/ordering arithmetic on head masks it out, but the raw
// value (bit included) is what CAS operates on.
type control struct {
	head atomic.Uint64
	_    [cacheLine - 8]byte
	tail atomic.Uint64
	_    [cacheLine - 8]byte
	read atomic.Uint64
	_    [cacheLine - 8]byte
}

// VarMpmc is a bounded lock-free MPMC byte ring of N bytes,
// constructed in place inside a shared byte range. Like FixedMpmc, a
// VarMpmc value is a process-local view: base, ctrl, n and mask are
// ordinary Go values computed from the local mapping's address: only
// the cursors and the data ring itself live in shared memory.
type VarMpmc struct {
	base uintptr // process-local pointer to data[N]
	ctrl *control
	n    uint64
	mask uint64
}

// Size returns the number of bytes New/Open requires for a byte ring
// of capacity n, including the three-cursor control block.
func Size(n uint64) uintptr {
	return uintptr(unsafe.Sizeof(control{})) + uintptr(n)
}

// New constructs a VarMpmc with an N-byte ring at base. N must be a
// power of two of at least 128 bytes. base must point at
// Size(n)-bytes of memory owned exclusively by the caller during
// construction.
func New(base uintptr, n uint64) *VarMpmc {
	requireValidCapacity(n)
	q := view(base, n)

	// The header-at-head invariant depends on data[N] starting at all
	// zero; be explicit about it rather than relying on the
	// segment's own zero-fill, mirroring the original C++
	// constructor's memset(data_, 0, sizeof(data_)).
	clear(q.dataSlice())

	// head starts stabilised at position 0: the header there is
	// already zero (just cleared above), so the first producer must
	// not have to wait on a predecessor that never existed.
	q.ctrl.head.Store(1)
	q.ctrl.tail.Store(0)
	q.ctrl.read.Store(0)
	return q
}

// Open reinterprets an already-constructed VarMpmc at base. n must
// match the value New was called with.
func Open(base uintptr, n uint64) *VarMpmc {
	requireValidCapacity(n)
	return view(base, n)
}

func requireValidCapacity(n uint64) {
	if n < 128 || n&(n-1) != 0 {
		panic("varmpmc: capacity must be a power of two of at least 128 bytes")
	}
}

func view(base uintptr, n uint64) *VarMpmc {
	return &VarMpmc{
		base: base + uintptr(unsafe.Sizeof(control{})),
		ctrl: (*control)(unsafe.Pointer(base)),
		n:    n,
		mask: n - 1,
	}
}

func (q *VarMpmc) dataSlice() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(q.base)), q.n)
}

func (q *VarMpmc) headerAt(cursor uint64) *header {
	off := cursor & q.mask
	return (*header)(unsafe.Pointer(q.base + uintptr(off)))
}

// spans returns up to two contiguous byte spans starting at cursor
// (masked into the ring) covering length bytes, splitting at the ring
// boundary when the region wraps. p2 is nil when no wrap is needed.
func (q *VarMpmc) spans(cursor uint64, length int) (p1, p2 []byte) {
	data := q.dataSlice()
	off := cursor & q.mask
	avail := q.n - off
	if uint64(length) <= avail {
		return data[off : off+uint64(length)], nil
	}
	return data[off:q.n], data[:uint64(length)-avail]
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// blockSize returns a record's total footprint in bytes: header plus
// payload, rounded up to a whole cache line. Read literally, the
// producer/consumer protocol's "block = ceil((len+sizeof(Header)) /
// cacheLine)" is a count of cache lines, but head/tail/read cursors
// are indexed into data[N] as "cursor mod N" with N itself a byte
// count, and the capacity check compares byte quantities directly —
// the only dimensionally consistent reading is that block is bytes,
// aligned up to the cache line, matching the block/padding
// description given for a stored record elsewhere.
func blockSize(payloadLen uint64) uint64 {
	return alignUp(payloadLen+headerSize, cacheLine)
}

// TryPush attempts to enqueue data as a single record. It returns
// false when there is not enough free space right now, whether
// because the ring is genuinely full or because free space is
// fragmented behind not-yet-reclaimed tombstones; a caller that gets
// false may retry after a concurrent TryPop or Shrink.
func (q *VarMpmc) TryPush(data []byte) bool {
	block := blockSize(uint64(len(data)))
	shrunk := false

	for {
		tail := q.ctrl.tail.Load()
		rawHead := q.ctrl.head.Load()
		head := rawHead &^ 1

		if (head-tail)+block+headerSize > q.n {
			if !shrunk {
				// Opportunistic reclamation: spec.md's open
				// questions permit try_push to run shrink when space
				// looks tight, since reclamation may otherwise
				// starve under many producers and few consumers.
				shrunk = true
				q.Shrink()
				continue
			}
			return false
		}

		newHead := head + block
		if !q.ctrl.head.CompareAndSwap(head|1, newHead) {
			// Either another producer already advanced head, or the
			// header at head has not been stabilised yet by whoever
			// claimed it last; either way, reassess from scratch.
			continue
		}

		// We now exclusively own the header slot at newHead: it is
		// the next record's header, and the invariant requires it be
		// pre-zeroed and stabilised before we (or anyone) can move on.
		next := q.headerAt(newHead)
		next.size.Store(0)
		q.ctrl.head.Store(newHead | 1)

		p1, p2 := q.spans(head+cacheLine, len(data))
		n := copy(p1, data)
		if p2 != nil {
			copy(p2, data[n:])
		}

		q.headerAt(head).size.Store(int32(len(data)))
		return true
	}
}

// TryPop attempts to dequeue one record. It returns false if there is
// no published record at the current read position, or if it lost a
// race against another consumer for the same record; it never blocks
// indefinitely, only spinning as long as a producer is actively
// stabilising the header this consumer is about to inspect.
func (q *VarMpmc) TryPop() (data []byte, ok bool) {
	read := q.ctrl.read.Load()

	// This spin ends the moment a producer finishes zeroing and
	// stabilising the header at read; it is bounded by that
	// producer's progress, not by an idle system.
	for q.ctrl.head.Load() == read {
	}

	h := q.headerAt(read)
	size := h.size.Load()
	if size <= 0 {
		return nil, false
	}

	block := blockSize(uint64(size))
	newRead := read + block
	if !q.ctrl.read.CompareAndSwap(read, newRead) {
		return nil, false
	}

	out := make([]byte, size)
	p1, p2 := q.spans(read+cacheLine, int(size))
	n := copy(out, p1)
	if p2 != nil {
		copy(out[n:], p2)
	}

	h.size.Store(-size)
	q.Shrink()
	return out, true
}

// Shrink advances tail past every contiguous tombstoned block
// immediately following it, stopping at the first block that is
// reserved (size == 0) or published (size > 0). Any consumer may call
// it; TryPop always does so after a successful pop, and TryPush may
// call it opportunistically when space looks tight.
func (q *VarMpmc) Shrink() {
	for {
		tail := q.ctrl.tail.Load()
		h := q.headerAt(tail)
		size := h.size.Load()
		if size >= 0 {
			return
		}
		newTail := tail + blockSize(uint64(-size))
		if !q.ctrl.tail.CompareAndSwap(tail, newTail) {
			// Another reclaimer advanced tail first; reassess from
			// whatever tail is now rather than retrying this CAS.
			continue
		}
	}
}

// Size returns (head &^ 1) - tail after an internal Shrink: a
// best-effort count, authoritative only once producers and consumers
// have quiesced.
func (q *VarMpmc) Size() uint64 {
	q.Shrink()
	head := q.ctrl.head.Load() &^ 1
	tail := q.ctrl.tail.Load()
	return head - tail
}

// Empty reports whether Size() == 0.
func (q *VarMpmc) Empty() bool {
	return q.Size() == 0
}

// Capacity returns N, the fixed size in bytes of the underlying ring.
func (q *VarMpmc) Capacity() uint64 {
	return q.n
}

// VarStats is a lock-free snapshot of the three cursors, for
// observing reclamation lag (spec.md's open question about shrink
// starvation under many producers and few consumers) without adding
// any logging to the hot path.
type VarStats struct {
	Tail    uint64
	Read    uint64
	Head    uint64
	Backlog uint64 // Read - Tail: tombstoned but not yet reclaimed
}

// Stats returns a snapshot of the three cursors. Like Size, it is
// best-effort under concurrency.
func (q *VarMpmc) Stats() VarStats {
	tail := q.ctrl.tail.Load()
	read := q.ctrl.read.Load()
	head := q.ctrl.head.Load() &^ 1
	return VarStats{Tail: tail, Read: read, Head: head, Backlog: read - tail}
}
