// Package shamring provides bounded, lock-free multi-producer /
// multi-consumer queues that live inside named OS shared-memory
// segments, so unrelated processes can exchange values or byte
// records without a broker, a socket, or a copy through the kernel.
//
// A producer process creates a segment, bump-allocates one or more
// queues inside it, and hands the segment's name to any number of
// other processes, which open the same segment and reinterpret the
// same byte range as the same queue type. Two shapes are provided:
// FixedMpmc[T], a ring holding up to N elements of one element type
// in fixed-size slots, and VarMpmc, a byte ring holding variable-length opaque
// records.
//
// There is no wire protocol beyond these in-memory layouts, no
// resizing, no blocking synchronization primitives beyond the queues'
// own spin loops, and no durability: a segment's contents are only as
// durable as the OS-backed memory holding them.
package shamring
