// Package shm is the small OS porting interface behind Segment.
//
// It is deliberately narrow: everything a shared-memory queue needs
// from the operating system is create/open/map/unmap/unlink, and
// nothing else lives here. Callers never see raw file descriptors or
// mmap addresses directly; they get a Handle and a []byte view.
package shm

import "errors"

// ErrNotSupported is returned on platforms without a shm_open-style
// facility wired up. Segment reports this as ErrSegmentInvalid
// rather than propagating it.
var ErrNotSupported = errors.New("shm: shared memory not supported on this platform")

// ErrAlreadyExists is returned by Create when a mapping with the same
// name is already present on the host.
var ErrAlreadyExists = errors.New("shm: segment already exists")

// ErrNotFound is returned by Open when no mapping with the given name
// exists.
var ErrNotFound = errors.New("shm: segment not found")

// Handle is an opaque reference to an OS-backed shared memory mapping.
//
// A Handle owns the mapped view for as long as it is open; Close
// unmaps the view and, when requested, unlinks the underlying name so
// no other process can attach to it afterwards.
type Handle struct {
	name string
	mem  []byte
	fd   uintptr
}

// Name returns the name the mapping was created or opened with.
func (h *Handle) Name() string {
	return h.name
}

// Size returns the size of the mapped view in bytes.
func (h *Handle) Size() int {
	return len(h.mem)
}

// FD returns the number of the file descriptor the mapping was made
// through. That descriptor is closed before Create or Open returns,
// so the value is not an open descriptor; the mapping does not depend
// on it.
//
// The exact type and meaning of this value depends on the platform;
// callers outside this package should not need it in normal use.
func (h *Handle) FD() uintptr {
	return h.fd
}

// Bytes returns the mapped view. The returned slice aliases the
// mapping directly; every byte written to it is immediately visible
// to any other process that has mapped the same name.
func (h *Handle) Bytes() []byte {
	return h.mem
}
