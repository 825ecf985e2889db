//go:build !linux && !darwin

package shm

// Create is unsupported outside linux/darwin in this repository; the
// OS shared-memory syscalls are treated as a small porting interface
// per spec.md §1, and only the two POSIX-family platforms are wired
// up here.
func Create(name string, size int) (*Handle, error) {
	return nil, ErrNotSupported
}

// Open is unsupported outside linux/darwin. See Create.
func Open(name string, size int) (*Handle, error) {
	return nil, ErrNotSupported
}

// Close is a no-op on unsupported platforms.
func Close(h *Handle, unlink bool) error {
	return nil
}
