//go:build linux || darwin

package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// shmDir mirrors where POSIX shm_open-backed objects conventionally
// live. Go's standard library has no shm_open wrapper, so a regular
// file under this directory stands in for the kernel object the way
// markrussinovich-grpc-go-shmem's CreateSegment does for its named
// segments: any process that agrees on the path can open the same
// mapping.
func shmDir() string {
	if runtimeHasDevShm() {
		return "/dev/shm"
	}
	return os.TempDir()
}

func shmPath(name string) string {
	return filepath.Join(shmDir(), filepath.Base(name))
}

func runtimeHasDevShm() bool {
	fi, err := os.Stat("/dev/shm")
	return err == nil && fi.IsDir()
}

// Create creates a new named mapping, zero-initialized and truncated
// to size, readable and writable by user/group/other so that
// non-privileged sibling processes can attach.
func Create(name string, size int) (*Handle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d", size)
	}

	path := shmPath(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("shm: create %s: %w", name, err)
	}
	defer file.Close()

	// Interop requirement: world read+write regardless of umask.
	if err := file.Chmod(0666); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: chmod %s: %w", name, err)
	}

	if err := file.Truncate(int64(size)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: truncate %s: %w", name, err)
	}

	mem, err := syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("shm: mmap %s: %w", name, err)
	}

	return &Handle{name: name, mem: mem, fd: uintptr(file.Fd())}, nil
}

// Open attaches to an existing mapping created by Create.
func Open(name string, size int) (*Handle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d", size)
	}

	path := shmPath(name)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("shm: open %s: %w", name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("shm: stat %s: %w", name, err)
	}
	if info.Size() < int64(size) {
		return nil, fmt.Errorf("shm: %s too small: have %d want %d", name, info.Size(), size)
	}

	mem, err := syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %s: %w", name, err)
	}

	return &Handle{name: name, mem: mem, fd: uintptr(file.Fd())}, nil
}

// Close unmaps the view and, when unlink is true, removes the
// underlying name so no future Open can attach to it.
func Close(h *Handle, unlink bool) error {
	if h == nil || h.mem == nil {
		return nil
	}

	err := syscall.Munmap(h.mem)
	h.mem = nil

	if unlink {
		if rmErr := os.Remove(shmPath(h.name)); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}
