//go:build windows

// LockFileEx/UnlockFileEx implementation of fileLock's single
// exclusive/non-blocking mode (see storage.go), using
// LOCKFILE_FAIL_IMMEDIATELY in place of the teacher's blocking call so
// a second process opening the same storage file gets ErrLocked back
// from Open instead of waiting.
package storage

import (
	"syscall"
	"unsafe"
)

var (
	modkernel32      = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = modkernel32.NewProc("LockFileEx")
	procUnlockFileEx = modkernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusiveLock   = 0x2
	lockfileFailImmediately = 0x1
)

func (l *fileLock) lock() error {
	ol := new(syscall.Overlapped)
	r, _, err := procLockFileEx.Call(
		l.f.Fd(),
		uintptr(lockfileExclusiveLock|lockfileFailImmediately),
		0,
		^uintptr(0),
		^uintptr(0),
		uintptr(unsafe.Pointer(ol)),
	)
	if r == 0 {
		if err == syscall.ERROR_LOCK_VIOLATION {
			return ErrLocked
		}
		return err
	}
	return nil
}

func (l *fileLock) unlock() error {
	ol := new(syscall.Overlapped)
	r, _, err := procUnlockFileEx.Call(l.f.Fd(), 0, ^uintptr(0), ^uintptr(0), uintptr(unsafe.Pointer(ol)))
	if r == 0 {
		return err
	}
	return nil
}
