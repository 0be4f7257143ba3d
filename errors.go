package sectorfs

import (
	"errors"
	"fmt"
)

// Stable error codes, per spec §6.4. These values are part of the wire
// contract with callers that care about the numeric code (e.g. a C
// binding) and must never change.
const (
	CodeNotMounted      = -100
	CodeAlreadyMounted  = -101
	CodeInvalidInode    = -102
	CodeOutOfSpace      = -103
	CodeOutOfInodes     = -104
	CodeCorruptDisk     = -105
	CodeInvalidOffset   = -106
	codeDeviceUnwrapped = -1 // internal fallback, see Code()
)

// Error is the error type returned by every exported sectorfs operation
// that fails. An error this package defines carries one of the stable
// Code values above. Errors that originate below sectorfs (from a
// blockdev.Device) are wrapped rather than replaced, so their detail
// survives in Unwrap/Error; those carry codeDeviceUnwrapped, which is
// what Code reports for them.
type Error struct {
	Code int
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sectorfs: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("sectorfs: %s: %s", e.Op, e.Msg)
	}
	return "sectorfs: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target carries the same stable Code, so callers can
// write errors.Is(err, sectorfs.ErrNotMounted) regardless of which
// operation produced err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors, one per stable code. Compare with errors.Is.
var (
	ErrNotMounted     = &Error{Code: CodeNotMounted, Msg: "disk not mounted"}
	ErrAlreadyMounted = &Error{Code: CodeAlreadyMounted, Msg: "disk already mounted"}
	ErrInvalidInode   = &Error{Code: CodeInvalidInode, Msg: "invalid inode"}
	ErrOutOfSpace     = &Error{Code: CodeOutOfSpace, Msg: "out of space"}
	ErrOutOfInodes    = &Error{Code: CodeOutOfInodes, Msg: "out of inodes"}
	ErrCorruptDisk    = &Error{Code: CodeCorruptDisk, Msg: "corrupt disk"}
	ErrInvalidOffset  = &Error{Code: CodeInvalidOffset, Msg: "invalid offset"}
)

// opErr builds a fresh *Error for op that carries sentinel's stable code
// and message, optionally wrapping a lower-level cause.
func opErr(op string, sentinel *Error, cause error) *Error {
	return &Error{Code: sentinel.Code, Op: op, Msg: sentinel.Msg, Err: cause}
}

// deviceErr wraps a raw blockdev error with an operation name. It has no
// stable code of its own (the device is an external collaborator whose
// failure modes this package doesn't define), so Code() falls back to
// codeDeviceUnwrapped for it. Returns nil if cause is nil, so callers can
// pass through a device call's result without an intervening nil check.
func deviceErr(op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: codeDeviceUnwrapped, Op: op, Msg: "device error", Err: cause}
}

// Code extracts the stable numeric code from err, or 0 if err is nil.
// Errors that didn't originate in this package (e.g. an un-wrapped device
// error) report codeDeviceUnwrapped.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return codeDeviceUnwrapped
}
