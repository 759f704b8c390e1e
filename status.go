// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import "fmt"

// Status is a native status code returned by every hardware protocol call.
//
// The zero value is StatusSuccess; every other value is a failure. The values
// match the codes reported by VA-style drivers so callers can classify
// failures against driver documentation if they need to; the library itself
// treats all non-success codes uniformly (see Error).
type Status uint32

// Known status codes.
const (
	StatusSuccess                    Status = 0x00000000
	StatusErrorOperationFailed       Status = 0x00000001
	StatusErrorAllocationFailed      Status = 0x00000002
	StatusErrorInvalidDisplay        Status = 0x00000003
	StatusErrorInvalidConfig         Status = 0x00000004
	StatusErrorInvalidContext        Status = 0x00000005
	StatusErrorInvalidSurface        Status = 0x00000006
	StatusErrorInvalidBuffer         Status = 0x00000007
	StatusErrorInvalidImage          Status = 0x00000008
	StatusErrorAttrNotSupported      Status = 0x0000000a
	StatusErrorMaxNumExceeded        Status = 0x0000000b
	StatusErrorUnsupportedProfile    Status = 0x0000000c
	StatusErrorUnsupportedEntrypoint Status = 0x0000000d
	StatusErrorUnsupportedRTFormat   Status = 0x0000000e
	StatusErrorUnsupportedBufferType Status = 0x0000000f
	StatusErrorSurfaceBusy           Status = 0x00000010
	StatusErrorInvalidParameter      Status = 0x00000012
	StatusErrorUnimplemented         Status = 0x00000014
	StatusErrorInvalidImageFormat    Status = 0x00000016
	StatusErrorDecodingError         Status = 0x00000017
	StatusErrorEncodingError         Status = 0x00000018
	StatusErrorUnknown               Status = 0xffffffff
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusErrorOperationFailed:
		return "operation failed"
	case StatusErrorAllocationFailed:
		return "allocation failed"
	case StatusErrorInvalidDisplay:
		return "invalid display"
	case StatusErrorInvalidConfig:
		return "invalid config"
	case StatusErrorInvalidContext:
		return "invalid context"
	case StatusErrorInvalidSurface:
		return "invalid surface"
	case StatusErrorInvalidBuffer:
		return "invalid buffer"
	case StatusErrorInvalidImage:
		return "invalid image"
	case StatusErrorAttrNotSupported:
		return "attribute not supported"
	case StatusErrorMaxNumExceeded:
		return "max number exceeded"
	case StatusErrorUnsupportedProfile:
		return "unsupported profile"
	case StatusErrorUnsupportedEntrypoint:
		return "unsupported entrypoint"
	case StatusErrorUnsupportedRTFormat:
		return "unsupported render target format"
	case StatusErrorUnsupportedBufferType:
		return "unsupported buffer type"
	case StatusErrorSurfaceBusy:
		return "surface busy"
	case StatusErrorInvalidParameter:
		return "invalid parameter"
	case StatusErrorUnimplemented:
		return "unimplemented"
	case StatusErrorInvalidImageFormat:
		return "invalid image format"
	case StatusErrorDecodingError:
		return "decoding error"
	case StatusErrorEncodingError:
		return "encoding error"
	default:
		return fmt.Sprintf("unknown status (0x%x)", uint32(s))
	}
}

// Error is the single error kind produced by the hardware call boundary:
// a named protocol call returned a non-success status.
//
// The library performs no sub-classification; callers that need to
// distinguish failure modes inspect Status directly.
type Error struct {
	// Call is the name of the native call that failed (e.g. "vaBeginPicture").
	Call string

	// Status is the native status code the call returned.
	Status Status
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("libva: %s failed: %s (0x%x)", e.Call, e.Status, uint32(e.Status))
}

// checkStatus maps a native status to an error. A success status maps to nil.
func checkStatus(call string, st Status) error {
	if st == StatusSuccess {
		return nil
	}
	return &Error{Call: call, Status: st}
}
