// Package cerr addresses the same challenge any non-trivial system faces:
// when an operation fails, callers need more than "something went wrong" —
// they need to know what failed, why, and whether it is safe to retry. The
// package builds a small hierarchy of domain-specific error types on top of
// a shared baseError, each carrying the context its layer actually needs:
// a StorageError knows which file and offset were involved, a
// ProviderError knows which external cache and which operation failed, an
// InvariantError knows which thread-ownership or dimensionality invariant
// was violated, and a TimeoutError knows which call budget was exceeded.
//
// Error classification is driven by error codes (ErrorCode) rather than by
// parsing messages, and propagation follows spec §7: event-loop errors are
// logged and swallowed so the manager never dies from a bad event; command
// errors are returned to the waiting caller paired with the outcome.
package cerr

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStorageError reports whether err is, or wraps, a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// IsProviderError reports whether err is, or wraps, a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return stdErrors.As(err, &pe)
}

// IsTimeoutError reports whether err is, or wraps, a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return stdErrors.As(err, &te)
}

// IsInvariantError reports whether err is, or wraps, an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return stdErrors.As(err, &ie)
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts a StorageError from an error chain.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsProviderError extracts a ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if stdErrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts a TimeoutError from an error chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// AsInvariantError extracts an InvariantError from an error chain.
func AsInvariantError(err error) (*InvariantError, bool) {
	var ie *InvariantError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// GetErrorCode extracts the ErrorCode from any error in this package's
// hierarchy, or ErrorCodeInternal for anything else. Monitoring code should
// key off this rather than parsing error strings.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	if pe, ok := AsProviderError(err); ok {
		return pe.Code()
	}
	if te, ok := AsTimeoutError(err); ok {
		return te.Code()
	}
	if ie, ok := AsInvariantError(err); ok {
		return ie.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts the structured detail map from any error in this
// package's hierarchy, or an empty map otherwise.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok && ve.Details() != nil {
		return ve.Details()
	}
	if se, ok := AsStorageError(err); ok && se.Details() != nil {
		return se.Details()
	}
	if pe, ok := AsProviderError(err); ok && pe.Details() != nil {
		return pe.Details()
	}
	if ie, ok := AsInvariantError(err); ok && ie.Details() != nil {
		return ie.Details()
	}
	return make(map[string]any)
}

// ClassifyDirectoryCreationError analyzes a directory-creation failure and
// returns a StorageError with the most specific code the underlying system
// error supports.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create cache directory",
		).WithPath(path).WithDetail("operation", "directory_creation")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull, "insufficient disk space to create cache directory",
				).WithPath(path).WithDetail("operation", "directory_creation")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly, "cannot create directory on read-only filesystem",
				).WithPath(path).WithDetail("operation", "directory_creation")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to create cache directory").
		WithPath(path).WithDetail("operation", "directory_creation")
}

// ClassifyFileOpenError analyzes a file-open failure and returns a
// StorageError with the most specific code the underlying system error
// supports.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied, "insufficient permissions to open cache entry file",
		).WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull, "insufficient disk space to create cache entry file",
				).WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly, "cannot create file on read-only filesystem",
				).WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to open cache entry file").
		WithPath(filePath).WithFileName(fileName).WithDetail("operation", "file_open")
}
