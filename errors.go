package hostfs

import (
	"errors"
	"io/fs"
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError

// newPathError creates a PathError if err is not nil, otherwise returns nil.
// This is useful for wrapping errors while preserving nil returns.
func newPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Path: path, Err: err}
}

// Generic file system errors.
var (
	ErrInvalid     = fs.ErrInvalid
	ErrPermission  = fs.ErrPermission
	ErrExist       = fs.ErrExist
	ErrNotExist    = fs.ErrNotExist
	ErrClosed      = fs.ErrClosed
	ErrUnsupported = errors.ErrUnsupported
)

// Structural and backend errors.
var (
	ErrNotDir   = errors.New("not a directory")
	ErrIsDir    = errors.New("is a directory")
	ErrNotEmpty = errors.New("directory not empty")

	// ErrLinkLoop is returned when resolving a chain of symbolic links
	// takes more than MaxLinkHops steps.
	ErrLinkLoop = errors.New("too many levels of symbolic links")

	// ErrConnection is returned by network backends when a session could
	// not be re-established within the retry budget.
	ErrConnection = errors.New("connection lost")

	// ErrCrossFileSystem is returned when an operation needs two paths on
	// the same file system.
	ErrCrossFileSystem = errors.New("paths are on different file systems")
)

// Unsupported reports op on name as unsupported. If ignore is true it
// returns nil instead, so that the operation silently succeeds. Backends
// use it to implement their unsupported-operation policy.
func Unsupported(op, name string, ignore bool) error {
	if ignore {
		return nil
	}
	return &PathError{Op: op, Path: name, Err: ErrUnsupported}
}
