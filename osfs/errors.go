package osfs

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"lesiw.io/hostfs"
)

// errnoKinds translates the system errors that io/fs has no sentinel for.
var errnoKinds = map[syscall.Errno]error{
	syscall.ENOTDIR:   hostfs.ErrNotDir,
	syscall.EISDIR:    hostfs.ErrIsDir,
	syscall.ENOTEMPTY: hostfs.ErrNotEmpty,
	syscall.EEXIST:    hostfs.ErrExist,
	syscall.ELOOP:     hostfs.ErrLinkLoop,
	syscall.EXDEV:     hostfs.ErrCrossFileSystem,
}

// convertError rewrites the error of an os call so that it matches the
// hostfs sentinels. The Op and Path of a PathError are kept.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	kind, ok := errnoKinds[errno]
	if !ok {
		return err
	}
	var (
		pe *fs.PathError
		le *os.LinkError
	)
	switch {
	case errors.As(err, &pe):
		return &hostfs.PathError{Op: pe.Op, Path: pe.Path, Err: kind}
	case errors.As(err, &le):
		return &hostfs.PathError{Op: le.Op, Path: le.New, Err: kind}
	}
	return kind
}
