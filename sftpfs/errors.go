package sftpfs

import (
	"errors"
	"io"
	"net"
	"os"
	"path"
	"syscall"

	"github.com/pkg/sftp"

	"lesiw.io/hostfs"
)

// dialError marks a failure to open a new session.
type dialError struct{ err error }

func (e *dialError) Error() string { return "sftp dial: " + e.err.Error() }
func (e *dialError) Unwrap() error { return e.err }

// lost reports whether err means the session is gone and the operation
// may succeed on a new one.
func lost(err error) bool {
	if err == nil {
		return false
	}
	var de *dialError
	switch {
	case errors.As(err, &de),
		errors.Is(err, sftp.ErrSSHFxConnectionLost),
		errors.Is(err, sftp.ErrSSHFxNoConnection),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.FxCode()
		return code == sftp.ErrSSHFxConnectionLost ||
			code == sftp.ErrSSHFxNoConnection
	}
	return false
}

// convertError converts SFTP/OS errors to hostfs errors.
func convertError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}

	var fsErr error
	var statusErr *sftp.StatusError
	switch {
	case errors.Is(err, os.ErrNotExist):
		fsErr = hostfs.ErrNotExist
	case errors.Is(err, os.ErrExist):
		fsErr = hostfs.ErrExist
	case errors.Is(err, os.ErrPermission):
		fsErr = hostfs.ErrPermission
	case errors.Is(err, os.ErrInvalid):
		fsErr = hostfs.ErrInvalid
	case errors.As(err, &statusErr) &&
		statusErr.FxCode() == sftp.ErrSSHFxOpUnsupported:
		fsErr = hostfs.ErrUnsupported
	default:
		fsErr = err
	}

	return &hostfs.PathError{
		Op:   op,
		Path: path,
		Err:  fsErr,
	}
}

// isFailure reports whether err is the generic SSH_FX_FAILURE status,
// which servers return for many distinct conditions.
func isFailure(err error) bool {
	var statusErr *sftp.StatusError
	return errors.As(err, &statusErr) &&
		statusErr.FxCode() == sftp.ErrSSHFxFailure
}

// diagnose refines a generic failure from following name. The server
// reports both a link loop and a path through a regular file as
// SSH_FX_FAILURE.
func diagnose(c *sftp.Client, name string, err error) error {
	if !isFailure(err) {
		return err
	}
	if info, lerr := c.Lstat(name); lerr == nil &&
		info.Mode()&os.ModeSymlink != 0 {
		return hostfs.ErrLinkLoop
	}
	if info, serr := c.Stat(path.Dir(name)); serr == nil && !info.IsDir() {
		return hostfs.ErrNotDir
	}
	return err
}
