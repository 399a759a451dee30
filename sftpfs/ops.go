package sftpfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/pkg/sftp"

	"lesiw.io/hostfs"
)

// errNoRewind stops a write retry when the source cannot be rewound. It is
// reported together with ErrConnection.
var errNoRewind = errors.New("cannot restart write: source is not seekable")

// Stat implements hostfs.FileSystem.
func (f *FS) Stat(ctx context.Context, name string) (hostfs.FileInfo, error) {
	var info os.FileInfo
	err := f.do(ctx, "stat", name, func(c *sftp.Client, _ int) (err error) {
		info, err = c.Stat(name)
		return diagnose(c, name, err)
	})
	if err != nil {
		return nil, err
	}
	return newFileInfo(info), nil
}

// Lstat implements hostfs.FileSystem.
func (f *FS) Lstat(
	ctx context.Context, name string,
) (hostfs.FileInfo, error) {
	var info os.FileInfo
	err := f.do(ctx, "lstat", name, func(c *sftp.Client, _ int) (err error) {
		info, err = c.Lstat(name)
		return diagnose(c, name, err)
	})
	if err != nil {
		return nil, err
	}
	return newFileInfo(info), nil
}

// ReadDir implements hostfs.FileSystem.
func (f *FS) ReadDir(
	ctx context.Context, name string,
) iter.Seq2[hostfs.DirEntry, error] {
	return func(yield func(hostfs.DirEntry, error) bool) {
		var entries []os.FileInfo
		err := f.do(ctx, "readdir", name, func(c *sftp.Client, _ int) error {
			info, err := c.Stat(name)
			if err != nil {
				return diagnose(c, name, err)
			}
			if !info.IsDir() {
				return hostfs.ErrNotDir
			}
			entries, err = c.ReadDir(name)
			return err
		})
		if err != nil {
			yield(nil, err)
			return
		}
		for _, entry := range entries {
			if !yield(&dirEntry{info: newFileInfo(entry)}, nil) {
				return
			}
		}
	}
}

// Mkdir implements hostfs.FileSystem.
func (f *FS) Mkdir(ctx context.Context, name string, perm hostfs.Mode) error {
	return f.do(ctx, "mkdir", name, func(c *sftp.Client, _ int) error {
		err := c.Mkdir(name)
		if isFailure(err) {
			if _, statErr := c.Lstat(name); statErr == nil {
				return hostfs.ErrExist
			}
		}
		if err != nil {
			return err
		}
		return c.Chmod(name, perm)
	})
}

// Rmdir implements hostfs.FileSystem.
func (f *FS) Rmdir(ctx context.Context, name string) error {
	return f.do(ctx, "rmdir", name, func(c *sftp.Client, _ int) error {
		info, err := c.Lstat(name)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return hostfs.ErrNotDir
		}
		err = c.RemoveDirectory(name)
		if isFailure(err) {
			if entries, dirErr := c.ReadDir(name); dirErr == nil &&
				len(entries) > 0 {
				return hostfs.ErrNotEmpty
			}
		}
		return err
	})
}

// Unlink implements hostfs.FileSystem.
func (f *FS) Unlink(ctx context.Context, name string) error {
	return f.do(ctx, "unlink", name, func(c *sftp.Client, _ int) error {
		info, err := c.Lstat(name)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return hostfs.ErrIsDir
		}
		return c.Remove(name)
	})
}

// Rename implements hostfs.FileSystem. It uses the posix-rename extension
// to replace an existing target where the server offers it.
func (f *FS) Rename(ctx context.Context, oldname, newname string) error {
	return f.do(ctx, "rename", oldname, func(c *sftp.Client, _ int) error {
		err := c.PosixRename(oldname, newname)
		if err == nil || !unsupported(err) {
			return err
		}
		if info, statErr := c.Lstat(newname); statErr == nil &&
			!info.IsDir() {
			if err := c.Remove(newname); err != nil {
				return err
			}
		}
		return c.Rename(oldname, newname)
	})
}

func unsupported(err error) bool {
	var statusErr *sftp.StatusError
	return errors.As(err, &statusErr) &&
		statusErr.FxCode() == sftp.ErrSSHFxOpUnsupported
}

// Touch implements hostfs.FileSystem.
func (f *FS) Touch(ctx context.Context, name string, perm hostfs.Mode) error {
	return f.do(ctx, "touch", name, func(c *sftp.Client, _ int) error {
		if _, err := c.Stat(name); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return diagnose(c, name, err)
		}
		file, err := c.OpenFile(name, os.O_WRONLY|os.O_CREATE)
		if err != nil {
			return err
		}
		if err := file.Chmod(perm); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	})
}

// Open implements hostfs.FileSystem. If the session is lost while the
// file is being read, the returned reader reopens it on a new session and
// continues after the bytes it has already returned. Running out of
// attempts fails the read with ErrConnection.
func (f *FS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r := &reader{f: f, ctx: ctx, name: name}
	err := f.do(ctx, "open", name, func(c *sftp.Client, _ int) error {
		return r.open(c)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// reader reads a remote file across reconnects.
type reader struct {
	f    *FS
	ctx  context.Context
	name string

	file   *sftp.File
	off    int64
	closed bool
}

// open opens the file on c at the current offset.
func (r *reader) open(c *sftp.Client) error {
	info, err := c.Stat(r.name)
	if err != nil {
		return diagnose(c, r.name, err)
	}
	if info.IsDir() {
		return hostfs.ErrIsDir
	}
	file, err := c.Open(r.name)
	if err != nil {
		return err
	}
	if _, err := file.Seek(r.off, io.SeekStart); err != nil {
		_ = file.Close()
		return err
	}
	r.file = file
	return nil
}

// read reads from the open file. If the session is lost the file is
// forgotten, and bytes read before the loss are returned without error.
func (r *reader) read(p []byte) (int, error) {
	n, err := r.file.Read(p)
	r.off += int64(n)
	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	if lost(err) {
		_ = r.file.Close()
		r.file = nil
		if n > 0 {
			return n, nil
		}
	}
	return n, err
}

func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, &hostfs.PathError{
			Op: "read", Path: r.name, Err: hostfs.ErrClosed,
		}
	}
	if r.file != nil {
		n, err := r.read(p)
		if r.file != nil || n > 0 {
			return n, err
		}
	}

	var n int
	var eof bool
	doErr := r.f.do(r.ctx, "read", r.name, func(c *sftp.Client, _ int) error {
		if r.file == nil {
			if openErr := r.open(c); openErr != nil {
				return openErr
			}
		}
		m, readErr := r.read(p)
		n = m
		if errors.Is(readErr, io.EOF) {
			eof = true
			return nil
		}
		return readErr
	})
	switch {
	case doErr != nil:
		return n, doErr
	case eof:
		return n, io.EOF
	}
	return n, nil
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// WriteFrom implements hostfs.FileSystem. If the session is lost during
// the transfer and r implements io.Seeker, r is rewound and the whole
// write starts again. Otherwise the write fails with ErrConnection.
func (f *FS) WriteFrom(
	ctx context.Context, name string, r io.Reader,
) (int64, error) {
	var n int64
	err := f.do(ctx, "write", name, func(c *sftp.Client, attempt int) error {
		n = 0
		if attempt > 1 {
			s, ok := r.(io.Seeker)
			if !ok {
				return fmt.Errorf("%w: %w", hostfs.ErrConnection, errNoRewind)
			}
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}

		_, statErr := c.Stat(name)
		created := errors.Is(statErr, os.ErrNotExist)
		file, err := c.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			return err
		}
		if created {
			if err := file.Chmod(hostfs.FileMode(ctx)); err != nil {
				_ = file.Close()
				return err
			}
		}
		n, err = io.Copy(file, &ctxReader{ctx: ctx, r: r})
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		return err
	})
	return n, err
}

// ctxReader stops a copy between reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// Chmod implements hostfs.FileSystem.
func (f *FS) Chmod(ctx context.Context, name string, mode hostfs.Mode) error {
	return f.do(ctx, "chmod", name, func(c *sftp.Client, _ int) error {
		return c.Chmod(name, mode)
	})
}

// Symlink implements hostfs.FileSystem.
func (f *FS) Symlink(ctx context.Context, oldname, newname string) error {
	return f.do(ctx, "symlink", newname, func(c *sftp.Client, _ int) error {
		err := c.Symlink(oldname, newname)
		if isFailure(err) {
			if _, statErr := c.Lstat(newname); statErr == nil {
				return hostfs.ErrExist
			}
		}
		return err
	})
}

// ReadLink implements hostfs.FileSystem.
func (f *FS) ReadLink(ctx context.Context, name string) (string, error) {
	var target string
	err := f.do(ctx, "readlink", name, func(c *sftp.Client, _ int) error {
		var err error
		target, err = c.ReadLink(name)
		return err
	})
	return target, err
}
