// Package osfs implements hostfs.FileSystem using the os package.
//
// Names are absolute paths on the local machine. The local file system
// supports every optional feature: symbolic links, POSIX permissions, and
// device files.
//
// # Context Handling
//
// Local system calls cannot be interrupted, so context cancelation is only
// checked between the chunks of a WriteFrom.
package osfs

import (
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync/atomic"

	"lesiw.io/hostfs"
)

// FS implements hostfs.FileSystem using the OS file system.
type FS struct {
	closed atomic.Bool
}

// New returns a handle to the local file system.
func New() *FS {
	return &FS{}
}

// resolvePath converts a hostfs name to an OS path.
func (f *FS) resolvePath(op, name string) (string, error) {
	if f.closed.Load() {
		return "", &hostfs.PathError{Op: op, Path: name, Err: hostfs.ErrClosed}
	}
	return filepath.FromSlash(filepath.Clean("/" + name)), nil
}

// Equal reports whether other is also a local file system. All local file
// systems address the same storage.
func (f *FS) Equal(other hostfs.FileSystem) bool {
	_, ok := other.(*FS)
	return ok
}

// Supports implements hostfs.FileSystem. The local file system supports
// every feature.
func (f *FS) Supports(feature hostfs.Feature) (bool, error) {
	return hostfs.Supported(feature,
		hostfs.FeatureSymlinks,
		hostfs.FeaturePermissions,
		hostfs.FeatureDevices,
	)
}

// Open implements hostfs.FileSystem.
func (f *FS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := f.resolvePath("open", name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, convertError(err)
	}
	return file, nil
}

// WriteFrom implements hostfs.FileSystem.
func (f *FS) WriteFrom(
	ctx context.Context, name string, r io.Reader,
) (int64, error) {
	path, err := f.resolvePath("write", name)
	if err != nil {
		return 0, err
	}
	perm := hostfs.FileMode(ctx)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, convertError(err)
	}
	n, err := io.Copy(file, &ctxReader{ctx: ctx, r: r})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, convertError(err)
	}
	return n, nil
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

// Touch implements hostfs.FileSystem.
func (f *FS) Touch(ctx context.Context, name string, perm hostfs.Mode) error {
	path, err := f.resolvePath("touch", name)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, perm)
	if err != nil {
		return convertError(err)
	}
	return convertError(file.Close())
}

// Stat implements hostfs.FileSystem.
func (f *FS) Stat(ctx context.Context, name string) (hostfs.FileInfo, error) {
	path, err := f.resolvePath("stat", name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, convertError(err)
	}
	return ownerInfo(info), nil
}

// Lstat implements hostfs.FileSystem.
func (f *FS) Lstat(
	ctx context.Context, name string,
) (hostfs.FileInfo, error) {
	path, err := f.resolvePath("lstat", name)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return nil, convertError(err)
	}
	return ownerInfo(info), nil
}

// ReadDir implements hostfs.FileSystem.
func (f *FS) ReadDir(
	ctx context.Context, name string,
) iter.Seq2[hostfs.DirEntry, error] {
	return func(yield func(hostfs.DirEntry, error) bool) {
		path, err := f.resolvePath("readdir", name)
		if err != nil {
			yield(nil, err)
			return
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			yield(nil, convertError(err))
			return
		}
		for _, entry := range entries {
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// Mkdir implements hostfs.FileSystem.
func (f *FS) Mkdir(ctx context.Context, name string, perm hostfs.Mode) error {
	path, err := f.resolvePath("mkdir", name)
	if err != nil {
		return err
	}
	return convertError(os.Mkdir(path, perm))
}

// Rmdir implements hostfs.FileSystem.
func (f *FS) Rmdir(ctx context.Context, name string) error {
	path, err := f.resolvePath("rmdir", name)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return convertError(err)
	}
	if !info.IsDir() {
		return &hostfs.PathError{
			Op: "rmdir", Path: name, Err: hostfs.ErrNotDir,
		}
	}
	return convertError(os.Remove(path))
}

// Unlink implements hostfs.FileSystem.
func (f *FS) Unlink(ctx context.Context, name string) error {
	path, err := f.resolvePath("unlink", name)
	if err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return convertError(err)
	}
	if info.IsDir() {
		return &hostfs.PathError{
			Op: "unlink", Path: name, Err: hostfs.ErrIsDir,
		}
	}
	return convertError(os.Remove(path))
}

// RemoveAll implements hostfs.RemoveAllFS.
func (f *FS) RemoveAll(ctx context.Context, name string) error {
	path, err := f.resolvePath("removeall", name)
	if err != nil {
		return err
	}
	return convertError(os.RemoveAll(path))
}

// Rename implements hostfs.FileSystem.
func (f *FS) Rename(ctx context.Context, oldname, newname string) error {
	oldpath, err := f.resolvePath("rename", oldname)
	if err != nil {
		return err
	}
	newpath, err := f.resolvePath("rename", newname)
	if err != nil {
		return err
	}
	return convertError(os.Rename(oldpath, newpath))
}

// Symlink implements hostfs.FileSystem.
func (f *FS) Symlink(ctx context.Context, oldname, newname string) error {
	newpath, err := f.resolvePath("symlink", newname)
	if err != nil {
		return err
	}
	// oldname is the link text, not a path in this filesystem,
	// so we don't resolve it
	return convertError(os.Symlink(filepath.FromSlash(oldname), newpath))
}

// ReadLink implements hostfs.FileSystem.
func (f *FS) ReadLink(ctx context.Context, name string) (string, error) {
	path, err := f.resolvePath("readlink", name)
	if err != nil {
		return "", err
	}
	text, err := os.Readlink(path)
	if err != nil {
		return "", convertError(err)
	}
	return filepath.ToSlash(text), nil
}

// Close implements io.Closer. Later operations fail with ErrClosed.
func (f *FS) Close() error {
	if f.closed.Swap(true) {
		return &hostfs.PathError{Op: "close", Path: "/", Err: hostfs.ErrClosed}
	}
	return nil
}

// Compile-time interface checks
var (
	_ hostfs.FileSystem  = (*FS)(nil)
	_ hostfs.RemoveAllFS = (*FS)(nil)
)
