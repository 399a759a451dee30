// Package webdavfs implements hostfs.FileSystem over WebDAV.
//
// WebDAV has no symbolic links, device files or POSIX permissions. An FS
// reports owner read and write on files, adds owner execute on
// directories, and reports uid and gid 0. Chmod and Symlink fail with
// hostfs.ErrUnsupported, or do nothing if the FS was created with
// [IgnoreUnsupported].
package webdavfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"

	"lesiw.io/hostfs"
)

// errInsufficientStorage is reported when the server is out of space.
var errInsufficientStorage = errors.New("insufficient storage")

// An Option configures an FS.
type Option func(*FS)

// WithBasicAuth sets the credentials sent to the server.
func WithBasicAuth(user, password string) Option {
	return func(f *FS) { f.user, f.password = user, password }
}

// WithTimeout bounds every HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(f *FS) { f.timeout = d }
}

// IgnoreUnsupported makes Chmod and Symlink succeed without effect.
func IgnoreUnsupported() Option {
	return func(f *FS) { f.ignore = true }
}

// FS is a WebDAV file system.
type FS struct {
	url            string
	user, password string
	timeout        time.Duration
	ignore         bool

	client *gowebdav.Client
	log    *zap.Logger
	closed atomic.Bool
}

// New returns an FS for the WebDAV share at url. It contacts the server
// before returning, so that a bad address or credentials are reported
// immediately.
func New(ctx context.Context, url string, opts ...Option) (*FS, error) {
	f := &FS{url: strings.TrimSuffix(url, "/")}
	for _, opt := range opts {
		opt(f)
	}
	f.log = hostfs.Logger("webdavfs").With(zap.String("url", f.url))
	f.client = gowebdav.NewClient(f.url, f.user, f.password)
	if f.timeout > 0 {
		f.client.SetTimeout(f.timeout)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.client.Connect(); err != nil {
		return nil, fmt.Errorf("webdav connect %s: %w", f.url, err)
	}
	f.log.Debug("connected")
	return f, nil
}

// Equal reports whether other is a WebDAV file system for the same URL.
func (f *FS) Equal(other hostfs.FileSystem) bool {
	o, ok := other.(*FS)
	return ok && o.url == f.url
}

// Supports implements hostfs.FileSystem. WebDAV supports no optional
// features.
func (f *FS) Supports(feature hostfs.Feature) (bool, error) {
	return hostfs.Supported(feature)
}

// Close implements hostfs.FileSystem.
func (f *FS) Close() error {
	if f.closed.Swap(true) {
		return &hostfs.PathError{Op: "close", Path: "/", Err: hostfs.ErrClosed}
	}
	return nil
}

// check fails once the FS is closed or ctx is done.
func (f *FS) check(ctx context.Context, op, name string) error {
	if f.closed.Load() {
		return &hostfs.PathError{Op: op, Path: name, Err: hostfs.ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return &hostfs.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

// Stat implements hostfs.FileSystem.
func (f *FS) Stat(ctx context.Context, name string) (hostfs.FileInfo, error) {
	if err := f.check(ctx, "stat", name); err != nil {
		return nil, err
	}
	info, err := f.client.Stat(name)
	if err != nil {
		return nil, convertError("stat", name, f.diagnose(name, err))
	}
	return newFileInfo(name, info), nil
}

// diagnose refines a failed PROPFIND. Servers answer a path that passes
// through a regular file with 405 or 409 rather than 404, so the parent
// decides between ErrNotDir and ErrNotExist.
func (f *FS) diagnose(name string, err error) error {
	if !gowebdav.IsErrCode(err, http.StatusMethodNotAllowed) &&
		!gowebdav.IsErrCode(err, http.StatusConflict) {
		return err
	}
	parent := path.Dir(name)
	if parent == name {
		return err
	}
	info, parentErr := f.client.Stat(parent)
	switch {
	case parentErr == nil && !info.IsDir():
		return hostfs.ErrNotDir
	case parentErr == nil:
		return hostfs.ErrNotExist
	case errors.Is(f.diagnose(parent, parentErr), hostfs.ErrNotDir):
		return hostfs.ErrNotDir
	}
	return hostfs.ErrNotExist
}

// Lstat implements hostfs.FileSystem. Without symbolic links it is the
// same as Stat.
func (f *FS) Lstat(
	ctx context.Context, name string,
) (hostfs.FileInfo, error) {
	return f.Stat(ctx, name)
}

// ReadDir implements hostfs.FileSystem.
func (f *FS) ReadDir(
	ctx context.Context, name string,
) iter.Seq2[hostfs.DirEntry, error] {
	return func(yield func(hostfs.DirEntry, error) bool) {
		info, err := f.Stat(ctx, name)
		if err != nil {
			yield(nil, err)
			return
		}
		if !info.IsDir() {
			yield(nil, &hostfs.PathError{
				Op: "readdir", Path: name, Err: hostfs.ErrNotDir,
			})
			return
		}
		infos, err := f.client.ReadDir(name)
		if err != nil {
			yield(nil, convertError("readdir", name, err))
			return
		}
		for _, info := range infos {
			fi := newFileInfo(path.Join(name, info.Name()), info)
			if !yield(&dirEntry{info: fi}, nil) {
				return
			}
		}
	}
}

// Mkdir implements hostfs.FileSystem. The mode is ignored.
func (f *FS) Mkdir(ctx context.Context, name string, _ hostfs.Mode) error {
	// The client treats MKCOL on an existing collection as success.
	if _, err := f.Stat(ctx, name); err == nil {
		return &hostfs.PathError{Op: "mkdir", Path: name, Err: hostfs.ErrExist}
	} else if !errors.Is(err, hostfs.ErrNotExist) {
		return err
	}
	if err := f.client.Mkdir(name, 0); err != nil {
		return convertMkcol(name, err)
	}
	return nil
}

// Rmdir implements hostfs.FileSystem.
func (f *FS) Rmdir(ctx context.Context, name string) error {
	info, err := f.Stat(ctx, name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &hostfs.PathError{
			Op: "rmdir", Path: name, Err: hostfs.ErrNotDir,
		}
	}
	for _, err := range f.ReadDir(ctx, name) {
		if err != nil {
			return err
		}
		return &hostfs.PathError{
			Op: "rmdir", Path: name, Err: hostfs.ErrNotEmpty,
		}
	}
	if err := f.client.Remove(name); err != nil {
		return convertError("rmdir", name, err)
	}
	return nil
}

// Unlink implements hostfs.FileSystem.
func (f *FS) Unlink(ctx context.Context, name string) error {
	info, err := f.Stat(ctx, name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &hostfs.PathError{
			Op: "unlink", Path: name, Err: hostfs.ErrIsDir,
		}
	}
	if err := f.client.Remove(name); err != nil {
		return convertError("unlink", name, err)
	}
	return nil
}

// RemoveAll implements hostfs.RemoveAllFS with a single DELETE.
func (f *FS) RemoveAll(ctx context.Context, name string) error {
	if err := f.check(ctx, "removeall", name); err != nil {
		return err
	}
	if err := f.client.RemoveAll(name); err != nil {
		return convertError("removeall", name, err)
	}
	return nil
}

// Rename implements hostfs.FileSystem.
func (f *FS) Rename(ctx context.Context, oldname, newname string) error {
	if _, err := f.Stat(ctx, oldname); err != nil {
		return err
	}
	if err := f.parentDir(ctx, "rename", newname); err != nil {
		return err
	}
	if err := f.client.Rename(oldname, newname, true); err != nil {
		return convertError("rename", oldname, err)
	}
	return nil
}

// parentDir checks that the parent of name is an existing directory. PUT
// and MOVE would otherwise create missing parents or fail with a status
// that does not say which.
func (f *FS) parentDir(ctx context.Context, op, name string) error {
	info, err := f.Stat(ctx, path.Dir(name))
	if err != nil {
		var pathErr *hostfs.PathError
		if errors.As(err, &pathErr) {
			pathErr.Op, pathErr.Path = op, name
		}
		return err
	}
	if !info.IsDir() {
		return &hostfs.PathError{Op: op, Path: name, Err: hostfs.ErrNotDir}
	}
	return nil
}

// Touch implements hostfs.FileSystem. The mode is ignored.
func (f *FS) Touch(ctx context.Context, name string, _ hostfs.Mode) error {
	_, err := f.Stat(ctx, name)
	if err == nil || !errors.Is(err, hostfs.ErrNotExist) {
		return err
	}
	if err := f.parentDir(ctx, "touch", name); err != nil {
		return err
	}
	err = f.client.WriteStream(name, strings.NewReader(""), 0)
	if err != nil {
		return convertError("touch", name, err)
	}
	return nil
}

// Open implements hostfs.FileSystem.
func (f *FS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	info, err := f.Stat(ctx, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &hostfs.PathError{
			Op: "open", Path: name, Err: hostfs.ErrIsDir,
		}
	}
	rc, err := f.client.ReadStream(name)
	if err != nil {
		return nil, convertError("open", name, err)
	}
	return rc, nil
}

// WriteFrom implements hostfs.FileSystem. The body is streamed in a single
// PUT request.
func (f *FS) WriteFrom(
	ctx context.Context, name string, r io.Reader,
) (int64, error) {
	if info, err := f.Stat(ctx, name); err == nil && info.IsDir() {
		return 0, &hostfs.PathError{
			Op: "write", Path: name, Err: hostfs.ErrIsDir,
		}
	}
	if err := f.parentDir(ctx, "write", name); err != nil {
		return 0, err
	}
	cr := &countingReader{ctx: ctx, r: r}
	if err := f.client.WriteStream(name, cr, 0); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return cr.n, convertError("write", name, err)
	}
	return cr.n, nil
}

// countingReader counts the bytes read through it and stops once its
// context is done.
type countingReader struct {
	ctx context.Context
	r   io.Reader
	n   int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// Chmod implements hostfs.FileSystem. WebDAV has no permissions.
func (f *FS) Chmod(ctx context.Context, name string, _ hostfs.Mode) error {
	if err := f.check(ctx, "chmod", name); err != nil {
		return err
	}
	return hostfs.Unsupported("chmod", name, f.ignore)
}

// Symlink implements hostfs.FileSystem. WebDAV has no symbolic links.
func (f *FS) Symlink(ctx context.Context, _, newname string) error {
	if err := f.check(ctx, "symlink", newname); err != nil {
		return err
	}
	return hostfs.Unsupported("symlink", newname, f.ignore)
}

// ReadLink implements hostfs.FileSystem. Nothing on a WebDAV share is a
// symbolic link, so it fails with ErrInvalid for any existing name.
func (f *FS) ReadLink(ctx context.Context, name string) (string, error) {
	if _, err := f.Stat(ctx, name); err != nil {
		return "", err
	}
	return "", &hostfs.PathError{
		Op: "readlink", Path: name, Err: hostfs.ErrInvalid,
	}
}

// convertError converts gowebdav errors to hostfs errors.
func convertError(op, name string, err error) error {
	var fsErr error
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		fsErr = err
	case gowebdav.IsErrNotFound(err), gowebdav.IsErrCode(err, 409):
		fsErr = hostfs.ErrNotExist
	case gowebdav.IsErrCode(err, http.StatusUnauthorized),
		gowebdav.IsErrCode(err, http.StatusForbidden):
		fsErr = hostfs.ErrPermission
	case gowebdav.IsErrCode(err, http.StatusInsufficientStorage):
		fsErr = errInsufficientStorage
	case errors.Is(err, os.ErrNotExist):
		fsErr = hostfs.ErrNotExist
	default:
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		fsErr = err
	}
	return &hostfs.PathError{Op: op, Path: name, Err: fsErr}
}

// convertMkcol converts the status of a failed MKCOL request.
func convertMkcol(name string, err error) error {
	switch {
	case gowebdav.IsErrCode(err, http.StatusForbidden):
		err = hostfs.ErrPermission
	case gowebdav.IsErrCode(err, http.StatusMethodNotAllowed):
		err = hostfs.ErrExist
	case gowebdav.IsErrCode(err, http.StatusConflict):
		err = hostfs.ErrNotExist
	default:
		return convertError("mkdir", name, err)
	}
	return &hostfs.PathError{Op: "mkdir", Path: name, Err: err}
}

var (
	_ hostfs.FileSystem  = (*FS)(nil)
	_ hostfs.RemoveAllFS = (*FS)(nil)
)
