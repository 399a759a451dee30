package memfs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"lesiw.io/hostfs"
)

func (f *FS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f.RLock()
	defer f.RUnlock()
	if err := f.check("open", name); err != nil {
		return nil, err
	}

	n, err := f.lookup(name, true)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	if n.isDir() {
		return nil, pathError("open", name, hostfs.ErrIsDir)
	}
	// Writers replace data rather than modify it, so the slice is stable.
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

func (f *FS) Touch(ctx context.Context, name string, perm hostfs.Mode) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check("touch", name); err != nil {
		return err
	}
	_, err := f.file("touch", name, perm)
	return err
}

// WriteFrom reads r to the end before replacing the file's contents, so a
// failed write leaves the previous contents in place.
func (f *FS) WriteFrom(
	ctx context.Context, name string, r io.Reader,
) (int64, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(&ctxReader{ctx: ctx, r: r})
	if err != nil {
		return n, pathError("write", name, err)
	}

	f.Lock()
	defer f.Unlock()
	if err := f.check("write", name); err != nil {
		return 0, err
	}
	file, err := f.file("write", name, hostfs.FileMode(ctx))
	if err != nil {
		return 0, err
	}
	file.data = buf.Bytes()
	file.modTime = time.Now()
	return n, nil
}

// file returns the regular file at name, creating it with perm if it does
// not exist. It must be called with the lock held.
func (f *FS) file(op, name string, perm hostfs.Mode) (*node, error) {
	n, err := f.lookup(name, true)
	switch {
	case err == nil && n.isDir():
		return nil, pathError(op, name, hostfs.ErrIsDir)
	case err == nil:
		return n, nil
	case !errors.Is(err, hostfs.ErrNotExist):
		return nil, pathError(op, name, err)
	}

	dir, base, err := f.parent(name)
	if err != nil {
		return nil, pathError(op, name, err)
	}
	if _, ok := dir.nodes[base]; ok {
		// A broken symbolic link.
		return nil, pathError(op, name, hostfs.ErrNotExist)
	}
	n = &node{
		name:    base,
		mode:    perm & hostfs.PermBits,
		modTime: time.Now(),
	}
	dir.nodes[base] = n
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
