package memfs

import (
	"context"
	"time"

	"lesiw.io/hostfs"
)

func (f *FS) Stat(ctx context.Context, name string) (hostfs.FileInfo, error) {
	return f.stat("stat", name, true)
}

func (f *FS) Lstat(
	ctx context.Context, name string,
) (hostfs.FileInfo, error) {
	return f.stat("lstat", name, false)
}

func (f *FS) stat(op, name string, follow bool) (hostfs.FileInfo, error) {
	f.RLock()
	defer f.RUnlock()
	if err := f.check(op, name); err != nil {
		return nil, err
	}
	n, err := f.lookup(name, follow)
	if err != nil {
		return nil, pathError(op, name, err)
	}
	return f.info(n), nil
}

// info snapshots n. It must be called with the lock held.
func (f *FS) info(n *node) *fileInfo {
	mode := n.mode
	if !f.has(hostfs.FeaturePermissions) && !n.isLink() {
		mode &^= hostfs.PermBits
		if n.isDir() {
			mode |= 0700
		} else {
			mode |= 0600
		}
	}
	return &fileInfo{
		name:    n.name,
		size:    int64(len(n.data)),
		mode:    mode,
		modTime: n.modTime,
	}
}

var _ hostfs.FileInfo = (*fileInfo)(nil)

type fileInfo struct {
	name    string
	size    int64
	mode    hostfs.Mode
	modTime time.Time
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() hostfs.Mode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() any           { return nil }
