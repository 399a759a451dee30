package memfs

import (
	"context"
	"time"

	"lesiw.io/hostfs"
)

func (f *FS) Symlink(ctx context.Context, oldname, newname string) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check("symlink", newname); err != nil {
		return err
	}
	if !f.has(hostfs.FeatureSymlinks) {
		return hostfs.Unsupported("symlink", newname, f.ignore)
	}

	dir, base, err := f.parent(newname)
	if err != nil {
		return pathError("symlink", newname, err)
	}
	if _, exists := dir.nodes[base]; exists {
		return pathError("symlink", newname, hostfs.ErrExist)
	}
	dir.nodes[base] = &node{
		name:    base,
		mode:    hostfs.ModeSymlink | 0777,
		modTime: time.Now(),
		link:    oldname,
	}
	return nil
}

func (f *FS) ReadLink(ctx context.Context, name string) (string, error) {
	f.RLock()
	defer f.RUnlock()
	if err := f.check("readlink", name); err != nil {
		return "", err
	}

	n, err := f.lookup(name, false)
	if err != nil {
		return "", pathError("readlink", name, err)
	}
	if !n.isLink() {
		return "", pathError("readlink", name, hostfs.ErrInvalid)
	}
	return n.link, nil
}
