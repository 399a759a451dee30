package memfs

import (
	"context"
	"time"

	"lesiw.io/hostfs"
)

func (f *FS) Mkdir(ctx context.Context, name string, perm hostfs.Mode) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check("mkdir", name); err != nil {
		return err
	}

	dir, base, err := f.parent(name)
	if err != nil {
		return pathError("mkdir", name, err)
	}
	if _, exists := dir.nodes[base]; exists {
		return pathError("mkdir", name, hostfs.ErrExist)
	}

	dir.nodes[base] = &node{
		name:    base,
		mode:    perm&hostfs.PermBits | hostfs.ModeDir,
		modTime: time.Now(),
		nodes:   make(map[string]*node),
	}
	return nil
}
