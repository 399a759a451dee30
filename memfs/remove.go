package memfs

import (
	"context"

	"lesiw.io/hostfs"
)

func (f *FS) Unlink(ctx context.Context, name string) error {
	return f.remove("unlink", name, false)
}

func (f *FS) Rmdir(ctx context.Context, name string) error {
	return f.remove("rmdir", name, true)
}

func (f *FS) remove(op, name string, dir bool) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check(op, name); err != nil {
		return err
	}

	parent, base, err := f.parent(name)
	if err != nil {
		switch {
		case base == "" && dir:
			err = hostfs.ErrInvalid
		case base == "":
			err = hostfs.ErrIsDir
		}
		return pathError(op, name, err)
	}
	n, ok := parent.nodes[base]
	switch {
	case !ok:
		return pathError(op, name, hostfs.ErrNotExist)
	case dir && !n.isDir():
		return pathError(op, name, hostfs.ErrNotDir)
	case !dir && n.isDir():
		return pathError(op, name, hostfs.ErrIsDir)
	case dir && len(n.nodes) > 0:
		return pathError(op, name, hostfs.ErrNotEmpty)
	}

	delete(parent.nodes, base)
	return nil
}
