package memfs

import (
	"context"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/path"
)

func (f *FS) Rename(ctx context.Context, oldname, newname string) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check("rename", oldname); err != nil {
		return err
	}

	oldDir, oldBase, err := f.parent(oldname)
	if err != nil {
		return pathError("rename", oldname, err)
	}
	n, ok := oldDir.nodes[oldBase]
	if !ok {
		return pathError("rename", oldname, hostfs.ErrNotExist)
	}
	if path.Abs(oldname) == path.Abs(newname) {
		return nil
	}
	if n.isDir() && path.HasPrefix(newname, oldname) {
		return pathError("rename", newname, hostfs.ErrInvalid)
	}

	newDir, newBase, err := f.parent(newname)
	if err != nil {
		return pathError("rename", newname, err)
	}
	if old, exists := newDir.nodes[newBase]; exists {
		switch {
		case old.isDir() && !n.isDir():
			return pathError("rename", newname, hostfs.ErrIsDir)
		case !old.isDir() && n.isDir():
			return pathError("rename", newname, hostfs.ErrNotDir)
		case old.isDir() && len(old.nodes) > 0:
			return pathError("rename", newname, hostfs.ErrNotEmpty)
		}
	}

	n.name = newBase
	newDir.nodes[newBase] = n
	delete(oldDir.nodes, oldBase)
	return nil
}
