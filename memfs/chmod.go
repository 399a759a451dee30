package memfs

import (
	"context"

	"lesiw.io/hostfs"
)

func (f *FS) Chmod(ctx context.Context, name string, mode hostfs.Mode) error {
	f.Lock()
	defer f.Unlock()
	if err := f.check("chmod", name); err != nil {
		return err
	}
	if !f.has(hostfs.FeaturePermissions) {
		return hostfs.Unsupported("chmod", name, f.ignore)
	}

	n, err := f.lookup(name, true)
	if err != nil {
		return pathError("chmod", name, err)
	}
	n.mode = n.mode.Type() | mode&hostfs.PermBits
	return nil
}
