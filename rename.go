package hostfs

import "context"

// Rename renames (moves) p to target and returns target.
// Analogous to: [os.Rename], mv.
//
// If target already exists and is not a directory, Rename replaces it.
// Both paths must be on the same file system; otherwise Rename fails with
// ErrCrossFileSystem. Use [Copy] to move data between file systems.
func (p Path) Rename(ctx context.Context, target Path) (Path, error) {
	fsys, err := p.checked("rename")
	if err != nil {
		return Path{}, err
	}
	if err := p.sameFS("rename", target); err != nil {
		return Path{}, err
	}
	if err := fsys.Rename(ctx, p.String(), target.String()); err != nil {
		return Path{}, err
	}
	return target, nil
}
