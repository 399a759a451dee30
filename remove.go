package hostfs

import (
	"context"
	"errors"
)

// Unlink removes the file or symbolic link p.
// Analogous to: [os.Remove], rm.
//
// Unlink fails with ErrIsDir if p is a directory and with ErrNotExist if
// nothing is at p.
func (p Path) Unlink(ctx context.Context) error {
	fsys, err := p.checked("unlink")
	if err != nil {
		return err
	}
	return fsys.Unlink(ctx, p.String())
}

// Rmdir removes the directory p.
// Analogous to: rmdir, rm -r.
//
// If recursive is false the directory must be empty, otherwise Rmdir
// fails with ErrNotEmpty. If recursive is true, its contents are removed
// first; symbolic links inside are removed, never followed. Rmdir on a
// path that does not exist does nothing, and on something other than a
// directory fails with ErrNotDir.
func (p Path) Rmdir(ctx context.Context, recursive bool) error {
	fsys, err := p.checked("rmdir")
	if err != nil {
		return err
	}
	info, err := fsys.Lstat(ctx, p.String())
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return newPathError("rmdir", p.String(), ErrNotDir)
	}
	if !recursive {
		return fsys.Rmdir(ctx, p.String())
	}

	if rafs, ok := fsys.(RemoveAllFS); ok {
		err := rafs.RemoveAll(ctx, p.String())
		if !errors.Is(err, ErrUnsupported) {
			return err
		}
		// Fall through to fallback if ErrUnsupported
	}
	return p.removeTree(ctx)
}

// removeTree removes the directory p and everything below it using only
// the primitive operations.
func (p Path) removeTree(ctx context.Context) error {
	// Collect children first; some backends do not tolerate removal while
	// a listing is in progress.
	var children []DirEntry
	for entry, err := range p.ReadDir(ctx) {
		if err != nil {
			return err
		}
		children = append(children, entry)
	}
	for _, entry := range children {
		child := p.Join(entry.Name())
		if entry.IsDir() && entry.Type()&ModeSymlink == 0 {
			if err := child.removeTree(ctx); err != nil {
				return err
			}
			continue
		}
		err := child.Unlink(ctx)
		if err != nil && !errors.Is(err, ErrNotExist) {
			return err
		}
	}
	return p.fsys.Rmdir(ctx, p.String())
}

// Remove deletes whatever is at p: a symbolic link or file is unlinked and
// a directory is removed with its contents. If nothing is at p, Remove does
// nothing.
func (p Path) Remove(ctx context.Context) error {
	info, err := p.Lstat(ctx)
	if err != nil {
		if absent(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return p.Rmdir(ctx, true)
	}
	if err := p.Unlink(ctx); err != nil && !errors.Is(err, ErrNotExist) {
		return err
	}
	return nil
}
