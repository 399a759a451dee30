package hostfs

import (
	"context"
	"errors"
)

// Stat returns file metadata for p, following symbolic links.
// Analogous to: [os.Stat], stat.
func (p Path) Stat(ctx context.Context) (FileInfo, error) {
	fsys, err := p.checked("stat")
	if err != nil {
		return nil, err
	}
	return fsys.Stat(ctx, p.String())
}

// Lstat returns file metadata for p. If p is a symbolic link, the returned
// FileInfo describes the link itself.
// Analogous to: [os.Lstat].
func (p Path) Lstat(ctx context.Context) (FileInfo, error) {
	fsys, err := p.checked("lstat")
	if err != nil {
		return nil, err
	}
	return fsys.Lstat(ctx, p.String())
}

// absent reports whether err means that nothing can be found at a path:
// the path or one of its parents does not exist, or it is a broken or
// looping link.
func absent(err error) bool {
	return errors.Is(err, ErrNotExist) ||
		errors.Is(err, ErrLinkLoop) ||
		errors.Is(err, ErrNotDir)
}

// Exists reports whether p exists, following symbolic links. A broken
// link or a link loop does not exist.
func (p Path) Exists(ctx context.Context) (bool, error) {
	_, err := p.Stat(ctx)
	if err == nil {
		return true, nil
	}
	if absent(err) {
		return false, nil
	}
	return false, err
}

// lexists reports whether anything, including a broken link, is at p.
func (p Path) lexists(ctx context.Context) (bool, error) {
	_, err := p.Lstat(ctx)
	if err == nil {
		return true, nil
	}
	if absent(err) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether p is a directory, following symbolic links.
// It reports false if p does not exist.
func (p Path) IsDir(ctx context.Context) (bool, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		if absent(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsFile reports whether p is a regular file, following symbolic links.
// It reports false if p does not exist.
func (p Path) IsFile(ctx context.Context) (bool, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		if absent(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// IsSymlink reports whether p is a symbolic link.
// It reports false if p does not exist.
func (p Path) IsSymlink(ctx context.Context) (bool, error) {
	info, err := p.Lstat(ctx)
	if err != nil {
		if absent(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode()&ModeSymlink != 0, nil
}

// EntryType returns the kind of entry at p. Symbolic links are reported as
// SymbolicLink rather than followed.
func (p Path) EntryType(ctx context.Context) (EntryType, error) {
	info, err := p.Lstat(ctx)
	if err != nil {
		return 0, err
	}
	return EntryTypeOf(info.Mode()), nil
}

// Size returns the size of the file at p in bytes, following symbolic
// links.
func (p Path) Size(ctx context.Context) (int64, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// UID returns the numeric user id of the owner of p.
// It fails with ErrUnsupported if the backend does not report ownership.
func (p Path) UID(ctx context.Context) (int, error) {
	owner, err := p.owner(ctx, "uid")
	if err != nil {
		return 0, err
	}
	return owner.UID(), nil
}

// GID returns the numeric group id of the owner of p.
// It fails with ErrUnsupported if the backend does not report ownership.
func (p Path) GID(ctx context.Context) (int, error) {
	owner, err := p.owner(ctx, "gid")
	if err != nil {
		return 0, err
	}
	return owner.GID(), nil
}

func (p Path) owner(ctx context.Context, op string) (OwnerInfo, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		return nil, err
	}
	owner, ok := info.(OwnerInfo)
	if !ok {
		return nil, newPathError(op, p.String(), ErrUnsupported)
	}
	return owner, nil
}
