package hostfs

import "context"

// Chmod changes the permission bits of p to mode.
// Analogous to: [os.Chmod], chmod.
//
// Only the twelve permission bits of mode are used. Backends without
// permission support fail with ErrUnsupported or ignore the call,
// depending on how they were constructed.
func (p Path) Chmod(ctx context.Context, mode Mode) error {
	fsys, err := p.checked("chmod")
	if err != nil {
		return err
	}
	return fsys.Chmod(ctx, p.String(), mode&PermBits)
}

// HasPermission reports whether permission bit perm is set on p,
// following symbolic links.
func (p Path) HasPermission(
	ctx context.Context, perm Permission,
) (bool, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		return false, err
	}
	return info.Mode()&Mode(perm) != 0, nil
}

// SetPermission sets or clears permission bit perm on p, leaving the other
// bits unchanged.
func (p Path) SetPermission(
	ctx context.Context, perm Permission, value bool,
) error {
	info, err := p.Stat(ctx)
	if err != nil {
		return err
	}
	mode := info.Mode() & PermBits
	if value {
		mode |= Mode(perm)
	} else {
		mode &^= Mode(perm)
	}
	if mode == info.Mode()&PermBits {
		return nil
	}
	return p.Chmod(ctx, mode)
}
