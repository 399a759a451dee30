package hostfs

import (
	"context"
	"errors"
)

// A MkdirOption modifies the behavior of [Path.Mkdir].
type MkdirOption int

const (
	// Parents creates any missing parent directories, like mkdir -p.
	Parents MkdirOption = iota + 1

	// ExistOK makes Mkdir succeed when the directory already exists.
	ExistOK
)

// Mkdir creates the directory p.
// Analogous to: [os.Mkdir], mkdir.
//
// The directory mode is obtained from [DirMode](ctx). If not set in the
// context, the default mode 0755 is used:
//
//	ctx = hostfs.WithDirMode(ctx, 0700)
//	p.Mkdir(ctx)  // Creates with mode 0700
//
// Without options, Mkdir fails with ErrExist if p exists and with
// ErrNotExist if its parent does not. [Parents] creates missing parents
// with the same mode; [ExistOK] accepts an existing directory. Something
// other than a directory at p is always an error.
func (p Path) Mkdir(ctx context.Context, opts ...MkdirOption) error {
	fsys, err := p.checked("mkdir")
	if err != nil {
		return err
	}
	var parents, existOK bool
	for _, o := range opts {
		switch o {
		case Parents:
			parents = true
		case ExistOK:
			existOK = true
		}
	}

	err = fsys.Mkdir(ctx, p.String(), DirMode(ctx))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrExist):
		if existOK {
			if isDir, dirErr := p.IsDir(ctx); dirErr != nil {
				return dirErr
			} else if isDir {
				return nil
			}
		}
		return err
	case errors.Is(err, ErrNotExist) && parents:
		parent := p.Parent()
		if parent.Equal(p) {
			return err
		}
		if err := parent.Mkdir(ctx, Parents, ExistOK); err != nil {
			return err
		}
		err = fsys.Mkdir(ctx, p.String(), DirMode(ctx))
		if errors.Is(err, ErrExist) && existOK {
			return nil
		}
		return err
	}
	return err
}

// MkdirAll creates the directory p along with any necessary parents.
// Analogous to: [os.MkdirAll], mkdir -p.
//
// If p is already a directory, MkdirAll does nothing and returns nil.
func (p Path) MkdirAll(ctx context.Context) error {
	return p.Mkdir(ctx, Parents, ExistOK)
}
