package hostfs

import (
	"context"

	"lesiw.io/hostfs/path"
)

// MaxLinkHops is the number of symbolic links Readlink follows before
// giving up with ErrLinkLoop.
const MaxLinkHops = 32

// SymlinkTo makes p a symbolic link to target.
// Analogous to: [os.Symlink], ln -s.
//
// The link stores target's path as an absolute path. Use [Path.SymlinkText]
// to store a relative link. It fails with ErrCrossFileSystem if target is
// on a different file system.
func (p Path) SymlinkTo(ctx context.Context, target Path) error {
	if err := p.sameFS("symlink", target); err != nil {
		return err
	}
	return p.SymlinkText(ctx, target.String())
}

// SymlinkText makes p a symbolic link holding the literal text target,
// which may be relative to p's directory.
func (p Path) SymlinkText(ctx context.Context, target string) error {
	fsys, err := p.checked("symlink")
	if err != nil {
		return err
	}
	return fsys.Symlink(ctx, target, p.String())
}

// ReadLink returns the text stored in the symbolic link p, without
// resolving it.
// Analogous to: [os.Readlink].
func (p Path) ReadLink(ctx context.Context) (string, error) {
	fsys, err := p.checked("readlink")
	if err != nil {
		return "", err
	}
	return fsys.ReadLink(ctx, p.String())
}

// Readlink returns the destination of the symbolic link p as an absolute
// Path on the same file system. A relative link is resolved against the
// directory containing the link.
//
// If recursive is false, Readlink follows exactly one link. If recursive is
// true, it keeps following links until it reaches a path that is not a
// symbolic link, which need not exist. A chain longer than [MaxLinkHops]
// fails with ErrLinkLoop; this also stops link cycles.
func (p Path) Readlink(ctx context.Context, recursive bool) (Path, error) {
	next, err := p.readlinkOnce(ctx)
	if err != nil || !recursive {
		return next, err
	}
	cur := next
	for range MaxLinkHops - 1 {
		isLink, err := cur.IsSymlink(ctx)
		if err != nil {
			return Path{}, err
		}
		if !isLink {
			return cur, nil
		}
		if cur, err = cur.readlinkOnce(ctx); err != nil {
			return Path{}, err
		}
	}
	if isLink, err := cur.IsSymlink(ctx); err != nil {
		return Path{}, err
	} else if !isLink {
		return cur, nil
	}
	return Path{}, newPathError("readlink", p.String(), ErrLinkLoop)
}

func (p Path) readlinkOnce(ctx context.Context) (Path, error) {
	text, err := p.ReadLink(ctx)
	if err != nil {
		return Path{}, err
	}
	if path.IsAbs(text) {
		return Path{fsys: p.fsys, name: path.Abs(text)}, nil
	}
	return p.Parent().Join(text), nil
}
