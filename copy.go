package hostfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"lesiw.io/hostfs/path"
)

// An Overwrite selects what [Copy] does when the target already exists.
type Overwrite int

const (
	// OverwriteNever keeps the existing target and skips the entry.
	OverwriteNever Overwrite = iota

	// OverwriteAlways removes the existing target and replaces it.
	// Existing directories are merged rather than removed.
	OverwriteAlways

	// OverwriteRaise makes Copy fail with ErrExist.
	OverwriteRaise
)

// ParseOverwrite returns the Overwrite named by "never", "always" or
// "raise".
func ParseOverwrite(s string) (Overwrite, error) {
	switch s {
	case "never":
		return OverwriteNever, nil
	case "always":
		return OverwriteAlways, nil
	case "raise":
		return OverwriteRaise, nil
	}
	return 0, fmt.Errorf("invalid overwrite mode %q: %w", s, ErrInvalid)
}

func (o Overwrite) String() string {
	switch o {
	case OverwriteNever:
		return "never"
	case OverwriteAlways:
		return "always"
	case OverwriteRaise:
		return "raise"
	}
	return fmt.Sprintf("Overwrite(%d)", int(o))
}

// A ProgressFunc receives progress reports from [Copy]: the number of bytes
// copied so far and the estimated total. Returning an error aborts the
// copy, and Copy returns that error.
type ProgressFunc func(done, total int64) error

// A CopyOption configures [Copy].
type CopyOption func(*copyOpts)

type copyOpts struct {
	overwrite       Overwrite
	copyInto        bool
	copyPermissions bool
	progress        ProgressFunc
}

// WithOverwrite selects the behavior for existing targets. The default is
// OverwriteNever.
func WithOverwrite(o Overwrite) CopyOption {
	return func(opts *copyOpts) { opts.overwrite = o }
}

// WithCopyInto controls whether copying onto an existing directory copies
// into it (true, the default) or onto it, subject to the overwrite mode.
func WithCopyInto(into bool) CopyOption {
	return func(opts *copyOpts) { opts.copyInto = into }
}

// WithCopyPermissions makes the target's permission bits match the
// source's, including setuid, setgid and sticky. By default the target
// keeps its default permissions less any the source does not have.
func WithCopyPermissions(copyPerms bool) CopyOption {
	return func(opts *copyOpts) { opts.copyPermissions = copyPerms }
}

// WithProgress installs a progress callback. It is called once with zero
// before any data is copied, about once per second while data is copied,
// and once with the final byte count at the end.
func WithProgress(f ProgressFunc) CopyOption {
	return func(opts *copyOpts) { opts.progress = f }
}

// progressInterval is the minimum time between two progress reports.
const progressInterval = time.Second

// Copy copies the file or directory src to dst.
// Analogous to: cp -r.
//
// The paths may be on different file systems. If dst is an existing
// directory and copy-into is enabled (the default), src is copied to
// dst/src.Name(). Directories are copied recursively.
//
// Symbolic links whose one-hop target lies inside the tree being copied
// are recreated as relative links when both file systems support links.
// Any other link is copied as the file or directory it points to. Links
// that cannot be resolved or that point to a directory containing them
// are skipped, as are device files, FIFOs and sockets.
//
// Permission bits are merged bit by bit: without [WithCopyPermissions] a
// target bit is set only if the target's default had it and the source has
// it. Backends without permission support leave their defaults in place.
//
// An error aborts the copy and is returned unchanged; whatever was copied
// up to that point is left in place. The total passed to the progress
// callback is an estimate made before copying starts.
func Copy(ctx context.Context, src, dst Path, opts ...CopyOption) error {
	o := copyOpts{copyInto: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.overwrite < OverwriteNever || o.overwrite > OverwriteRaise {
		return &PathError{
			Op:   "copy",
			Path: src.String(),
			Err: fmt.Errorf("invalid overwrite mode %d: %w",
				o.overwrite, ErrInvalid),
		}
	}
	if src.fsys == nil || dst.fsys == nil {
		return newPathError("copy", src.String(), ErrInvalid)
	}

	isDir, err := dst.IsDir(ctx)
	if err != nil {
		return err
	}
	if isDir && o.copyInto {
		dst = dst.Join(src.Name())
	}
	if sameFileSystem(src.fsys, dst.fsys) &&
		path.HasPrefix(dst.String(), src.String()) &&
		(!dst.Equal(src) || o.overwrite == OverwriteAlways) {
		return &PathError{
			Op:   "copy",
			Path: src.String(),
			Err: fmt.Errorf("cannot copy into itself (%s): %w",
				dst, ErrInvalid),
		}
	}

	total, err := approxSize(ctx, src)
	if err != nil {
		return err
	}

	c := &copier{
		copyOpts: o,
		context:  src,
		total:    total,
		log:      Logger("copy"),
		now:      time.Now,
	}
	if err := c.report(0); err != nil {
		return err
	}
	if err := c.copy(ctx, src, dst); err != nil {
		return err
	}
	return c.report(c.written)
}

// approxSize sums the sizes of the regular files under p, not counting
// symbolic links.
func approxSize(ctx context.Context, p Path) (int64, error) {
	info, err := p.Lstat(ctx)
	if err != nil {
		if absent(err) {
			return 0, nil
		}
		return 0, err
	}
	switch {
	case info.Mode().IsRegular():
		return info.Size(), nil
	case info.IsDir():
		var size int64
		for child, err := range p.Iterdir(ctx) {
			if err != nil {
				return 0, err
			}
			n, err := approxSize(ctx, child)
			if err != nil {
				return 0, err
			}
			size += n
		}
		return size, nil
	}
	return 0, nil
}

type copier struct {
	copyOpts

	// context is the root of the tree being copied. It decides whether a
	// symbolic link points inside the tree.
	context Path

	total   int64
	written int64
	next    time.Time
	aborted error

	log *zap.Logger
	now func() time.Time
}

func (c *copier) report(done int64) error {
	if c.progress == nil {
		return nil
	}
	c.next = c.now().Add(progressInterval)
	if err := c.progress(done, c.total); err != nil {
		c.aborted = err
		return err
	}
	return nil
}

// tick reports progress if a report is due.
func (c *copier) tick(done int64) error {
	if c.progress == nil || c.now().Before(c.next) {
		return nil
	}
	return c.report(done)
}

func (c *copier) copy(ctx context.Context, src, dst Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.log.Debug("copying",
		zap.Stringer("src", src), zap.Stringer("dst", dst))

	isLink, err := src.IsSymlink(ctx)
	if err != nil {
		return err
	}
	if isLink {
		done, err := c.copySymlink(ctx, src, dst)
		if err != nil || done {
			return err
		}
		if ancestor(ctx, src) {
			c.log.Debug("skipping link to ancestor", zap.Stringer("src", src))
			return nil
		}
	}

	info, err := src.Stat(ctx)
	switch {
	case err == nil && info.Mode().IsRegular():
		return c.copyFile(ctx, src, dst)
	case err == nil && info.IsDir():
		return c.copyDir(ctx, src, dst)
	case err == nil:
		c.log.Debug("skipping special entry", zap.Stringer("src", src))
		return nil
	case absent(err) && isLink:
		c.log.Debug("skipping broken link", zap.Stringer("src", src))
		return nil
	case absent(err):
		return newPathError("copy", src.String(), ErrNotExist)
	}
	return err
}

// conflict decides what to do about an existing target. It reports
// whether the copy of this entry should proceed.
func (c *copier) conflict(ctx context.Context, dst Path) (bool, error) {
	exists, err := dst.lexists(ctx)
	if err != nil || !exists {
		return err == nil, err
	}
	switch c.overwrite {
	case OverwriteRaise:
		return false, newPathError("copy", dst.String(), ErrExist)
	case OverwriteNever:
		return false, nil
	}
	return true, nil
}

// clearTarget removes whatever is at dst.
func clearTarget(ctx context.Context, dst Path) error {
	info, err := dst.Lstat(ctx)
	if err != nil {
		if absent(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return dst.Rmdir(ctx, true)
	}
	return dst.Unlink(ctx)
}

// copySymlink recreates src as a relative link at dst if it points inside
// the tree being copied. It reports whether the entry is done; if not, the
// caller copies the link's target instead.
func (c *copier) copySymlink(
	ctx context.Context, src, dst Path,
) (bool, error) {
	proceed, err := c.conflict(ctx, dst)
	if err != nil || !proceed {
		return true, err
	}
	if ok, err := linksSupported(src, dst); err != nil || !ok {
		return false, err
	}

	target, err := src.Readlink(ctx, false)
	if err != nil {
		return false, err
	}
	if !path.HasPrefix(target.String(), c.context.String()) {
		return false, nil
	}

	rel := path.Rel(src.Parent().String(), target.String())
	c.log.Debug("making relative link",
		zap.Stringer("dst", dst), zap.String("target", rel))
	if err := clearTarget(ctx, dst); err != nil {
		return true, err
	}
	return true, dst.SymlinkText(ctx, rel)
}

// ancestor reports whether the link src resolves to a directory that
// contains it. Copying such a link concretely would never end.
func ancestor(ctx context.Context, src Path) bool {
	target, err := src.Readlink(ctx, true)
	if err != nil {
		return false
	}
	return path.HasPrefix(src.String(), target.String())
}

func linksSupported(src, dst Path) (bool, error) {
	for _, fsys := range []FileSystem{src.fsys, dst.fsys} {
		ok, err := fsys.Supports(FeatureSymlinks)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c *copier) copyFile(ctx context.Context, src, dst Path) error {
	proceed, err := c.conflict(ctx, dst)
	if err != nil || !proceed {
		return err
	}
	if err := clearTarget(ctx, dst); err != nil {
		return err
	}
	if err := dst.Touch(ctx); err != nil {
		return err
	}
	defaults, err := permBits(ctx, dst)
	if err != nil {
		return err
	}
	if err := ignoreUnsupported(dst.Chmod(ctx, 0600)); err != nil {
		return err
	}

	r := &progressReader{ctx: ctx, c: c, src: src}
	defer r.Close()
	n, err := dst.WriteFrom(ctx, r)
	if c.aborted != nil {
		return c.aborted
	}
	if err != nil {
		return err
	}
	c.written += n

	return c.mergePermissions(ctx, src, dst, defaults)
}

func (c *copier) copyDir(ctx context.Context, src, dst Path) error {
	exists, err := dst.lexists(ctx)
	if err != nil {
		return err
	}
	if exists {
		switch c.overwrite {
		case OverwriteRaise:
			return newPathError("copy", dst.String(), ErrExist)
		case OverwriteNever:
			return nil
		}
		isDir, err := dst.IsDir(ctx)
		if err != nil {
			return err
		}
		if !isDir {
			if err := dst.Unlink(ctx); err != nil {
				return err
			}
		}
	}

	if ok, err := dst.Exists(ctx); err != nil {
		return err
	} else if !ok {
		c.log.Debug("making new dir", zap.Stringer("dst", dst))
		if err := dst.Mkdir(ctx); err != nil {
			return err
		}
	}
	defaults, err := permBits(ctx, dst)
	if err != nil {
		return err
	}
	if err := ignoreUnsupported(dst.Chmod(ctx, 0700)); err != nil {
		return err
	}

	for child, err := range src.Iterdir(ctx) {
		if err != nil {
			return err
		}
		if err := c.copy(ctx, child, dst.Join(child.Name())); err != nil {
			return err
		}
	}

	return c.mergePermissions(ctx, src, dst, defaults)
}

// mergePermissions sets the permission bits of dst one at a time from the
// source's bits and the target's defaults.
func (c *copier) mergePermissions(
	ctx context.Context, src, dst Path, defaults Mode,
) error {
	srcBits, err := permBits(ctx, src)
	if err != nil {
		return err
	}
	cur, err := permBits(ctx, dst)
	if err != nil {
		return err
	}
	for _, perm := range permissions {
		bit := Mode(perm)
		want := srcBits&bit != 0
		if !c.copyPermissions {
			want = want && defaults&bit != 0
		}
		next := cur &^ bit
		if want {
			next |= bit
		}
		if next == cur {
			continue
		}
		if err := dst.Chmod(ctx, next); err != nil {
			return ignoreUnsupported(err)
		}
		cur = next
	}
	return nil
}

func permBits(ctx context.Context, p Path) (Mode, error) {
	info, err := p.Stat(ctx)
	if err != nil {
		return 0, err
	}
	return info.Mode() & PermBits, nil
}

func ignoreUnsupported(err error) error {
	if errors.Is(err, ErrUnsupported) {
		return nil
	}
	return err
}

// progressReader streams a source file, reporting progress as bytes pass
// through. Seeking to the start reopens the source, so that a backend can
// restart a failed write from byte zero.
type progressReader struct {
	ctx context.Context
	c   *copier
	src Path
	r   io.ReadCloser
	n   int64
}

func (pr *progressReader) Read(b []byte) (int, error) {
	if pr.c.aborted != nil {
		return 0, pr.c.aborted
	}
	if err := pr.ctx.Err(); err != nil {
		return 0, err
	}
	if pr.r == nil {
		r, err := pr.src.Open(pr.ctx)
		if err != nil {
			return 0, err
		}
		pr.r = r
	}
	n, err := pr.r.Read(b)
	pr.n += int64(n)
	if tickErr := pr.c.tick(pr.c.written + pr.n); tickErr != nil {
		return n, tickErr
	}
	return n, err
}

func (pr *progressReader) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 || whence != io.SeekStart {
		return 0, newPathError("seek", pr.src.String(), ErrInvalid)
	}
	err := pr.Close()
	pr.n = 0
	return 0, err
}

func (pr *progressReader) Close() error {
	if pr.r == nil {
		return nil
	}
	err := pr.r.Close()
	pr.r = nil
	return err
}
