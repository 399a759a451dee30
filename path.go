package hostfs

import (
	"fmt"
	"strings"

	"lesiw.io/hostfs/path"
)

// A Path is a location on a FileSystem.
//
// Paths are immutable values. The zero Path has no file system and is not
// usable for I/O. A Path does not own any resources; the FileSystem must
// outlive every Path derived from it.
type Path struct {
	fsys FileSystem
	name string
}

// Root returns the root directory of fsys.
func Root(fsys FileSystem) Path {
	return Path{fsys: fsys, name: path.Root}
}

// New returns the path on fsys formed by joining elem to the root.
// Every element is treated as relative, so New(fsys, "/a", "/b") is "/a/b".
func New(fsys FileSystem, elem ...string) Path {
	return Path{fsys: fsys, name: path.Join(elem...)}
}

// FileSystem returns the file system p belongs to.
func (p Path) FileSystem() FileSystem { return p.fsys }

// String returns the absolute slash-separated form of p.
func (p Path) String() string {
	if p.name == "" {
		return path.Root
	}
	return p.name
}

// Join returns p with elem appended. Leading and trailing slashes of each
// element are ignored, so an element can never replace p with an absolute
// path, and ".." never climbs above the root.
func (p Path) Join(elem ...string) Path {
	elems := append([]string{p.String()}, elem...)
	return Path{fsys: p.fsys, name: path.Join(elems...)}
}

// Parent returns the directory containing p. The parent of the root is the
// root.
func (p Path) Parent() Path {
	return Path{fsys: p.fsys, name: path.Dir(p.String())}
}

// Parents returns the ancestors of p, nearest first, ending with the root.
// The root has no parents.
func (p Path) Parents() []Path {
	var parents []Path
	for cur := p; cur.String() != path.Root; {
		cur = cur.Parent()
		parents = append(parents, cur)
	}
	return parents
}

// Name returns the final element of p, or "" for the root.
func (p Path) Name() string { return path.Base(p.String()) }

// Suffix returns the extension of the final element, including the dot.
func (p Path) Suffix() string { return path.Ext(p.String()) }

// Suffixes returns all extensions of the final element, in order.
func (p Path) Suffixes() []string { return path.Exts(p.String()) }

// Stem returns the final element without its suffix.
func (p Path) Stem() string {
	return strings.TrimSuffix(p.Name(), p.Suffix())
}

// WithName returns p with its final element replaced by name.
// It fails with ErrInvalid if p is the root or name is not a single
// non-empty element.
func (p Path) WithName(name string) (Path, error) {
	if p.Name() == "" {
		return Path{}, newPathError("withname", p.String(), ErrInvalid)
	}
	if name == "" || name == "." || name == ".." ||
		strings.Contains(name, "/") {
		return Path{}, newPathError("withname", name, ErrInvalid)
	}
	return p.Parent().Join(name), nil
}

// WithSuffix returns p with its suffix replaced by suffix. An empty suffix
// removes the current one. It fails with ErrInvalid if p is the root or
// suffix does not start with a dot.
func (p Path) WithSuffix(suffix string) (Path, error) {
	if suffix != "" && (!strings.HasPrefix(suffix, ".") || suffix == "." ||
		strings.Contains(suffix, "/")) {
		return Path{}, newPathError("withsuffix", suffix, ErrInvalid)
	}
	return p.WithName(p.Stem() + suffix)
}

// RelativeTo returns the slash-separated path of p relative to other.
// It fails with ErrInvalid if other is not p or one of its ancestors, and
// with ErrCrossFileSystem if the paths are on different file systems.
func (p Path) RelativeTo(other Path) (string, error) {
	if !sameFileSystem(p.fsys, other.fsys) {
		return "", newPathError("relative", p.String(), ErrCrossFileSystem)
	}
	if !path.HasPrefix(p.String(), other.String()) {
		return "", &PathError{
			Op:   "relative",
			Path: p.String(),
			Err:  fmt.Errorf("not under %s: %w", other, ErrInvalid),
		}
	}
	return path.Rel(other.String(), p.String()), nil
}

// Equal reports whether p and q are the same location on equal file
// systems.
func (p Path) Equal(q Path) bool {
	return p.String() == q.String() && sameFileSystem(p.fsys, q.fsys)
}

// Compare orders p and q lexically by their elements, returning -1, 0 or
// +1. Paths on different file systems cannot be ordered; Compare fails with
// ErrCrossFileSystem.
func (p Path) Compare(q Path) (int, error) {
	if !sameFileSystem(p.fsys, q.fsys) {
		return 0, newPathError("compare", p.String(), ErrCrossFileSystem)
	}
	pe, qe := path.Elems(p.String()), path.Elems(q.String())
	for i := range min(len(pe), len(qe)) {
		if c := strings.Compare(pe[i], qe[i]); c != 0 {
			return c, nil
		}
	}
	switch {
	case len(pe) < len(qe):
		return -1, nil
	case len(pe) > len(qe):
		return 1, nil
	}
	return 0, nil
}

// sameFS reports whether two paths share a file system, for operations
// that cannot span two.
func (p Path) sameFS(op string, q Path) error {
	if sameFileSystem(p.fsys, q.fsys) {
		return nil
	}
	return newPathError(op, p.String(), ErrCrossFileSystem)
}

func sameFileSystem(a, b FileSystem) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// checked returns the file system of p, or an error if p has none.
func (p Path) checked(op string) (FileSystem, error) {
	if p.fsys == nil {
		return nil, newPathError(op, p.String(), ErrInvalid)
	}
	return p.fsys, nil
}
