package hostfs

import (
	"context"
	"slices"

	"lesiw.io/hostfs/path"
)

// Glob returns the paths below p that match pattern, in lexical order.
// Analogous to: [io/fs.Glob], glob.
//
// The pattern syntax is the same as in [path.Match], applied element by
// element, so "src/*/main.go" matches one directory level. Glob ignores
// errors reading directories. The only possible returned error is
// [path.ErrBadPattern].
func (p Path) Glob(ctx context.Context, pattern string) ([]Path, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	matches := []Path{p}
	for _, elem := range path.Elems(pattern) {
		var next []Path
		for _, dir := range matches {
			next = glob(ctx, dir, elem, next)
		}
		if matches = next; len(matches) == 0 {
			break
		}
	}
	slices.SortFunc(matches, func(a, b Path) int {
		c, _ := a.Compare(b)
		return c
	})
	return matches, nil
}

// glob appends the children of dir matching the single element pattern to
// matches.
func glob(
	ctx context.Context, dir Path, pattern string, matches []Path,
) []Path {
	if !hasMeta(pattern) {
		p := dir.Join(pattern)
		if ok, _ := p.lexists(ctx); ok {
			matches = append(matches, p)
		}
		return matches
	}
	for entry, err := range dir.ReadDir(ctx) {
		if err != nil {
			return matches
		}
		if ok, _ := path.Match(pattern, entry.Name()); ok {
			matches = append(matches, dir.Join(entry.Name()))
		}
	}
	return matches
}

// hasMeta reports whether p contains any of the magic characters
// recognized by path.Match.
func hasMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
