package hostfs

import (
	"context"
	"iter"
	"slices"

	"lesiw.io/hostfs/path"
)

// A WalkStep describes one directory visited by [Path.Walk].
type WalkStep struct {
	// Dir is the directory being visited.
	Dir Path

	// Dirs holds the names of the subdirectories of Dir, including
	// symbolic links to directories. In top-down walks the caller may
	// remove names from Dirs to keep Walk from descending into them.
	Dirs []string

	// Files holds the names of every other entry of Dir.
	Files []string
}

// A WalkOption configures [Path.Walk].
type WalkOption func(*walkOpts)

type walkOpts struct {
	topDown     bool
	onError     func(error)
	followLinks bool
}

// TopDown selects pre-order (true, the default) or post-order (false)
// traversal. In pre-order a directory is yielded before its
// subdirectories, in post-order after them.
func TopDown(topDown bool) WalkOption {
	return func(o *walkOpts) { o.topDown = topDown }
}

// OnError installs a callback for directory listing errors. When a
// directory cannot be listed, the callback receives the error and Walk
// skips that subtree and carries on. Without a callback the error is
// yielded and the walk ends.
func OnError(f func(error)) WalkOption {
	return func(o *walkOpts) { o.onError = f }
}

// FollowLinks makes Walk descend into symbolic links to directories.
// A link that resolves to a directory already on the current walk path is
// never followed.
func FollowLinks(follow bool) WalkOption {
	return func(o *walkOpts) { o.followLinks = follow }
}

// Walk traverses the directory tree rooted at p.
// Analogous to: find, Python's os.walk.
//
// Walk yields one [WalkStep] per directory. The order of names within a
// step is whatever the backend lists. Symbolic links are not followed
// unless [FollowLinks] is given.
//
//	for step, err := range root.Walk(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    for _, name := range step.Files {
//	        fmt.Println(step.Dir.Join(name))
//	    }
//	}
func (p Path) Walk(
	ctx context.Context, opts ...WalkOption,
) iter.Seq2[*WalkStep, error] {
	o := walkOpts{topDown: true}
	for _, opt := range opts {
		opt(&o)
	}
	return func(yield func(*WalkStep, error) bool) {
		p.walk(ctx, &o, nil, yield)
	}
}

// walk visits p and its subtree. It returns false when the walk must end.
// The followed slice holds the resolved targets of the links followed to
// reach p.
func (p Path) walk(
	ctx context.Context, o *walkOpts, followed []string,
	yield func(*WalkStep, error) bool,
) bool {
	step := &WalkStep{Dir: p}
	links := make(map[string]bool)
	for entry, err := range p.ReadDir(ctx) {
		if err != nil {
			if o.onError != nil {
				o.onError(err)
				return true
			}
			yield(nil, err)
			return false
		}
		name := entry.Name()
		isDir := entry.IsDir()
		if entry.Type()&ModeSymlink != 0 {
			links[name] = true
			// A broken link is reported as a file.
			isDir, _ = p.Join(name).IsDir(ctx)
		}
		if isDir {
			step.Dirs = append(step.Dirs, name)
		} else {
			step.Files = append(step.Files, name)
		}
	}

	if o.topDown && !yield(step, nil) {
		return false
	}
	for _, name := range step.Dirs {
		child := p.Join(name)
		chain := followed
		if links[name] {
			if !o.followLinks {
				continue
			}
			target, err := child.Readlink(ctx, true)
			if err != nil {
				continue
			}
			t := target.String()
			if path.HasPrefix(p.String(), t) || slices.Contains(chain, t) {
				continue
			}
			chain = append(slices.Clip(chain), t)
		}
		if !child.walk(ctx, o, chain, yield) {
			return false
		}
	}
	if !o.topDown && !yield(step, nil) {
		return false
	}
	return true
}
