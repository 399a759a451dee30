// Package memfs implements hostfs.FileSystem using an in-memory file tree.
//
// A memfs file system supports symbolic links and permissions by default.
// [WithFeatures] narrows that set, which makes memfs a stand-in for
// restricted backends in tests: without permissions, Chmod is unsupported
// and every file reports mode 0600 and every directory 0700.
package memfs

import (
	"sync"
	"time"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/path"
)

// maxHops bounds symbolic link resolution.
const maxHops = 40

// FS is an in-memory file system. It is safe for concurrent use.
type FS struct {
	sync.RWMutex
	root *node

	features []hostfs.Feature
	ignore   bool
	closed   bool
}

// An Option configures a file system returned by [New].
type Option func(*FS)

// WithFeatures sets the features the file system supports. Only
// FeatureSymlinks and FeaturePermissions change its behavior; other
// features are only reported by Supports.
func WithFeatures(features ...hostfs.Feature) Option {
	return func(f *FS) { f.features = features }
}

// IgnoreUnsupported makes unsupported operations succeed without effect
// instead of failing with ErrUnsupported.
func IgnoreUnsupported() Option {
	return func(f *FS) { f.ignore = true }
}

// New returns a new empty in-memory file system.
func New(opts ...Option) *FS {
	f := &FS{
		root: &node{
			mode:    0755 | hostfs.ModeDir,
			modTime: time.Now(),
			nodes:   make(map[string]*node),
		},
		features: []hostfs.Feature{
			hostfs.FeatureSymlinks,
			hostfs.FeaturePermissions,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// node represents a file, directory, or symbolic link.
type node struct {
	name    string
	data    []byte
	mode    hostfs.Mode
	modTime time.Time
	link    string
	nodes   map[string]*node
}

func (n *node) isDir() bool  { return n.mode.IsDir() }
func (n *node) isLink() bool { return n.mode&hostfs.ModeSymlink != 0 }

// Equal reports whether other is the same in-memory file system.
func (f *FS) Equal(other hostfs.FileSystem) bool {
	o, ok := other.(*FS)
	return ok && o == f
}

// Supports implements hostfs.FileSystem.
func (f *FS) Supports(feature hostfs.Feature) (bool, error) {
	return hostfs.Supported(feature, f.features...)
}

func (f *FS) has(feature hostfs.Feature) bool {
	ok, _ := f.Supports(feature)
	return ok
}

// Close implements io.Closer. The tree is discarded and later operations
// fail with ErrClosed.
func (f *FS) Close() error {
	f.Lock()
	defer f.Unlock()
	if f.closed {
		return &hostfs.PathError{Op: "close", Path: "/", Err: hostfs.ErrClosed}
	}
	f.closed, f.root = true, nil
	return nil
}

// check must be called with the lock held.
func (f *FS) check(op, name string) error {
	if f.closed {
		return &hostfs.PathError{Op: op, Path: name, Err: hostfs.ErrClosed}
	}
	return nil
}

// lookup finds the node at name. A final symbolic link is followed only if
// follow is true. It must be called with the lock held.
func (f *FS) lookup(name string, follow bool) (*node, error) {
	return f.resolve(name, follow, 0)
}

func (f *FS) resolve(name string, follow bool, hops int) (*node, error) {
	cur, dir := f.root, path.Root
	elems := path.Elems(name)
	for i, elem := range elems {
		if !cur.isDir() {
			return nil, hostfs.ErrNotDir
		}
		next, ok := cur.nodes[elem]
		if !ok {
			return nil, hostfs.ErrNotExist
		}
		if next.isLink() && (follow || i < len(elems)-1) {
			if hops >= maxHops {
				return nil, hostfs.ErrLinkLoop
			}
			target := next.link
			if !path.IsAbs(target) {
				target = path.Join(dir, target)
			}
			var err error
			if next, err = f.resolve(target, true, hops+1); err != nil {
				return nil, err
			}
		}
		cur, dir = next, path.Join(dir, elem)
	}
	return cur, nil
}

// parent finds the directory that holds name and returns it with the
// base name. It must be called with the lock held.
func (f *FS) parent(name string) (*node, string, error) {
	dir, base := path.Split(path.Abs(name))
	if base == "" {
		return nil, "", hostfs.ErrExist
	}
	n, err := f.lookup(dir, true)
	if err != nil {
		return nil, "", err
	}
	if !n.isDir() {
		return nil, "", hostfs.ErrNotDir
	}
	return n, base, nil
}

func pathError(op, name string, err error) error {
	return &hostfs.PathError{Op: op, Path: name, Err: err}
}

var _ hostfs.FileSystem = (*FS)(nil)
