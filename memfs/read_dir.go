package memfs

import (
	"context"
	"iter"

	"lesiw.io/hostfs"
)

func (f *FS) ReadDir(
	ctx context.Context, name string,
) iter.Seq2[hostfs.DirEntry, error] {
	return func(yield func(hostfs.DirEntry, error) bool) {
		// Snapshot entries while holding lock
		f.RLock()
		if err := f.check("readdir", name); err != nil {
			f.RUnlock()
			yield(nil, err)
			return
		}
		n, err := f.lookup(name, true)
		if err == nil && !n.isDir() {
			err = hostfs.ErrNotDir
		}
		if err != nil {
			f.RUnlock()
			yield(nil, pathError("readdir", name, err))
			return
		}
		entries := make([]*dirEntry, 0, len(n.nodes))
		for _, child := range n.nodes {
			entries = append(entries, &dirEntry{info: f.info(child)})
		}
		f.RUnlock()

		// Yield entries without holding lock
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

// dirEntry implements hostfs.DirEntry.
type dirEntry struct{ info *fileInfo }

func (de *dirEntry) Name() string      { return de.info.name }
func (de *dirEntry) IsDir() bool       { return de.info.IsDir() }
func (de *dirEntry) Type() hostfs.Mode { return de.info.mode.Type() }

func (de *dirEntry) Info() (hostfs.FileInfo, error) { return de.info, nil }
