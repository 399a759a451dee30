package hostfs

import (
	"context"
	"iter"
)

// ReadDir reads the directory p and returns an iterator over its entries.
// Analogous to: [os.ReadDir], ls.
//
// Entries arrive in whatever order the backend lists them.
func (p Path) ReadDir(ctx context.Context) iter.Seq2[DirEntry, error] {
	fsys, err := p.checked("readdir")
	if err != nil {
		return func(yield func(DirEntry, error) bool) {
			yield(nil, err)
		}
	}
	return fsys.ReadDir(ctx, p.String())
}

// Iterdir returns an iterator over the children of the directory p.
//
// The iterator is lazy and single pass: ranging over it again lists the
// directory again. If listing fails, the error is yielded with a zero Path
// and iteration stops.
//
//	for child, err := range dir.Iterdir(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(child.Name())
//	}
func (p Path) Iterdir(ctx context.Context) iter.Seq2[Path, error] {
	return func(yield func(Path, error) bool) {
		for entry, err := range p.ReadDir(ctx) {
			if err != nil {
				yield(Path{}, err)
				return
			}
			if !yield(p.Join(entry.Name()), nil) {
				return
			}
		}
	}
}
