package hostfs

import (
	"context"
	"errors"
	"io"
	"iter"
)

// ChunkSize is the size of the chunks yielded by [Path.StreamingRead].
const ChunkSize = 24 * 1024

// Open opens the file p for reading.
// Analogous to: [os.Open].
//
// The returned reader must be closed when done.
func (p Path) Open(ctx context.Context) (io.ReadCloser, error) {
	fsys, err := p.checked("open")
	if err != nil {
		return nil, err
	}
	return fsys.Open(ctx, p.String())
}

// StreamingRead returns an iterator over the contents of the file p in
// chunks of at most [ChunkSize] bytes.
//
// The iterator is single pass and opens the file when iteration starts. A
// yielded chunk is only valid until the next iteration. On failure the
// error is yielded with a nil chunk and iteration stops.
func (p Path) StreamingRead(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		r, err := p.Open(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer r.Close()

		buf := make([]byte, ChunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 && !yield(buf[:n], nil) {
				return
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, readError(p, err))
				return
			}
		}
	}
}

// ReadBytes reads the whole file p.
// Analogous to: [os.ReadFile], cat.
func (p Path) ReadBytes(ctx context.Context) ([]byte, error) {
	r, err := p.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, readError(p, err)
	}
	return data, nil
}

// readError attaches p to a read error unless the backend already did.
func readError(p Path, err error) error {
	var pathErr *PathError
	if errors.As(err, &pathErr) {
		return err
	}
	return newPathError("read", p.String(), err)
}

// ReadText reads the whole file p as a string.
func (p Path) ReadText(ctx context.Context) (string, error) {
	data, err := p.ReadBytes(ctx)
	return string(data), err
}
