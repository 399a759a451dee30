package hostfs

import (
	"bytes"
	"context"
	"io"
	"iter"
	"strings"
)

// WriteFrom creates or truncates the file p and copies r into it,
// returning the number of bytes written.
//
// New files are created with [FileMode](ctx). If r also implements
// io.Seeker, a network backend may rewind it and restart the write from
// the beginning after a dropped connection.
func (p Path) WriteFrom(ctx context.Context, r io.Reader) (int64, error) {
	fsys, err := p.checked("write")
	if err != nil {
		return 0, err
	}
	return fsys.WriteFrom(ctx, p.String(), r)
}

// StreamingWrite creates or truncates the file p and writes each chunk
// produced by chunks to it, in order.
//
// A chunk iterator cannot be restarted, so a network backend that loses
// its connection partway through fails the write with [ErrConnection]
// instead of retrying it. Use [Path.WriteFrom] with an io.Seeker to allow
// a retry.
func (p Path) StreamingWrite(
	ctx context.Context, chunks iter.Seq[[]byte],
) error {
	next, stop := iter.Pull(chunks)
	defer stop()
	_, err := p.WriteFrom(ctx, &chunkReader{next: next})
	return err
}

// chunkReader adapts a pulled chunk iterator to io.Reader.
type chunkReader struct {
	next func() ([]byte, bool)
	buf  []byte
}

func (r *chunkReader) Read(b []byte) (int, error) {
	for len(r.buf) == 0 {
		chunk, ok := r.next()
		if !ok {
			return 0, io.EOF
		}
		r.buf = chunk
	}
	n := copy(b, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// WriteBytes writes data to the file p, creating or truncating it.
// Analogous to: [os.WriteFile].
func (p Path) WriteBytes(ctx context.Context, data []byte) error {
	_, err := p.WriteFrom(ctx, bytes.NewReader(data))
	return err
}

// WriteText writes text to the file p, creating or truncating it.
func (p Path) WriteText(ctx context.Context, text string) error {
	_, err := p.WriteFrom(ctx, strings.NewReader(text))
	return err
}
