package sftpfs_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/sync/errgroup"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/fstest"
	"lesiw.io/hostfs/osfs"
	"lesiw.io/hostfs/sftpfs"
)

// server runs SFTP sessions in process over net.Pipe.
type server struct {
	dials atomic.Int32
	fail  atomic.Bool

	mu   sync.Mutex
	conn net.Conn
}

func (s *server) dial(ctx context.Context) (*sftpfs.Conn, error) {
	s.dials.Add(1)
	if s.fail.Load() {
		return nil, errors.New("connection refused")
	}
	cc, sc := net.Pipe()
	srv, err := sftp.NewServer(sc)
	if err != nil {
		return nil, err
	}
	go func() { _ = srv.Serve() }()

	s.mu.Lock()
	s.conn = sc
	s.mu.Unlock()

	client, err := sftp.NewClientPipe(cc, cc)
	if err != nil {
		_ = sc.Close()
		return nil, err
	}
	return &sftpfs.Conn{Client: client}, nil
}

// kill severs the current session from the server side.
func (s *server) kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func newFS(
	t *testing.T, opts ...sftpfs.Option,
) (*sftpfs.FS, *server) {
	t.Helper()
	srv := new(server)
	opts = append([]sftpfs.Option{
		sftpfs.WithRetry(3, time.Millisecond),
	}, opts...)
	fsys, err := sftpfs.New(t.Context(), srv.dial, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = fsys.Close() })
	return fsys, srv
}

func TestFS(t *testing.T) {
	fsys, _ := newFS(t)
	root := hostfs.New(fsys, t.TempDir())
	fstest.TestFileSystem(t.Context(), t, root, fstest.Features(
		hostfs.FeatureSymlinks,
		hostfs.FeaturePermissions,
	))
}

func TestReconnect(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	p := hostfs.New(fsys, t.TempDir(), "file.txt")
	if err := p.WriteText(ctx, "before"); err != nil {
		t.Fatal(err)
	}

	srv.kill()

	got, err := p.ReadText(ctx)
	if err != nil {
		t.Fatalf("ReadText(%q) after disconnect: %v", p, err)
	}
	if got != "before" {
		t.Errorf("ReadText(%q) = %q, want %q", p, got, "before")
	}
	if got, want := srv.dials.Load(), int32(2); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}
}

func TestReconnectWrite(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	dir := hostfs.New(fsys, t.TempDir())

	srv.kill()

	p := dir.Join("file.txt")
	if err := p.WriteText(ctx, "after"); err != nil {
		t.Fatalf("WriteText(%q) after disconnect: %v", p, err)
	}
	got, err := p.ReadText(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "after" {
		t.Errorf("ReadText(%q) = %q, want %q", p, got, "after")
	}
}

func TestRetryExhausted(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	p := hostfs.New(fsys, t.TempDir())

	srv.fail.Store(true)
	srv.kill()

	_, err := p.Stat(ctx)
	if !errors.Is(err, hostfs.ErrConnection) {
		t.Fatalf("Stat(%q) err = %v, want ErrConnection", p, err)
	}
	var pathErr *hostfs.PathError
	if !errors.As(err, &pathErr) || pathErr.Op != "stat" {
		t.Errorf("Stat(%q) err = %#v, want *PathError for stat", p, err)
	}
	// One initial dial and one per attempt.
	if got, want := srv.dials.Load(), int32(4); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}

	// The server comes back.
	srv.fail.Store(false)
	if _, err := p.Stat(ctx); err != nil {
		t.Errorf("Stat(%q) after recovery: %v", p, err)
	}
}

func TestRetryAtLeastOnce(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t, sftpfs.WithRetry(0, time.Millisecond))
	p := hostfs.New(fsys, t.TempDir())

	srv.fail.Store(true)
	srv.kill()

	_, err := p.Stat(ctx)
	if !errors.Is(err, hostfs.ErrConnection) {
		t.Fatalf("Stat(%q) err = %v, want ErrConnection", p, err)
	}
	if got, want := srv.dials.Load(), int32(2); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}
}

// pattern returns n bytes that do not repeat on chunk boundaries.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestReadReconnect(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	p := hostfs.New(fsys, t.TempDir(), "file.bin")
	want := pattern(1 << 20)
	if err := p.WriteBytes(ctx, want); err != nil {
		t.Fatal(err)
	}

	r, err := p.Open(ctx)
	if err != nil {
		t.Fatalf("Open(%q): %v", p, err)
	}
	defer r.Close()
	got := make([]byte, hostfs.ChunkSize)
	if _, err = io.ReadFull(r, got); err != nil {
		t.Fatalf("ReadFull(%q): %v", p, err)
	}

	srv.kill()

	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(%q) after disconnect: %v", p, err)
	}
	got = append(got, rest...)
	if !bytes.Equal(got, want) {
		t.Errorf("read %d bytes of %q, want the %d bytes written",
			len(got), p, len(want))
	}
	if got, want := srv.dials.Load(), int32(2); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}
}

func TestReadExhausted(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	p := hostfs.New(fsys, t.TempDir(), "file.bin")
	if err := p.WriteBytes(ctx, pattern(1<<20)); err != nil {
		t.Fatal(err)
	}

	var n int
	var err error
	for chunk, chunkErr := range p.StreamingRead(ctx) {
		if chunkErr != nil {
			err = chunkErr
			break
		}
		if n == 0 {
			srv.fail.Store(true)
			srv.kill()
		}
		n += len(chunk)
	}
	if !errors.Is(err, hostfs.ErrConnection) {
		t.Fatalf("StreamingRead(%q) err = %v, want ErrConnection", p, err)
	}
	if n != hostfs.ChunkSize {
		t.Errorf("StreamingRead(%q) read %d bytes, want %d",
			p, n, hostfs.ChunkSize)
	}
}

// severingFS is a local file system that kills an SFTP session once a
// write into it has consumed its first chunk.
type severingFS struct {
	*osfs.FS
	srv *server
}

func (s severingFS) WriteFrom(
	ctx context.Context, name string, r io.Reader,
) (int64, error) {
	return s.FS.WriteFrom(ctx, name, &severingReader{r: r, srv: s.srv})
}

type severingReader struct {
	r    io.Reader
	srv  *server
	done bool
}

func (sr *severingReader) Read(p []byte) (int, error) {
	n, err := sr.r.Read(p)
	if n > 0 && !sr.done {
		sr.done = true
		sr.srv.kill()
	}
	return n, err
}

func TestCopyReconnect(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	src := hostfs.New(fsys, t.TempDir(), "file.bin")
	want := pattern(4 << 20)
	if err := src.WriteBytes(ctx, want); err != nil {
		t.Fatal(err)
	}
	dst := hostfs.New(severingFS{osfs.New(), srv}, t.TempDir(), "copy.bin")

	if err := hostfs.Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}
	got, err := dst.ReadBytes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("copied %d bytes, want the %d bytes written",
			len(got), len(want))
	}
	if got, want := srv.dials.Load(), int32(2); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}
}

func TestStreamingWriteDisconnect(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	p := hostfs.New(fsys, t.TempDir(), "file.bin")
	chunk := pattern(hostfs.ChunkSize)

	var chunks iter.Seq[[]byte] = func(yield func([]byte) bool) {
		if !yield(chunk) {
			return
		}
		srv.kill()
		for range 8 {
			if !yield(chunk) {
				return
			}
		}
	}
	err := p.StreamingWrite(ctx, chunks)
	if !errors.Is(err, hostfs.ErrConnection) {
		t.Errorf("StreamingWrite(%q) err = %v, want ErrConnection", p, err)
	}
}

func TestConcurrentReconnect(t *testing.T) {
	ctx := t.Context()
	fsys, srv := newFS(t)
	dir := hostfs.New(fsys, t.TempDir())

	srv.kill()

	g, ctx := errgroup.WithContext(ctx)
	for range 8 {
		g.Go(func() error {
			_, err := dir.Stat(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Stat: %v", err)
	}
	if got, want := srv.dials.Load(), int32(2); got != want {
		t.Errorf("dials = %d, want %d", got, want)
	}
}

func TestEqual(t *testing.T) {
	a, _ := newFS(t, sftpfs.WithAddr("example.com:22"))
	b, _ := newFS(t, sftpfs.WithAddr("example.com:22"))
	c, _ := newFS(t, sftpfs.WithAddr("example.com:2222"))
	d, _ := newFS(t)
	e, _ := newFS(t)

	tests := []struct {
		name string
		x, y hostfs.FileSystem
		want bool
	}{
		{"same address", a, b, true},
		{"other port", a, c, false},
		{"self", d, d, true},
		{"no address", d, e, false},
	}
	for _, tt := range tests {
		if got := tt.x.Equal(tt.y); got != tt.want {
			t.Errorf("%s: Equal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClosed(t *testing.T) {
	ctx := t.Context()
	fsys, _ := newFS(t)
	if err := fsys.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := fsys.Close(); !errors.Is(err, hostfs.ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
	if _, err := fsys.Stat(ctx, "/"); !errors.Is(err, hostfs.ErrClosed) {
		t.Errorf("Stat after Close err = %v, want ErrClosed", err)
	}
}

func TestOwnerInfo(t *testing.T) {
	ctx := t.Context()
	fsys, _ := newFS(t)
	info, err := fsys.Stat(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := info.(hostfs.OwnerInfo); !ok {
		t.Errorf("Stat() = %T, want hostfs.OwnerInfo", info)
	}
}
