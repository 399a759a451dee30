package webdavfs_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"golang.org/x/net/webdav"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/fstest"
	"lesiw.io/hostfs/webdavfs"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&webdav.Handler{
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	})
	t.Cleanup(srv.Close)
	return srv
}

func newFS(t *testing.T, opts ...webdavfs.Option) *webdavfs.FS {
	t.Helper()
	srv := newServer(t)
	fsys, err := webdavfs.New(t.Context(), srv.URL, opts...)
	if err != nil {
		t.Fatalf("New(%q): %v", srv.URL, err)
	}
	t.Cleanup(func() { _ = fsys.Close() })
	return fsys
}

func TestFS(t *testing.T) {
	fsys := newFS(t)
	fstest.TestFileSystem(t.Context(), t, hostfs.Root(fsys))
}

func TestIgnoreUnsupportedFS(t *testing.T) {
	fsys := newFS(t, webdavfs.IgnoreUnsupported())
	fstest.TestFileSystem(t.Context(), t, hostfs.Root(fsys))
}

func TestNewUnreachable(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	if _, err := webdavfs.New(t.Context(), url); err == nil {
		t.Errorf("New(%q) for closed server = nil error, want error", url)
	}
}

func TestEmulatedPermissions(t *testing.T) {
	ctx := t.Context()
	fsys := newFS(t)
	dir := hostfs.Root(fsys).Join("dir")
	if err := dir.Mkdir(ctx); err != nil {
		t.Fatal(err)
	}
	file := dir.Join("file.txt")
	if err := file.WriteText(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		p    hostfs.Path
		want hostfs.Mode
	}{
		{dir, 0700},
		{file, 0600},
	}
	for _, tt := range tests {
		info, err := tt.p.Stat(ctx)
		if err != nil {
			t.Fatalf("Stat(%q): %v", tt.p, err)
		}
		if got := info.Mode().Perm(); got != tt.want {
			t.Errorf("Stat(%q).Mode().Perm() = %#o, want %#o",
				tt.p, got, tt.want)
		}
		uid, err := tt.p.UID(ctx)
		if err != nil || uid != 0 {
			t.Errorf("UID(%q) = %d, %v, want 0, nil", tt.p, uid, err)
		}
	}
}

func TestUnsupported(t *testing.T) {
	ctx := t.Context()
	fsys := newFS(t)
	p := hostfs.Root(fsys).Join("file.txt")
	if err := p.WriteText(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	if err := p.Chmod(ctx, 0755); !errors.Is(err, hostfs.ErrUnsupported) {
		t.Errorf("Chmod(%q) err = %v, want ErrUnsupported", p, err)
	}
	link := hostfs.Root(fsys).Join("link")
	if err := link.SymlinkTo(ctx, p); !errors.Is(err, hostfs.ErrUnsupported) {
		t.Errorf("SymlinkTo(%q) err = %v, want ErrUnsupported", link, err)
	}
	if _, err := p.ReadLink(ctx); !errors.Is(err, hostfs.ErrInvalid) {
		t.Errorf("ReadLink(%q) err = %v, want ErrInvalid", p, err)
	}
}

func TestCopyTree(t *testing.T) {
	ctx := t.Context()
	fsys := newFS(t)
	src := hostfs.New(fsys, "/src")
	if err := src.Join("sub").MkdirAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := src.Join("sub", "a.txt").WriteText(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}

	dst := hostfs.New(fsys, "/dst")
	err := hostfs.Copy(ctx, src, dst, hostfs.WithCopyPermissions(true))
	if err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}
	got, err := dst.Join("sub", "a.txt").ReadText(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "alpha" {
		t.Errorf("ReadText = %q, want %q", got, "alpha")
	}
}

func TestEqual(t *testing.T) {
	srv := newServer(t)
	ctx := t.Context()
	a, err := webdavfs.New(ctx, srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	b, err := webdavfs.New(ctx, srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	other := newFS(t)

	if !a.Equal(b) {
		t.Errorf("Equal(%q, %q+\"/\") = false, want true", srv.URL, srv.URL)
	}
	if a.Equal(other) {
		t.Errorf("Equal() across servers = true, want false")
	}
}

func TestClosed(t *testing.T) {
	ctx := t.Context()
	fsys := newFS(t)
	if err := fsys.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, err := fsys.Stat(ctx, "/"); !errors.Is(err, hostfs.ErrClosed) {
		t.Errorf("Stat after Close err = %v, want ErrClosed", err)
	}
	if err := fsys.Close(); !errors.Is(err, hostfs.ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
}

func TestStatUnderFile(t *testing.T) {
	ctx := t.Context()
	root := hostfs.Root(newFS(t))
	file := root.Join("file.txt")
	if err := file.WriteText(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	for _, p := range []hostfs.Path{
		file.Join("child"),
		file.Join("a", "b"),
	} {
		if _, err := p.Stat(ctx); !errors.Is(err, hostfs.ErrNotDir) {
			t.Errorf("Stat(%q) err = %v, want ErrNotDir", p, err)
		}
		if ok, err := p.Exists(ctx); err != nil || ok {
			t.Errorf("Exists(%q) = %v, %v, want false, nil", p, ok, err)
		}
		if ok, err := p.IsDir(ctx); err != nil || ok {
			t.Errorf("IsDir(%q) = %v, %v, want false, nil", p, ok, err)
		}
	}

	missing := root.Join("missing", "child")
	if _, err := missing.Stat(ctx); !errors.Is(err, hostfs.ErrNotExist) {
		t.Errorf("Stat(%q) err = %v, want ErrNotExist", missing, err)
	}
}
