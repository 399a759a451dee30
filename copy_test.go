package hostfs_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/memfs"
	"lesiw.io/hostfs/osfs"
)

func mustWrite(ctx context.Context, t *testing.T, p hostfs.Path, s string) {
	t.Helper()
	if err := p.Parent().MkdirAll(ctx); err != nil {
		t.Fatalf("MkdirAll(%q): %v", p.Parent(), err)
	}
	if err := p.WriteText(ctx, s); err != nil {
		t.Fatalf("WriteText(%q): %v", p, err)
	}
}

func mustRead(ctx context.Context, t *testing.T, p hostfs.Path) string {
	t.Helper()
	s, err := p.ReadText(ctx)
	if err != nil {
		t.Fatalf("ReadText(%q): %v", p, err)
	}
	return s
}

func TestCopyOverwrite(t *testing.T) {
	tests := []struct {
		mode    hostfs.Overwrite
		want    string
		wantErr error
	}{
		{hostfs.OverwriteNever, "", nil},
		{hostfs.OverwriteAlways, "Hello World\n", nil},
		{hostfs.OverwriteRaise, "", hostfs.ErrExist},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			ctx := t.Context()
			fsys := memfs.New()
			src, dst := hostfs.New(fsys, "file0"), hostfs.New(fsys, "other")
			mustWrite(ctx, t, src, "Hello World\n")
			if err := dst.Touch(ctx); err != nil {
				t.Fatal(err)
			}

			err := hostfs.Copy(ctx, src, dst, hostfs.WithOverwrite(tt.mode))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Copy(%q, %q, %v) = %v, want %v",
					src, dst, tt.mode, err, tt.wantErr)
			}
			if got := mustRead(ctx, t, dst); got != tt.want {
				t.Errorf("ReadText(%q) = %q, want %q", dst, got, tt.want)
			}
		})
	}
}

func TestCopyNewFile(t *testing.T) {
	for _, mode := range []hostfs.Overwrite{
		hostfs.OverwriteNever, hostfs.OverwriteAlways, hostfs.OverwriteRaise,
	} {
		ctx := t.Context()
		fsys := memfs.New()
		src, dst := hostfs.New(fsys, "file0"), hostfs.New(fsys, "new")
		mustWrite(ctx, t, src, "data")

		if err := hostfs.Copy(ctx, src, dst,
			hostfs.WithOverwrite(mode)); err != nil {
			t.Fatalf("Copy(%q, %q, %v): %v", src, dst, mode, err)
		}
		if got := mustRead(ctx, t, dst); got != "data" {
			t.Errorf("%v: ReadText(%q) = %q, want %q", mode, dst, got, "data")
		}
	}
}

func TestCopyMissing(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src := hostfs.New(fsys, "doesnotexist")
	err := hostfs.Copy(ctx, src, hostfs.New(fsys, "new"))
	if !errors.Is(err, hostfs.ErrNotExist) {
		t.Errorf("Copy(%q) err = %v, want ErrNotExist", src, err)
	}
}

func TestCopyInvalidOverwrite(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	p := hostfs.New(fsys, "file0")
	mustWrite(ctx, t, p, "x")

	err := hostfs.Copy(ctx, p, p, hostfs.WithOverwrite(hostfs.Overwrite(9)))
	if !errors.Is(err, hostfs.ErrInvalid) {
		t.Errorf("Copy with Overwrite(9) err = %v, want ErrInvalid", err)
	}
	if _, err := hostfs.ParseOverwrite("nonexistentoption"); !errors.Is(
		err, hostfs.ErrInvalid) {
		t.Errorf("ParseOverwrite err = %v, want ErrInvalid", err)
	}
	for _, s := range []string{"never", "always", "raise"} {
		o, err := hostfs.ParseOverwrite(s)
		if err != nil || o.String() != s {
			t.Errorf("ParseOverwrite(%q) = %v, %v", s, o, err)
		}
	}
}

func TestCopyInto(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src, dir := hostfs.New(fsys, "file0"), hostfs.New(fsys, "newdir")
	mustWrite(ctx, t, src, "x")
	if err := dir.Mkdir(ctx); err != nil {
		t.Fatal(err)
	}

	if err := hostfs.Copy(ctx, src, dir); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dir, err)
	}
	if ok, _ := dir.Join("file0").IsFile(ctx); !ok {
		t.Errorf("IsFile(%q) = false, want true", dir.Join("file0"))
	}
}

func TestCopyFileOntoDir(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src, dir := hostfs.New(fsys, "file0"), hostfs.New(fsys, "newdir")
	mustWrite(ctx, t, src, "x")
	mustWrite(ctx, t, dir.Join("old"), "y")

	err := hostfs.Copy(ctx, src, dir,
		hostfs.WithOverwrite(hostfs.OverwriteAlways),
		hostfs.WithCopyInto(false),
	)
	if err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dir, err)
	}
	if ok, _ := dir.IsFile(ctx); !ok {
		t.Errorf("IsFile(%q) = false, want true", dir)
	}
}

func TestCopyDirOntoMissing(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src, dst := hostfs.New(fsys, "dir"), hostfs.New(fsys, "newdir")
	mustWrite(ctx, t, src.Join("sub", "f"), "x")

	err := hostfs.Copy(ctx, src, dst,
		hostfs.WithOverwrite(hostfs.OverwriteAlways),
		hostfs.WithCopyInto(false),
	)
	if err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}
	if got := mustRead(ctx, t, dst.Join("sub", "f")); got != "x" {
		t.Errorf("ReadText = %q, want %q", got, "x")
	}
}

func TestCopyIntoItself(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src := hostfs.New(fsys, "dir")
	mustWrite(ctx, t, src.Join("f"), "x")

	tests := []struct {
		dst  hostfs.Path
		opts []hostfs.CopyOption
	}{
		{src, nil},
		{src.Join("sub"), nil},
		{src, []hostfs.CopyOption{
			hostfs.WithCopyInto(false),
			hostfs.WithOverwrite(hostfs.OverwriteAlways),
		}},
	}
	for _, tt := range tests {
		err := hostfs.Copy(ctx, src, tt.dst, tt.opts...)
		if !errors.Is(err, hostfs.ErrInvalid) {
			t.Errorf("Copy(%q, %q) err = %v, want ErrInvalid",
				src, tt.dst, err)
		}
	}
}

func TestCopyPermissions(t *testing.T) {
	tests := []struct {
		name      string
		src       hostfs.Mode
		copyPerms bool
		want      hostfs.Mode
	}{
		{"executable copied", 0754, true, 0754},
		{"private copied", 0600, true, 0600},
		{"setuid copied", hostfs.ModeSetuid | 0755, true,
			hostfs.ModeSetuid | 0755},
		{"executable merged", 0754, false, 0644},
		{"private merged", 0600, false, 0600},
		{"setuid merged", hostfs.ModeSetuid | 0755, false, 0644},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			fsys := memfs.New()
			src, dst := hostfs.New(fsys, "src"), hostfs.New(fsys, "dst")
			mustWrite(ctx, t, src, "#!/bin/sh\n")
			if err := src.Chmod(ctx, tt.src); err != nil {
				t.Fatal(err)
			}

			err := hostfs.Copy(ctx, src, dst,
				hostfs.WithCopyPermissions(tt.copyPerms))
			if err != nil {
				t.Fatalf("Copy(%q, %q): %v", src, dst, err)
			}
			info, err := dst.Stat(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got := info.Mode() & hostfs.PermBits; got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopyPermissionsOverwrite(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src, dst := hostfs.New(fsys, "src"), hostfs.New(fsys, "dst")
	mustWrite(ctx, t, src, "x")
	if err := src.Chmod(ctx, 0754); err != nil {
		t.Fatal(err)
	}
	mustWrite(ctx, t, dst, "old")
	if err := dst.Chmod(ctx, 0660); err != nil {
		t.Fatal(err)
	}

	err := hostfs.Copy(ctx, src, dst,
		hostfs.WithOverwrite(hostfs.OverwriteAlways))
	if err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}
	tests := []struct {
		perm hostfs.Permission
		want bool
	}{
		{hostfs.OwnerRead, true},
		{hostfs.OwnerWrite, true},
		{hostfs.OwnerExecute, false},
		{hostfs.GroupWrite, false},
		{hostfs.OthersRead, true},
	}
	for _, tt := range tests {
		got, err := dst.HasPermission(ctx, tt.perm)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("HasPermission(%q, %v) = %v, want %v",
				dst, tt.perm, got, tt.want)
		}
	}
}

// linkTree builds the tree used by the link tests:
//
//	dir/file0, dir/file1
//	dir/link0 -> file0
//	dir/link1 -> link0
//	dir/link2 -> doesnotexist
//	dir/link3 -> link4, dir/link4 -> link3
//	dir/outside -> /elsewhere/file
func linkTree(
	ctx context.Context, t *testing.T, root hostfs.Path,
) hostfs.Path {
	t.Helper()
	dir := root.Join("dir")
	mustWrite(ctx, t, dir.Join("file0"), "Hello World\n")
	mustWrite(ctx, t, dir.Join("file1"), "")
	mustWrite(ctx, t, root.Join("elsewhere", "file"), "outside")
	links := []struct{ name, target string }{
		{"link0", "file0"},
		{"link1", "link0"},
		{"link2", "doesnotexist"},
		{"link3", "link4"},
		{"link4", "link3"},
		{"outside", root.Join("elsewhere", "file").String()},
	}
	for _, l := range links {
		if err := dir.Join(l.name).SymlinkText(ctx, l.target); err != nil {
			t.Fatalf("SymlinkText(%q): %v", dir.Join(l.name), err)
		}
	}
	return dir
}

func TestCopyLinks(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src := linkTree(ctx, t, hostfs.Root(fsys))
	dst := hostfs.New(fsys, "copy")

	if err := hostfs.Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}

	for _, tt := range []struct{ link, target string }{
		{"link0", "file0"},
		{"link1", "link0"},
		{"link3", "link4"},
		{"link4", "link3"},
	} {
		p := dst.Join(tt.link)
		if ok, _ := p.IsSymlink(ctx); !ok {
			t.Errorf("IsSymlink(%q) = false, want true", p)
			continue
		}
		got, err := p.Readlink(ctx, false)
		if err != nil {
			t.Fatalf("Readlink(%q): %v", p, err)
		}
		if got.Name() != tt.target {
			t.Errorf("Readlink(%q).Name() = %q, want %q",
				p, got.Name(), tt.target)
		}
		if !got.Parent().Equal(dst) {
			t.Errorf("Readlink(%q) = %q, want inside %q", p, got, dst)
		}
	}
	if ok, _ := dst.Join("link2").Exists(ctx); ok {
		t.Errorf("Exists(%q) = true, want false", dst.Join("link2"))
	}
	outside := dst.Join("outside")
	if ok, _ := outside.IsSymlink(ctx); ok {
		t.Errorf("IsSymlink(%q) = true, want copied file", outside)
	}
	if got := mustRead(ctx, t, outside); got != "outside" {
		t.Errorf("ReadText(%q) = %q, want %q", outside, got, "outside")
	}
}

func TestCopyLinksUnsupported(t *testing.T) {
	ctx := t.Context()
	src := linkTree(ctx, t, hostfs.Root(memfs.New()))
	dst := hostfs.Root(memfs.New(
		memfs.WithFeatures(hostfs.FeaturePermissions),
	)).Join("copy")

	if err := hostfs.Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}
	for _, name := range []string{"link0", "link1", "outside"} {
		if ok, _ := dst.Join(name).IsFile(ctx); !ok {
			t.Errorf("IsFile(%q) = false, want true", dst.Join(name))
		}
	}
	if got := mustRead(ctx, t, dst.Join("link1")); got != "Hello World\n" {
		t.Errorf("ReadText(link1) = %q, want %q", got, "Hello World\n")
	}
	for _, name := range []string{"link2", "link3", "link4"} {
		if ok, _ := dst.Join(name).Exists(ctx); ok {
			t.Errorf("Exists(%q) = true, want false", dst.Join(name))
		}
	}
}

func TestCopyAcrossFileSystems(t *testing.T) {
	ctx := t.Context()
	mem := hostfs.Root(memfs.New())
	local := hostfs.New(osfs.New(), t.TempDir())
	mustWrite(ctx, t, mem.Join("results", "a.txt"), "alpha")
	mustWrite(ctx, t, mem.Join("results", "sub", "b.txt"), "beta")

	if err := hostfs.Copy(ctx, mem.Join("results"), local); err != nil {
		t.Fatalf("Copy to local: %v", err)
	}
	b := mustRead(ctx, t, local.Join("results", "sub", "b.txt"))
	if b != "beta" {
		t.Errorf("ReadText = %q, want %q", b, "beta")
	}

	back := hostfs.Root(memfs.New()).Join("back")
	if err := hostfs.Copy(ctx, local.Join("results"), back); err != nil {
		t.Fatalf("Copy from local: %v", err)
	}
	if got := mustRead(ctx, t, back.Join("a.txt")); got != "alpha" {
		t.Errorf("ReadText = %q, want %q", got, "alpha")
	}
}

func TestCopyProgress(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src := hostfs.New(fsys, "big")
	data := strings.Repeat("x", 3*hostfs.ChunkSize+17)
	mustWrite(ctx, t, src, data)

	var calls [][2]int64
	progress := func(done, total int64) error {
		calls = append(calls, [2]int64{done, total})
		return nil
	}
	dst := hostfs.New(fsys, "copy")
	if err := hostfs.Copy(ctx, src, dst,
		hostfs.WithProgress(progress)); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}

	total := int64(len(data))
	if len(calls) < 2 {
		t.Fatalf("progress called %d times, want at least 2", len(calls))
	}
	if got, want := calls[0], [2]int64{0, total}; got != want {
		t.Errorf("first progress = %v, want %v", got, want)
	}
	if got, want := calls[len(calls)-1], [2]int64{total, total}; got != want {
		t.Errorf("last progress = %v, want %v", got, want)
	}
}

func TestCopyProgressAbort(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	src, dst := hostfs.New(fsys, "file0"), hostfs.New(fsys, "new")
	mustWrite(ctx, t, src, "Hello World\n")

	errAbort := errors.New("abort")
	err := hostfs.Copy(ctx, src, dst,
		hostfs.WithProgress(func(done, total int64) error {
			return errAbort
		}))
	if !errors.Is(err, errAbort) {
		t.Fatalf("Copy err = %v, want %v", err, errAbort)
	}
	if ok, _ := dst.Exists(ctx); ok {
		t.Errorf("Exists(%q) = true after abort, want false", dst)
	}
}

func TestCopyCanceled(t *testing.T) {
	fsys := memfs.New()
	src := hostfs.New(fsys, "dir")
	mustWrite(t.Context(), t, src.Join("f"), "x")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := hostfs.Copy(ctx, src, hostfs.New(fsys, "copy"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Copy with canceled context err = %v, want Canceled", err)
	}
}

func TestCopyLinkCycles(t *testing.T) {
	ctx := t.Context()
	root := hostfs.Root(memfs.New())
	src := root.Join("dir")
	mustWrite(ctx, t, src.Join("sub", "f"), "x")
	if err := src.Join("sub", "self").SymlinkText(ctx, ".."); err != nil {
		t.Fatal(err)
	}
	if err := src.Join("sub", "up").SymlinkTo(ctx, root); err != nil {
		t.Fatal(err)
	}

	linked := root.Join("linked")
	if err := hostfs.Copy(ctx, src, linked); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, linked, err)
	}
	got, err := linked.Join("sub", "self").Readlink(ctx, true)
	if err != nil || !got.Equal(linked) {
		t.Errorf("Readlink(sub/self) = %q, %v, want %q", got, err, linked)
	}
	if ok, _ := linked.Join("sub", "up").Exists(ctx); ok {
		t.Errorf("Exists(sub/up) = true, want link to ancestor skipped")
	}

	flat := hostfs.Root(memfs.New(
		memfs.WithFeatures(hostfs.FeaturePermissions))).Join("flat")
	if err := hostfs.Copy(ctx, src, flat); err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, flat, err)
	}
	for _, name := range []string{"self", "up"} {
		if ok, _ := flat.Join("sub", name).Exists(ctx); ok {
			t.Errorf("Exists(sub/%s) = true, want skipped", name)
		}
	}
	if got := mustRead(ctx, t, flat.Join("sub", "f")); got != "x" {
		t.Errorf("ReadText(sub/f) = %q, want %q", got, "x")
	}
}
