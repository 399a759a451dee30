package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testSymlink(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "symlink")
	target := dir.Join("target.txt")
	writeText(ctx, t, target, "symlink target content")

	link := dir.Join("link.txt")
	if err := link.SymlinkTo(ctx, target); err != nil {
		t.Fatalf("SymlinkTo(%q, %q): %v", link, target, err)
	}
	if got := readText(ctx, t, link); got != "symlink target content" {
		t.Errorf("ReadText(%q) through symlink = %q", link, got)
	}

	isLink, err := link.IsSymlink(ctx)
	if err != nil {
		t.Fatalf("IsSymlink(%q): %v", link, err)
	}
	if !isLink {
		t.Errorf("IsSymlink(%q) = false, want true", link)
	}
	isFile, err := link.IsFile(ctx)
	if err != nil {
		t.Fatalf("IsFile(%q): %v", link, err)
	}
	if !isFile {
		t.Errorf("IsFile(%q) through symlink = false, want true", link)
	}
	typ, err := link.EntryType(ctx)
	if err != nil {
		t.Fatalf("EntryType(%q): %v", link, err)
	}
	if typ != hostfs.SymbolicLink {
		t.Errorf("EntryType(%q) = %v, want %v", link, typ, hostfs.SymbolicLink)
	}

	// Test symlink to directory
	sub := dir.Join("sub")
	mkdir(ctx, t, sub)
	writeText(ctx, t, sub.Join("inner.txt"), "inner")
	dirLink := dir.Join("dirlink")
	if err := dirLink.SymlinkText(ctx, "sub"); err != nil {
		t.Fatalf("SymlinkText(%q): %v", dirLink, err)
	}
	if got := readText(ctx, t, dirLink.Join("inner.txt")); got != "inner" {
		t.Errorf("ReadText through directory link = %q, want %q",
			got, "inner")
	}

	// Removing a link leaves its target alone.
	if err := dirLink.Remove(ctx); err != nil {
		t.Fatalf("Remove(%q): %v", dirLink, err)
	}
	if !exists(ctx, t, sub.Join("inner.txt")) {
		t.Errorf("Remove(%q) removed the link target", dirLink)
	}

	broken := dir.Join("broken")
	if err := broken.SymlinkText(ctx, "nowhere"); err != nil {
		t.Fatalf("SymlinkText(%q): %v", broken, err)
	}
	if exists(ctx, t, broken) {
		t.Errorf("Exists(%q) for broken link = true, want false", broken)
	}
}

func testReadlink(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "readlink")
	target := dir.Join("target.txt")
	writeText(ctx, t, target, "x")

	// link2 -> link1 -> target.txt
	link1, link2 := dir.Join("link1"), dir.Join("link2")
	if err := link1.SymlinkText(ctx, "target.txt"); err != nil {
		t.Fatalf("SymlinkText(%q): %v", link1, err)
	}
	if err := link2.SymlinkTo(ctx, link1); err != nil {
		t.Fatalf("SymlinkTo(%q): %v", link2, err)
	}

	text, err := link1.ReadLink(ctx)
	if err != nil {
		t.Fatalf("ReadLink(%q): %v", link1, err)
	}
	if text != "target.txt" {
		t.Errorf("ReadLink(%q) = %q, want %q", link1, text, "target.txt")
	}

	one, err := link2.Readlink(ctx, false)
	if err != nil {
		t.Fatalf("Readlink(%q, false): %v", link2, err)
	}
	if !one.Equal(link1) {
		t.Errorf("Readlink(%q, false) = %q, want %q", link2, one, link1)
	}
	all, err := link2.Readlink(ctx, true)
	if err != nil {
		t.Fatalf("Readlink(%q, true): %v", link2, err)
	}
	if !all.Equal(target) {
		t.Errorf("Readlink(%q, true) = %q, want %q", link2, all, target)
	}
}

func testSymlinkLoop(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "symlink_loop")
	a, b := dir.Join("a"), dir.Join("b")
	if err := a.SymlinkText(ctx, "b"); err != nil {
		t.Fatalf("SymlinkText(%q): %v", a, err)
	}
	if err := b.SymlinkText(ctx, "a"); err != nil {
		t.Fatalf("SymlinkText(%q): %v", b, err)
	}

	if _, err := a.Readlink(ctx, true); !isErr(err, hostfs.ErrLinkLoop) {
		t.Errorf("Readlink(%q, true) err = %v, want ErrLinkLoop", a, err)
	}
	if exists(ctx, t, a) {
		t.Errorf("Exists(%q) for link loop = true, want false", a)
	}
}

func testSymlinkUnsupported(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "symlink_unsupported")
	link := dir.Join("link")

	err := link.SymlinkText(ctx, "target")
	if err != nil && !isErr(err, hostfs.ErrUnsupported) {
		t.Errorf("SymlinkText(%q) err = %v, want nil or ErrUnsupported",
			link, err)
	}
	isLink, err := link.IsSymlink(ctx)
	if err != nil {
		t.Fatalf("IsSymlink(%q): %v", link, err)
	}
	if isLink {
		t.Errorf("IsSymlink(%q) = true without symlink support", link)
	}
}
