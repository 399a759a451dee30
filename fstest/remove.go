package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testUnlink(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "unlink")
	file := dir.Join("file.txt")
	writeText(ctx, t, file, "x")

	if err := file.Unlink(ctx); err != nil {
		t.Fatalf("Unlink(%q): %v", file, err)
	}
	if exists(ctx, t, file) {
		t.Errorf("Exists(%q) after Unlink = true, want false", file)
	}
	if err := file.Unlink(ctx); !isErr(err, hostfs.ErrNotExist) {
		t.Errorf("Unlink(%q) missing err = %v, want ErrNotExist", file, err)
	}
	if err := dir.Unlink(ctx); !isErr(err, hostfs.ErrIsDir) {
		t.Errorf("Unlink(%q) on directory err = %v, want ErrIsDir",
			dir, err)
	}
}

func testRmdir(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "rmdir")
	empty := dir.Join("empty")
	full := dir.Join("full")
	file := dir.Join("file.txt")
	mkdir(ctx, t, empty)
	mkdir(ctx, t, full)
	writeText(ctx, t, full.Join("f"), "x")
	writeText(ctx, t, file, "x")

	if err := empty.Rmdir(ctx, false); err != nil {
		t.Fatalf("Rmdir(%q, false): %v", empty, err)
	}
	if exists(ctx, t, empty) {
		t.Errorf("Exists(%q) after Rmdir = true, want false", empty)
	}
	if err := empty.Rmdir(ctx, false); err != nil {
		t.Errorf("Rmdir(%q) missing = %v, want nil", empty, err)
	}
	if err := full.Rmdir(ctx, false); !isErr(err, hostfs.ErrNotEmpty) {
		t.Errorf("Rmdir(%q, false) err = %v, want ErrNotEmpty", full, err)
	}
	if err := file.Rmdir(ctx, false); !isErr(err, hostfs.ErrNotDir) {
		t.Errorf("Rmdir(%q) on file err = %v, want ErrNotDir", file, err)
	}
}

func testRmdirRecursive(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "rmdir_recursive")
	tree := dir.Join("tree")
	if err := tree.Join("a", "b").MkdirAll(ctx); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeText(ctx, t, tree.Join("top.txt"), "top")
	writeText(ctx, t, tree.Join("a", "mid.txt"), "mid")
	writeText(ctx, t, tree.Join("a", "b", "low.txt"), "low")

	if err := tree.Rmdir(ctx, true); err != nil {
		t.Fatalf("Rmdir(%q, true): %v", tree, err)
	}
	if exists(ctx, t, tree) {
		t.Errorf("Exists(%q) after recursive Rmdir = true, want false", tree)
	}
}

func testRemoveIdempotent(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "remove")
	file := dir.Join("file.txt")
	sub := dir.Join("sub")
	writeText(ctx, t, file, "x")
	mkdir(ctx, t, sub)
	writeText(ctx, t, sub.Join("f"), "x")

	for _, p := range []hostfs.Path{file, sub} {
		for i := range 2 {
			if err := p.Remove(ctx); err != nil {
				t.Errorf("Remove(%q) #%d: %v", p, i+1, err)
			}
		}
		if exists(ctx, t, p) {
			t.Errorf("Exists(%q) after Remove = true, want false", p)
		}
	}
}
