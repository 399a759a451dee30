package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testRename(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "rename")
	src := dir.Join("old.txt")
	writeText(ctx, t, src, "content")

	dst, err := src.Rename(ctx, dir.Join("new.txt"))
	if err != nil {
		t.Fatalf("Rename(%q): %v", src, err)
	}
	if exists(ctx, t, src) {
		t.Errorf("Exists(%q) after Rename = true, want false", src)
	}
	if got := readText(ctx, t, dst); got != "content" {
		t.Errorf("ReadText(%q) = %q, want %q", dst, got, "content")
	}

	// Renaming onto an existing file replaces it.
	other := dir.Join("other.txt")
	writeText(ctx, t, other, "other")
	if _, err = other.Rename(ctx, dst); err != nil {
		t.Fatalf("Rename(%q, %q): %v", other, dst, err)
	}
	if got := readText(ctx, t, dst); got != "other" {
		t.Errorf("ReadText(%q) after replace = %q, want %q",
			dst, got, "other")
	}

	sub := dir.Join("sub")
	mkdir(ctx, t, sub)
	writeText(ctx, t, sub.Join("f"), "f")
	moved, err := sub.Rename(ctx, dir.Join("moved"))
	if err != nil {
		t.Fatalf("Rename(%q): %v", sub, err)
	}
	if got := readText(ctx, t, moved.Join("f")); got != "f" {
		t.Errorf("ReadText(%q) = %q, want %q", moved.Join("f"), got, "f")
	}
}
