package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testCopyTree(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "copy_tree")
	src := dir.Join("src")
	if err := src.Join("sub", "deeper").MkdirAll(ctx); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	files := map[string]string{
		"top.txt":               "top",
		"sub/mid.txt":           "mid",
		"sub/deeper/bottom.txt": "bottom",
	}
	for name, content := range files {
		writeText(ctx, t, src.Join(name), content)
	}

	dst := dir.Join("dst")
	mkdir(ctx, t, dst)
	var calls [][2]int64
	err := hostfs.Copy(ctx, src, dst,
		hostfs.WithProgress(func(done, total int64) error {
			calls = append(calls, [2]int64{done, total})
			return nil
		}))
	if err != nil {
		t.Fatalf("Copy(%q, %q): %v", src, dst, err)
	}

	// dst exists, so the tree lands in dst/src.
	for name, want := range files {
		p := dst.Join("src", name)
		if got := readText(ctx, t, p); got != want {
			t.Errorf("ReadText(%q) = %q, want %q", p, got, want)
		}
	}

	if len(calls) < 2 {
		t.Fatalf("progress called %d times, want at least 2", len(calls))
	}
	if first := calls[0]; first != [2]int64{0, 12} {
		t.Errorf("first progress = %v, want [0 12]", first)
	}
	if last := calls[len(calls)-1]; last != [2]int64{12, 12} {
		t.Errorf("last progress = %v, want [12 12]", last)
	}
}

func testCopyOverwrite(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "copy_overwrite")
	src, dst := dir.Join("src.txt"), dir.Join("dst.txt")
	writeText(ctx, t, src, "new")
	writeText(ctx, t, dst, "old")

	if err := hostfs.Copy(ctx, src, dst); err != nil {
		t.Fatalf("Copy(%q, %q) never: %v", src, dst, err)
	}
	if got := readText(ctx, t, dst); got != "old" {
		t.Errorf("after Copy never, ReadText(%q) = %q, want %q",
			dst, got, "old")
	}

	err := hostfs.Copy(ctx, src, dst,
		hostfs.WithOverwrite(hostfs.OverwriteRaise))
	if !isErr(err, hostfs.ErrExist) {
		t.Errorf("Copy(%q, %q) raise err = %v, want ErrExist", src, dst, err)
	}

	err = hostfs.Copy(ctx, src, dst,
		hostfs.WithOverwrite(hostfs.OverwriteAlways))
	if err != nil {
		t.Fatalf("Copy(%q, %q) always: %v", src, dst, err)
	}
	if got := readText(ctx, t, dst); got != "new" {
		t.Errorf("after Copy always, ReadText(%q) = %q, want %q",
			dst, got, "new")
	}
}
