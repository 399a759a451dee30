package fstest

import (
	"context"
	"slices"
	"testing"

	"lesiw.io/hostfs"
)

func testMkdir(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "mkdir")
	p := dir.Join("sub")

	mkdir(ctx, t, p)
	isDir, err := p.IsDir(ctx)
	if err != nil {
		t.Fatalf("IsDir(%q): %v", p, err)
	}
	if !isDir {
		t.Errorf("IsDir(%q) after Mkdir = false, want true", p)
	}

	if err := p.Mkdir(ctx); !isErr(err, hostfs.ErrExist) {
		t.Errorf("Mkdir(%q) existing err = %v, want ErrExist", p, err)
	}

	deep := dir.Join("a", "b")
	if err := deep.Mkdir(ctx); !isErr(err, hostfs.ErrNotExist) {
		t.Errorf("Mkdir(%q) without parent err = %v, want ErrNotExist",
			deep, err)
	}
}

func testMkdirParents(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "mkdir_parents")
	p := dir.Join("a", "b", "c")

	if err := p.Mkdir(ctx, hostfs.Parents); err != nil {
		t.Fatalf("Mkdir(%q, Parents): %v", p, err)
	}
	for _, q := range []hostfs.Path{dir.Join("a"), dir.Join("a", "b"), p} {
		isDir, err := q.IsDir(ctx)
		if err != nil {
			t.Fatalf("IsDir(%q): %v", q, err)
		}
		if !isDir {
			t.Errorf("IsDir(%q) = false, want true", q)
		}
	}
}

func testMkdirExistOK(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "mkdir_exist_ok")

	if err := dir.Mkdir(ctx, hostfs.ExistOK); err != nil {
		t.Errorf("Mkdir(%q, ExistOK) existing: %v", dir, err)
	}
	if err := dir.MkdirAll(ctx); err != nil {
		t.Errorf("MkdirAll(%q) existing: %v", dir, err)
	}

	file := dir.Join("file")
	writeText(ctx, t, file, "x")
	if err := file.Mkdir(ctx, hostfs.ExistOK); !isErr(err, hostfs.ErrExist) {
		t.Errorf("Mkdir(%q, ExistOK) on file err = %v, want ErrExist",
			file, err)
	}
}

func testReadDir(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "readdir")
	writeText(ctx, t, dir.Join("b.txt"), "b")
	writeText(ctx, t, dir.Join("a.txt"), "a")
	mkdir(ctx, t, dir.Join("c"))

	var names []string
	for child, err := range dir.Iterdir(ctx) {
		if err != nil {
			t.Fatalf("Iterdir(%q): %v", dir, err)
		}
		if got := child.Parent(); !got.Equal(dir) {
			t.Errorf("Iterdir(%q) child parent = %q", dir, got)
		}
		names = append(names, child.Name())
	}
	slices.Sort(names)
	want := []string{"a.txt", "b.txt", "c"}
	if !slices.Equal(names, want) {
		t.Errorf("Iterdir(%q) names = %v, want %v", dir, names, want)
	}

	empty := dir.Join("c")
	for _, err := range empty.Iterdir(ctx) {
		if err != nil {
			t.Fatalf("Iterdir(%q): %v", empty, err)
		}
		t.Errorf("Iterdir(%q) yielded an entry, want none", empty)
	}

	missing := dir.Join("missing")
	for _, err := range missing.Iterdir(ctx) {
		if !isErr(err, hostfs.ErrNotExist) {
			t.Errorf("Iterdir(%q) err = %v, want ErrNotExist", missing, err)
		}
	}
}
