package hostfs_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"testing"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/memfs"
)

func ExamplePath_Unlink() {
	ctx := context.Background()
	p := hostfs.New(memfs.New(), "delete-me.txt")

	if err := p.WriteText(ctx, "temporary"); err != nil {
		log.Fatal(err)
	}
	if err := p.Unlink(ctx); err != nil {
		log.Fatal(err)
	}
	if _, err := p.Stat(ctx); errors.Is(err, hostfs.ErrNotExist) {
		fmt.Println("File successfully removed")
	}
	// Output:
	// File successfully removed
}

func ExamplePath_Rmdir() {
	ctx := context.Background()
	tree := hostfs.New(memfs.New(), "tree")

	if err := tree.Join("branch", "leaf").MkdirAll(ctx); err != nil {
		log.Fatal(err)
	}
	if err := tree.Join("file.txt").WriteText(ctx, "data"); err != nil {
		log.Fatal(err)
	}
	if err := tree.Rmdir(ctx, true); err != nil {
		log.Fatal(err)
	}
	if ok, _ := tree.Exists(ctx); !ok {
		fmt.Println("Directory tree successfully removed")
	}
	// Output:
	// Directory tree successfully removed
}

func TestRmdir(t *testing.T) {
	ctx := t.Context()
	fsys := memfs.New()
	full := hostfs.New(fsys, "full")
	mustWrite(ctx, t, full.Join("f"), "x")
	empty := hostfs.New(fsys, "empty")
	if err := empty.Mkdir(ctx); err != nil {
		t.Fatal(err)
	}
	file := hostfs.New(fsys, "file")
	mustWrite(ctx, t, file, "x")

	tests := []struct {
		p         hostfs.Path
		recursive bool
		want      error
	}{
		{full, false, hostfs.ErrNotEmpty},
		{file, false, hostfs.ErrNotDir},
		{file, true, hostfs.ErrNotDir},
		{hostfs.New(fsys, "missing"), false, nil},
		{empty, false, nil},
		{full, true, nil},
	}
	for _, tt := range tests {
		err := tt.p.Rmdir(ctx, tt.recursive)
		if !errors.Is(err, tt.want) {
			t.Errorf("Rmdir(%q, %v) = %v, want %v",
				tt.p, tt.recursive, err, tt.want)
		}
	}
	for _, p := range []hostfs.Path{full, empty} {
		if ok, _ := p.Exists(ctx); ok {
			t.Errorf("Exists(%q) = true after Rmdir, want false", p)
		}
	}
}

func TestRmdirKeepsLinkTargets(t *testing.T) {
	ctx := t.Context()
	root := hostfs.Root(memfs.New())
	keep := root.Join("keep")
	mustWrite(ctx, t, keep.Join("precious"), "x")
	tree := root.Join("tree")
	if err := tree.Mkdir(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tree.Join("link").SymlinkTo(ctx, keep); err != nil {
		t.Fatal(err)
	}

	if err := tree.Rmdir(ctx, true); err != nil {
		t.Fatalf("Rmdir(%q, true): %v", tree, err)
	}
	if ok, _ := keep.Join("precious").IsFile(ctx); !ok {
		t.Errorf("IsFile(%q) = false, want link target kept", keep)
	}
}

func TestUnlink(t *testing.T) {
	ctx := t.Context()
	dir := linkTree(ctx, t, hostfs.Root(memfs.New()))

	if err := dir.Unlink(ctx); !errors.Is(err, hostfs.ErrIsDir) {
		t.Errorf("Unlink(%q) = %v, want ErrIsDir", dir, err)
	}
	if err := dir.Join("missing").Unlink(ctx); !errors.Is(
		err, hostfs.ErrNotExist) {
		t.Errorf("Unlink(missing) = %v, want ErrNotExist", err)
	}
	for _, name := range []string{"link0", "link2", "link3"} {
		p := dir.Join(name)
		if err := p.Unlink(ctx); err != nil {
			t.Errorf("Unlink(%q) = %v", p, err)
		}
		if ok, _ := p.IsSymlink(ctx); ok {
			t.Errorf("IsSymlink(%q) = true after Unlink", p)
		}
	}
	if ok, _ := dir.Join("file0").IsFile(ctx); !ok {
		t.Errorf("IsFile(file0) = false, want link target kept")
	}
}

func TestRemove(t *testing.T) {
	ctx := t.Context()
	dir := linkTree(ctx, t, hostfs.Root(memfs.New()))

	for _, p := range []hostfs.Path{
		dir.Join("link0"), dir.Join("file1"), dir.Join("missing"), dir,
	} {
		if err := p.Remove(ctx); err != nil {
			t.Errorf("Remove(%q) = %v", p, err)
		}
		if ok, _ := p.IsSymlink(ctx); ok {
			t.Errorf("IsSymlink(%q) = true after Remove", p)
		}
		if ok, _ := p.Exists(ctx); ok {
			t.Errorf("Exists(%q) = true after Remove", p)
		}
	}
}
