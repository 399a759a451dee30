package fstest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"lesiw.io/hostfs"
)

// walkTree creates:
//
//	walk/
//	  a.txt
//	  x/
//	    b.txt
//	    y/
//	      c.txt
//	  z/
func walkTree(
	ctx context.Context, t *testing.T, root hostfs.Path,
) hostfs.Path {
	t.Helper()
	dir := scratch(ctx, t, root, "walk")
	if err := dir.Join("x", "y").MkdirAll(ctx); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	mkdir(ctx, t, dir.Join("z"))
	writeText(ctx, t, dir.Join("a.txt"), "a")
	writeText(ctx, t, dir.Join("x", "b.txt"), "b")
	writeText(ctx, t, dir.Join("x", "y", "c.txt"), "c")
	return dir
}

func testWalk(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := walkTree(ctx, t, root)

	t.Run("TopDown", func(t *testing.T) {
		var (
			dirs  []string
			files []string
		)
		for step, err := range dir.Walk(ctx) {
			if err != nil {
				t.Fatalf("Walk(%q): %v", dir, err)
			}
			rel, err := step.Dir.RelativeTo(dir)
			if err != nil {
				t.Fatalf("RelativeTo: %v", err)
			}
			dirs = append(dirs, rel)
			for _, name := range step.Files {
				files = append(files, step.Dir.Join(name).Name())
			}
		}
		if len(dirs) == 0 || dirs[0] != "." {
			t.Errorf("Walk(%q) first dir = %v, want %q first", dir, dirs, ".")
		}
		slices.Sort(dirs)
		slices.Sort(files)
		if want := []string{".", "x", "x/y", "z"}; !slices.Equal(dirs, want) {
			t.Errorf("Walk(%q) dirs = %v, want %v", dir, dirs, want)
		}
		want := []string{"a.txt", "b.txt", "c.txt"}
		if !slices.Equal(files, want) {
			t.Errorf("Walk(%q) files = %v, want %v", dir, files, want)
		}
	})

	t.Run("BottomUp", func(t *testing.T) {
		seen := make(map[string]int)
		i := 0
		for step, err := range dir.Walk(ctx, hostfs.TopDown(false)) {
			if err != nil {
				t.Fatalf("Walk(%q): %v", dir, err)
			}
			seen[step.Dir.String()] = i
			i++
		}
		if seen[dir.Join("x", "y").String()] > seen[dir.Join("x").String()] {
			t.Errorf("Walk(%q, TopDown(false)) yielded x before x/y", dir)
		}
		if last := seen[dir.String()]; last != i-1 {
			t.Errorf("Walk(%q, TopDown(false)) root at %d, want last (%d)",
				dir, last, i-1)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		for step, err := range dir.Walk(ctx) {
			if err != nil {
				t.Fatalf("Walk(%q): %v", dir, err)
			}
			if step.Dir.Name() == "y" {
				t.Errorf("Walk(%q) descended into pruned directory %q",
					dir, step.Dir)
			}
			step.Dirs = slices.DeleteFunc(step.Dirs, func(s string) bool {
				return s == "x"
			})
		}
	})

	t.Run("Break", func(t *testing.T) {
		n := 0
		for _, err := range dir.Walk(ctx) {
			if err != nil {
				t.Fatalf("Walk(%q): %v", dir, err)
			}
			n++
			break
		}
		if n != 1 {
			t.Errorf("Walk(%q) after break yielded %d steps, want 1", dir, n)
		}
	})

	t.Run("OnError", func(t *testing.T) {
		missing := dir.Join("missing")
		var got []error
		for _, err := range missing.Walk(ctx, hostfs.OnError(func(err error) {
			got = append(got, err)
		})) {
			t.Errorf("Walk(%q) yielded %v, want nothing", missing, err)
		}
		if len(got) != 1 || !errors.Is(got[0], hostfs.ErrNotExist) {
			t.Errorf("Walk(%q) OnError got %v, want one ErrNotExist",
				missing, got)
		}

		n := 0
		for _, err := range missing.Walk(ctx) {
			n++
			if !errors.Is(err, hostfs.ErrNotExist) {
				t.Errorf("Walk(%q) err = %v, want ErrNotExist", missing, err)
			}
		}
		if n != 1 {
			t.Errorf("Walk(%q) yielded %d results, want 1", missing, n)
		}
	})
}
