package fstest

import (
	"context"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"lesiw.io/hostfs"
)

func testStress(ctx context.Context, t *testing.T, root hostfs.Path) {
	t.Run("ConcurrentWrites", func(t *testing.T) {
		testConcurrentWrites(ctx, t, root)
	})

	t.Run("ModifyAndRead", func(t *testing.T) {
		testModifyAndRead(ctx, t, root)
	})
}

// testConcurrentWrites writes and reads back many files at once. Backends
// that serialize or multiplex requests must keep the streams apart.
func testConcurrentWrites(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	const numFiles = 8
	dir := scratch(ctx, t, root, "concurrent_writes")

	g, gctx := errgroup.WithContext(ctx)
	for i := range numFiles {
		g.Go(func() error {
			p := dir.Join(fmt.Sprintf("file%d.txt", i))
			want := fmt.Sprintf("content %d", i)
			if err := p.WriteText(gctx, want); err != nil {
				return err
			}
			got, err := p.ReadText(gctx)
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("ReadText(%q) = %q, want %q", p, got, want)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	n := 0
	for _, err := range dir.Iterdir(ctx) {
		if err != nil {
			t.Fatalf("Iterdir(%q): %v", dir, err)
		}
		n++
	}
	if n != numFiles {
		t.Errorf("Iterdir(%q) found %d files, want %d", dir, n, numFiles)
	}
}

// testModifyAndRead tests a realistic workflow of creating, modifying, and
// reading files in various ways.
func testModifyAndRead(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "modify")
	p := dir.Join("data.txt")

	writeText(ctx, t, p, "initial content")
	if got := readText(ctx, t, p); got != "initial content" {
		t.Errorf("initial ReadText(%q) = %q", p, got)
	}

	renamed, err := p.Rename(ctx, dir.Join("renamed.txt"))
	if err != nil {
		t.Fatalf("Rename(%q): %v", p, err)
	}
	writeText(ctx, t, p, "second")

	copied := dir.Join("copied.txt")
	if err := hostfs.Copy(ctx, renamed, copied); err != nil {
		t.Fatalf("Copy(%q, %q): %v", renamed, copied, err)
	}
	if got := readText(ctx, t, copied); got != "initial content" {
		t.Errorf("ReadText(%q) = %q, want %q", copied, got, "initial content")
	}
	if got := readText(ctx, t, p); got != "second" {
		t.Errorf("ReadText(%q) = %q, want %q", p, got, "second")
	}

	if err := renamed.Remove(ctx); err != nil {
		t.Fatalf("Remove(%q): %v", renamed, err)
	}
	if exists(ctx, t, renamed) {
		t.Errorf("Exists(%q) after Remove = true, want false", renamed)
	}
}
