package fstest

import (
	"context"
	"errors"
	"testing"

	"lesiw.io/hostfs"
)

// scratch creates a fresh directory below root for one test and registers
// its removal using t.Cleanup.
func scratch(
	ctx context.Context, t *testing.T, root hostfs.Path, name string,
) hostfs.Path {
	t.Helper()
	dir, err := root.MkdirTemp(ctx, name)
	if err != nil {
		t.Fatalf("MkdirTemp(%q, %q): %v", root, name, err)
	}
	t.Cleanup(func() {
		if err := dir.Remove(ctx); err != nil {
			t.Errorf("cleanup: Remove(%q): %v", dir, err)
		}
	})
	return dir
}

// writeText writes content to p or fails the test.
func writeText(
	ctx context.Context, t *testing.T, p hostfs.Path, content string,
) {
	t.Helper()
	if err := p.WriteText(ctx, content); err != nil {
		t.Fatalf("WriteText(%q): %v", p, err)
	}
}

// readText reads p or fails the test.
func readText(ctx context.Context, t *testing.T, p hostfs.Path) string {
	t.Helper()
	s, err := p.ReadText(ctx)
	if err != nil {
		t.Fatalf("ReadText(%q): %v", p, err)
	}
	return s
}

// mkdir creates p or fails the test.
func mkdir(ctx context.Context, t *testing.T, p hostfs.Path) {
	t.Helper()
	if err := p.Mkdir(ctx); err != nil {
		t.Fatalf("Mkdir(%q): %v", p, err)
	}
}

func exists(ctx context.Context, t *testing.T, p hostfs.Path) bool {
	t.Helper()
	ok, err := p.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists(%q): %v", p, err)
	}
	return ok
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
