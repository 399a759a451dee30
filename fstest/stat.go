package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testStat(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "stat")
	file := dir.Join("file.txt")
	writeText(ctx, t, file, "12345")

	tests := []struct {
		path hostfs.Path
		want hostfs.EntryType
	}{
		{dir, hostfs.Directory},
		{file, hostfs.File},
	}
	for _, tt := range tests {
		got, err := tt.path.EntryType(ctx)
		if err != nil {
			t.Errorf("EntryType(%q): %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("EntryType(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	info, err := file.Stat(ctx)
	if err != nil {
		t.Fatalf("Stat(%q): %v", file, err)
	}
	if info.Name() != "file.txt" {
		t.Errorf("Stat(%q).Name() = %q, want %q",
			file, info.Name(), "file.txt")
	}
	if info.Size() != 5 {
		t.Errorf("Stat(%q).Size() = %d, want 5", file, info.Size())
	}
	if info.IsDir() {
		t.Errorf("Stat(%q).IsDir() = true, want false", file)
	}

	missing := dir.Join("missing")
	if exists(ctx, t, missing) {
		t.Errorf("Exists(%q) = true, want false", missing)
	}
	if _, err = missing.Stat(ctx); !isErr(err, hostfs.ErrNotExist) {
		t.Errorf("Stat(%q) err = %v, want ErrNotExist", missing, err)
	}
	isDir, err := missing.IsDir(ctx)
	if err != nil || isDir {
		t.Errorf("IsDir(%q) = %v, %v, want false, nil", missing, isDir, err)
	}
	under := file.Join("child")
	if exists(ctx, t, under) {
		t.Errorf("Exists(%q) = true, want false", under)
	}
}
