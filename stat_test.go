package hostfs_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"testing"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/memfs"
	"lesiw.io/hostfs/osfs"
)

func ExamplePath_Stat() {
	ctx := context.Background()
	p := hostfs.New(memfs.New(), "example.txt")

	if err := p.WriteText(ctx, "hello world"); err != nil {
		log.Fatal(err)
	}
	info, err := p.Stat(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Name: %s, Size: %d\n", info.Name(), info.Size())
	// Output:
	// Name: example.txt, Size: 11
}

func TestStatPredicates(t *testing.T) {
	ctx := t.Context()
	dir := linkTree(ctx, t, hostfs.Root(memfs.New()))

	tests := []struct {
		name                  string
		exists, isFile, isDir bool
		isLink                bool
	}{
		{"file0", true, true, false, false},
		{"link0", true, true, false, true},
		{"link1", true, true, false, true},
		{"link2", false, false, false, true},
		{"link3", false, false, false, true},
		{"missing", false, false, false, false},
		{"file0/below", false, false, false, false},
	}
	for _, tt := range tests {
		p := dir.Join(tt.name)
		check := func(
			f string, fn func(context.Context) (bool, error), want bool,
		) {
			t.Helper()
			got, err := fn(ctx)
			if err != nil {
				t.Errorf("%s(%q) err = %v", f, p, err)
				return
			}
			if got != want {
				t.Errorf("%s(%q) = %v, want %v", f, p, got, want)
			}
		}
		check("Exists", p.Exists, tt.exists)
		check("IsFile", p.IsFile, tt.isFile)
		check("IsDir", p.IsDir, tt.isDir)
		check("IsSymlink", p.IsSymlink, tt.isLink)
	}
	if ok, err := dir.IsDir(ctx); err != nil || !ok {
		t.Errorf("IsDir(%q) = %v, %v, want true", dir, ok, err)
	}
}

func TestEntryType(t *testing.T) {
	ctx := t.Context()
	dir := linkTree(ctx, t, hostfs.Root(memfs.New()))

	tests := []struct {
		p    hostfs.Path
		want hostfs.EntryType
	}{
		{dir, hostfs.Directory},
		{dir.Join("file0"), hostfs.File},
		{dir.Join("link0"), hostfs.SymbolicLink},
		{dir.Join("link2"), hostfs.SymbolicLink},
	}
	for _, tt := range tests {
		got, err := tt.p.EntryType(ctx)
		if err != nil || got != tt.want {
			t.Errorf("EntryType(%q) = %v, %v, want %v",
				tt.p, got, err, tt.want)
		}
	}
	if _, err := dir.Join("missing").EntryType(ctx); !errors.Is(
		err, hostfs.ErrNotExist) {
		t.Errorf("EntryType(missing) err = %v, want ErrNotExist", err)
	}
}

func TestSize(t *testing.T) {
	ctx := t.Context()
	dir := linkTree(ctx, t, hostfs.Root(memfs.New()))

	if got, err := dir.Join("link1").Size(ctx); err != nil || got != 12 {
		t.Errorf("Size(link1) = %d, %v, want 12", got, err)
	}
	if _, err := dir.Join("link2").Size(ctx); !errors.Is(
		err, hostfs.ErrNotExist) {
		t.Errorf("Size(link2) err = %v, want ErrNotExist", err)
	}
}

func TestOwnerUnsupported(t *testing.T) {
	ctx := t.Context()
	p := hostfs.New(memfs.New(), "f")
	mustWrite(ctx, t, p, "")

	if _, err := p.UID(ctx); !errors.Is(err, hostfs.ErrUnsupported) {
		t.Errorf("UID(%q) err = %v, want ErrUnsupported", p, err)
	}
	if _, err := p.GID(ctx); !errors.Is(err, hostfs.ErrUnsupported) {
		t.Errorf("GID(%q) err = %v, want ErrUnsupported", p, err)
	}
}

func TestOwnerLocal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no numeric owners on windows")
	}
	ctx := t.Context()
	p := hostfs.New(osfs.New(), t.TempDir(), "f")
	mustWrite(ctx, t, p, "")

	if _, err := p.UID(ctx); err != nil {
		t.Errorf("UID(%q) err = %v", p, err)
	}
	if _, err := p.GID(ctx); err != nil {
		t.Errorf("GID(%q) err = %v", p, err)
	}
}
