package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

func testChmod(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "chmod")
	p := dir.Join("file.txt")
	writeText(ctx, t, p, "x")

	if err := p.Chmod(ctx, 0640); err != nil {
		t.Fatalf("Chmod(%q, 0640): %v", p, err)
	}
	info, err := p.Stat(ctx)
	if err != nil {
		t.Fatalf("Stat(%q): %v", p, err)
	}
	if got := info.Mode() & hostfs.ModePerm; got != 0640 {
		t.Errorf("Stat(%q).Mode().Perm() = %#o, want %#o", p, got, 0640)
	}

	tests := []struct {
		perm hostfs.Permission
		want bool
	}{
		{hostfs.OwnerRead, true},
		{hostfs.OwnerWrite, true},
		{hostfs.OwnerExecute, false},
		{hostfs.GroupRead, true},
		{hostfs.OthersRead, false},
	}
	for _, tt := range tests {
		got, permErr := p.HasPermission(ctx, tt.perm)
		if permErr != nil {
			t.Fatalf("HasPermission(%q, %v): %v", p, tt.perm, permErr)
		}
		if got != tt.want {
			t.Errorf("HasPermission(%q, %v) = %v, want %v",
				p, tt.perm, got, tt.want)
		}
	}

	if err = p.SetPermission(ctx, hostfs.OwnerExecute, true); err != nil {
		t.Fatalf("SetPermission(%q, OwnerExecute): %v", p, err)
	}
	if err = p.SetPermission(ctx, hostfs.GroupRead, false); err != nil {
		t.Fatalf("SetPermission(%q, GroupRead): %v", p, err)
	}
	info, err = p.Stat(ctx)
	if err != nil {
		t.Fatalf("Stat(%q): %v", p, err)
	}
	if got := info.Mode() & hostfs.ModePerm; got != 0700 {
		t.Errorf("Stat(%q).Mode().Perm() = %#o, want %#o", p, got, 0700)
	}
}

func testChmodUnsupported(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "chmod_unsupported")
	p := dir.Join("file.txt")
	writeText(ctx, t, p, "x")

	err := p.Chmod(ctx, 0640)
	if err != nil && !isErr(err, hostfs.ErrUnsupported) {
		t.Errorf("Chmod(%q) err = %v, want nil or ErrUnsupported", p, err)
	}
	ok, err := p.HasPermission(ctx, hostfs.OwnerRead)
	if err != nil {
		t.Fatalf("HasPermission(%q, OwnerRead): %v", p, err)
	}
	if !ok {
		t.Errorf("HasPermission(%q, OwnerRead) = false, want true", p)
	}
}
