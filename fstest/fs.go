// Package fstest implements a conformance suite for hostfs.FileSystem
// implementations.
package fstest

import (
	"context"
	"testing"

	"lesiw.io/hostfs"
)

// An Option configures TestFileSystem.
type Option func(*testOpts)

type testOpts struct {
	features []hostfs.Feature
}

// Features declares the features the file system under test supports.
// Tests for features not declared check that the backend refuses them
// cleanly instead.
func Features(features ...hostfs.Feature) Option {
	return func(opts *testOpts) {
		opts.features = features
	}
}

func (o *testOpts) has(feature hostfs.Feature) bool {
	for _, f := range o.features {
		if f == feature {
			return true
		}
	}
	return false
}

// TestFileSystem runs a compliance test suite on a file system
// implementation.
//
// The tests work in fresh subdirectories of root, which must exist and be
// writable, and remove them when they finish.
//
// Typical usage:
//
//	func TestMyFS(t *testing.T) {
//	    fsys := newMyFS(t)
//	    root := hostfs.New(fsys, t.TempDir())
//	    fstest.TestFileSystem(t.Context(), t, root,
//	        fstest.Features(hostfs.FeatureSymlinks))
//	}
func TestFileSystem(
	ctx context.Context, t *testing.T, root hostfs.Path, opts ...Option,
) {
	t.Helper()

	var o testOpts
	for _, opt := range opts {
		opt(&o)
	}

	t.Run("Supports", func(t *testing.T) {
		testSupports(ctx, t, root, &o)
	})

	t.Run("File", func(t *testing.T) {
		t.Run("WriteAndRead", func(t *testing.T) {
			testWriteAndRead(ctx, t, root)
		})
		t.Run("Truncates", func(t *testing.T) {
			testWriteTruncates(ctx, t, root)
		})
		t.Run("Streaming", func(t *testing.T) {
			testStreaming(ctx, t, root)
		})
		t.Run("Touch", func(t *testing.T) {
			testTouch(ctx, t, root)
		})
		t.Run("OpenDir", func(t *testing.T) {
			testOpenDir(ctx, t, root)
		})
	})

	t.Run("Mkdir", func(t *testing.T) {
		t.Run("Basic", func(t *testing.T) {
			testMkdir(ctx, t, root)
		})
		t.Run("Parents", func(t *testing.T) {
			testMkdirParents(ctx, t, root)
		})
		t.Run("ExistOK", func(t *testing.T) {
			testMkdirExistOK(ctx, t, root)
		})
	})

	t.Run("ReadDir", func(t *testing.T) {
		testReadDir(ctx, t, root)
	})

	t.Run("Stat", func(t *testing.T) {
		testStat(ctx, t, root)
	})

	t.Run("Remove", func(t *testing.T) {
		t.Run("Unlink", func(t *testing.T) {
			testUnlink(ctx, t, root)
		})
		t.Run("Rmdir", func(t *testing.T) {
			testRmdir(ctx, t, root)
		})
		t.Run("Recursive", func(t *testing.T) {
			testRmdirRecursive(ctx, t, root)
		})
		t.Run("Idempotent", func(t *testing.T) {
			testRemoveIdempotent(ctx, t, root)
		})
	})

	t.Run("Rename", func(t *testing.T) {
		testRename(ctx, t, root)
	})

	t.Run("Symlink", func(t *testing.T) {
		if !o.has(hostfs.FeatureSymlinks) {
			testSymlinkUnsupported(ctx, t, root)
			return
		}
		t.Run("Basic", func(t *testing.T) {
			testSymlink(ctx, t, root)
		})
		t.Run("Readlink", func(t *testing.T) {
			testReadlink(ctx, t, root)
		})
		t.Run("Loop", func(t *testing.T) {
			testSymlinkLoop(ctx, t, root)
		})
	})

	t.Run("Chmod", func(t *testing.T) {
		if !o.has(hostfs.FeaturePermissions) {
			testChmodUnsupported(ctx, t, root)
			return
		}
		testChmod(ctx, t, root)
	})

	t.Run("Walk", func(t *testing.T) {
		testWalk(ctx, t, root)
	})

	t.Run("Copy", func(t *testing.T) {
		t.Run("Tree", func(t *testing.T) {
			testCopyTree(ctx, t, root)
		})
		t.Run("Overwrite", func(t *testing.T) {
			testCopyOverwrite(ctx, t, root)
		})
	})

	t.Run("Stress", func(t *testing.T) {
		testStress(ctx, t, root)
	})
}

func testSupports(
	ctx context.Context, t *testing.T, root hostfs.Path, o *testOpts,
) {
	fsys := root.FileSystem()
	for _, f := range []hostfs.Feature{
		hostfs.FeatureSymlinks,
		hostfs.FeaturePermissions,
		hostfs.FeatureDevices,
	} {
		got, err := fsys.Supports(f)
		if err != nil {
			t.Errorf("Supports(%q): %v", f, err)
			continue
		}
		if want := o.has(f); got != want {
			t.Errorf("Supports(%q) = %v, want %v", f, got, want)
		}
	}
	if _, err := fsys.Supports("teleport"); !isErr(err, hostfs.ErrInvalid) {
		t.Errorf("Supports(%q) err = %v, want ErrInvalid", "teleport", err)
	}
}
