//go:build !unix

package osfs

import (
	"context"
	"os"

	"lesiw.io/hostfs"
)

// Chmod implements hostfs.FileSystem. Only the owner write bit has an
// effect outside Unix.
func (f *FS) Chmod(ctx context.Context, name string, mode hostfs.Mode) error {
	path, err := f.resolvePath("chmod", name)
	if err != nil {
		return err
	}
	return convertError(os.Chmod(path, mode))
}

func ownerInfo(info os.FileInfo) hostfs.FileInfo { return info }
