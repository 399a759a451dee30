//go:build unix

package osfs

import (
	"context"
	"os"
	"syscall"

	"lesiw.io/hostfs"
)

// Chmod implements hostfs.FileSystem on Unix systems.
func (f *FS) Chmod(ctx context.Context, name string, mode hostfs.Mode) error {
	path, err := f.resolvePath("chmod", name)
	if err != nil {
		return err
	}
	return convertError(os.Chmod(path, mode))
}

// fileInfo adds the numeric owner from the underlying stat structure.
type fileInfo struct {
	os.FileInfo
	uid, gid int
}

func (fi *fileInfo) UID() int { return fi.uid }
func (fi *fileInfo) GID() int { return fi.gid }

func ownerInfo(info os.FileInfo) hostfs.FileInfo {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info
	}
	return &fileInfo{FileInfo: info, uid: int(st.Uid), gid: int(st.Gid)}
}

var _ hostfs.OwnerInfo = (*fileInfo)(nil)
