package sftpfs

import (
	"os"

	"github.com/pkg/sftp"

	"lesiw.io/hostfs"
)

// fileInfo adds the numeric owner reported by the server.
type fileInfo struct {
	os.FileInfo
	uid, gid int
}

func (fi *fileInfo) UID() int { return fi.uid }
func (fi *fileInfo) GID() int { return fi.gid }

func newFileInfo(info os.FileInfo) hostfs.FileInfo {
	st, ok := info.Sys().(*sftp.FileStat)
	if !ok {
		return info
	}
	return &fileInfo{FileInfo: info, uid: int(st.UID), gid: int(st.GID)}
}

var _ hostfs.OwnerInfo = (*fileInfo)(nil)

// dirEntry wraps a FileInfo to implement hostfs.DirEntry.
type dirEntry struct {
	info hostfs.FileInfo
}

func (de *dirEntry) Name() string      { return de.info.Name() }
func (de *dirEntry) IsDir() bool       { return de.info.IsDir() }
func (de *dirEntry) Type() hostfs.Mode { return de.info.Mode().Type() }

func (de *dirEntry) Info() (hostfs.FileInfo, error) {
	return de.info, nil
}
