package webdavfs

import (
	"os"
	"path"
	"time"

	"lesiw.io/hostfs"
)

// fileInfo reports the permissions WebDAV emulates.
type fileInfo struct {
	name    string
	size    int64
	mode    hostfs.Mode
	modTime time.Time
}

func newFileInfo(name string, info os.FileInfo) *fileInfo {
	fi := &fileInfo{
		name:    path.Base(name),
		size:    info.Size(),
		mode:    0600,
		modTime: info.ModTime(),
	}
	if info.IsDir() {
		fi.mode = hostfs.ModeDir | 0700
		fi.size = 0
	}
	return fi
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() hostfs.Mode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() any           { return nil }
func (fi *fileInfo) UID() int           { return 0 }
func (fi *fileInfo) GID() int           { return 0 }

var _ hostfs.OwnerInfo = (*fileInfo)(nil)

// dirEntry wraps a fileInfo to implement hostfs.DirEntry.
type dirEntry struct {
	info *fileInfo
}

func (de *dirEntry) Name() string      { return de.info.Name() }
func (de *dirEntry) IsDir() bool       { return de.info.IsDir() }
func (de *dirEntry) Type() hostfs.Mode { return de.info.Mode().Type() }

func (de *dirEntry) Info() (hostfs.FileInfo, error) {
	return de.info, nil
}
