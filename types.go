// Package hostfs provides a uniform file system abstraction over local and
// remote hosts.
//
// A [FileSystem] is a long-lived handle to one backend: the local disk
// ([lesiw.io/hostfs/osfs]), an SFTP server ([lesiw.io/hostfs/sftpfs]), or a
// WebDAV share ([lesiw.io/hostfs/webdavfs]). Every backend exposes the same
// small set of primitives over a single rooted, slash-separated namespace.
// Code is written against a [Path], an immutable value pairing a FileSystem
// with a location in it:
//
//	fsys := osfs.New()
//	p := hostfs.New(fsys, "/tmp", "data.txt")
//	if err := p.WriteText(ctx, "hello\n"); err != nil {
//	    return err
//	}
//
// Paths carry POSIX path algebra ([Path.Join], [Path.Parent],
// [Path.RelativeTo], ...) and forward all I/O to their FileSystem. A Path
// denotes a location, not a file: every existence or type query is a fresh
// round trip to the backend.
//
// Every operation accepts a context.Context as the first parameter. Remote
// backends use it to bound reconnects and retries; the creation modes
// [WithDirMode] and [WithFileMode] travel in it as request-scoped values.
//
// # Capabilities
//
// Backends differ in what they can represent. WebDAV has no symbolic links,
// device files, or POSIX permissions. [FileSystem.Supports] reports whether
// a backend supports a [Feature], so generic code can adapt instead of
// failing unpredictably:
//
//	ok, err := fsys.Supports(hostfs.FeatureSymlinks)
//
// Mutating operations a backend cannot perform fail with [ErrUnsupported],
// or succeed without effect when the backend was constructed to ignore
// them.
//
// # Copying
//
// [Copy] copies files and directory trees between any two Paths, on the
// same or on different file systems, preserving internal symbolic links and
// merging permissions according to the target's defaults.
//
//	err := hostfs.Copy(ctx, local.Join("results"), remote.Join("archive"),
//	    hostfs.WithOverwrite(hostfs.OverwriteAlways))
//
// # Errors
//
// Errors are reported as [*PathError] values wrapping one of the sentinel
// errors of this package, and should be tested with [errors.Is].
package hostfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"slices"
)

// A FileSystem is a handle to one storage backend.
//
// Names passed to a FileSystem are absolute slash-separated paths rooted at
// "/". Implementations need not be safe for concurrent use unless they say
// so.
type FileSystem interface {
	// Close releases the backend session. Operations on a closed
	// FileSystem fail with ErrClosed.
	io.Closer

	// Equal reports whether other addresses the same storage through the
	// same protocol, for example the same host and port.
	Equal(other FileSystem) bool

	// Supports reports whether the backend supports feature.
	// An unknown feature is an error wrapping ErrInvalid.
	Supports(feature Feature) (bool, error)

	// Stat returns file metadata for the named file, following symbolic
	// links.
	Stat(ctx context.Context, name string) (FileInfo, error)

	// Lstat returns file metadata for the named file without following a
	// final symbolic link.
	Lstat(ctx context.Context, name string) (FileInfo, error)

	// ReadDir reads the named directory and returns an iterator over its
	// entries, in no particular order.
	ReadDir(ctx context.Context, name string) iter.Seq2[DirEntry, error]

	// Mkdir creates a single directory with permission bits perm.
	// It fails with ErrExist if name exists and with ErrNotExist if the
	// parent does not.
	Mkdir(ctx context.Context, name string, perm Mode) error

	// Rmdir removes an empty directory. It fails with ErrNotDir if name is
	// not a directory and with ErrNotEmpty if it has entries.
	Rmdir(ctx context.Context, name string) error

	// Unlink removes a file or symbolic link. It fails with ErrIsDir if
	// name is a directory.
	Unlink(ctx context.Context, name string) error

	// Rename moves oldname to newname, replacing newname if it is a file.
	Rename(ctx context.Context, oldname, newname string) error

	// Touch creates an empty file with permission bits perm if name does
	// not exist. An existing file is left unchanged.
	Touch(ctx context.Context, name string, perm Mode) error

	// Open opens the named file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// WriteFrom creates or truncates the named file and copies r into it,
	// returning the number of bytes written. New files are created with
	// FileMode(ctx). If r implements io.Seeker, an implementation may
	// rewind it and restart the write after a transient failure.
	WriteFrom(ctx context.Context, name string, r io.Reader) (int64, error)

	// Chmod changes the permission bits of the named file.
	Chmod(ctx context.Context, name string, mode Mode) error

	// Symlink creates newname as a symbolic link to oldname.
	Symlink(ctx context.Context, oldname, newname string) error

	// ReadLink returns the destination of the named symbolic link as
	// stored, without resolving it.
	ReadLink(ctx context.Context, name string) (string, error)
}

// A RemoveAllFS is a FileSystem that can delete a tree in one operation.
//
// If not implemented, recursive removal walks the tree using Unlink and
// Rmdir.
type RemoveAllFS interface {
	FileSystem

	// RemoveAll removes name and any children it contains.
	RemoveAll(ctx context.Context, name string) error
}

// A FileInfo describes a file and is returned by Stat and Lstat.
type FileInfo = fs.FileInfo

// A DirEntry is an entry read from a directory.
type DirEntry = fs.DirEntry

// A Mode represents a file's mode and permission bits.
type Mode = fs.FileMode

// Valid values for [Mode].
//
//ignore:linelen
const (
	// The single letters are the abbreviations
	// used by the String method's formatting.
	ModeDir        = fs.ModeDir        // d: is a directory
	ModeSymlink    = fs.ModeSymlink    // L: symbolic link
	ModeDevice     = fs.ModeDevice     // D: device file
	ModeNamedPipe  = fs.ModeNamedPipe  // p: named pipe (FIFO)
	ModeSocket     = fs.ModeSocket     // S: Unix domain socket
	ModeSetuid     = fs.ModeSetuid     // u: setuid
	ModeSetgid     = fs.ModeSetgid     // g: setgid
	ModeCharDevice = fs.ModeCharDevice // c: Unix character device, when ModeDevice is set
	ModeSticky     = fs.ModeSticky     // t: sticky
	ModeIrregular  = fs.ModeIrregular  // ?: non-regular file; nothing else is known about this file

	// Mask for the type bits. For regular files, none will be set.
	ModeType = fs.ModeType

	ModePerm = fs.ModePerm // Unix permission bits
)

// An OwnerInfo is a FileInfo that knows the numeric owner of the file.
type OwnerInfo interface {
	FileInfo
	UID() int
	GID() int
}

// A Feature names an optional backend capability.
type Feature string

// Features that can be queried with FileSystem.Supports.
const (
	FeatureSymlinks    Feature = "symlinks"
	FeaturePermissions Feature = "permissions"
	FeatureDevices     Feature = "devices"
)

// ParseFeature returns the Feature named s.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	switch f {
	case FeatureSymlinks, FeaturePermissions, FeatureDevices:
		return f, nil
	}
	return "", fmt.Errorf("unknown feature %q: %w", s, ErrInvalid)
}

// Supported implements FileSystem.Supports for a backend offering the
// features in have. It rejects unknown features with ErrInvalid.
func Supported(feature Feature, have ...Feature) (bool, error) {
	if _, err := ParseFeature(string(feature)); err != nil {
		return false, err
	}
	return slices.Contains(have, feature), nil
}

// A Permission is one of the twelve POSIX permission bits.
type Permission Mode

// The twelve permission bits.
const (
	OwnerRead     Permission = 0400
	OwnerWrite    Permission = 0200
	OwnerExecute  Permission = 0100
	GroupRead     Permission = 0040
	GroupWrite    Permission = 0020
	GroupExecute  Permission = 0010
	OthersRead    Permission = 0004
	OthersWrite   Permission = 0002
	OthersExecute Permission = 0001

	SetUID Permission = Permission(fs.ModeSetuid)
	SetGID Permission = Permission(fs.ModeSetgid)
	Sticky Permission = Permission(fs.ModeSticky)
)

var permissions = [...]Permission{
	OwnerRead, OwnerWrite, OwnerExecute,
	GroupRead, GroupWrite, GroupExecute,
	OthersRead, OthersWrite, OthersExecute,
	SetUID, SetGID, Sticky,
}

var permissionNames = map[Permission]string{
	OwnerRead:     "OWNER_READ",
	OwnerWrite:    "OWNER_WRITE",
	OwnerExecute:  "OWNER_EXECUTE",
	GroupRead:     "GROUP_READ",
	GroupWrite:    "GROUP_WRITE",
	GroupExecute:  "GROUP_EXECUTE",
	OthersRead:    "OTHERS_READ",
	OthersWrite:   "OTHERS_WRITE",
	OthersExecute: "OTHERS_EXECUTE",
	SetUID:        "SETUID",
	SetGID:        "SETGID",
	Sticky:        "STICKY",
}

// Permissions returns all twelve permission bits, owner bits first.
func Permissions() []Permission {
	return slices.Clone(permissions[:])
}

func (p Permission) String() string {
	if s, ok := permissionNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Permission(%#o)", uint32(p))
}

// PermBits is the mask of all twelve permission bits within a Mode.
const PermBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// An EntryType is the kind of a directory entry.
type EntryType int

// Entry types.
const (
	Directory EntryType = iota + 1
	File
	SymbolicLink
	CharacterDevice
	BlockDevice
	FIFO
	Socket
)

// EntryTypeOf returns the entry type described by the type bits of m.
func EntryTypeOf(m Mode) EntryType {
	switch {
	case m&fs.ModeSymlink != 0:
		return SymbolicLink
	case m.IsDir():
		return Directory
	case m&fs.ModeCharDevice != 0:
		return CharacterDevice
	case m&fs.ModeDevice != 0:
		return BlockDevice
	case m&fs.ModeNamedPipe != 0:
		return FIFO
	case m&fs.ModeSocket != 0:
		return Socket
	}
	return File
}

func (t EntryType) String() string {
	switch t {
	case Directory:
		return "DIRECTORY"
	case File:
		return "FILE"
	case SymbolicLink:
		return "SYMBOLIC_LINK"
	case CharacterDevice:
		return "CHARACTER_DEVICE"
	case BlockDevice:
		return "BLOCK_DEVICE"
	case FIFO:
		return "FIFO"
	case Socket:
		return "SOCKET"
	}
	return fmt.Sprintf("EntryType(%d)", int(t))
}
