// Package path implements lexical manipulation of the slash-separated,
// rooted paths used by hostfs file systems.
//
// Every file system addressed through hostfs exposes a single POSIX-style
// namespace rooted at "/", whether it is the local disk, an SFTP server, or
// a WebDAV collection. This package provides the path algebra for that
// namespace. All operations are purely lexical: they never access a file
// system and do not account for symbolic links.
//
// Unlike the standard library's path package, [Abs] and [Join] anchor every
// result at the root, and ".." never climbs above it:
//
//	path.Join("/data", "../../etc")  // "/etc"
//	path.Abs("tmp/x")                // "/tmp/x"
package path

import (
	stdpath "path"
	"strings"
)

// Root is the root of every hostfs namespace.
const Root = "/"

// ErrBadPattern indicates a pattern was malformed.
var ErrBadPattern = stdpath.ErrBadPattern

// Match reports whether name matches the shell pattern. The syntax is that
// of the standard library's [path.Match]; '*' never matches '/'.
func Match(pattern, name string) (matched bool, err error) {
	return stdpath.Match(pattern, name)
}

// Clean returns the shortest path name equivalent to path by purely lexical
// processing. It applies the following rules iteratively until no further
// processing can be done:
//
//  1. Replace multiple separators with a single separator
//  2. Eliminate redundant . path elements
//  3. Eliminate .. path elements and the preceding element
//  4. Drop any trailing separator
//
// If .. would escape the root, Clean stops at the root ("/.." becomes "/").
// Relative paths keep leading .. elements.
func Clean(path string) string {
	if path == "" {
		return "."
	}

	rooted := strings.HasPrefix(path, "/")

	var out []string
	for part := range strings.SplitSeq(path, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}
			if rooted {
				// Stop at root, don't escape.
				continue
			}
		}
		out = append(out, part)
	}

	switch {
	case rooted:
		return "/" + strings.Join(out, "/")
	case len(out) == 0:
		return "."
	}
	return strings.Join(out, "/")
}

// Abs anchors path at the root and cleans it.
// Every segment is interpreted relative to "/", so "a/b", "/a/b" and
// "/a/b/" all yield "/a/b".
func Abs(path string) string {
	return Clean("/" + path)
}

// Join joins path elements into a single rooted path.
// Each element is treated as relative to the result so far, never as
// absolute: Join("/a", "/b") is "/a/b". Empty elements are ignored.
//
// Examples:
//
//	Join("/", "foo", "bar")      // "/foo/bar"
//	Join("/foo", "bar/")         // "/foo/bar"
//	Join("/foo", "..", "..")     // "/"
func Join(elem ...string) string {
	var b strings.Builder
	for _, e := range elem {
		if e == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(e)
	}
	return Abs(b.String())
}

// Split splits a rooted path into its parent directory and final element.
// For the root itself it returns ("/", "").
func Split(path string) (dir, file string) {
	path = Abs(path)
	if path == Root {
		return Root, ""
	}
	i := strings.LastIndexByte(path, '/')
	if i == 0 {
		return Root, path[1:]
	}
	return path[:i], path[i+1:]
}

// Base returns the last element of path, or "" for the root.
func Base(path string) string {
	_, file := Split(path)
	return file
}

// Dir returns all but the last element of path. Dir of the root is the
// root.
func Dir(path string) string {
	dir, _ := Split(path)
	return dir
}

// Ext returns the file name extension of the last element of path: the
// suffix beginning at the final dot. A leading dot, as in ".profile", does
// not start an extension.
func Ext(name string) string {
	name = Base(name)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}

// Exts returns every extension of the last element of path, in order:
// Exts("/a/x.tar.gz") is [".tar", ".gz"].
func Exts(name string) []string {
	name = strings.TrimLeft(Base(name), ".")
	if strings.HasSuffix(name, ".") {
		return nil
	}
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return nil
	}
	exts := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		exts = append(exts, "."+p)
	}
	return exts
}

// IsAbs reports whether the path is rooted.
func IsAbs(path string) bool {
	return strings.HasPrefix(path, "/")
}

// Elems returns the elements of a rooted path, without the root.
// Elems("/") is empty.
func Elems(path string) []string {
	path = Abs(path)
	if path == Root {
		return nil
	}
	return strings.Split(path[1:], "/")
}

// HasPrefix reports whether prefix is an ancestor of path or equal to it,
// comparing whole elements: "/ab" does not have the prefix "/a".
func HasPrefix(path, prefix string) bool {
	path, prefix = Abs(path), Abs(prefix)
	if prefix == Root || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Rel returns a relative path that is lexically equivalent to targpath when
// joined to basepath with an intervening separator. That is,
// Join(basepath, Rel(basepath, targpath)) equals Abs(targpath). Both
// arguments are treated as rooted, so Rel always succeeds.
//
//	Rel("/a/b", "/a/c/d")  // "../c/d"
//	Rel("/a", "/a")        // "."
func Rel(basepath, targpath string) string {
	base := Abs(basepath)
	targ := Abs(targpath)
	if base == targ {
		return "."
	}

	be, te := Elems(base), Elems(targ)
	n := 0
	for n < len(be) && n < len(te) && be[n] == te[n] {
		n++
	}

	parts := make([]string, 0, len(be)-n+len(te)-n)
	for range be[n:] {
		parts = append(parts, "..")
	}
	parts = append(parts, te[n:]...)
	return strings.Join(parts, "/")
}
