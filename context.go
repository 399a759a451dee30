package hostfs

import "context"

type contextKey int

const (
	dirModeKey contextKey = iota
	fileModeKey
)

// WithDirMode returns a context that carries the permission bits used when
// creating directories with [Path.Mkdir] and [Path.MkdirAll].
//
// If no directory mode is set in the context, the default mode 0755 is used.
// The resulting bits are still subject to the backend's umask.
func WithDirMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, dirModeKey, mode)
}

// WithFileMode returns a context that carries the permission bits used when
// creating files with [Path.Touch], [Path.WriteBytes] and friends.
//
// If no file mode is set in the context, the default mode 0644 is used.
func WithFileMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, fileModeKey, mode)
}

// DirMode retrieves the directory mode from context.
// Returns 0755 if no mode is set.
func DirMode(ctx context.Context) Mode {
	if mode, ok := ctx.Value(dirModeKey).(Mode); ok {
		return mode
	}
	return 0755
}

// FileMode retrieves the file mode from context.
// Returns 0644 if no mode is set.
func FileMode(ctx context.Context) Mode {
	if mode, ok := ctx.Value(fileModeKey).(Mode); ok {
		return mode
	}
	return 0644
}
