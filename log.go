package hostfs

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs l as the process-wide logger used by hostfs and its
// backends. A nil logger disables logging. The default logger discards
// everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Logger returns the process-wide logger, named for the calling component.
func Logger(name string) *zap.Logger {
	return logger.Load().Named(name)
}
