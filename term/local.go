package term

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"lesiw.io/hostfs"
)

// Local runs commands on this machine through the system shell.
type Local struct {
	closed atomic.Bool
	log    *zap.Logger
}

// NewLocal returns a terminal for the local machine.
func NewLocal() *Local {
	return &Local{log: hostfs.Logger("term.local")}
}

// Equal reports whether other is also a local terminal.
func (t *Local) Equal(other Terminal) bool {
	_, ok := other.(*Local)
	return ok
}

// Run implements Terminal.
func (t *Local) Run(ctx context.Context, cmd Command) (Result, error) {
	if t.closed.Load() {
		return Result{}, fmt.Errorf("run %s: %w", cmd.Name, hostfs.ErrClosed)
	}
	line := cmd.Line()
	t.log.Debug("running", zap.String("cmd", line), zap.String("dir", cmd.Dir))

	c := exec.CommandContext(ctx, shell[0], shell[1], line)
	c.Dir = cmd.Dir
	c.Stdin = strings.NewReader(cmd.Stdin)
	var stdout, stderr bytes.Buffer
	c.Stdout, c.Stderr = &stdout, &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w", cmd.Name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return res, nil
}

// Close implements Terminal.
func (t *Local) Close() error {
	if t.closed.Swap(true) {
		return hostfs.ErrClosed
	}
	return nil
}

var shell = func() [2]string {
	if runtime.GOOS == "windows" {
		return [2]string{"cmd", "/C"}
	}
	return [2]string{"/bin/sh", "-c"}
}()

var _ Terminal = (*Local)(nil)
