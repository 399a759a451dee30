package term

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/internal/retry"
)

// defaultAttempts bounds reconnects when the context has no deadline.
// With a deadline, Run keeps trying until it passes, but never more than
// deadlineAttempts times.
const (
	defaultAttempts  = 3
	deadlineAttempts = 64
)

// SSH runs commands on a remote host, one SSH session per command. If the
// connection drops, Run reconnects and runs the command again, a bounded
// number of times.
type SSH struct {
	addr   string
	config *ssh.ClientConfig
	log    *zap.Logger
	wait   time.Duration

	mu     sync.Mutex
	client *ssh.Client
	closed bool
}

// An SSHOption configures an SSH terminal.
type SSHOption func(*SSH)

// WithReconnectWait sets the wait before the first reconnect. Later waits
// double up to a few seconds.
func WithReconnectWait(d time.Duration) SSHOption {
	return func(t *SSH) { t.wait = d }
}

// DialSSH connects to the SSH server at addr, a host:port pair.
func DialSSH(
	ctx context.Context, addr string, config *ssh.ClientConfig,
	opts ...SSHOption,
) (*SSH, error) {
	t := &SSH{
		addr:   addr,
		config: config,
		log:    hostfs.Logger("term.ssh").With(zap.String("addr", addr)),
		wait:   100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}
	client, err := t.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("ssh connect %s: %w", addr, err)
	}
	t.client = client
	return t, nil
}

// Equal reports whether other is an SSH terminal for the same address.
func (t *SSH) Equal(other Terminal) bool {
	o, ok := other.(*SSH)
	return ok && o.addr == t.addr
}

// Client returns the current SSH connection, reconnecting if it was lost.
func (t *SSH) Client(ctx context.Context) (*ssh.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, hostfs.ErrClosed
	}
	if t.client != nil {
		return t.client, nil
	}
	t.log.Info("reconnecting")
	client, err := t.dial(ctx)
	if err != nil {
		return nil, &transportError{err}
	}
	t.client = client
	t.log.Info("connection re-established")
	return client, nil
}

func (t *SSH) dial(ctx context.Context) (*ssh.Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	sc, chans, reqs, err := ssh.NewClientConn(nc, t.addr, t.config)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	_ = nc.SetDeadline(time.Time{})
	return ssh.NewClient(sc, chans, reqs), nil
}

// drop discards client if it is still the current connection.
func (t *SSH) drop(client *ssh.Client) {
	t.mu.Lock()
	if t.client == client {
		t.client = nil
	}
	t.mu.Unlock()
	_ = client.Close()
}

// Run implements Terminal. It retries while the connection cannot be
// established or is lost before the command reports its exit status.
// Without a context deadline it makes at most three attempts.
func (t *SSH) Run(ctx context.Context, cmd Command) (Result, error) {
	line := cmd.Line()
	if cmd.Dir != "" {
		line = "cd " + Quote(cmd.Dir) + " && " + line
	}
	t.log.Debug("running", zap.String("cmd", line))

	cfg := retry.Config{
		MaxAttempts: defaultAttempts,
		InitialWait: t.wait,
		MaxWait:     5 * time.Second,
		Multiplier:  2,
		Jitter:      0.1,
		Retryable: func(err error) bool {
			var te *transportError
			return errors.As(err, &te)
		},
		OnRetry: func(attempt int, err error) {
			t.log.Warn("command failed, retrying",
				zap.Int("attempt", attempt), zap.Error(err))
		},
	}
	if _, ok := ctx.Deadline(); ok {
		cfg.MaxAttempts = deadlineAttempts
	}

	var res Result
	var lastErr error
	err := retry.Do(ctx, cfg, func(int) error {
		var err error
		res, err = t.run(ctx, cmd.Name, line, cmd.Stdin)
		lastErr = err
		return err
	})
	var te *transportError
	switch {
	case err == nil:
		return res, nil
	case errors.As(lastErr, &te) && retry.IsExhausted(err):
		return res, fmt.Errorf("run %s: %w: %w",
			cmd.Name, hostfs.ErrConnection, te.err)
	case errors.As(lastErr, &te) && ctx.Err() != nil:
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w: %w",
			cmd.Name, hostfs.ErrConnection, ctx.Err())
	}
	return res, err
}

func (t *SSH) run(
	ctx context.Context, name, line, stdin string,
) (Result, error) {
	client, err := t.Client(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("run %s: %w", name, err)
	}
	session, err := client.NewSession()
	if err != nil {
		t.drop(client)
		return Result{}, &transportError{err}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdin = strings.NewReader(stdin)
	session.Stdout, session.Stderr = &stdout, &stderr
	if err := session.Start(line); err != nil {
		t.drop(client)
		return Result{}, &transportError{err}
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		<-done
		return Result{
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}, fmt.Errorf("run %s: %w", name, ctx.Err())
	case waitErr = <-done:
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *ssh.ExitError
	var missing *ssh.ExitMissingError
	switch {
	case waitErr == nil:
		return res, nil
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	case errors.As(waitErr, &missing), errors.Is(waitErr, io.EOF):
		t.drop(client)
		return res, &transportError{waitErr}
	}
	return res, fmt.Errorf("run %s: %w", name, waitErr)
}

// Close closes the connection.
func (t *SSH) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return hostfs.ErrClosed
	}
	t.closed = true
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// transportError marks a failure of the connection rather than the
// command.
type transportError struct{ err error }

func (e *transportError) Error() string {
	return "ssh transport: " + e.err.Error()
}

func (e *transportError) Unwrap() error { return e.err }

var _ Terminal = (*SSH)(nil)
