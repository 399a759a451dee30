// Package sftpfs implements hostfs.FileSystem over SFTP.
//
// An FS holds one SFTP session. Before each operation it checks that the
// session is alive with a cheap request and reconnects if it is not.
// Operations that fail because the connection was lost are retried as a
// whole, three attempts in total by default. When every attempt fails the
// error matches hostfs.ErrConnection.
//
// The file system supports symbolic links and permissions. It is safe for
// concurrent use; concurrent reconnects are collapsed into one.
package sftpfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/singleflight"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/internal/retry"
)

// A Conn is one SFTP session.
type Conn struct {
	Client *sftp.Client

	// Transport, if not nil, is closed after Client. It is usually the
	// *ssh.Client the session runs on.
	Transport io.Closer
}

// Close closes the session and its transport.
func (c *Conn) Close() error {
	err := c.Client.Close()
	if c.Transport != nil {
		if terr := c.Transport.Close(); err == nil {
			err = terr
		}
	}
	return err
}

// A DialFunc opens a new session. The FS calls it once on construction and
// again whenever the session is lost.
type DialFunc func(ctx context.Context) (*Conn, error)

// An Option configures an FS.
type Option func(*FS)

// WithAddr sets the address that identifies the server for Equal.
// [Dial] sets it automatically.
func WithAddr(addr string) Option {
	return func(f *FS) { f.addr = addr }
}

// WithRetry sets the number of attempts per operation and the wait before
// the second attempt. The wait doubles after each further failure. A count
// below 1 means a single attempt.
func WithRetry(attempts int, initialWait time.Duration) Option {
	return func(f *FS) {
		f.retry.MaxAttempts = max(attempts, 1)
		f.retry.InitialWait = initialWait
	}
}

// FS is an SFTP file system.
type FS struct {
	addr  string
	dial  DialFunc
	retry retry.Config
	log   *zap.Logger

	mu     sync.Mutex
	conn   *Conn
	closed bool
	group  singleflight.Group
}

// New returns an FS whose sessions are opened by dial. It opens the first
// session before returning, so that a bad address or credentials are
// reported immediately.
func New(ctx context.Context, dial DialFunc, opts ...Option) (*FS, error) {
	f := &FS{
		dial:  dial,
		retry: retry.DefaultConfig(),
		log:   hostfs.Logger("sftpfs"),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.retry.Retryable = lost
	if f.addr != "" {
		f.log = f.log.With(zap.String("addr", f.addr))
	}

	conn, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("sftp connect %s: %w", f.addr, err)
	}
	f.conn = conn
	return f, nil
}

// Dial connects to the SFTP server at addr, a host:port pair, and returns
// an FS that redials it whenever the session is lost.
func Dial(
	ctx context.Context, addr string, config *ssh.ClientConfig, opts ...Option,
) (*FS, error) {
	dial := func(ctx context.Context) (*Conn, error) {
		var d net.Dialer
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			_ = nc.SetDeadline(deadline)
		}
		sc, chans, reqs, err := ssh.NewClientConn(nc, addr, config)
		if err != nil {
			_ = nc.Close()
			return nil, err
		}
		_ = nc.SetDeadline(time.Time{})
		client := ssh.NewClient(sc, chans, reqs)
		session, err := sftp.NewClient(client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Conn{Client: session, Transport: client}, nil
	}
	opts = append([]Option{WithAddr(addr)}, opts...)
	return New(ctx, dial, opts...)
}

// Equal reports whether other is an SFTP file system for the same
// address.
func (f *FS) Equal(other hostfs.FileSystem) bool {
	o, ok := other.(*FS)
	if !ok {
		return false
	}
	return o == f || (f.addr != "" && o.addr == f.addr)
}

// Supports implements hostfs.FileSystem.
func (f *FS) Supports(feature hostfs.Feature) (bool, error) {
	return hostfs.Supported(feature,
		hostfs.FeatureSymlinks,
		hostfs.FeaturePermissions,
	)
}

// Close closes the session. Later operations fail with ErrClosed.
func (f *FS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return &hostfs.PathError{Op: "close", Path: "/", Err: hostfs.ErrClosed}
	}
	f.closed = true
	if f.conn == nil {
		return nil
	}
	conn := f.conn
	f.conn = nil
	return conn.Close()
}

// session returns a live session, reconnecting if needed.
func (f *FS) session(ctx context.Context) (*Conn, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, hostfs.ErrClosed
	}
	conn := f.conn
	f.mu.Unlock()

	if conn != nil {
		_, err := conn.Client.Lstat("/")
		if err == nil || !lost(err) {
			return conn, nil
		}
		f.log.Info("sftp session lost", zap.Error(err))
		f.drop(conn)
	}
	return f.redial(ctx)
}

// drop discards conn if it is still the current session.
func (f *FS) drop(conn *Conn) {
	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()
	_ = conn.Close()
}

func (f *FS) redial(ctx context.Context) (*Conn, error) {
	v, err, _ := f.group.Do("dial", func() (any, error) {
		f.mu.Lock()
		if f.conn != nil {
			// Another caller reconnected first.
			conn := f.conn
			f.mu.Unlock()
			return conn, nil
		}
		f.mu.Unlock()

		f.log.Info("reconnecting")
		conn, err := f.dial(ctx)
		if err != nil {
			return nil, &dialError{err}
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			_ = conn.Close()
			return nil, hostfs.ErrClosed
		}
		f.conn = conn
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Conn), nil
}

// do runs fn with a live session and retries it while the connection
// keeps getting lost.
func (f *FS) do(
	ctx context.Context, op, name string,
	fn func(c *sftp.Client, attempt int) error,
) error {
	cfg := f.retry
	cfg.OnRetry = func(attempt int, err error) {
		f.log.Warn("retrying sftp operation",
			zap.String("op", op),
			zap.String("path", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	err := retry.Do(ctx, cfg, func(attempt int) error {
		conn, err := f.session(ctx)
		if err != nil {
			return err
		}
		err = fn(conn.Client, attempt)
		if lost(err) {
			f.drop(conn)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if retry.IsExhausted(err) {
		return &hostfs.PathError{
			Op:   op,
			Path: name,
			Err: fmt.Errorf("%w: %w",
				hostfs.ErrConnection, errors.Unwrap(err)),
		}
	}
	return convertError(op, name, err)
}

var _ hostfs.FileSystem = (*FS)(nil)
