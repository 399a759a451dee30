package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"lesiw.io/hostfs"
	"lesiw.io/hostfs/memfs"
	"lesiw.io/hostfs/osfs"
	"lesiw.io/hostfs/sftpfs"
	"lesiw.io/hostfs/term"
	"lesiw.io/hostfs/webdavfs"
)

const defaultSSHPort = "22"

// OpenFileSystem opens the file system described by c. Remote file systems
// connect before OpenFileSystem returns.
func OpenFileSystem(
	ctx context.Context, c FileSystemConfig,
) (hostfs.FileSystem, error) {
	switch c.Protocol {
	case "local":
		return osfs.New(), nil
	case "memory":
		return memfs.New(), nil
	case "sftp":
		return openSFTP(ctx, c)
	case "webdav":
		return openWebDAV(ctx, c)
	}
	return nil, fmt.Errorf("unknown file system protocol %q: %w",
		c.Protocol, hostfs.ErrInvalid)
}

func openSFTP(ctx context.Context, c FileSystemConfig) (*sftpfs.FS, error) {
	if c.Location == "" {
		return nil, fmt.Errorf("sftp requires a location: %w",
			hostfs.ErrInvalid)
	}
	cred, err := c.Credential.Credential()
	if err != nil {
		return nil, err
	}
	cc, err := SSHConfig(cred, c.KnownHosts, c.Timeout)
	if err != nil {
		return nil, err
	}
	var opts []sftpfs.Option
	if c.Retries > 0 {
		opts = append(opts, sftpfs.WithRetry(c.Retries, 100*time.Millisecond))
	}
	return sftpfs.Dial(ctx, hostPort(c.Location), cc, opts...)
}

func openWebDAV(
	ctx context.Context, c FileSystemConfig,
) (*webdavfs.FS, error) {
	if c.Location == "" {
		return nil, fmt.Errorf("webdav requires a location: %w",
			hostfs.ErrInvalid)
	}
	var opts []webdavfs.Option
	if c.Credential != nil {
		if c.Credential.KeyFile != "" {
			return nil, fmt.Errorf("webdav does not accept key files: %w",
				hostfs.ErrInvalid)
		}
		opts = append(opts, webdavfs.WithBasicAuth(
			c.Credential.Username, c.Credential.Password))
	}
	if c.Timeout > 0 {
		opts = append(opts, webdavfs.WithTimeout(c.Timeout))
	}
	switch c.Unsupported {
	case "", "raise":
	case "ignore":
		opts = append(opts, webdavfs.IgnoreUnsupported())
	default:
		return nil, fmt.Errorf("unknown unsupported policy %q: %w",
			c.Unsupported, hostfs.ErrInvalid)
	}
	return webdavfs.New(ctx, c.Location, opts...)
}

// OpenTerminal opens the terminal described by c.
func OpenTerminal(
	ctx context.Context, c TerminalConfig,
) (term.Terminal, error) {
	switch c.Protocol {
	case "local":
		return term.NewLocal(), nil
	case "ssh":
		if c.Location == "" {
			return nil, fmt.Errorf("ssh requires a location: %w",
				hostfs.ErrInvalid)
		}
		cred, err := c.Credential.Credential()
		if err != nil {
			return nil, err
		}
		cc, err := SSHConfig(cred, c.KnownHosts, c.Timeout)
		if err != nil {
			return nil, err
		}
		return term.DialSSH(ctx, hostPort(c.Location), cc)
	}
	return nil, fmt.Errorf("unknown terminal protocol %q: %w",
		c.Protocol, hostfs.ErrInvalid)
}

// hostPort adds the default SSH port to location if it has none.
func hostPort(location string) string {
	if _, _, err := net.SplitHostPort(location); err == nil {
		return location
	}
	return net.JoinHostPort(location, defaultSSHPort)
}
