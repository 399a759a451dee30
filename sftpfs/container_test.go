package sftpfs_test

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"lesiw.io/ctrctl"
	"lesiw.io/defers"
	"lesiw.io/hostfs"
	"lesiw.io/hostfs/fstest"
	"lesiw.io/hostfs/sftpfs"
)

var testAddr string

var testConfig = &ssh.ClientConfig{
	User:            "testuser",
	Auth:            []ssh.AuthMethod{ssh.Password("testpass")},
	HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	Timeout:         5 * time.Second,
}

func TestMain(m *testing.M) {
	switch {
	case runtime.GOOS == "windows":
		fmt.Fprintln(os.Stderr,
			"skip container: windows containers unsupported")
	default:
		if _, err := ctrctl.Version(nil); err != nil {
			fmt.Fprintln(os.Stderr, "skip container: no container runtime")
			break
		}
		addr, err := setupSFTP()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip container: %v\n", err)
			break
		}
		testAddr = addr
	}
	defers.Exit(m.Run())
}

func TestContainer(t *testing.T) {
	if testAddr == "" {
		t.Skip("SFTP container not available")
	}
	ctx := t.Context()
	fsys, err := sftpfs.Dial(ctx, testAddr, testConfig)
	if err != nil {
		t.Fatalf("Dial(%q): %v", testAddr, err)
	}
	t.Cleanup(func() { _ = fsys.Close() })

	// atmoz/sftp chroots users to their home directory.
	root := hostfs.New(fsys, "/upload")
	fstest.TestFileSystem(ctx, t, root, fstest.Features(
		hostfs.FeatureSymlinks,
		hostfs.FeaturePermissions,
	))
}

// setupSFTP starts an SFTP server container and returns its address.
// Cleanup is registered with defers.Add().
func setupSFTP() (string, error) {
	// atmoz/sftp takes user:pass:uid:gid:directories.
	id, err := ctrctl.ContainerCreate(&ctrctl.ContainerCreateOpts{
		Publish: []string{"22"},
	}, "atmoz/sftp:latest", "testuser:testpass:1001:1001:upload")
	if err != nil {
		return "", fmt.Errorf("create sftp container: %w", err)
	}
	defers.Add(func() {
		_, _ = ctrctl.ContainerRm(&ctrctl.ContainerRmOpts{Force: true}, id)
	})

	if _, err := ctrctl.ContainerStart(nil, id); err != nil {
		return "", fmt.Errorf("start sftp container: %w", err)
	}

	var port string
	for range 50 {
		time.Sleep(100 * time.Millisecond)
		port, err = ctrctl.ContainerInspect(&ctrctl.ContainerInspectOpts{
			Format: `{{range $p, $conf := .NetworkSettings.Ports}}` +
				`{{if eq $p "22/tcp"}}` +
				`{{(index $conf 0).HostPort}}{{end}}{{end}}`,
		}, id)
		if err == nil && port != "" {
			break
		}
	}
	if port == "" {
		return "", fmt.Errorf("no port mapping found for 22/tcp")
	}
	addr := "localhost:" + port

	for range 50 {
		time.Sleep(200 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		fsys, err := sftpfs.Dial(ctx, addr, testConfig)
		cancel()
		if err == nil {
			_ = fsys.Close()
			return addr, nil
		}
	}
	return "", fmt.Errorf("sftp server at %s not ready", addr)
}
