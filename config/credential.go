package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"lesiw.io/hostfs"
)

// A Credential authenticates a user to an SSH server.
type Credential interface {
	Username() string
	AuthMethods() ([]ssh.AuthMethod, error)
}

// PasswordCredential authenticates with a password.
type PasswordCredential struct {
	User     string
	Password string
}

func (c *PasswordCredential) Username() string { return c.User }

func (c *PasswordCredential) AuthMethods() ([]ssh.AuthMethod, error) {
	return []ssh.AuthMethod{ssh.Password(c.Password)}, nil
}

// PubKeyCredential authenticates with a private key file, optionally
// protected by a passphrase. RSA, ECDSA and Ed25519 keys are accepted.
type PubKeyCredential struct {
	User       string
	KeyFile    string
	Passphrase string
}

func (c *PubKeyCredential) Username() string { return c.User }

func (c *PubKeyCredential) AuthMethods() ([]ssh.AuthMethod, error) {
	name, err := expandHome(c.KeyFile)
	if err != nil {
		return nil, err
	}
	pem, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var signer ssh.Signer
	if c.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(
			pem, []byte(c.Passphrase),
		)
	} else {
		signer, err = ssh.ParsePrivateKey(pem)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing key file %s: %w", name, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

// Credential converts c into a Credential. Exactly one of password and
// key file must be set.
func (c *CredentialConfig) Credential() (Credential, error) {
	switch {
	case c == nil:
		return nil, fmt.Errorf("missing credential: %w", hostfs.ErrInvalid)
	case c.Username == "":
		return nil, fmt.Errorf("credential without username: %w",
			hostfs.ErrInvalid)
	case c.Password != "" && c.KeyFile != "":
		return nil, fmt.Errorf("credential has both password and key file: %w",
			hostfs.ErrInvalid)
	case c.KeyFile != "":
		return &PubKeyCredential{
			User:       c.Username,
			KeyFile:    c.KeyFile,
			Passphrase: c.Passphrase,
		}, nil
	}
	return &PasswordCredential{User: c.Username, Password: c.Password}, nil
}

// SSHConfig returns a client configuration for cred. Host keys are checked
// against the known_hosts file if one is given and accepted otherwise.
func SSHConfig(
	cred Credential, knownHostsFile string, timeout time.Duration,
) (*ssh.ClientConfig, error) {
	auth, err := cred.AuthMethods()
	if err != nil {
		return nil, err
	}
	hostKey := ssh.InsecureIgnoreHostKey()
	if knownHostsFile != "" {
		name, err := expandHome(knownHostsFile)
		if err != nil {
			return nil, err
		}
		if hostKey, err = knownhosts.New(name); err != nil {
			return nil, fmt.Errorf("reading known hosts: %w", err)
		}
	}
	return &ssh.ClientConfig{
		User:            cred.Username(),
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}, nil
}

func expandHome(name string) (string, error) {
	rest, ok := strings.CutPrefix(name, "~/")
	if !ok {
		return name, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}
