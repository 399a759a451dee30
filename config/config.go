// Package config loads hostfs configuration from YAML and opens the file
// systems and terminals it describes.
//
//	log:
//	  level: info
//	  format: console
//	filesystems:
//	  scratch:
//	    protocol: local
//	  cluster:
//	    protocol: sftp
//	    location: cluster.example.com
//	    credential:
//	      username: alice
//	      key_file: ~/.ssh/id_ed25519
//	terminals:
//	  cluster:
//	    protocol: ssh
//	    location: cluster.example.com:2222
//	    credential:
//	      username: alice
//	      password: $(CLUSTER_PASSWORD)
//
// Values of the form $(NAME) are replaced by the environment variable NAME
// before the YAML is parsed.
package config

import "time"

// Config is the top-level configuration.
type Config struct {
	Log         LogConfig                   `yaml:"log"`
	FileSystems map[string]FileSystemConfig `yaml:"filesystems"`
	Terminals   map[string]TerminalConfig   `yaml:"terminals"`
}

// LogConfig configures the logger built by NewLogger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// FileSystemConfig describes one file system.
type FileSystemConfig struct {
	// Protocol is one of local, memory, sftp or webdav.
	Protocol string `yaml:"protocol"`

	// Location is host or host:port for sftp and a URL for webdav.
	// It is ignored for local and memory.
	Location string `yaml:"location"`

	Credential *CredentialConfig `yaml:"credential"`

	// KnownHosts is a known_hosts file used to verify sftp host keys.
	KnownHosts string `yaml:"known_hosts"`

	// Unsupported is the webdav policy for operations WebDAV cannot
	// perform: raise (the default) or ignore.
	Unsupported string `yaml:"unsupported"`

	// Timeout bounds connecting, and each request for webdav.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of attempts per sftp operation.
	Retries int `yaml:"retries"`
}

// TerminalConfig describes one terminal.
type TerminalConfig struct {
	// Protocol is local or ssh.
	Protocol   string            `yaml:"protocol"`
	Location   string            `yaml:"location"`
	Credential *CredentialConfig `yaml:"credential"`
	KnownHosts string            `yaml:"known_hosts"`
	Timeout    time.Duration     `yaml:"timeout"`
}

// CredentialConfig holds either a password or a key file.
type CredentialConfig struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	KeyFile    string `yaml:"key_file"`
	Passphrase string `yaml:"passphrase"`
}
