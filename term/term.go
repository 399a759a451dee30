// Package term runs commands on local and remote hosts.
//
// A [Terminal] runs one [Command] at a time and reports its exit code and
// output. The command line is interpreted by the host's shell, so Name
// and Args may use shell syntax. Use [Quote] to pass an argument verbatim.
//
// Timeouts are expressed by the context. If the context ends before the
// command exits, Run returns the output gathered so far, an exit code of
// -1, and an error wrapping the context's error.
package term

import (
	"context"
	"io"
	"strings"
)

// A Terminal runs commands on one host.
type Terminal interface {
	// Close releases the connection to the host. Later calls to Run fail
	// with hostfs.ErrClosed.
	io.Closer

	// Equal reports whether other runs commands on the same host.
	Equal(other Terminal) bool

	// Run runs cmd and waits for it to exit. A non-zero exit status is
	// reported in Result.ExitCode, not as an error.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// A Command describes a command to run.
type Command struct {
	// Name is the program or shell builtin to run.
	Name string

	// Args are appended to Name, separated by spaces.
	Args []string

	// Stdin is written to the command's standard input.
	Stdin string

	// Dir is the working directory. If empty the command runs in the
	// terminal's default directory.
	Dir string
}

// Line returns the shell command line for c, without Dir.
func (c Command) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// A Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Quote quotes s for a POSIX shell.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, special) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func special(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return false
	}
	return !strings.ContainsRune("@%+=:,./-_", r)
}
