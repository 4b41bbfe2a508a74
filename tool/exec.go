// Package tool runs external programs and manages the files they read and write.
package tool

import (
	"bytes"
	"io"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Logger receives one line per command run and per pipeline step.
// It discards everything until the caller replaces it.
var Logger = log.New(io.Discard, "", log.LstdFlags)

// Command is a single invocation of an external program.
type Command struct {
	Path string
	Args []string
	Dir  string // working directory, empty for the current one
}

// Output holds the captured streams of a finished command.
type Output struct {
	Stdout string
	Stderr string
}

// New returns a Command for the given executable and arguments.
func New(path string, args ...string) *Command {
	return &Command{Path: path, Args: args}
}

// String returns the command line as it would be typed in a shell.
func (c *Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Run executes the command and waits for it. A non-zero exit, or a failure to
// start the program at all, returns a *ToolError carrying both streams.
func (c *Command) Run() (*Output, error) {
	Logger.Printf("exec: %s", c)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return out, &ToolError{
			Tool:     filepath.Base(c.Path),
			Args:     c.Args,
			ExitCode: code,
			Stdout:   out.Stdout,
			Stderr:   out.Stderr,
			Err:      err,
		}
	}

	return out, nil
}
