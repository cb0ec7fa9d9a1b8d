package ocm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// StartOptions carries the pass-through settings a Runner accepts.
// Standard stream redirection is deliberately absent: the invocation owns
// stdout and stderr capture.
type StartOptions struct {
	// Dir is the child working directory. Empty means inherit.
	Dir string
}

// Process is a started child process. Stdout streams live while the
// process runs; Stderr is fully captured and must only be read after Wait
// returns.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader

	// Wait blocks until the process exits and returns its exit code. A
	// non-nil error means the process state could not be determined, not
	// that the command failed.
	Wait() (int, error)
}

// Runner is the process-creation collaborator: resolve an executable,
// start an argv. The default implementation uses os/exec; tests substitute
// ocmtest.ScriptRunner.
type Runner interface {
	// LookPath reports whether the executable resolves on the search
	// path, returning nil when it does.
	LookPath(exe string) error

	// Start launches the argv with stdout and stderr captured via pipes.
	Start(ctx context.Context, argv []string, opts StartOptions) (Process, error)
}

// DefaultRunner executes commands with os/exec.
var DefaultRunner Runner = execRunner{}

type execRunner struct{}

func (execRunner) LookPath(exe string) error {
	_, err := exec.LookPath(exe)
	return err
}

func (execRunner) Start(ctx context.Context, argv []string, opts StartOptions) (Process, error) {
	if len(argv) == 0 {
		return nil, commandError("empty argv")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdout: stdout, stderr: &stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// decodeStream wraps a child output stream with the configured decoder.
// A nil encoding means the stream is already UTF-8; invalid sequences are
// repaired line by line instead.
func decodeStream(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// decodeText decodes raw bytes with enc, falling back to UTF-8 with
// invalid sequences replaced by U+FFFD.
func decodeText(b []byte, enc encoding.Encoding) string {
	if enc != nil {
		if out, err := enc.NewDecoder().Bytes(b); err == nil {
			b = out
		}
	}
	return sanitizeUTF8(string(b))
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}
