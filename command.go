package ocm

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
)

// Command is one instance of a schema: every field converted and validated
// at construction, ready to render and execute.
type Command struct {
	schema *Schema
	values map[string]any
}

// New instantiates the schema with keyword values.
//
// Every schema field is converted immediately; the first conversion
// failure aborts construction with a BAD_PARAMETER error and no partial
// command is produced. Keys that match no schema field are a COMMAND_ERROR
// listing the unknown names.
func (s *Schema) New(vals Values) (*Command, error) {
	converted := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v, err := f.Convert(vals[f.Spec().Name], vals)
		if err != nil {
			return nil, err
		}
		converted[f.Spec().Name] = v
	}

	var unknown []string
	for k := range vals {
		if _, ok := s.byName[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, commandError("undefined parameters %s", strings.Join(unknown, ", "))
	}

	return &Command{schema: s, values: converted}, nil
}

// Schema returns the schema this command instantiates.
func (c *Command) Schema() *Schema { return c.schema }

// Value returns the converted value stored under a field name.
func (c *Command) Value(name string) any { return c.values[name] }

// Render converts the command into its ordered argv token sequence:
// executable, sub-commands, then each field's tokens in schema order.
func (c *Command) Render() []string {
	argv := make([]string, 0, 2+2*len(c.schema.fields))
	argv = append(argv, c.schema.exe)
	argv = append(argv, c.schema.subCommands...)
	for _, f := range c.schema.fields {
		argv = append(argv, f.Show(c.values[f.Spec().Name])...)
	}
	return argv
}

// String returns the rendered tokens joined with single spaces.
func (c *Command) String() string {
	return strings.Join(c.Render(), " ")
}

// Equal reports whether both commands render to identical text.
//
// Commands that render the same are interchangeable regardless of their
// internal field values: two instances differing only in an optional field
// that renders to zero tokens compare equal.
func (c *Command) Equal(other *Command) bool {
	if other == nil {
		return false
	}
	return c.String() == other.String()
}

// Hash returns a digest of the rendered text, consistent with Equal.
func (c *Command) Hash() string {
	sum := sha256.Sum256([]byte(c.String()))
	return hex.EncodeToString(sum[:])
}

// Available reports whether the executable resolves on the current search
// path. It does not verify the program is runnable or compatible.
func (c *Command) Available() bool {
	return DefaultRunner.LookPath(c.schema.exe) == nil
}

// Invocation is the record of one completed command execution, handed to a
// Recorder.
type Invocation struct {
	Schema   string
	Rendered string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Recorder persists completed invocations. history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, inv Invocation) error
}

// InvokeOpt configures a single invocation.
type InvokeOpt func(*invokeConfig)

type invokeConfig struct {
	dir      string
	runner   Runner
	recorder Recorder
	enc      encoding.Encoding
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// WithDir sets the child process working directory.
func WithDir(dir string) InvokeOpt {
	return func(c *invokeConfig) { c.dir = dir }
}

// WithRunner substitutes the process-creation collaborator. Intended for
// tests; see the ocmtest package.
func WithRunner(r Runner) InvokeOpt {
	return func(c *invokeConfig) { c.runner = r }
}

// WithRecorder persists the invocation outcome, including failures, to the
// given recorder.
func WithRecorder(rec Recorder) InvokeOpt {
	return func(c *invokeConfig) { c.recorder = rec }
}

// WithEncoding decodes child output through the given encoding, for
// programs that emit something other than UTF-8. The default treats output
// as UTF-8 and repairs invalid sequences with U+FFFD.
func WithEncoding(enc encoding.Encoding) InvokeOpt {
	return func(c *invokeConfig) { c.enc = enc }
}

// WithLogger routes captured stdout lines and invocation events to the
// given logger instead of slog.Default.
func WithLogger(l *slog.Logger) InvokeOpt {
	return func(c *invokeConfig) { c.logger = l }
}

// WithStdin exists so callers porting generic exec options get a clear
// failure: the invocation owns both standard streams, and supplying a
// stdin override is always a COMMAND_ERROR.
func WithStdin(r io.Reader) InvokeOpt {
	return func(c *invokeConfig) { c.stdin = r }
}

// WithStdout is rejected for the same reason as WithStdin.
func WithStdout(w io.Writer) InvokeOpt {
	return func(c *invokeConfig) { c.stdout = w }
}

// WithStderr is rejected for the same reason as WithStdin.
func WithStderr(w io.Writer) InvokeOpt {
	return func(c *invokeConfig) { c.stderr = w }
}

// Invoke renders the command and executes it as a child process.
//
// Standard output is streamed line by line to the logger at info level
// (trailing newline trimmed) while being accumulated; standard error is
// read whole after the process exits. Invoke blocks until process exit;
// there is no timeout beyond ctx cancellation.
//
// Failure modes, none retried: stream overrides are a COMMAND_ERROR before
// any process is started; an unresolvable executable is EXE_NOT_FOUND; a
// non-zero exit code is a COMMAND_ERROR naming the rendered command. Only
// a fully successful run yields a Result.
func (c *Command) Invoke(ctx context.Context, opts ...InvokeOpt) (*Result, error) {
	cfg := invokeConfig{
		runner: DefaultRunner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.stdin != nil || cfg.stdout != nil || cfg.stderr != nil {
		return nil, commandError("stdin, stdout and stderr are captured by the invocation and cannot be redirected")
	}
	if err := cfg.runner.LookPath(c.schema.exe); err != nil {
		return nil, exeNotFound(c.schema.exe)
	}

	rendered := c.String()
	cfg.logger.Info("running command", "command", rendered)

	proc, err := cfg.runner.Start(ctx, c.Render(), StartOptions{Dir: cfg.dir})
	if err != nil {
		return nil, commandErrorWrap(err, "%s could not be started", rendered)
	}

	var out strings.Builder
	reader := bufio.NewReader(decodeStream(proc.Stdout(), cfg.enc))
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			line = sanitizeUTF8(line)
			out.WriteString(line)
			cfg.logger.Info(strings.TrimRight(line, "\r\n"))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, commandErrorWrap(readErr, "%s output read failed", rendered)
		}
	}

	code, err := proc.Wait()
	if err != nil {
		return nil, commandErrorWrap(err, "%s failed", rendered)
	}

	stderrBytes, err := io.ReadAll(decodeStream(proc.Stderr(), cfg.enc))
	if err != nil {
		return nil, commandErrorWrap(err, "%s stderr read failed", rendered)
	}

	result := &Result{
		Stdout: out.String(),
		Stderr: sanitizeUTF8(string(stderrBytes)),
	}

	if cfg.recorder != nil {
		rec := Invocation{
			Schema:   c.schema.name,
			Rendered: rendered,
			ExitCode: code,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
		if recErr := cfg.recorder.Record(ctx, rec); recErr != nil {
			return nil, commandErrorWrap(recErr, "%s could not be recorded", rendered)
		}
	}

	if code != 0 {
		return nil, commandError("%s failed (exit %d)", rendered, code)
	}
	return result, nil
}
