// Package ocmtest provides test doubles for the ocm process boundary.
//
// ScriptRunner stands in for the default os/exec runner so invocation
// behavior can be tested without spawning processes: outcomes are scripted
// up front and consumed in order, and every started argv is recorded for
// assertion.
package ocmtest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/roach88/ocm"
)

// ScriptResult is one scripted process outcome.
type ScriptResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ScriptRunner implements ocm.Runner with predetermined outcomes.
//
// Outcomes are consumed in order; starting more processes than were
// scripted panics. This is a fail-fast approach to catch test
// misconfiguration, not a production code path.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ScriptRunner struct {
	mu      sync.Mutex
	results []ScriptResult
	idx     int
	calls   [][]string
	dirs    []string
	missing map[string]bool
}

// NewScriptRunner creates a runner that plays back results in order.
func NewScriptRunner(results ...ScriptResult) *ScriptRunner {
	return &ScriptRunner{
		results: results,
		missing: make(map[string]bool),
	}
}

// SetMissing marks an executable as unresolvable, so LookPath fails for
// it and invocations surface EXE_NOT_FOUND.
func (r *ScriptRunner) SetMissing(exe string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing[exe] = true
}

// LookPath implements ocm.Runner. Every executable resolves unless marked
// missing with SetMissing.
func (r *ScriptRunner) LookPath(exe string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[exe] {
		return fmt.Errorf("executable file not found: %s", exe)
	}
	return nil
}

// Start implements ocm.Runner, recording the argv and returning the next
// scripted outcome. Panics if all outcomes have been consumed.
func (r *ScriptRunner) Start(_ context.Context, argv []string, opts ocm.StartOptions) (ocm.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idx >= len(r.results) {
		panic("ocmtest: all scripted results exhausted")
	}
	res := r.results[r.idx]
	r.idx++

	r.calls = append(r.calls, append([]string(nil), argv...))
	r.dirs = append(r.dirs, opts.Dir)

	return &scriptProcess{
		stdout: strings.NewReader(res.Stdout),
		stderr: strings.NewReader(res.Stderr),
		code:   res.ExitCode,
	}, nil
}

// Calls returns every argv started so far, in order.
func (r *ScriptRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Dirs returns the working directory passed to each start, in order.
func (r *ScriptRunner) Dirs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dirs...)
}

type scriptProcess struct {
	stdout *strings.Reader
	stderr *strings.Reader
	code   int
}

func (p *scriptProcess) Stdout() io.Reader { return p.stdout }
func (p *scriptProcess) Stderr() io.Reader { return p.stderr }
func (p *scriptProcess) Wait() (int, error) { return p.code, nil }
