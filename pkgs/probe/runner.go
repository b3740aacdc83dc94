package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/execabs"
)

// Runner runs an interpreter and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExitError reports an interpreter that started but exited with a non-zero
// status. Stdout was still captured and is returned alongside it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "interpreter exited with status " + strconv.Itoa(e.Code)
}

// ExecRunner spawns the interpreter as a child process.
type ExecRunner struct {
	// Env overrides entries of the inherited environment, for example
	// LANG=C to keep R's messages out of the user's locale.
	Env map[string]string
	// Stderr receives the child's stderr. Nil means os.Stderr.
	Stderr io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := execabs.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(r.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), r.Env)
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run %s: %w", name, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{Code: exitErr.ExitCode()}
		}
		return nil, &SpawnError{Name: name, Err: err}
	}
	return stdout.Bytes(), nil
}

// mergeEnv returns base with every key of override replaced or appended.
// Override entries come last, sorted by key, so the result is stable.
func mergeEnv(base []string, override map[string]string) []string {
	out := make([]string, 0, len(base)+len(override))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, replaced := override[k]; !replaced {
			out = append(out, kv)
		}
	}
	keys := make([]string, 0, len(override))
	for k := range override {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+override[k])
	}
	return out
}
