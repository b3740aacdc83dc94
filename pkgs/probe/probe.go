// Package probe asks a local R interpreter where it is installed.
package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrMissingHome means the interpreter printed nothing.
	ErrMissingHome = errors.New("cannot find R home")
	// ErrMissingLibrary means the interpreter printed only the home line.
	ErrMissingLibrary = errors.New("cannot find R library")
)

// SpawnError reports an interpreter that could not be started at all.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Paths is the installation layout reported by R.
type Paths struct {
	// Home is R.home().
	Home string
	// LibraryDir holds the R shared library: R.home('lib'), or
	// R.home('bin') on Windows.
	LibraryDir string
}

// DefaultInterpreter is looked up on PATH when Prober.Interpreter is empty.
const DefaultInterpreter = "R"

// Prober runs the interpreter once and parses its answer.
type Prober struct {
	Interpreter string
	Platform    Platform
	Runner      Runner
	// Timeout bounds the interpreter call. Zero waits forever.
	Timeout time.Duration
	Logger  hclog.Logger
}

// New returns a Prober for the current platform that spawns R from PATH.
func New() *Prober {
	return &Prober{
		Interpreter: DefaultInterpreter,
		Platform:    Current,
		Runner:      &ExecRunner{},
		Logger:      hclog.NewNullLogger(),
	}
}

// Args returns the interpreter arguments: silent mode plus the inline script.
func (p *Prober) Args() []string {
	return []string{"-s", "-e", p.Platform.Script()}
}

// Probe runs the interpreter and returns the paths it reports.
func (p *Prober) Probe(ctx context.Context) (Paths, error) {
	name := p.Interpreter
	if name == "" {
		name = DefaultInterpreter
	}
	logger := p.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	runner := p.Runner
	if runner == nil {
		runner = &ExecRunner{}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	logger.Debug("probing R installation", "interpreter", name, "platform", p.Platform)
	out, err := runner.Run(ctx, name, p.Args()...)
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return Paths{}, err
		}
		logger.Warn("interpreter exited with non-zero status", "code", exitErr.Code)
	}

	paths, err := Parse(out)
	if err != nil {
		return Paths{}, err
	}
	logger.Debug("found R installation", "home", paths.Home, "library", paths.LibraryDir)
	return paths, nil
}

// Parse reads the home line and the library line from interpreter output.
// Invalid UTF-8 is replaced rather than rejected. Lines are split on \n with
// a trailing \r dropped; nothing else is trimmed.
func Parse(out []byte) (Paths, error) {
	lines := splitLines(decode(out), 2)
	switch len(lines) {
	case 0:
		return Paths{}, ErrMissingHome
	case 1:
		return Paths{}, ErrMissingLibrary
	}
	return Paths{Home: lines[0], LibraryDir: lines[1]}, nil
}

// decode never fails: the UTF-8 decoder writes U+FFFD for invalid bytes.
func decode(b []byte) string {
	s, _ := unicode.UTF8.NewDecoder().Bytes(b)
	return string(s)
}

// splitLines returns at most n lines of s.
func splitLines(s string, n int) []string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 4096), len(s)+1)
	var lines []string
	for len(lines) < n && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
