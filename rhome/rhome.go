// Package rhome resolves the R home directory at run time.
//
// An R_HOME already present in the environment always wins, even when it is
// empty. Otherwise the value captured when the binding was built is used.
package rhome

import (
	"errors"
	"os"
)

// EnvKey is the variable libR reads its installation root from.
const EnvKey = "R_HOME"

// ErrNoHome means neither the environment nor the build supplied a home.
var ErrNoHome = errors.New("rhome: R_HOME is unset and no build-time default is known")

// buildHome is set at link time:
//
//	go build -ldflags "-X github.com/goplus/librsys/rhome.buildHome=/usr/lib/R"
var buildHome string

// Default returns the R home embedded at link time, or "".
func Default() string {
	return buildHome
}

// Source tells where a resolved home came from.
type Source int

const (
	SourceNone Source = iota
	SourceEnv
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceEnv:
		return "env"
	case SourceDefault:
		return "default"
	}
	return "none"
}

// Resolve returns $R_HOME if it is set, else def.
// A set but empty R_HOME is returned as is with SourceEnv.
func Resolve(def string) (string, Source) {
	if v, ok := os.LookupEnv(EnvKey); ok {
		return v, SourceEnv
	}
	if def != "" {
		return def, SourceDefault
	}
	return "", SourceNone
}

// Ensure makes sure R_HOME is set before R is initialised, exporting def
// when the variable is unset. It returns the effective home.
func Ensure(def string) (string, error) {
	home, src := Resolve(def)
	switch src {
	case SourceNone:
		return "", ErrNoHome
	case SourceDefault:
		if err := os.Setenv(EnvKey, home); err != nil {
			return "", err
		}
	}
	return home, nil
}
