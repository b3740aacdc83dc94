// Package buildsys turns a probed R installation into build directives and
// renders them for a particular build system.
package buildsys

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goplus/librsys/pkgs/probe"
)

// Kind classifies a directive.
type Kind int

const (
	// Env is a compile-time environment constant for the binding itself.
	Env Kind = iota
	// Metadata is re-exported to packages that depend on the binding.
	Metadata
	// LinkSearch adds a directory to the linker search path.
	LinkSearch
	// LinkLib links against a library. Key is the link kind, Value the name.
	LinkLib
	// RerunIfChanged names an input that invalidates the configuration.
	RerunIfChanged
)

func (k Kind) String() string {
	switch k {
	case Env:
		return "env"
	case Metadata:
		return "metadata"
	case LinkSearch:
		return "link-search"
	case LinkLib:
		return "link-lib"
	case RerunIfChanged:
		return "rerun-if-changed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Directive is one atomic declaration to the outer build tool.
type Directive struct {
	Kind  Kind
	Key   string
	Value string
}

const (
	// HomeEnv is the constant holding the discovered R home.
	HomeEnv = "R_HOME"
	// HomeMetadata is the key dependents read the R home from.
	HomeMetadata = "r_home"
)

// Options control the link and rerun directives.
type Options struct {
	LinkName string
	LinkKind string
	Triggers []string
}

// DefaultOptions links dynamically against libR and reruns when the build
// script or the header wrapper changes.
func DefaultOptions() Options {
	return Options{
		LinkName: "R",
		LinkKind: "dylib",
		Triggers: []string{"build.rs", "wrapper.h"},
	}
}

// Directives returns the directives for paths. The result depends only on
// its arguments.
func Directives(paths probe.Paths, opts Options) []Directive {
	def := DefaultOptions()
	if opts.LinkName == "" {
		opts.LinkName = def.LinkName
	}
	if opts.LinkKind == "" {
		opts.LinkKind = def.LinkKind
	}
	ds := []Directive{
		{Kind: Env, Key: HomeEnv, Value: paths.Home},
		{Kind: Metadata, Key: HomeMetadata, Value: paths.Home},
		{Kind: LinkSearch, Value: paths.LibraryDir},
		{Kind: LinkLib, Key: opts.LinkKind, Value: opts.LinkName},
	}
	for _, f := range opts.Triggers {
		ds = append(ds, Directive{Kind: RerunIfChanged, Value: f})
	}
	return ds
}

// Format renders directives for one build system.
type Format interface {
	Name() string
	Write(w io.Writer, ds []Directive) error
}

var formats = map[string]Format{}

// Register makes f available to Lookup. Renderer packages call it from init.
func Register(f Format) {
	name := f.Name()
	if _, dup := formats[name]; dup {
		panic("buildsys: format registered twice: " + name)
	}
	formats[name] = f
}

// Lookup returns the registered format called name.
func Lookup(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists registered formats, sorted.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
