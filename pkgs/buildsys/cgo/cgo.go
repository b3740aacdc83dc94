// Package cgo renders directives as a generated Go source file carrying the
// #cgo link flags and the captured build environment.
package cgo

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/goplus/librsys/pkgs/buildsys"
)

// DefaultPackage is the package clause used when Format.Package is empty.
const DefaultPackage = "libr"

// Format generates a Go file for the package that declares the bindings.
type Format struct {
	Package string
}

var _ buildsys.Format = Format{}

func init() { buildsys.Register(Format{}) }

func (Format) Name() string { return "cgo" }

type entry struct {
	Key   string
	Value string
}

type fileData struct {
	Package  string
	Inputs   []string
	LDFlags  string
	Env      []entry
	Metadata []entry
}

var fileTmpl = template.Must(template.New("cgo").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by rprobe; DO NOT EDIT.
{{- if .Inputs}}
//
// Regenerate when any of these change:
{{- range .Inputs}}
//	{{.}}
{{- end}}
{{- end}}

package {{.Package}}

{{if .LDFlags}}// #cgo LDFLAGS: {{.LDFlags}}
import "C"
{{end}}
// BuildEnv holds environment values captured when this file was generated.
var BuildEnv = map[string]string{
{{- range .Env}}
	{{quote .Key}}: {{quote .Value}},
{{- end}}
}

// Metadata is exported to packages that build on this one.
var Metadata = map[string]string{
{{- range .Metadata}}
	{{quote .Key}}: {{quote .Value}},
{{- end}}
}
`))

func (f Format) Write(w io.Writer, ds []buildsys.Directive) error {
	src, err := f.Source(ds)
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

// Source returns the formatted Go file for ds.
func (f Format) Source(ds []buildsys.Directive) ([]byte, error) {
	data := fileData{Package: f.Package}
	if data.Package == "" {
		data.Package = DefaultPackage
	}
	var flags []string
	for _, d := range ds {
		switch d.Kind {
		case buildsys.Env:
			data.Env = append(data.Env, entry{d.Key, d.Value})
		case buildsys.Metadata:
			data.Metadata = append(data.Metadata, entry{d.Key, d.Value})
		case buildsys.LinkSearch:
			flags = append(flags, quoteFlag("-L"+d.Value))
		case buildsys.LinkLib:
			flags = append(flags, libFlags(d.Key, d.Value)...)
		case buildsys.RerunIfChanged:
			data.Inputs = append(data.Inputs, d.Value)
		default:
			return nil, fmt.Errorf("cgo: unsupported directive %v", d.Kind)
		}
	}
	data.LDFlags = strings.Join(flags, " ")

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("cgo: format generated file: %w", err)
	}
	return src, nil
}

func libFlags(kind, name string) []string {
	switch kind {
	case "static":
		return []string{"-Wl,-Bstatic", quoteFlag("-l" + name), "-Wl,-Bdynamic"}
	case "framework":
		return []string{"-framework", quoteFlag(name)}
	default:
		return []string{quoteFlag("-l" + name)}
	}
}

// quoteFlag protects flags containing spaces; cgo splits on whitespace
// but honours quotes.
func quoteFlag(s string) string {
	if !strings.ContainsAny(s, " \t'\"") {
		return s
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return strconv.Quote(s)
}
