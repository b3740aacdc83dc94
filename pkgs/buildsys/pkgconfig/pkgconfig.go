// Package pkgconfig renders directives as a pkg-config .pc file.
package pkgconfig

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/goplus/librsys/pkgs/buildsys"
)

// Format writes a .pc file describing the R shared library. pkg-config has
// no notion of rerun triggers, so those directives are dropped.
type Format struct {
	// Module is the Name field. Defaults to "libR".
	Module string
	// Version is required by pkg-config. Defaults to "unknown".
	Version string
}

var _ buildsys.Format = Format{}

func init() { buildsys.Register(Format{}) }

func (Format) Name() string { return "pkgconfig" }

func (f Format) Write(w io.Writer, ds []buildsys.Directive) error {
	module := f.Module
	if module == "" {
		module = "libR"
	}
	version := f.Version
	if version == "" {
		version = "unknown"
	}

	var vars []string
	var libs []string
	seen := map[string]bool{}
	addVar := func(k, v string) {
		if seen[k] {
			return
		}
		seen[k] = true
		vars = append(vars, k+"="+v)
	}
	for _, d := range ds {
		switch d.Kind {
		case buildsys.Env:
			if d.Key == buildsys.HomeEnv {
				addVar("prefix", d.Value)
			}
			addVar(strings.ToLower(d.Key), d.Value)
		case buildsys.Metadata:
			addVar(d.Key, d.Value)
		case buildsys.LinkSearch:
			if !seen["libdir"] {
				addVar("libdir", d.Value)
				libs = append(libs, "-L${libdir}")
				continue
			}
			libs = append(libs, "-L"+d.Value)
		case buildsys.LinkLib:
			if d.Key == "framework" {
				libs = append(libs, "-framework", d.Value)
				continue
			}
			libs = append(libs, "-l"+d.Value)
		case buildsys.RerunIfChanged:
		default:
			return fmt.Errorf("pkgconfig: unsupported directive %v", d.Kind)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Generated by rprobe; DO NOT EDIT.")
	for _, v := range vars {
		fmt.Fprintln(bw, v)
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Name: %s\n", module)
	fmt.Fprintln(bw, "Description: R language shared library")
	fmt.Fprintf(bw, "Version: %s\n", version)
	fmt.Fprintf(bw, "Libs: %s\n", strings.Join(libs, " "))
	return bw.Flush()
}
