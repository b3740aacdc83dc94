// Package cargo renders directives as Cargo build-script output.
package cargo

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goplus/librsys/pkgs/buildsys"
)

// Format writes one cargo:<key>=<value> line per directive.
type Format struct{}

var _ buildsys.Format = Format{}

func init() { buildsys.Register(Format{}) }

func (Format) Name() string { return "cargo" }

func (Format) Write(w io.Writer, ds []buildsys.Directive) error {
	bw := bufio.NewWriter(w)
	for _, d := range ds {
		line, err := Line(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Line returns the Cargo instruction for d, without the trailing newline.
func Line(d buildsys.Directive) (string, error) {
	switch d.Kind {
	case buildsys.Env:
		return "cargo:rustc-env=" + d.Key + "=" + d.Value, nil
	case buildsys.Metadata:
		// Cargo hands this to dependents as DEP_<links>_<KEY>.
		return "cargo:" + d.Key + "=" + d.Value, nil
	case buildsys.LinkSearch:
		return "cargo:rustc-link-search=" + d.Value, nil
	case buildsys.LinkLib:
		if d.Key == "" {
			return "cargo:rustc-link-lib=" + d.Value, nil
		}
		return "cargo:rustc-link-lib=" + d.Key + "=" + d.Value, nil
	case buildsys.RerunIfChanged:
		return "cargo:rerun-if-changed=" + d.Value, nil
	}
	return "", fmt.Errorf("cargo: unsupported directive %v", d.Kind)
}
