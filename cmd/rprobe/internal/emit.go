package internal

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goplus/librsys/internal/config"
	"github.com/goplus/librsys/pkgs/buildsys"
	"github.com/goplus/librsys/pkgs/buildsys/cgo"
	"github.com/spf13/cobra"

	_ "github.com/goplus/librsys/pkgs/buildsys/cargo"
	_ "github.com/goplus/librsys/pkgs/buildsys/pkgconfig"
)

func newEmitCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Probe R and print build directives",
		Long: `Emit probes the R installation and prints link directives in the selected
format: cargo build-script lines, a cgo Go file, or a pkg-config file.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runEmit(c, load)
		},
	}
	addEmitFlags(cmd)
	return cmd
}

func addEmitFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringP("format", "f", "cargo", "output format: "+strings.Join(buildsys.Names(), ", "))
	fs.StringP("output", "o", "", "write to file instead of stdout")
	fs.StringSlice("triggers", []string{"build.rs", "wrapper.h"}, "files whose change requires a new probe")
	fs.String("link-name", "R", "library to link against")
	fs.String("link-kind", "dylib", "link kind: dylib, static or framework")
	fs.String("package", cgo.DefaultPackage, "package clause for the cgo format")
}

func formatFor(cfg *config.Config) (buildsys.Format, error) {
	f, err := buildsys.Lookup(cfg.Format)
	if err != nil {
		return nil, err
	}
	if _, ok := f.(cgo.Format); ok {
		return cgo.Format{Package: cfg.Package}, nil
	}
	return f, nil
}

func runEmit(cmd *cobra.Command, load loader) error {
	cfg, logger, err := load(cmd)
	if err != nil {
		return err
	}
	f, err := formatFor(cfg)
	if err != nil {
		return err
	}

	prober, err := newProber(cfg, logger)
	if err != nil {
		return err
	}
	paths, err := prober.Probe(cmd.Context())
	if err != nil {
		return fmt.Errorf("problem locating local R install: %w", err)
	}

	ds := buildsys.Directives(paths, buildsys.Options{
		LinkName: cfg.LinkName,
		LinkKind: cfg.LinkKind,
		Triggers: cfg.Triggers,
	})
	var buf bytes.Buffer
	if err := f.Write(&buf, ds); err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(cfg.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}
	logger.Debug("wrote directives", "format", f.Name(), "file", cfg.Output)
	return nil
}
