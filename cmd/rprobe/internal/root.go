package internal

import (
	"log"
	"runtime"

	"github.com/goplus/librsys/internal/config"
	"github.com/goplus/librsys/pkgs/probe"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// runner replaces the interpreter spawn when non-nil. Tests set it.
var runner probe.Runner

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "rprobe",
		Short: "rprobe locates R and emits link directives",
		Long: `rprobe asks the R interpreter on PATH for its home and library directories
and prints the directives a build needs to link against libR.

Without a subcommand it behaves like "rprobe emit".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	pf.String("interpreter", probe.DefaultInterpreter, "R interpreter to run")
	pf.String("goos", runtime.GOOS, "target operating system, selects the library directory query")
	pf.Duration("timeout", 0, "abort the interpreter after this long (0 waits forever)")
	pf.StringSlice("child-env", nil, "KEY=VALUE pairs set for the interpreter, e.g. LANG=C")
	pf.BoolP("verbose", "v", false, "enable debug logging on stderr")

	load := func(c *cobra.Command) (*config.Config, hclog.Logger, error) {
		cfg, err := config.Load(cfgFile, c.Flags())
		if err != nil {
			return nil, nil, err
		}
		level := hclog.Warn
		if cfg.Verbose {
			level = hclog.Debug
		}
		logger := hclog.New(&hclog.LoggerOptions{
			Name:   "rprobe",
			Level:  level,
			Output: c.ErrOrStderr(),
		})
		if cfg.File != "" {
			logger.Debug("loaded config", "file", cfg.File)
		}
		return cfg, logger, nil
	}

	addEmitFlags(cmd)
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return runEmit(c, load)
	}
	cmd.AddCommand(newEmitCmd(load), newProbeCmd(load), newHomeCmd())
	return cmd
}

type loader func(*cobra.Command) (*config.Config, hclog.Logger, error)

func newProber(cfg *config.Config, logger hclog.Logger) (*probe.Prober, error) {
	env, err := cfg.ChildEnvMap()
	if err != nil {
		return nil, err
	}
	p := probe.New()
	p.Interpreter = cfg.Interpreter
	p.Platform = probe.PlatformFor(cfg.GOOS)
	p.Timeout = cfg.Timeout
	p.Logger = logger
	p.Runner = &probe.ExecRunner{Env: env}
	if runner != nil {
		p.Runner = runner
	}
	return p, nil
}

// Execute runs the command line and exits with status 1 on failure.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}
