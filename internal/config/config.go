// Package config loads rprobe settings from defaults, an optional YAML file,
// RPROBE_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RPROBE_"

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "rprobe.yaml"

// Config is the resolved configuration of one rprobe invocation.
type Config struct {
	Interpreter string        `koanf:"interpreter"`
	GOOS        string        `koanf:"goos"`
	Format      string        `koanf:"format"`
	Output      string        `koanf:"output"`
	Triggers    []string      `koanf:"triggers"`
	LinkName    string        `koanf:"link_name"`
	LinkKind    string        `koanf:"link_kind"`
	Package     string        `koanf:"package"`
	Timeout     time.Duration `koanf:"timeout"`
	Verbose     bool          `koanf:"verbose"`

	// ChildEnv holds KEY=VALUE pairs set in the interpreter's environment.
	ChildEnv []string `koanf:"child_env"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"interpreter": "R",
		"goos":        runtime.GOOS,
		"format":      "cargo",
		"output":      "",
		"triggers":    []string{"build.rs", "wrapper.h"},
		"link_name":   "R",
		"link_kind":   "dylib",
		"package":     "libr",
		"timeout":     "0s",
		"verbose":     false,
		"child_env":   []string{},
	}
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"triggers":  true,
	"child_env": true,
}

func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if !listKeys[key] {
		return key, value
	}
	if value == "" {
		return key, []string{}
	}
	return key, strings.Split(value, ",")
}

// ChildEnvMap parses ChildEnv into a map.
func (c *Config) ChildEnvMap() (map[string]string, error) {
	if len(c.ChildEnv) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(c.ChildEnv))
	for _, kv := range c.ChildEnv {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid child_env entry %q, want KEY=VALUE", kv)
		}
		env[k] = v
	}
	return env, nil
}

// Load resolves configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// RPROBE_LINK_NAME -> link_name; RPROBE_TRIGGERS=a,b -> [a b]
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	return &cfg, nil
}
