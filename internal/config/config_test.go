package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("rprobe", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("interpreter", "R", "")
	fs.String("format", "cargo", "")
	fs.StringSlice("triggers", nil, "")
	fs.String("link-name", "R", "")
	fs.Bool("verbose", false, "")
	return fs
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interpreter != "R" || cfg.Format != "cargo" || cfg.LinkName != "R" || cfg.LinkKind != "dylib" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.GOOS != runtime.GOOS {
		t.Errorf("GOOS = %q, want %q", cfg.GOOS, runtime.GOOS)
	}
	if want := []string{"build.rs", "wrapper.h"}; !reflect.DeepEqual(cfg.Triggers, want) {
		t.Errorf("Triggers = %q, want %q", cfg.Triggers, want)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", cfg.Timeout)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want none", cfg.File)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yml := "interpreter: /opt/R/bin/R\nformat: pkgconfig\nlink_name: Rlib\ntimeout: 30s\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RPROBE_FORMAT", "cgo")

	fs := newFlags()
	if err := fs.Parse([]string{"--link-name", "Rflag"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.File != DefaultFile {
		t.Errorf("File = %q, want %q", cfg.File, DefaultFile)
	}
	if cfg.Interpreter != "/opt/R/bin/R" {
		t.Errorf("Interpreter = %q, want value from file", cfg.Interpreter)
	}
	if cfg.Format != "cgo" {
		t.Errorf("Format = %q, want env override", cfg.Format)
	}
	if cfg.LinkName != "Rflag" {
		t.Errorf("LinkName = %q, want flag override", cfg.LinkName)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RPROBE_INTERPRETER", "/usr/local/bin/R")

	fs := newFlags()
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interpreter != "/usr/local/bin/R" {
		t.Errorf("Interpreter = %q, flag default must not override env", cfg.Interpreter)
	}
}

func TestLoadTriggersFlag(t *testing.T) {
	chdir(t, t.TempDir())

	fs := newFlags()
	if err := fs.Parse([]string{"--triggers", "gen.go,wrapper.h"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"gen.go", "wrapper.h"}; !reflect.DeepEqual(cfg.Triggers, want) {
		t.Errorf("Triggers = %q, want %q", cfg.Triggers, want)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load("does-not-exist.yaml", nil); err == nil {
		t.Fatal("Load accepted a missing config file")
	}
}

func TestLoadTriggersEnv(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		env  string
		want []string
	}{
		{"a.rs,b.h", []string{"a.rs", "b.h"}},
		{"build.rs", []string{"build.rs"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("RPROBE_TRIGGERS", tt.env)
			cfg, err := Load("", nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(cfg.Triggers) != len(tt.want) || (len(tt.want) > 0 && !reflect.DeepEqual(cfg.Triggers, tt.want)) {
				t.Errorf("Triggers = %q, want %q", cfg.Triggers, tt.want)
			}
		})
	}
}

func TestLoadChildEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RPROBE_CHILD_ENV", "LANG=C,R_PROFILE_USER=")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	env, err := cfg.ChildEnvMap()
	if err != nil {
		t.Fatalf("ChildEnvMap: %v", err)
	}
	want := map[string]string{"LANG": "C", "R_PROFILE_USER": ""}
	if !reflect.DeepEqual(env, want) {
		t.Errorf("ChildEnvMap = %v, want %v", env, want)
	}
}

func TestChildEnvMapInvalid(t *testing.T) {
	for _, kv := range []string{"LANG", "=C"} {
		cfg := &Config{ChildEnv: []string{kv}}
		if _, err := cfg.ChildEnvMap(); err == nil {
			t.Errorf("ChildEnvMap accepted %q", kv)
		}
	}
	if env, err := (&Config{}).ChildEnvMap(); err != nil || env != nil {
		t.Errorf("empty ChildEnvMap = %v, %v; want nil, nil", env, err)
	}
}
