package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kdougan/js-notebook/internal/config"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{arg: "0", want: 0},
		{arg: "12", want: 12},
		{arg: "-1", wantErr: true},
		{arg: "first", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseIndex(tt.arg, "block")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIndex(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseIndex(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestReadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block.js")
	if err := os.WriteFile(path, []byte("let x = 5;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		source  string
		file    string
		stdin   string
		want    string
		wantErr string
	}{
		{name: "source flag", source: "let a = 1;", want: "let a = 1;"},
		{name: "file", file: path, want: "let x = 5;\n"},
		{name: "stdin", file: "-", stdin: "let s = 2;", want: "let s = 2;"},
		{name: "neither", want: ""},
		{name: "both", source: "a", file: path, wantErr: "either --source or --file"},
		{name: "missing file", file: filepath.Join(t.TempDir(), "absent.js"), wantErr: "failed to read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readContent(tt.source, tt.file, strings.NewReader(tt.stdin))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

// executeForConfig runs a throwaway command tree and returns the config the leaf saw.
func executeForConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var got *config.Config
	root := &cobra.Command{Use: "jsnb", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			got = cfg
			return err
		},
	})
	root.SetArgs(append([]string{"probe"}, args...))
	err := root.Execute()
	return got, err
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "db_path: /from/file.db\nlog:\n  level: info\n  format: text\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("file values", func(t *testing.T) {
		cfg, err := executeForConfig(t, "--config", path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DBPath != "/from/file.db" || cfg.Log.Level != "info" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		cfg, err := executeForConfig(t, "--config", path, "--db", "/from/flag.db", "--log-level", "debug", "--log-format", "json")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DBPath != "/from/flag.db" || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("flags not applied: %+v", cfg)
		}
	})

	t.Run("invalid flag value", func(t *testing.T) {
		_, err := executeForConfig(t, "--config", path, "--log-format", "xml")
		if err == nil || !strings.Contains(err.Error(), "unknown log format") {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestLoadConfig_EnvironmentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("evaluator:\n  latency: 300ms\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvConfigPath, path)

	cfg, err := executeForConfig(t)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Evaluator.Latency.String() != "300ms" {
		t.Errorf("Latency = %s, want 300ms", cfg.Evaluator.Latency)
	}
}

func TestCommandTree(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		subs []string
	}{
		{cmd: SheetCmd(), subs: []string{"list", "add", "rm", "select", "rename"}},
		{cmd: BlockCmd(), subs: []string{"add", "edit", "rm"}},
		{cmd: ConfigCmd(), subs: []string{"init", "show"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			registered := map[string]bool{}
			for _, sub := range tt.cmd.Commands() {
				registered[sub.Name()] = true
				if sub.Short == "" {
					t.Errorf("%s %s should have a Short description", tt.cmd.Name(), sub.Name())
				}
			}
			for _, name := range tt.subs {
				if !registered[name] {
					t.Errorf("%s subcommand %q not registered", tt.cmd.Name(), name)
				}
			}
		})
	}

	run := RunCmd()
	for _, flag := range []string{"sheet", "from", "force", "all", "watch"} {
		if run.Flags().Lookup(flag) == nil {
			t.Errorf("run should define --%s", flag)
		}
	}
	if ServeCmd().Flags().Lookup("addr").DefValue != DefaultServeAddr {
		t.Error("serve --addr should default to DefaultServeAddr")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsnb", "config.yaml")

	root := &cobra.Command{Use: "jsnb", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(ConfigCmd())

	var out strings.Builder
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init", "--config", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Wrote default config") {
		t.Errorf("unexpected output: %s", out.String())
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Evaluator.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Evaluator.Timeout, config.DefaultTimeout)
	}

	root.SetArgs([]string{"config", "init", "--config", path})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected refusal to overwrite, got %v", err)
	}
}
