package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/egg/cli/cmd"
	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/pkg"
)

func TestRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	prog := filepath.Join(home, "prog.egg")
	if err := os.WriteFile(prog, []byte("do(print(\"hi\"), *(6, 7))"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{"default_command", []string{"-e", "+(1, 2)"}, "3\n", nil},
		{"file_argument", []string{prog}, "hi\n42\n", nil},
		{"explicit_run", []string{"run", "--no-print", prog}, "42\n", nil},
		{"parse_egg", []string{"parse", "egg", "-e", "f( x )"}, "f(x)\n", nil},
		{"max_depth", []string{"--max-depth=2", "-e", "+(1, +(2, +(3, 4)))"}, "", lang.ErrDepth},
		{"program_failure", []string{"-e", "x"}, "", cmd.ErrProgram},
		{"no_source", []string{"run"}, "", pkg.ErrNoSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer

			ctx := cmd.WithStdio(t.Context(), cmd.Stdio{
				In:  strings.NewReader(""),
				Out: &out,
				Err: &errOut,
			})

			err := Run(ctx, func(code int) { t.Fatalf("exit(%d): %s", code, errOut.String()) }, tt.args...)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run(%q) error = %v, want %v", tt.args, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run(%q): %v", tt.args, err)
			}

			if out.String() != tt.want {
				t.Errorf("Run(%q) stdout = %q, want %q", tt.args, out.String(), tt.want)
			}
		})
	}

	t.Run("init_then_config", func(t *testing.T) {
		var out bytes.Buffer

		ctx := cmd.WithStdio(t.Context(), cmd.Stdio{Out: &out, Err: &out})

		if err := Run(ctx, func(int) {}, "--max-depth=3", "init"); err != nil {
			t.Fatalf("init: %v", err)
		}

		data, err := os.ReadFile(configPath(configFile))
		if err != nil {
			t.Fatalf("config file: %v", err)
		}

		if !strings.Contains(string(data), "max-depth: 3") {
			t.Errorf("config file %q lacks max-depth", data)
		}

		// The configured depth now applies without the flag.
		err = Run(ctx, func(int) {}, "-e", "+(1, +(2, +(3, +(4, 5))))")
		if !errors.Is(err, lang.ErrDepth) {
			t.Errorf("configured depth error = %v, want ErrDepth", err)
		}
	})
}
