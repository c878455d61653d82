package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/layout"
	"github.com/matzehuels/untangle/pkg/pipeline"
)

func TestLoadConfig(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "untangle.toml")
		content := `
[layout]
iterations = 150
charge_strength = -80.0

[render]
radius = 4.0

[serve]
addr = ":9000"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig error: %v", err)
		}
		if cfg.Layout.Iterations != 150 {
			t.Errorf("Iterations = %d, want 150", cfg.Layout.Iterations)
		}
		if cfg.Layout.ChargeStrength != -80 {
			t.Errorf("ChargeStrength = %g, want -80", cfg.Layout.ChargeStrength)
		}
		// Unset fields keep their defaults
		if cfg.Layout.Width != layout.DefaultWidth {
			t.Errorf("Width = %g, want default %g", cfg.Layout.Width, layout.DefaultWidth)
		}
		if cfg.Render.Radius != 4 {
			t.Errorf("Radius = %g, want 4", cfg.Render.Radius)
		}
		if cfg.Serve.Addr != ":9000" {
			t.Errorf("Addr = %q, want :9000", cfg.Serve.Addr)
		}
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if err == nil {
			t.Fatal("expected error for missing explicit config")
		}
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
		}
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[layout\niterations ="), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := loadConfig(path)
		if err == nil {
			t.Fatal("expected error for malformed config")
		}
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
		}
	})

	t.Run("no file returns defaults", func(t *testing.T) {
		// Run from an empty directory so ./untangle.toml is absent
		t.Chdir(t.TempDir())

		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig error: %v", err)
		}
		if cfg.Layout != layout.DefaultOptions() {
			t.Errorf("Layout = %+v, want defaults", cfg.Layout)
		}
	})
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{pipeline.FormatReport}},
		{"json", []string{"json"}},
		{"report, json ,svg", []string{"report", "json", "svg"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derives from input", "", "graphs/tangle.json", "graphs/tangle"},
		{"explicit base", "out", "tangle.json", "out"},
		{"strips svg extension", "out.svg", "tangle.json", "out"},
		{"strips json extension", "out.json", "tangle.json", "out"},
		{"keeps unknown extension", "out.bak", "tangle.json", "out.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputBase(tt.output, tt.input); got != tt.want {
				t.Errorf("outputBase(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestMergeLayoutOptions(t *testing.T) {
	fromConfig := layout.DefaultOptions()
	fromConfig.Iterations = 42
	fromConfig.ChargeStrength = -99

	// Flags win over config
	flags := layout.Options{Iterations: 10}
	mergeLayoutOptions(&flags, fromConfig)
	if flags.Iterations != 10 {
		t.Errorf("Iterations = %d, want flag value 10", flags.Iterations)
	}
	if flags.ChargeStrength != -99 {
		t.Errorf("ChargeStrength = %g, want config value -99", flags.ChargeStrength)
	}
	if flags.Width != layout.DefaultWidth {
		t.Errorf("Width = %g, want %g", flags.Width, layout.DefaultWidth)
	}
}
