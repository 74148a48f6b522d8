package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, resolved, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for missing file at %s", resolved)
	}
	if cfg.Logging.Format != config.DefaultLogFormat {
		t.Fatalf("expected default log format, got %q", cfg.Logging.Format)
	}
	if cfg.TMDB.BaseURL != config.DefaultTMDBBaseURL {
		t.Fatalf("expected default TMDB base URL, got %q", cfg.TMDB.BaseURL)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
workspace_dir = "` + filepath.Join(dir, "work") + `"
datasets_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[tmdb]
base_url = "https://api.themoviedb.org/3/"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging values, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad log format",
			body: "[logging]\nformat = \"xml\"\n",
			want: "logging.format",
		},
		{
			name: "inverted year window",
			body: "[tmdb]\nstart_year = 2020\nend_year = 2010\n",
			want: "tmdb.start_year",
		},
		{
			name: "zero timeout stays positive via normalize",
			body: "[tmdb]\nrequest_timeout = -0\n",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "-")+".toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected normalization to repair config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestTMDBAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key-value")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "env-key-value" {
		t.Fatalf("expected API key from environment, got %q", cfg.TMDB.APIKey)
	}
}

func TestWorkspaceHelpers(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = "/tmp/marquee-test"

	if got := cfg.DatabasePath(); got != "/tmp/marquee-test/marquee.db" {
		t.Fatalf("unexpected database path %q", got)
	}
	if got := cfg.LockPath(); got != "/tmp/marquee-test/marquee.lock" {
		t.Fatalf("unexpected lock path %q", got)
	}
	if got := cfg.RunsRoot(); got != "/tmp/marquee-test/runs" {
		t.Fatalf("unexpected runs root %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != config.DefaultLogFormat {
		t.Fatalf("sample should carry defaults, got format %q", cfg.Logging.Format)
	}
}
