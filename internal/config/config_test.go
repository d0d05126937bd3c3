package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvTimeout, EnvLogLevel, EnvToken} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Timeout != 10*time.Second || cfg.PollInterval != 15*time.Second {
		t.Fatalf("durations = %v/%v, want 10s/15s", cfg.Timeout, cfg.PollInterval)
	}

	wantLogDir, err := ExpandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.LogPath() != filepath.Join(wantLogDir, "prms.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Fatalf("Level = %v, want info", cfg.Level())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://prms.example.com/api  "
timeout = "3s"
poll_interval = "1m"
log_level = "debug"
log_dir = "  ~/.prms/logs  "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://prms.example.com/api" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Timeout != 3*time.Second || cfg.PollInterval != time.Minute {
		t.Fatalf("durations = %v/%v, want 3s/1m", cfg.Timeout, cfg.PollInterval)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Fatalf("Level = %v, want debug", cfg.Level())
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv(EnvAPIURL, "http://10.0.0.5:8080/api")
	t.Setenv(EnvTimeout, "250ms")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvToken, "abc.def.ghi")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://file/api"`+"\n"+`timeout = "5s"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:8080/api" || cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("cfg = %+v, want env values", cfg)
	}
	if cfg.Level() != zerolog.WarnLevel || cfg.Token != "abc.def.ghi" {
		t.Fatalf("cfg = %+v, want warn level and token", cfg)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]string{
		"parse config":  `api_url = [`,
		"parse timeout": `timeout = "soon"`,
		"log level":     `log_level = "loud"`,
	}
	for want, body := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatalf("Load(%q) returned nil error", body)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Load(%q) error = %q, want it to mention %q", body, err.Error(), want)
		}
	}

	t.Setenv(EnvTimeout, "-1s")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("negative timeout should fail")
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "PRMS_TEST_ENV_FILE_VALUE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s = %q, want from-file", key, got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/prms.log")) {
		t.Fatalf("LogPath = %q, want it to end with /prms.log", got)
	}
}
