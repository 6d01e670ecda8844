package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate runs the test from an empty directory so no stray .env or
// shortener.yaml leaks into the result.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Driver != DriverFile {
		t.Errorf("expected file driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "url_mappings.csv" {
		t.Errorf("expected default path, got %q", cfg.Storage.Path)
	}
	if cfg.Storage.Redis.OperationTimeout != 5*time.Second {
		t.Errorf("expected 5s redis timeout, got %v", cfg.Storage.Redis.OperationTimeout)
	}
	if cfg.Validation.MaxLength != 2048 {
		t.Errorf("expected max length 2048, got %d", cfg.Validation.MaxLength)
	}
	if cfg.Validation.BlockPrivateIPs {
		t.Error("private IPs should be allowed by default")
	}
	if cfg.App.Environment != "development" || cfg.IsProduction() {
		t.Errorf("expected development environment, got %q", cfg.App.Environment)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SHORTENER_STORAGE_DRIVER", "redis")
	t.Setenv("SHORTENER_STORAGE_REDIS_ADDRESS", "cache:6380")
	t.Setenv("SHORTENER_STORAGE_REDIS_OPERATION_TIMEOUT", "2s")
	t.Setenv("SHORTENER_LOG_LEVEL", "debug")
	t.Setenv("SHORTENER_APP_ENVIRONMENT", "production")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Driver != DriverRedis {
		t.Errorf("expected redis from env, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Redis.Address != "cache:6380" {
		t.Errorf("expected env address, got %q", cfg.Storage.Redis.Address)
	}
	if cfg.Storage.Redis.OperationTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Storage.Redis.OperationTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}
	if !cfg.IsProduction() {
		t.Errorf("expected production from env, got %q", cfg.App.Environment)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SHORTENER_STORAGE_PATH=from-dotenv.csv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SHORTENER_STORAGE_PATH") })

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Path != "from-dotenv.csv" {
		t.Errorf("expected path from .env, got %q", cfg.Storage.Path)
	}
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `storage:
  driver: sqlite
  dsn: ./from-file.db
validation:
  blocked_domains:
    - evil.example
  block_private_ips: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dsn", "", "")
	if err := flags.Set("dsn", "./from-flag.db"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("expected sqlite from file, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != "./from-flag.db" {
		t.Errorf("flag should override file, got %q", cfg.Storage.DSN)
	}
	if len(cfg.Validation.BlockedDomains) != 1 || cfg.Validation.BlockedDomains[0] != "evil.example" {
		t.Errorf("unexpected blocked domains %v", cfg.Validation.BlockedDomains)
	}
	if !cfg.Validation.BlockPrivateIPs {
		t.Error("expected private IP blocking from file")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml"), nil); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_SQLiteDefaultDSN(t *testing.T) {
	isolate(t)
	t.Setenv("SHORTENER_STORAGE_DRIVER", "sqlite")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.DSN != "./urls.db" {
		t.Errorf("expected fallback dsn, got %q", cfg.Storage.DSN)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:        AppConfig{Environment: "testing"},
			Storage:    StorageConfig{Driver: DriverFile, Path: "m.csv"},
			Validation: ValidationConfig{MaxLength: 2048},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "invalid storage driver"},
		{"empty path", func(c *Config) { c.Storage.Path = "" }, "storage path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage dsn"},
		{"redis without address", func(c *Config) { c.Storage.Driver = DriverRedis }, "redis address"},
		{"bad environment", func(c *Config) { c.App.Environment = "staging" }, "invalid environment"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"zero max length", func(c *Config) { c.Validation.MaxLength = 0 }, "max url length"},
		{"max length over line limit", func(c *Config) { c.Validation.MaxLength = MaxURLLength + 1 }, "max url length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			c.Log.Level = "info"
			c.Log.Format = "text"
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
