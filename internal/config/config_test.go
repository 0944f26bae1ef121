package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/typevault/typevault/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
poll_interval = "5s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "typevault"
user = "typevault"
password = "typevault"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "fonts"
connection_string = "DefaultEndpointsProtocol=http;AccountName=vaultstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/vaultstore;"

[model]
base_url = "http://localhost:11434/v1"

[events]
enabled = false

[api]
base_path = "/api"
max_upload_size = "50MB"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[tunables]
"ai.enabled" = "true"
"ai.visual.model" = "llava:13b"
`

const overlayConfig = `
poll_interval = "30s"

[server]
port = 9090

[database]
host = "prodhost"

[tunables]
"ai.enabled" = "false"
`

// minimalConfig provides the minimum fields required
// for validation to pass (db name, db user, storage connection string).
const minimalConfig = `
[database]
name = "typevault"
user = "typevault"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "fonts" {
		t.Errorf("storage container: got %s, want fonts", cfg.Storage.ContainerName)
	}
	if cfg.Model.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("model base_url: got %s, want http://localhost:11434/v1", cfg.Model.BaseURL)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Tunables["ai.visual.model"] != "llava:13b" {
		t.Errorf("tunable ai.visual.model: got %s, want llava:13b", cfg.Tunables["ai.visual.model"])
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("TYPEVAULT_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.PollInterval != "30s" {
		t.Errorf("poll_interval: got %s, want 30s (from overlay)", cfg.PollInterval)
	}
	if cfg.Tunables["ai.enabled"] != "false" {
		t.Errorf("tunable ai.enabled: got %s, want false (from overlay)", cfg.Tunables["ai.enabled"])
	}
	if cfg.Tunables["ai.visual.model"] != "llava:13b" {
		t.Errorf("tunable ai.visual.model: got %s, want llava:13b (from base)", cfg.Tunables["ai.visual.model"])
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("TYPEVAULT_VERSION", "2.0.0")
	t.Setenv("TYPEVAULT_SERVER_PORT", "3000")
	t.Setenv("TYPEVAULT_MODEL_BASE_URL", "http://models.internal:8000/v1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Model.BaseURL != "http://models.internal:8000/v1" {
		t.Errorf("model base_url: got %s, want http://models.internal:8000/v1", cfg.Model.BaseURL)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("TYPEVAULT_DB_NAME", "testdb")
	t.Setenv("TYPEVAULT_DB_USER", "testuser")
	t.Setenv("TYPEVAULT_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
	if cfg.Storage.ContainerName != "fonts" {
		t.Errorf("storage container default: got %s, want fonts", cfg.Storage.ContainerName)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `poll_interval = [`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadInvalidPollInterval(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", "poll_interval = \"soon\"\n"+minimalConfig)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unparseable poll_interval")
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("TYPEVAULT_ENV", "production")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestDurations(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.ShutdownTimeoutDuration(); got != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", got)
	}
	if got := cfg.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("poll interval: got %v, want 5s", got)
	}
}

func TestPollIntervalDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("poll interval default: got %v, want 5s", got)
	}
}

func TestServerAddr(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", got)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("TYPEVAULT_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("TYPEVAULT_PAGINATION_MAX_PAGE_SIZE", "100")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.API.MaxUploadSizeBytes(); got != 50*1024*1024 {
		t.Errorf("max upload size: got %d, want %d", got, 50*1024*1024)
	}
}

func TestMaxUploadSizeEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("TYPEVAULT_API_MAX_UPLOAD_SIZE", "100MB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.API.MaxUploadSizeBytes(); got != 100*1024*1024 {
		t.Errorf("max upload size: got %d, want %d", got, 100*1024*1024)
	}
}

func TestServerValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig+"\n[server]\nport = 99999\n")
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestEventsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Events.Enabled {
		t.Error("events must default to disabled")
	}
	if cfg.Events.URL == "" {
		t.Error("events url default missing")
	}
	if cfg.Events.SubjectPrefix == "" {
		t.Error("events subject prefix default missing")
	}
}
