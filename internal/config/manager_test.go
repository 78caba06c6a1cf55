package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
telegram:
  token: "123:abc"
catalog:
  path: ./catalog.json
`

func TestParseYAMLWithDefaults(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", minimalYAML))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Catalog.Path != "./catalog.json" {
		t.Fatalf("parsed: %+v", cfg)
	}
	if cfg.Wird.DeliverAt != DefaultDeliverAt {
		t.Fatalf("deliver_at = %q, want default %q", cfg.Wird.DeliverAt, DefaultDeliverAt)
	}
	if cfg.Wird.Timezone != DefaultTimezone {
		t.Fatalf("timezone = %q, want default %q", cfg.Wird.Timezone, DefaultTimezone)
	}
	if cfg.Wird.StorePath != DefaultStorePath {
		t.Fatalf("store_path = %q, want default %q", cfg.Wird.StorePath, DefaultStorePath)
	}
	if cfg.Storage != nil {
		t.Fatalf("storage must stay nil when absent, got %+v", cfg.Storage)
	}
}

func TestParseFullYAML(t *testing.T) {
	full := `
telegram:
  token: "123:abc"
  group_log: "-100200300"
  poll_timeout: 15s
logging:
  level: debug
  console: true
  file:
    enabled: true
    path: ./bot.log
  telegram:
    enabled: true
    min_level: warn
    rate_per_sec: 1
catalog:
  path: ./catalog.json
wird:
  store_path: ./state/wird.json
  deliver_at: "06:30"
  timezone: Asia/Riyadh
storage:
  driver: file
  path: ./journal
`
	m := NewManager(writeConfig(t, "config.yaml", full))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.GroupLog != "-100200300" || cfg.Telegram.PollTimeout != "15s" {
		t.Fatalf("telegram: %+v", cfg.Telegram)
	}
	if !cfg.Logging.Telegram.Enabled || cfg.Logging.Telegram.MinLevel != "warn" {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Wird.DeliverAt != "06:30" || cfg.Wird.Timezone != "Asia/Riyadh" {
		t.Fatalf("wird: %+v", cfg.Wird)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", minimalYAML+"\nwebhooks: true\n"))
	if _, err := m.Parse(); err == nil {
		t.Fatal("unknown top-level field must be rejected")
	}
}

func TestParseRequiresTokenAndCatalog(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", "catalog:\n  path: ./c.json\n"))
	if _, err := m.Parse(); err == nil || !strings.Contains(err.Error(), "telegram.token") {
		t.Fatalf("missing token err = %v", err)
	}
	m = NewManager(writeConfig(t, "config.yaml", "telegram:\n  token: t\n"))
	if _, err := m.Parse(); err == nil || !strings.Contains(err.Error(), "catalog.path") {
		t.Fatalf("missing catalog err = %v", err)
	}
}

func TestParseJSONConfig(t *testing.T) {
	m := NewManager(writeConfig(t, "config.json",
		`{"telegram": {"token": "t"}, "catalog": {"path": "./c.json"}}`))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}
	if cfg.Telegram.Token != "t" {
		t.Fatalf("parsed: %+v", cfg)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	m := NewManager(writeConfig(t, "config.json",
		`{"telegram": {"token": "t"}, "catalog": {"path": "./c.json"}} {"extra": 1}`))
	if _, err := m.Parse(); err == nil {
		t.Fatal("trailing JSON document must be rejected")
	}
}

func TestLoadCommitsAndGetReturnsSame(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", minimalYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get must return the committed config")
	}
}

func TestSubscribePublish(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", minimalYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	m.publish(cfg)
	select {
	case got := <-ch:
		if got != cfg {
			t.Fatal("subscriber got a different config")
		}
	default:
		t.Fatal("publish did not reach subscriber")
	}
}
