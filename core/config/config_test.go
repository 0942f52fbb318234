package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: abc\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("expected longpoll default, got %q", cfg.Telegram.RunMode)
	}
	if cfg.Webhook.Path != "/webhook" {
		t.Fatalf("unexpected webhook path %q", cfg.Webhook.Path)
	}
	if cfg.HTTP.Enabled() {
		t.Fatalf("http listener should stay disabled without a port")
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("HTTP_PORT", "9090")
	path := writeConfig(t, "telegram:\n  token: from-file\n  run_mode: polling\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("env should win, got %q", cfg.Telegram.Token)
	}
	if cfg.HTTP.Addr() != "0.0.0.0:9090" {
		t.Fatalf("unexpected addr %q", cfg.HTTP.Addr())
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("polling alias not normalized: %q", cfg.Telegram.RunMode)
	}
}

func TestLoadMissingToken(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "Token") {
		t.Fatalf("expected token validation error, got %v", err)
	}
}

func TestNormalizeWebhook(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "WEBHOOK"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("webhook mode without url must fail")
	}
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Path: "tg"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Webhook.Path != "/tg" || cfg.HTTP.Port != 8080 {
		t.Fatalf("unexpected webhook defaults: path=%q port=%d", cfg.Webhook.Path, cfg.HTTP.Port)
	}
}

func TestNormalizeRejectsUnknownValues(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("unknown run mode must fail")
	}
	cfg = &Config{Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"Callback", "poll"}}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("unknown exclude update must fail")
	}
}
