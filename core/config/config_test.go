package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram:   TelegramConfig{Token: "123:abc"},
		Moderation: ModerationConfig{ModeratorID: 99},
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRequiresModerator(t *testing.T) {
	cfg := validConfig()
	cfg.Moderation.ModeratorID = 0
	err := Normalize(cfg)
	if err == nil {
		t.Fatal("expected error for missing moderator id")
	}
	if !strings.Contains(err.Error(), "moderator_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for incomplete webhook config")
	}

	cfg.Webhook = WebhookConfig{URL: "https://example.com/hook", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Enabled = true
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error when database enabled without host")
	}

	cfg.Database.Host = "localhost"
	cfg.Database.Name = "verifybot"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Database.MaxConnections != 4 {
		t.Fatalf("max_connections = %d, expected default 4", cfg.Database.MaxConnections)
	}
}
