package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestValidateTableauSize(t *testing.T) {
	cfg := DefaultConfig()
	for _, n := range []int{2, 4, 20, 100} {
		if err := cfg.ValidateTableauSize(n); err != nil {
			t.Errorf("Size %d should be valid: %v", n, err)
		}
	}
	for _, n := range []int{0, 1, 3, 101, 102, -2} {
		if err := cfg.ValidateTableauSize(n); !errors.Is(err, ErrInvalidTableauSize) {
			t.Errorf("Size %d: expected ErrInvalidTableauSize, got %v", n, err)
		}
	}
}

func TestClampTableauSize(t *testing.T) {
	cfg := DefaultConfig()
	tests := map[int]int{-5: 2, 0: 2, 3: 2, 7: 6, 20: 20, 101: 100, 1000: 100}
	for in, want := range tests {
		if got := cfg.ClampTableauSize(in); got != want {
			t.Errorf("ClampTableauSize(%d) = %d, expected %d", in, got, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	content := `{"default_tableau_size": 12, "max_load_wait_ms": 4000, "mismatch_delay_ms": 250}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultTableauSize != 12 {
		t.Errorf("DefaultTableauSize = %d, expected 12", cfg.DefaultTableauSize)
	}
	if cfg.MaxLoadWait != 4*time.Second || cfg.LongWait != 2*time.Second {
		t.Errorf("MaxLoadWait=%s LongWait=%s, expected 4s and 2s", cfg.MaxLoadWait, cfg.LongWait)
	}
	if cfg.MismatchDelay != 250*time.Millisecond {
		t.Errorf("MismatchDelay = %s, expected 250ms", cfg.MismatchDelay)
	}
	if cfg.ConfettiDuration != DefaultConfig().ConfettiDuration {
		t.Errorf("ConfettiDuration should keep its default, got %s", cfg.ConfettiDuration)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Expected error for missing file")
	}
	path := filepath.Join(dir, "odd.json")
	if err := os.WriteFile(path, []byte(`{"default_tableau_size": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidTableauSize) {
		t.Errorf("Expected ErrInvalidTableauSize for odd default size, got %v", err)
	}
}

func TestValidateLoadWaits(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"MinAboveMax", func(c *Config) { c.MinLoadWait = c.MaxLoadWait + time.Millisecond }},
		{"NegativeMin", func(c *Config) { c.MinLoadWait = -time.Second }},
		{"LongWaitAboveMax", func(c *Config) { c.LongWait = c.MaxLoadWait + time.Second }},
		{"NegativeMismatch", func(c *Config) { c.MismatchDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected an error for %+v", cfg)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.MinLoadWait = cfg.MaxLoadWait
	if err := cfg.Validate(); err != nil {
		t.Errorf("Min load wait equal to max should be valid: %v", err)
	}
}

func TestLoadConfigIntroDelays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	content := `{"subtitle_delay_ms": 300, "click_here_delay_ms": 1200, "min_load_wait_ms": 20000}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected an error for a min load wait above the max load wait")
	}

	content = `{"subtitle_delay_ms": 300, "click_here_delay_ms": 1200}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SubtitleDelay != 300*time.Millisecond || cfg.ClickHereDelay != 1200*time.Millisecond {
		t.Errorf("SubtitleDelay=%s ClickHereDelay=%s, expected 300ms and 1.2s", cfg.SubtitleDelay, cfg.ClickHereDelay)
	}
}

func TestClientConfig(t *testing.T) {
	server := DefaultConfig()
	server.MaxCards = 50
	server.AlertDuration = 2 * time.Second
	server.ConfettiAmount = 80

	msg, err := NewWsMessage(MsgTypeConfig, ConfigMessage{Config: server.Client()})
	if err != nil {
		t.Fatalf("NewWsMessage failed: %v", err)
	}
	p, err := msg.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	client := DefaultConfig().Apply(p.(*ConfigMessage).Config)
	if client.MaxCards != 50 || client.AlertDuration != 2*time.Second || client.ConfettiAmount != 80 {
		t.Errorf("Client config not applied: %+v", client)
	}
	if err := client.ValidateTableauSize(80); !errors.Is(err, ErrInvalidTableauSize) {
		t.Errorf("Client should reject sizes above the server maximum, got %v", err)
	}
	if got := client.ClampTableauSize(80); got != 50 {
		t.Errorf("ClampTableauSize(80) = %d, expected 50", got)
	}
}
