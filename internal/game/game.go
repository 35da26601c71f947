package game

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version of the game.
// Bumping this number will eventually make clients reload the WASM.
//
// If you set this to an empty string, a random version number will be
// used, and force the reload of the WASM on every restart (the reload
// still only happens after the first page is loaded, so there is a delay).
// This is useful during development.
var Version = "v0.1.0"

// Config holds the tunables of a game session. It is read-only once a
// session has been created with it.
type Config struct {
	DefaultTableauSize int // Number of cards offered by the search form
	MinCards           int
	MaxCards           int
	CardsStep          int

	MinLoadWait   time.Duration // Floor before the overlay closes once all GIFs loaded
	MaxLoadWait   time.Duration // Start playing regardless of missing GIFs after this
	LongWait      time.Duration // Show the "taking a while" notice after this
	RevealDelay   time.Duration // Overlay close animation before Playing
	MismatchDelay time.Duration // How long a mismatched pair stays face up

	ConfettiDuration time.Duration
	ConfettiAmount   int
	AlertDuration    time.Duration // Owned by the alert collaborator (frontend)

	SubtitleDelay  time.Duration // Intro: subtitle shows after this
	ClickHereDelay time.Duration // Intro: "click here" hint shows after this
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		DefaultTableauSize: 20,
		MinCards:           2,
		MaxCards:           100,
		CardsStep:          2,
		MinLoadWait:        500 * time.Millisecond,
		MaxLoadWait:        10 * time.Second,
		LongWait:           5 * time.Second,
		RevealDelay:        500 * time.Millisecond,
		MismatchDelay:      time.Second,
		ConfettiDuration:   5 * time.Second,
		ConfettiAmount:     200,
		AlertDuration:      5 * time.Second,
		SubtitleDelay:      750 * time.Millisecond,
		ClickHereDelay:     2 * time.Second,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.MinCards < 2 || c.MinCards%2 != 0 {
		return fmt.Errorf("min cards must be even and >= 2, got %d", c.MinCards)
	}
	if c.MaxCards < c.MinCards {
		return fmt.Errorf("max cards (%d) lower than min cards (%d)", c.MaxCards, c.MinCards)
	}
	if c.CardsStep < 2 || c.CardsStep%2 != 0 {
		return fmt.Errorf("cards step must be even and >= 2, got %d", c.CardsStep)
	}
	if err := c.ValidateTableauSize(c.DefaultTableauSize); err != nil {
		return fmt.Errorf("default tableau size: %w", err)
	}
	if c.MaxLoadWait <= 0 {
		return fmt.Errorf("max load wait must be positive, got %s", c.MaxLoadWait)
	}
	if c.LongWait <= 0 || c.LongWait > c.MaxLoadWait {
		return fmt.Errorf("long wait must be in (0, %s], got %s", c.MaxLoadWait, c.LongWait)
	}
	if c.MinLoadWait < 0 || c.MinLoadWait > c.MaxLoadWait {
		return fmt.Errorf("min load wait must be in [0, %s], got %s", c.MaxLoadWait, c.MinLoadWait)
	}
	for name, d := range map[string]time.Duration{
		"reveal delay":      c.RevealDelay,
		"mismatch delay":    c.MismatchDelay,
		"confetti duration": c.ConfettiDuration,
		"alert duration":    c.AlertDuration,
		"subtitle delay":    c.SubtitleDelay,
		"click here delay":  c.ClickHereDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}

// ValidateTableauSize returns an error wrapping ErrInvalidTableauSize if n can't
// be used as a number of cards.
func (c Config) ValidateTableauSize(n int) error {
	if n < c.MinCards || n > c.MaxCards || n%2 != 0 {
		return fmt.Errorf("%w: %d (must be even, within [%d, %d])", ErrInvalidTableauSize, n, c.MinCards, c.MaxCards)
	}
	return nil
}

// ClampTableauSize forces n into the configured bounds and rounds it down to an even value.
func (c Config) ClampTableauSize(n int) int {
	n = max(c.MinCards, min(n, c.MaxCards))
	return n - n%2
}

// ClientConfig is the part of Config the browser uses: search form bounds,
// alert and confetti settings. Durations are in milliseconds.
type ClientConfig struct {
	DefaultTableauSize int   `json:"default_tableau_size"`
	MinCards           int   `json:"min_cards"`
	MaxCards           int   `json:"max_cards"`
	CardsStep          int   `json:"cards_step"`
	ConfettiAmount     int   `json:"confetti_amount"`
	ConfettiDurationMs int64 `json:"confetti_duration_ms"`
	AlertDurationMs    int64 `json:"alert_duration_ms"`
}

// Client extracts the settings sent to the browser.
func (c Config) Client() ClientConfig {
	return ClientConfig{
		DefaultTableauSize: c.DefaultTableauSize,
		MinCards:           c.MinCards,
		MaxCards:           c.MaxCards,
		CardsStep:          c.CardsStep,
		ConfettiAmount:     c.ConfettiAmount,
		ConfettiDurationMs: c.ConfettiDuration.Milliseconds(),
		AlertDurationMs:    c.AlertDuration.Milliseconds(),
	}
}

// Apply returns c with the client settings of cc.
func (c Config) Apply(cc ClientConfig) Config {
	c.DefaultTableauSize = cc.DefaultTableauSize
	c.MinCards = cc.MinCards
	c.MaxCards = cc.MaxCards
	c.CardsStep = cc.CardsStep
	c.ConfettiAmount = cc.ConfettiAmount
	c.ConfettiDuration = time.Duration(cc.ConfettiDurationMs) * time.Millisecond
	c.AlertDuration = time.Duration(cc.AlertDurationMs) * time.Millisecond
	return c
}

// fileConfig is the on-disk layout of the configuration: durations are
// stored in milliseconds. Zero values keep the defaults.
type fileConfig struct {
	DefaultTableauSize int `json:"default_tableau_size"`
	MinCards           int `json:"min_cards"`
	MaxCards           int `json:"max_cards"`
	CardsStep          int `json:"cards_step"`
	MinLoadWaitMs      int `json:"min_load_wait_ms"`
	MaxLoadWaitMs      int `json:"max_load_wait_ms"`
	LongWaitMs         int `json:"long_wait_ms"`
	RevealDelayMs      int `json:"reveal_delay_ms"`
	MismatchDelayMs    int `json:"mismatch_delay_ms"`
	ConfettiDurationMs int `json:"confetti_duration_ms"`
	ConfettiAmount     int `json:"confetti_amount"`
	AlertDurationMs    int `json:"alert_duration_ms"`
	SubtitleDelayMs    int `json:"subtitle_delay_ms"`
	ClickHereDelayMs   int `json:"click_here_delay_ms"`
}

// LoadConfig reads a JSON configuration file and overlays it on DefaultConfig.
//
// If max_load_wait_ms is given without long_wait_ms, the long wait notice is
// set to half of the maximum wait.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read game config: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal game config: %w", err)
	}

	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setMs := func(dst *time.Duration, ms int) {
		if ms != 0 {
			*dst = time.Duration(ms) * time.Millisecond
		}
	}
	setInt(&cfg.DefaultTableauSize, fc.DefaultTableauSize)
	setInt(&cfg.MinCards, fc.MinCards)
	setInt(&cfg.MaxCards, fc.MaxCards)
	setInt(&cfg.CardsStep, fc.CardsStep)
	setInt(&cfg.ConfettiAmount, fc.ConfettiAmount)
	setMs(&cfg.MinLoadWait, fc.MinLoadWaitMs)
	setMs(&cfg.MaxLoadWait, fc.MaxLoadWaitMs)
	setMs(&cfg.RevealDelay, fc.RevealDelayMs)
	setMs(&cfg.MismatchDelay, fc.MismatchDelayMs)
	setMs(&cfg.ConfettiDuration, fc.ConfettiDurationMs)
	setMs(&cfg.AlertDuration, fc.AlertDurationMs)
	setMs(&cfg.SubtitleDelay, fc.SubtitleDelayMs)
	setMs(&cfg.ClickHereDelay, fc.ClickHereDelayMs)
	if fc.LongWaitMs != 0 {
		setMs(&cfg.LongWait, fc.LongWaitMs)
	} else if fc.MaxLoadWaitMs != 0 {
		cfg.LongWait = cfg.MaxLoadWait / 2
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid game config %q: %w", path, err)
	}
	return cfg, nil
}
