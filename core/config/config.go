// Package config loads the shared configuration of list-widget bots from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Codec names accepted by list.codec.
const (
	// CodecJSON selects the JSON token codec.
	CodecJSON = "json"
	// CodecCompact selects the pipe-separated token codec.
	CodecCompact = "compact"
)

// TelegramConfig holds bot settings shared by all widget-driven bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	// LongPollTimeoutSeconds defines the long polling timeout; 0 -> default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// ParseMode is applied to outgoing list messages ("", "Markdown",
	// "MarkdownV2", "HTML"). Rendered text is escaped to match.
	ParseMode string `yaml:"parse_mode" envconfig:"TELEGRAM_PARSE_MODE"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	File        string `yaml:"file"`
	// Profile indicates the environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// ListConfig carries widget defaults applied when bots build list widgets.
type ListConfig struct {
	PageSize int    `yaml:"page_size" envconfig:"LIST_PAGE_SIZE"`
	PrevText string `yaml:"prev_text"`
	NextText string `yaml:"next_text"`
	// Codec selects the token codec: "json" (default) or "compact".
	Codec string `yaml:"codec" envconfig:"LIST_CODEC"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
	List     ListConfig     `yaml:"list"`
}

// Load reads cfg from a YAML file, overlays environment variables on top and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := normalizeTelegram(&cfg.Telegram); err != nil {
		return err
	}
	return normalizeList(&cfg.List)
}

func normalizeTelegram(tc *TelegramConfig) error {
	if tc.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if tc.LongPollTimeoutSeconds < 0 {
		return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
	}
	switch mode := strings.TrimSpace(tc.ParseMode); mode {
	case "", "Markdown", "MarkdownV2", "HTML":
		tc.ParseMode = mode
		return nil
	default:
		return fmt.Errorf("invalid telegram.parse_mode %q; allowed: Markdown, MarkdownV2, HTML", tc.ParseMode)
	}
}

func normalizeList(lc *ListConfig) error {
	if lc.PageSize < 0 {
		return fmt.Errorf("list.page_size must be >= 0")
	}
	codec := strings.ToLower(strings.TrimSpace(lc.Codec))
	if codec == "" {
		codec = CodecJSON
	}
	switch codec {
	case CodecJSON, CodecCompact:
		lc.Codec = codec
		return nil
	default:
		return fmt.Errorf("invalid list.codec %q; allowed: json, compact", lc.Codec)
	}
}
