package config

import "testing"

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.List.Codec != CodecJSON {
		t.Fatalf("expected default codec %q, got %q", CodecJSON, cfg.List.Codec)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Telegram.LongPollTimeoutSeconds = -1 },
		func(c *Config) { c.Telegram.ParseMode = "markdownish" },
		func(c *Config) { c.List.PageSize = -5 },
		func(c *Config) { c.List.Codec = "xml" },
	}
	for i, mutate := range cases {
		cfg := validConfig()
		mutate(cfg)
		if err := Normalize(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestNormalizeCodecAliases(t *testing.T) {
	cfg := validConfig()
	cfg.List.Codec = " Compact "
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.List.Codec != CodecCompact {
		t.Fatalf("expected %q, got %q", CodecCompact, cfg.List.Codec)
	}
}
