package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultSourceURL = "https://script.google.com/macros/s/AKfycbyvYoKMlljjaxR1fjFwFuZ7Dv9LS6Xva4NOE9dCDJr5_dIaaFyq2DXUsepvDqM2_qD3/exec"
	envPrefix        = "OPR_"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// SourcePage is one sheet of the match source and the phase tag its rows get.
type SourcePage struct {
	Name string `koanf:"name"`
	Tag  string `koanf:"tag"`
}

type Config struct {
	Addr     string `koanf:"addr"`
	Env      string `koanf:"env"`
	LogLevel string `koanf:"log_level"`

	SourceURL     string        `koanf:"source_url"`
	Pages         []SourcePage  `koanf:"pages"`
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	MatchCacheTTL time.Duration `koanf:"match_cache_ttl"`

	// DBPath is the SQLite file holding match snapshots.
	DBPath string `koanf:"db_path"`
	// SnapshotFallback serves the last stored copy of a page when fetching it fails.
	SnapshotFallback bool `koanf:"snapshot_fallback"`
}

func defaultPages() []SourcePage {
	return []SourcePage{
		{Name: "qualificationMatches", Tag: "Qual"},
		{Name: "finals", Tag: "Final"},
	}
}

func defaultConfig() Config {
	dbPath := "./opr.db"
	// Railway volume mount
	if mountPath := os.Getenv("RAILWAY_VOLUME_MOUNT_PATH"); mountPath != "" {
		dbPath = filepath.Join(mountPath, "opr.db")
	}
	return Config{
		Addr:          ":8080",
		Env:           "development",
		LogLevel:      "info",
		SourceURL:     defaultSourceURL,
		FetchTimeout:  15 * time.Second,
		MatchCacheTTL: 10 * time.Minute,
		DBPath:        dbPath,
	}
}

// loadConfig layers defaults, the YAML file named by OPR_CONFIG and OPR_*
// environment variables, in that order. A .env file is read first if present.
func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// OPR_FETCH_TIMEOUT -> fetch_timeout
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := defaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if len(cfg.Pages) == 0 {
		cfg.Pages = defaultPages()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SourceURL == "":
		return fmt.Errorf("%w: source_url must not be empty", ErrInvalidConfig)
	case c.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch_timeout must be positive", ErrInvalidConfig)
	}
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("%w: pages[%d] has no name", ErrInvalidConfig, i)
		}
	}
	return nil
}
