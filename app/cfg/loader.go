package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address (host:port)"`
	KVPrefix  string `long:"kv-prefix" env:"KV_PREFIX" default:"rssriver" description:"Key prefix to avoid collisions when sharing a Redis instance"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl         string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://river.example.com)"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for feed management endpoints (optional)"`
	SeedFile        string `long:"seed-file" env:"SEED_FILE" description:"YAML file with feeds to import into an empty store"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for river refresh"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"300" description:"River refresh interval in seconds"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-feed fetch timeout in seconds"`
	MaxConsecutive  int    `long:"max-consecutive" env:"MAX_CONSECUTIVE" default:"2" description:"Maximum consecutive river positions a single feed may occupy"`

	// Integrations
	OpenAIAPIKey string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key for article summaries (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"rssriver/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		RedisAddr:       raw.RedisAddr,
		KVPrefix:        raw.KVPrefix,
		Port:            raw.Port,
		BaseUrl:         raw.BaseUrl,
		APIAccessKey:    raw.APIAccessKey,
		SeedFile:        raw.SeedFile,
		WorkerCount:     raw.WorkerCount,
		RefreshInterval: raw.RefreshInterval,
		FetchTimeout:    raw.FetchTimeout,
		MaxConsecutive:  raw.MaxConsecutive,
		OpenAIAPIKey:    raw.OpenAIAPIKey,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
