package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultTeams are the team path codes used in game-log URLs.
var DefaultTeams = []string{
	"sea", "buf", "rav", "min", "cin", "pit", "phi", "oti",
	"nyj", "atl", "crd", "htx", "mia", "car", "sfo", "den",
	"det", "gnb", "chi", "cle", "jax", "kan", "rai", "nor",
	"ram", "was", "nwe", "tam", "dal", "clt", "nyg", "sdg",
}

// Config stores all configuration for the application.
type Config struct {
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr               string `mapstructure:"REDIS_ADDR"`
	RedisPassword           string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                 int    `mapstructure:"REDIS_DB"`
	LinkCacheTTLHours       int    `mapstructure:"LINK_CACHE_TTL_HOURS"`
	ResponseCacheTTLSeconds int    `mapstructure:"RESPONSE_CACHE_TTL_SECONDS"`

	BaseURL     string   `mapstructure:"BASE_URL"`
	SeasonStart int      `mapstructure:"SEASON_START"`
	SeasonEnd   int      `mapstructure:"SEASON_END"`
	Teams       []string `mapstructure:"TEAMS"`
	ScoresDir   string   `mapstructure:"SCORES_DIR"`
	GamesCSV    string   `mapstructure:"GAMES_CSV"`

	FetchMode              string   `mapstructure:"FETCH_MODE"`
	FetchRetries           int      `mapstructure:"FETCH_RETRIES"`
	FetchBackoffSeconds    int      `mapstructure:"FETCH_BACKOFF_SECONDS"`
	PageLoadTimeoutSeconds int      `mapstructure:"PAGE_LOAD_TIMEOUT_SECONDS"`
	UserAgents             []string `mapstructure:"USER_AGENTS"`
	Proxies                []string `mapstructure:"PROXIES"`

	ExtractStrict bool `mapstructure:"EXTRACT_STRICT"`

	SearchIterations   int     `mapstructure:"SEARCH_ITERATIONS"`
	CVFolds            int     `mapstructure:"CV_FOLDS"`
	RandomSeed         uint64  `mapstructure:"RANDOM_SEED"`
	TestFraction       float64 `mapstructure:"TEST_FRACTION"`
	SearchWorkers      int     `mapstructure:"SEARCH_WORKERS"`
	PredictionsReplace bool    `mapstructure:"PREDICTIONS_REPLACE"`

	ServerPort  string   `mapstructure:"SERVER_PORT"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "LOG_LEVEL",
	"database-url": "DATABASE_URL",
	"season-start": "SEASON_START",
	"season-end":   "SEASON_END",
	"scores-dir":   "SCORES_DIR",
	"games-csv":    "GAMES_CSV",
	"fetch-mode":   "FETCH_MODE",
	"port":         "SERVER_PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_URL", "postgres://postgres@localhost:5432/playerpredictions?sslmode=disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LINK_CACHE_TTL_HOURS", 24*7)
	v.SetDefault("RESPONSE_CACHE_TTL_SECONDS", 60)
	v.SetDefault("BASE_URL", "https://www.pro-football-reference.com")
	v.SetDefault("SEASON_START", 2020)
	v.SetDefault("SEASON_END", 2023)
	v.SetDefault("TEAMS", DefaultTeams)
	v.SetDefault("SCORES_DIR", "data/scores")
	v.SetDefault("GAMES_CSV", "nfl_games.csv")
	v.SetDefault("FETCH_MODE", "browser")
	v.SetDefault("FETCH_RETRIES", 3)
	v.SetDefault("FETCH_BACKOFF_SECONDS", 5)
	v.SetDefault("PAGE_LOAD_TIMEOUT_SECONDS", 30)
	v.SetDefault("USER_AGENTS", []string{})
	v.SetDefault("PROXIES", []string{})
	v.SetDefault("EXTRACT_STRICT", false)
	v.SetDefault("SEARCH_ITERATIONS", 20)
	v.SetDefault("CV_FOLDS", 3)
	v.SetDefault("RANDOM_SEED", 42)
	v.SetDefault("TEST_FRACTION", 0.2)
	v.SetDefault("SEARCH_WORKERS", 0)
	v.SetDefault("PREDICTIONS_REPLACE", false)
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("CORS_ORIGINS", []string{"*"})
}

// Load reads configuration from an optional .env file, the environment and,
// when flags is non-nil, any command-line flags that were set explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; production runs use the environment only.
	_ = v.ReadInConfig()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Teams = cleanList(cfg.Teams)
	cfg.UserAgents = cleanList(cfg.UserAgents)
	cfg.Proxies = cleanList(cfg.Proxies)
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.SeasonEnd < c.SeasonStart:
		return fmt.Errorf("SEASON_END (%d) is before SEASON_START (%d)", c.SeasonEnd, c.SeasonStart)
	case len(c.Teams) == 0:
		return fmt.Errorf("TEAMS must not be empty")
	case c.FetchRetries < 1:
		return fmt.Errorf("FETCH_RETRIES must be at least 1")
	case c.FetchMode != "browser" && c.FetchMode != "http":
		return fmt.Errorf("FETCH_MODE must be browser or http, got %q", c.FetchMode)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return fmt.Errorf("TEST_FRACTION must be in (0,1), got %v", c.TestFraction)
	case c.SearchIterations < 1:
		return fmt.Errorf("SEARCH_ITERATIONS must be at least 1")
	case c.CVFolds < 2:
		return fmt.Errorf("CV_FOLDS must be at least 2")
	}
	return nil
}

// Seasons returns every season in the configured inclusive range.
func (c *Config) Seasons() []int {
	seasons := make([]int, 0, c.SeasonEnd-c.SeasonStart+1)
	for s := c.SeasonStart; s <= c.SeasonEnd; s++ {
		seasons = append(seasons, s)
	}
	return seasons
}

func (c *Config) FetchBackoff() time.Duration {
	return time.Duration(c.FetchBackoffSeconds) * time.Second
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) LinkCacheTTL() time.Duration {
	return time.Duration(c.LinkCacheTTLHours) * time.Hour
}

func (c *Config) ResponseCacheTTL() time.Duration {
	return time.Duration(c.ResponseCacheTTLSeconds) * time.Second
}

// cleanList trims entries and drops empty ones. Comma separated values that
// reach us as a single element are split as well.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
