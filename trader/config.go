package trader

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	DB       DBConfig       `toml:"db"`
	Web      WebConfig      `toml:"web"`
	Realtime RealtimeConfig `toml:"realtime"`
	Auth     AuthConfig     `toml:"auth"`
	Market   MarketConfig   `toml:"market"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RealtimeConfig configures the websocket listener. With Disabled set
// the server runs headless and realtime events go to the log instead.
type RealtimeConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Disabled bool   `toml:"disabled"`
}

// AuthConfig maps API tokens to user ids. Session issuance lives in an
// external auth service; this server only verifies the tokens it is
// handed.
type AuthConfig struct {
	Tokens map[string]int64 `toml:"tokens"`
}

type MarketConfig struct {
	UpdateInterval time.Duration `toml:"update_interval"`
}

func (c *Config) applyDefaults() {
	if c.Web.Port == 0 {
		c.Web.Port = 8090
	}
	if c.Realtime.Port == 0 {
		c.Realtime.Port = 8091
	}
	if c.DB.PoolSize == 0 {
		c.DB.PoolSize = 10
	}
	if c.Market.UpdateInterval == 0 {
		c.Market.UpdateInterval = 10 * time.Minute
	}
}
