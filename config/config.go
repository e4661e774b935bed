package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

type Config struct {
	Server      ServerConfig      `json:"server" toml:"server"`
	Shardeum    ShardeumConfig    `json:"shardeum" toml:"shardeum"`
	Price       PriceConfig       `json:"price" toml:"price"`
	Leaderboard LeaderboardConfig `json:"leaderboard" toml:"leaderboard"`
	Estimator   EstimatorConfig   `json:"estimator" toml:"estimator"`
	Fallback    FallbackConfig    `json:"fallback" toml:"fallback"`
	Cache       CacheConfig       `json:"cache" toml:"cache"`
	Polling     PollingConfig     `json:"polling" toml:"polling"`
	Redis       RedisConfig       `json:"redis" toml:"redis"`
	MongoDB     MongoDBConfig     `json:"mongodb" toml:"mongodb"`
	Discord     DiscordConfig     `json:"discord" toml:"discord"`
	GeoIP       GeoIPConfig       `json:"geoip" toml:"geoip"`
	Log         LogConfig         `json:"log" toml:"log"`
}

type ServerConfig struct {
	Port           int      `json:"port" toml:"port"`
	Host           string   `json:"host" toml:"host"`
	AllowedOrigins []string `json:"allowed_origins" toml:"allowed_origins"`
}

// ShardeumConfig points at the network JSON-RPC endpoint
type ShardeumConfig struct {
	RPCURL        string  `json:"rpc_url" toml:"rpc_url"`
	Timeout       int     `json:"timeout_seconds" toml:"timeout_seconds"`
	MaxRetries    int     `json:"max_retries" toml:"max_retries"`
	RatePerSecond float64 `json:"rate_per_second" toml:"rate_per_second"`
	NodePageLimit int     `json:"node_page_limit" toml:"node_page_limit"`
}

type PriceConfig struct {
	URL     string `json:"url" toml:"url"`
	CoinID  string `json:"coin_id" toml:"coin_id"`
	Timeout int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

type LeaderboardConfig struct {
	BackendURL  string `json:"backend_url" toml:"backend_url"`
	ExplorerURL string `json:"explorer_url" toml:"explorer_url"`
	Timeout     int    `json:"timeout_seconds" toml:"timeout_seconds"`
}

type EstimatorConfig struct {
	ActivePeriodHours float64 `json:"active_period_hours" toml:"active_period_hours"`
}

// FallbackConfig is used when the network RPC cannot be reached
type FallbackConfig struct {
	Probability float64 `json:"probability" toml:"probability"`
	Reward      float64 `json:"reward" toml:"reward"`
}

type CacheConfig struct {
	PriceTTL     int `json:"price_ttl_seconds" toml:"price_ttl_seconds"`
	NodeTTL      int `json:"node_ttl_seconds" toml:"node_ttl_seconds"`
	ValidatorTTL int `json:"validator_ttl_seconds" toml:"validator_ttl_seconds"`
}

type PollingConfig struct {
	RefreshInterval  int `json:"refresh_interval_seconds" toml:"refresh_interval_seconds"`
	SnapshotInterval int `json:"snapshot_interval_seconds" toml:"snapshot_interval_seconds"`
}

type RedisConfig struct {
	Address  string `json:"address" toml:"address"`
	Password string `json:"password" toml:"password"`
	DB       int    `json:"db" toml:"db"`
	Enabled  bool   `json:"enabled" toml:"enabled"`
	UseTLS   bool   `json:"use_tls" toml:"use_tls"`
}

type MongoDBConfig struct {
	URI           string `json:"uri" toml:"uri"`
	Database      string `json:"database" toml:"database"`
	Enabled       bool   `json:"enabled" toml:"enabled"`
	RetentionDays int    `json:"retention_days" toml:"retention_days"`
}

type DiscordConfig struct {
	Token     string `json:"token" toml:"token"`
	ChannelID string `json:"channel_id" toml:"channel_id"`
}

type GeoIPConfig struct {
	DBPath string `json:"db_path" toml:"db_path"`
}

type LogConfig struct {
	Level    string `json:"level" toml:"level"`
	Encoding string `json:"encoding" toml:"encoding"` // console or json
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Shardeum: ShardeumConfig{
			RPCURL:        "https://api.shardeum.org",
			Timeout:       10,
			MaxRetries:    3,
			RatePerSecond: 5,
			NodePageLimit: 1000,
		},
		Price: PriceConfig{
			URL:     "https://api.coingecko.com/api/v3/simple/price",
			CoinID:  "shardeum",
			Timeout: 10,
		},
		Leaderboard: LeaderboardConfig{
			BackendURL:  "https://leaderboard.shardeum.live",
			ExplorerURL: "https://explorer.shardeum.org/account/",
			Timeout:     10,
		},
		Estimator: EstimatorConfig{
			ActivePeriodHours: 4,
		},
		Fallback: FallbackConfig{
			Probability: 0.55,
			Reward:      40,
		},
		Cache: CacheConfig{
			PriceTTL:     300, // 5 minutes
			NodeTTL:      60,
			ValidatorTTL: 60,
		},
		Polling: PollingConfig{
			RefreshInterval:  60,
			SnapshotInterval: 300,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			Enabled: false,
		},
		MongoDB: MongoDBConfig{
			URI:           "mongodb://localhost:27017",
			Database:      "shmboard",
			Enabled:       false,
			RetentionDays: 90,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load layers defaults, config file, environment and flags, in that order
func Load(args []string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := Default()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}
	if err := loadFile(cfg, configPath); err != nil {
		return nil, err
	}

	loadEnv(cfg)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var serverPort int
	var serverHost, logLevel string

	fs.IntVar(&serverPort, "port", 0, "Server port")
	fs.StringVar(&serverHost, "host", "", "Server host")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if isFlagPassed(fs, "port") {
		cfg.Server.Port = serverPort
	}
	if isFlagPassed(fs, "host") {
		cfg.Server.Host = serverHost
	}
	if isFlagPassed(fs, "log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a JSON or TOML file over cfg. A missing file is not an error.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config file %s: %w", path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func isFlagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			*dst = p
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if p, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = p
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		*dst = val == "true" || val == "1"
	}
}

func loadEnv(cfg *Config) {
	// Server
	envInt("SERVER_PORT", &cfg.Server.Port)
	envString("SERVER_HOST", &cfg.Server.Host)
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Server.AllowedOrigins = parts
	}

	// Shardeum RPC
	envString("SHARDEUM_RPC_URL", &cfg.Shardeum.RPCURL)
	envInt("SHARDEUM_TIMEOUT", &cfg.Shardeum.Timeout)
	envInt("SHARDEUM_MAX_RETRIES", &cfg.Shardeum.MaxRetries)
	envFloat("SHARDEUM_RATE", &cfg.Shardeum.RatePerSecond)

	// Price feed
	envString("PRICE_URL", &cfg.Price.URL)
	envString("PRICE_COIN_ID", &cfg.Price.CoinID)

	// Leaderboard backend
	envString("LEADERBOARD_URL", &cfg.Leaderboard.BackendURL)
	envString("EXPLORER_URL", &cfg.Leaderboard.ExplorerURL)

	// Estimator and fallbacks
	envFloat("ACTIVE_PERIOD_HOURS", &cfg.Estimator.ActivePeriodHours)
	envFloat("FALLBACK_PROBABILITY", &cfg.Fallback.Probability)
	envFloat("FALLBACK_REWARD", &cfg.Fallback.Reward)

	// Cache
	envInt("PRICE_CACHE_TTL", &cfg.Cache.PriceTTL)
	envInt("NODE_CACHE_TTL", &cfg.Cache.NodeTTL)
	envInt("VALIDATOR_CACHE_TTL", &cfg.Cache.ValidatorTTL)

	// Polling
	envInt("REFRESH_INTERVAL", &cfg.Polling.RefreshInterval)
	envInt("SNAPSHOT_INTERVAL", &cfg.Polling.SnapshotInterval)

	// Redis
	envString("REDIS_ADDRESS", &cfg.Redis.Address)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envInt("REDIS_DB", &cfg.Redis.DB)
	envBool("REDIS_ENABLED", &cfg.Redis.Enabled)
	envBool("REDIS_TLS", &cfg.Redis.UseTLS)

	// MongoDB
	envString("MONGODB_URI", &cfg.MongoDB.URI)
	envString("MONGODB_DATABASE", &cfg.MongoDB.Database)
	envBool("MONGODB_ENABLED", &cfg.MongoDB.Enabled)
	envInt("MONGODB_RETENTION_DAYS", &cfg.MongoDB.RetentionDays)

	// Discord
	envString("DISCORD_BOT_TOKEN", &cfg.Discord.Token)
	envString("DISCORD_CHANNEL_ID", &cfg.Discord.ChannelID)

	// GeoIP
	envString("GEOIP_DB_PATH", &cfg.GeoIP.DBPath)

	// Logging
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_ENCODING", &cfg.Log.Encoding)
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Shardeum.RPCURL == "" {
		return fmt.Errorf("shardeum rpc_url is required")
	}
	if c.Fallback.Probability < 0 || c.Fallback.Probability > 1 {
		return fmt.Errorf("fallback probability %v must be within [0,1]", c.Fallback.Probability)
	}
	if c.Fallback.Reward < 0 {
		return fmt.Errorf("fallback reward %v must not be negative", c.Fallback.Reward)
	}
	if c.Estimator.ActivePeriodHours <= 0 || c.Estimator.ActivePeriodHours > 24 {
		return fmt.Errorf("active_period_hours %v must be within (0,24]", c.Estimator.ActivePeriodHours)
	}
	return nil
}

// Helper methods for duration conversion
func (c *Config) ShardeumTimeoutDuration() time.Duration {
	return time.Duration(c.Shardeum.Timeout) * time.Second
}

func (c *Config) PriceTimeoutDuration() time.Duration {
	return time.Duration(c.Price.Timeout) * time.Second
}

func (c *Config) LeaderboardTimeoutDuration() time.Duration {
	return time.Duration(c.Leaderboard.Timeout) * time.Second
}

func (c *Config) PriceTTLDuration() time.Duration {
	return time.Duration(c.Cache.PriceTTL) * time.Second
}

func (c *Config) NodeTTLDuration() time.Duration {
	return time.Duration(c.Cache.NodeTTL) * time.Second
}

func (c *Config) ValidatorTTLDuration() time.Duration {
	return time.Duration(c.Cache.ValidatorTTL) * time.Second
}

func (c *Config) RefreshIntervalDuration() time.Duration {
	return time.Duration(c.Polling.RefreshInterval) * time.Second
}

func (c *Config) SnapshotIntervalDuration() time.Duration {
	return time.Duration(c.Polling.SnapshotInterval) * time.Second
}

func (c *Config) RetentionDuration() time.Duration {
	return time.Duration(c.MongoDB.RetentionDays) * 24 * time.Hour
}
