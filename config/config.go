package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Event backends
const (
	EventBackendLocal    = "local"
	EventBackendRedis    = "redis"
	EventBackendRocketMQ = "rocketmq"
)

// Database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config 服务配置
type Config struct {
	Environment string `yaml:"environment"`
	ServerPort  string `yaml:"server_port"`

	DBDriver   string `yaml:"db_driver"`
	DBPath     string `yaml:"db_path"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	EventBackend       string `yaml:"event_backend"`
	RocketMQNameServer string `yaml:"rocketmq_namesrv_addr"`
	RocketMQTopic      string `yaml:"rocketmq_topic"`

	RateLimitEnabled bool    `yaml:"enable_rate_limit"`
	RateLimit        float64 `yaml:"rate_limit"`
	RateBurst        int     `yaml:"rate_burst"`

	IndexLimit     int  `yaml:"index_limit"`
	SeedSampleData bool `yaml:"seed_sample_data"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Environment:        "development",
		ServerPort:         "8090",
		DBDriver:           DriverSQLite,
		DBPath:             "polls.db",
		DBUser:             "pollsuser",
		DBPassword:         "pollspassword",
		DBHost:             "mysql",
		DBPort:             "3306",
		DBName:             "pollsdb",
		EventBackend:       EventBackendLocal,
		RocketMQNameServer: "localhost:9876",
		RocketMQTopic:      "poll_votes",
		RateLimit:          10,
		RateBurst:          20,
		IndexLimit:         5,
		SeedSampleData:     true,
	}
}

// Load builds the configuration. Later sources win:
// defaults, the YAML file named by CONFIG_FILE, .env, then the process environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	// .env is optional; values already in the environment are not overridden
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.EventBackend, "EVENT_BACKEND")
	setString(&cfg.RocketMQNameServer, "ROCKETMQ_NAMESRV_ADDR")
	setString(&cfg.RocketMQTopic, "ROCKETMQ_TOPIC")

	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = db
	}
	if v, ok := os.LookupEnv("ENABLE_RATE_LIMIT"); ok {
		cfg.RateLimitEnabled = v == "true"
	}
	if v, ok := os.LookupEnv("RATE_LIMIT"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT %q: %w", v, err)
		}
		cfg.RateLimit = r
	}
	if v, ok := os.LookupEnv("RATE_BURST"); ok {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST %q: %w", v, err)
		}
		cfg.RateBurst = b
	}
	if v, ok := os.LookupEnv("INDEX_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid INDEX_LIMIT %q: %w", v, err)
		}
		cfg.IndexLimit = n
	}
	if v, ok := os.LookupEnv("SEED_SAMPLE_DATA"); ok {
		cfg.SeedSampleData = v == "true"
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks enum-like fields and limits.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.EventBackend {
	case EventBackendLocal, EventBackendRocketMQ:
	case EventBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("EVENT_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported EVENT_BACKEND %q", c.EventBackend)
	}
	if c.RateLimitEnabled && (c.RateLimit <= 0 || c.RateBurst <= 0) {
		return errors.New("RATE_LIMIT and RATE_BURST must be greater than 0")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// MySQLDSN builds the MySQL connection string.
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
