package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Roles the binary can run as.
const (
	RoleEditor  = "editor"
	RoleConsole = "console"
	RoleBackend = "backend"
)

// Storage kinds supported by the reference backend.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageBoltDB = "boltdb"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"BKED_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"BKED_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"BKED_BUILD_TIME"`
	Role               string        `yaml:"role" envconfig:"BKED_ROLE"`
	IsProduction       bool          `yaml:"is_production" envconfig:"BKED_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"BKED_LOG_LEVEL"`
	LogFolder          string        `yaml:"log_folder" envconfig:"BKED_LOG_FOLDER"`
	LogMaxSize         int           `yaml:"log_max_size" envconfig:"BKED_LOG_MAX_SIZE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"BKED_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Backend            BackendConfig `yaml:"backend"`
	Session            SessionConfig `yaml:"session"`
	Storage            StorageConfig `yaml:"storage"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BKED_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BKED_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BKED_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BKED_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BKED_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BKED_SERVER_SHUTDOWN_TIMEOUT"`
}

// BackendConfig points the editor at the remote books service.
// A zero Timeout means requests never time out.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BKED_BACKEND_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"BKED_BACKEND_TIMEOUT"`
}

type SessionConfig struct {
	CookieName      string        `yaml:"cookie_name" envconfig:"BKED_SESSION_COOKIE_NAME"`
	TTL             time.Duration `yaml:"ttl" envconfig:"BKED_SESSION_TTL"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"BKED_SESSION_CLEANUP_INTERVAL"`
}

type StorageConfig struct {
	Kind string `yaml:"kind" envconfig:"BKED_STORAGE_KIND"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BKED_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKED_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKED_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKED_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKED_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKED_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKED_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKED_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKED_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKED_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BKED_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BKED_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BKED_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overrides matching values of the config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters, configures
// build tags values to be used if provided then checks the settings needed
// by the selected role.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if config.Role == "" {
		config.Role = RoleEditor
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if config.Session.CookieName == "" {
		config.Session.CookieName = "bookshelf_session"
	}

	if config.Session.TTL <= 0 {
		config.Session.TTL = 30 * time.Minute
	}

	if config.Session.CleanupInterval <= 0 {
		config.Session.CleanupInterval = 5 * time.Minute
	}

	if config.Storage.Kind == "" {
		config.Storage.Kind = StorageMemory
	}

	switch config.Role {
	case RoleEditor, RoleConsole:
		if len(config.Backend.BaseURL) == 0 {
			return errors.New("make sure to set valid backend base url in configuration file")
		}
		u, err := url.Parse(config.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid backend base url %q", config.Backend.BaseURL)
		}
		if config.Backend.Timeout < 0 {
			return errors.New("backend timeout cannot be negative")
		}
	case RoleBackend:
		switch config.Storage.Kind {
		case StorageMemory:
		case StorageRedis:
			if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
				return errors.New("make sure to set valid redis address and port in configuration file")
			}
		case StorageBoltDB:
			if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
				return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
			}
		default:
			return fmt.Errorf("unknown storage kind %q", config.Storage.Kind)
		}
	default:
		return fmt.Errorf("unknown role %q", config.Role)
	}

	if config.Role != RoleConsole && (len(config.Server.Host) == 0 || len(config.Server.Port) == 0) {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. A non empty role takes precedence
// over every source.
func LoadAndInitConfigs(configFile, role, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The file is optional.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BKED`.
	err = LoadConfigEnvs("BKED", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	if role != "" {
		config.Role = role
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
