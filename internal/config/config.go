package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    Storage `yaml:"storage"`
	Redis      Redis   `yaml:"redis"`
	Game       Game    `yaml:"game"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	// SessionTTL bounds how long an idle session is kept. Zero keeps it until it ends.
	SessionTTL time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	switch config.Storage.Driver {
	case StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
