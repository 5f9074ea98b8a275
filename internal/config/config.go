// Package config предоставялет структуры и функции для парсинга и загрузки конфига клиента.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	API             `yaml:"api"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	Admin           `yaml:"admin"`
}

// API структура для настройки подключения к backend
type API struct {
	BaseURL   string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://127.0.0.1:8000"`
	Timeout   time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
	RateLimit float64       `yaml:"rate_limit" env:"API_RATE_LIMIT" env-default:"10"`
	RateBurst int           `yaml:"rate_burst" env:"API_RATE_BURST" env-default:"5"`
}

// Storage структура для настройки хранилища токена и роли
type Storage struct {
	Backend       string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	Path          string `yaml:"path" env:"STORAGE_PATH" env-default:".bookchat/session.json"`
	EncryptionKey string `yaml:"encryption_key" env:"STORAGE_ENCRYPTION_KEY"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	KeyPrefix    string        `yaml:"key_prefix" env-default:"bookchat:"`
}

// HTTPServer структура для настройки локального web-shell
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:"127.0.0.1:5173"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

// Admin структура для настройки панели администратора
type Admin struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"ADMIN_POLL_INTERVAL" env-default:"30s"`
}

// Load читает конфиг из файла path (если он задан) и переменных окружения.
// Перед чтением подгружается .env из рабочей директории, если он есть.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
// Без CONFIG_PATH конфиг собирается только из окружения и значений по умолчанию.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %.2f\n"+
			"  RateBurst: %d\n"+
			"Storage:\n"+
			"  Backend: %s\n"+
			"  Path: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"Admin:\n"+
			"  PollInterval: %s\n",
		c.Env,
		c.BaseURL,
		c.API.Timeout,
		c.RateLimit,
		c.RateBurst,
		c.Backend,
		c.Path,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.PollInterval,
	)
}
