package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Document source: a local JSON file, or an object-storage location.
	DocumentPath   string `yaml:"documentPath"`
	ObjectEndpoint string `yaml:"objectEndpoint"`
	ObjectBucket   string `yaml:"objectBucket"`
	ObjectKey      string `yaml:"objectKey"`
	ObjectAccess   string `yaml:"objectAccessKey"`
	ObjectSecret   string `yaml:"objectSecretKey"`
	ObjectUseSSL   bool   `yaml:"objectUseSSL"`

	// Conversation log. Empty databaseURL falls back to the in-memory log.
	DatabaseURL string `yaml:"databaseURL"`

	// Preference store: a directory of JSON files, or Redis when redisAddr
	// is set. Empty both means preferences do not survive restarts.
	PrefsDir      string `yaml:"prefsDir"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`

	// Generation provider (OpenAI-compatible chat completions).
	GenerationBaseURL string `yaml:"generationBaseURL"`
	GenerationAPIKey  string `yaml:"generationAPIKey"`
	GenerationModel   string `yaml:"generationModel"`
	GenerationReferer string `yaml:"generationReferer"`
	AppTitle          string `yaml:"appTitle"`
	MaxTokens         int    `yaml:"maxTokens"`

	// Speech-to-text engine; empty means the capability is absent.
	SpeechEngineURL string `yaml:"speechEngineURL"`

	// Optional message-appended notifications.
	AMQPURL      string `yaml:"amqpURL"`
	AMQPExchange string `yaml:"amqpExchange"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.GenerationAPIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.ObjectAccess = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.ObjectSecret = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DocumentPath == "" && cfg.ObjectBucket == "" {
		return errors.New("config: documentPath or objectBucket is required (set in config.yaml)")
	}
	if cfg.DocumentPath != "" && cfg.ObjectBucket != "" {
		return errors.New("config: documentPath and objectBucket are mutually exclusive")
	}
	if cfg.ObjectBucket != "" && (cfg.ObjectEndpoint == "" || cfg.ObjectKey == "") {
		return errors.New("config: objectEndpoint and objectKey are required with objectBucket")
	}
	if cfg.GenerationBaseURL == "" {
		return errors.New("config: generationBaseURL is required (set in config.yaml)")
	}
	if cfg.GenerationAPIKey == "" {
		return errors.New("config: generationAPIKey is required (set in config.yaml or OPENROUTER_API_KEY)")
	}
	if cfg.GenerationModel == "" {
		return errors.New("config: generationModel is required (set in config.yaml)")
	}
	if cfg.PrefsDir != "" && cfg.RedisAddr != "" {
		return errors.New("config: prefsDir and redisAddr are mutually exclusive")
	}
	return nil
}
