package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "config/config.yaml"

// ErrMissingAPIKey is returned when no ENTSO-E key is found in the
// environment, the config file or the secrets store.
var ErrMissingAPIKey = errors.New("ENTSO-E API key is missing: set the ENTSOE_KEY environment variable")

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"prod"`
	EntsoE     EntsoEConfig     `yaml:"entsoe"`
	Plant      PlantConfig      `yaml:"plant"`
	News       NewsConfig       `yaml:"news"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Log        LogConfig        `yaml:"log"`
}

type EntsoEConfig struct {
	BaseURL           string        `yaml:"base_url" env:"ENTSOE_BASE_URL" env-default:"https://web-api.tp.entsoe.eu/api"`
	APIKey            string        `yaml:"api_key" env:"ENTSOE_KEY"`
	SecretsPath       string        `yaml:"secrets_path" env:"SECRETS_PATH" env-default:".streamlit/secrets.toml"`
	Timeout           time.Duration `yaml:"timeout" env-default:"30s"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" env-default:"2m"`
	Concurrency       int           `yaml:"concurrency" env-default:"4"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env-default:"400"`
}

type HTTPServerConfig struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"45s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	WarmInterval time.Duration `yaml:"warm_interval" env-default:"0s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type secrets struct {
	EntsoEKey string `toml:"ENTSOE_KEY" yaml:"ENTSOE_KEY"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load reads the config file when one is given or present at the default
// location, otherwise only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if configPath == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, fmt.Errorf("failed to read config from env: %w", err)
			}
			return &cfg, nil
		}
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}

// ResolveAPIKey fills EntsoE.APIKey from the secrets store when neither the
// environment nor the config file provided it.
func (c *Config) ResolveAPIKey() error {
	if c.EntsoE.APIKey != "" {
		return nil
	}

	path := c.EntsoE.SecretsPath
	if path == "" {
		return ErrMissingAPIKey
	}
	if _, err := os.Stat(path); err != nil {
		return ErrMissingAPIKey
	}

	var s secrets
	if err := cleanenv.ReadConfig(path, &s); err != nil {
		return fmt.Errorf("%w (secrets store %s: %v)", ErrMissingAPIKey, path, err)
	}
	if s.EntsoEKey == "" {
		return ErrMissingAPIKey
	}

	c.EntsoE.APIKey = s.EntsoEKey
	return nil
}
