package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the client configuration. Values come from an optional YAML
// file with environment variables taking over when the file is absent.
type Config struct {
	ServerURL string        `yaml:"server_url" env:"TTM_SERVER_URL" env-default:"http://localhost:5000"`
	Timeout   time.Duration `yaml:"timeout" env:"TTM_TIMEOUT" env-default:"10s"`
	LogLevel  string        `yaml:"log_level" env:"TTM_LOG_LEVEL" env-default:"INFO"`
	LogFile   string        `yaml:"log_file" env:"TTM_LOG_FILE"`
}

func MustLoad(configPath string) Config {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return cfg
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return cfg
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}

	return cfg
}
