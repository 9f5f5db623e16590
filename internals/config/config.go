package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env string `yaml:"env" env:"ENV" env-default:"local"`

	Server struct {
		Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
		Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server"`

	Database struct {
		SQLitePath   string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"storage/tasklist.db"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	} `yaml:"database"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	} `yaml:"cors"`

	Security struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	} `yaml:"security"`

	// Superuser is the one fixed account whose login reports admin_logged_in.
	Superuser struct {
		Username string `yaml:"username" env:"SUPERUSER_USERNAME" env-default:"Roderick"`
		Password string `yaml:"password" env:"SUPERUSER_PASSWORD" env-default:"Nova"`
	} `yaml:"superuser"`
}

// Addr is the listen address built from the server section.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads the YAML file at path, then applies environment overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
		return &cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	// .env is optional; it may carry CONFIG_PATH itself.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configflag := flag.String("config", "", "Path to configuration file")
		flag.Parse()
		configPath = *configflag
		if configPath == "" {
			log.Fatal("Config Path is not set")
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
