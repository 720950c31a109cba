package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" validate:"required"`
	Content    ContentConfig    `yaml:"content"`
	Thumbnails ThumbnailsConfig `yaml:"thumbnails"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" validate:"required"`
	Port         int           `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type ContentConfig struct {
	// Root is the content directory holding videos/, metadata/ and
	// thumbnails/. Empty means not yet configured; the library endpoints
	// report that state instead of failing.
	Root string `yaml:"root"`

	// DefaultFolder seeds the settings file on first run only; after
	// that the persisted name wins.
	DefaultFolder string `yaml:"default_folder"`

	SettingsFile string `yaml:"settings_file"`
}

type ThumbnailsConfig struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
	CacheCapacity int           `yaml:"cache_capacity" validate:"gte=0"`
	CacheMaxSize  int64         `yaml:"cache_max_size" validate:"gte=0"` // bytes
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads configuration from an optional yaml file over defaults. A
// missing file is not an error; a file that fails validation is.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         6870,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0,
		},
		Content: ContentConfig{
			Root:          "",
			DefaultFolder: "00_Inbox",
			SettingsFile:  "data/settings.yaml",
		},
		Thumbnails: ThumbnailsConfig{
			FetchTimeout:  10 * time.Second,
			CacheCapacity: 500,
			CacheMaxSize:  64 * 1024 * 1024, // 64 MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
