package config

import (
	"os"
	"time"

	ierrors "github.com/cnosuke/pagemeta/internal/errors"
	"github.com/jinzhu/configor"
)

// Config - Application configuration
type Config struct {
	Scrape struct {
		Timeout   int    `yaml:"timeout" default:"10" env:"SCRAPE_TIMEOUT"` // Timeout in seconds
		UserAgent string `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/116.0" env:"SCRAPE_USER_AGENT"`
		// KeepTracking disables tracking parameter removal by default.
		KeepTracking        bool     `yaml:"keep_tracking" default:"false" env:"SCRAPE_KEEP_TRACKING"`
		// ExtraTrackingParams extends the built-in denylist; the env form is a YAML list.
		ExtraTrackingParams []string `yaml:"extra_tracking_params" env:"SCRAPE_EXTRA_TRACKING_PARAMS"`
		MaxBodyBytes        int64    `yaml:"max_body_bytes" default:"10485760" env:"SCRAPE_MAX_BODY_BYTES"`
	} `yaml:"scrape"`

	Log struct {
		Level  string `yaml:"level" default:"info" env:"LOG_LEVEL"`
		Format string `yaml:"format" default:"console" env:"LOG_FORMAT"` // console or json
		Path   string `yaml:"path" default:"stderr" env:"LOG_PATH"`
	} `yaml:"log"`

	HTTP struct {
		Addr string `yaml:"addr" default:":8080" env:"HTTP_ADDR"`
		Mode string `yaml:"mode" default:"release" env:"GIN_MODE"`
	} `yaml:"http"`
}

// TimeoutDuration returns the configured scrape timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Scrape.Timeout) * time.Second
}

// LoadConfig - Load configuration file. An empty path loads defaults and
// environment variables only.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	loader := configor.New(&configor.Config{
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	})

	var files []string
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, ierrors.Wrapf(err, "failed to read config file %s", path)
		}
		files = append(files, path)
	}
	err := loader.Load(cfg, files...)
	return cfg, err
}
