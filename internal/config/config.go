// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "OTHERSIDE"

	ProviderNominatim    = "nominatim"
	ProviderOpenCage     = "opencage"
	ProviderGeocodeEarth = "geocode-earth"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Server struct {
		Address         string        `fig:"address" default:":5005"`
		ShutdownTimeout time.Duration `fig:"shutdown_timeout" default:"10s"`
		// Allowed CORS origins, "*" allows any origin
		AllowOrigins []string `fig:"allow_origins" default:"[*]"`
	} `fig:"server"`

	GeoCoder struct {
		// Allowed values: nominatim, opencage, geocode-earth
		Provider       string  `fig:"provider" default:"nominatim"`
		APIKey         string  `fig:"apikey"`
		RequestsPerSec float64 `fig:"requests_per_sec" default:"1"`
	} `fig:"geocoder"`

	Dataset struct {
		File           string        `fig:"file"`
		URL            string        `fig:"url"`
		ReloadInterval time.Duration `fig:"reload_interval" default:"24h"`
		S3             struct {
			Endpoint  string `fig:"endpoint"`
			AccessKey string `fig:"access_key"`
			SecretKey string `fig:"secret_key"`
			Region    string `fig:"region"`
			UseSSL    bool   `fig:"use_ssl"`
			Bucket    string `fig:"bucket"`
			Object    string `fig:"object"`
		} `fig:"s3"`
	} `fig:"dataset"`

	Directions struct {
		Endpoint string   `fig:"endpoint" default:"https://router.project-osrm.org"`
		Profiles []string `fig:"profiles" default:"[driving,foot]"`
	} `fig:"directions"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	c.GeoCoder.Provider = strings.ToLower(strings.TrimSpace(c.GeoCoder.Provider))
	switch c.GeoCoder.Provider {
	case ProviderNominatim:
	case ProviderOpenCage, ProviderGeocodeEarth:
		if c.GeoCoder.APIKey == "" {
			return fmt.Errorf("geocoder %s requires an API key", c.GeoCoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.GeoCoder.Provider)
	}
	if c.GeoCoder.RequestsPerSec < 0 {
		return fmt.Errorf("invalid geocoder requests per second: %f", c.GeoCoder.RequestsPerSec)
	}
	if c.Dataset.ReloadInterval < time.Minute {
		return fmt.Errorf("dataset reload interval must be at least one minute, got: %s", c.Dataset.ReloadInterval)
	}
	if c.Dataset.S3.Bucket != "" && (c.Dataset.S3.Endpoint == "" || c.Dataset.S3.Object == "") {
		return fmt.Errorf("dataset S3 bucket %q requires an endpoint and an object", c.Dataset.S3.Bucket)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address must not be empty")
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
