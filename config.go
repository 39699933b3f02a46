package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const envPrefix = "LINKTREE_"

type Config struct {
	HTTPAddr     string        `koanf:"http_address"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	LogLevel     string        `koanf:"log_level"`

	UpstreamURL     string        `koanf:"upstream_url"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`

	Profile Profile  `koanf:"profile"`
	Links   []Link   `koanf:"links"`
	Social  []Social `koanf:"social"`
}

func (c Config) Page() Page {
	return Page{
		Profile: c.Profile,
		Links:   c.Links,
		Social:  c.Social,
	}
}

var defaultConfig = map[string]interface{}{
	"http_address":     ":8080",
	"read_timeout":     5 * time.Second,
	"write_timeout":    30 * time.Second,
	"log_level":        "info",
	"upstream_url":     "https://static-links-page.signalnerve.workers.dev",
	"upstream_timeout": 10 * time.Second,
	"profile": map[string]interface{}{
		"name":             "Brian Ma",
		"avatar_url":       "https://avatars.githubusercontent.com/bjma",
		"title":            "Brian Ma",
		"background_class": "bg-indigo-700",
	},
	"links": []interface{}{
		map[string]interface{}{"name": "LinkedIn", "url": "https://www.linkedin.com/in/brian-j-ma/"},
		map[string]interface{}{"name": "GitHub", "url": "https://github.com/bjma/"},
		map[string]interface{}{"name": "Reddit", "url": "https://www.reddit.com/"},
	},
	"social": []interface{}{
		map[string]interface{}{"url": "https://github.com/bjma/", "icon": "https://simpleicons.org/icons/github.svg"},
		map[string]interface{}{"url": "https://www.linkedin.com/in/brian-j-ma/", "icon": "https://simpleicons.org/icons/linkedin.svg"},
	},
}

// initConfig layers the built-in defaults, the TOML file at configFile
// (skipped when it does not exist) and LINKTREE_* environment variables.
func initConfig(configFile string) (Config, error) {
	var (
		config Config
		k      = koanf.New(".")
	)

	if err := k.Load(confmap.Provider(defaultConfig, "."), nil); err != nil {
		return config, fmt.Errorf("error loading defaults: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return config, fmt.Errorf("error loading file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return config, fmt.Errorf("error reading %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return config, fmt.Errorf("error loading env: %w", err)
	}

	if err := k.Unmarshal("", &config); err != nil {
		return config, fmt.Errorf("error while unmarshalling config: %w", err)
	}

	if config.UpstreamURL == "" {
		return config, errors.New("upstream_url is empty")
	}

	return config, nil
}

// envKey maps LINKTREE_PROFILE__NAME to profile.name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
