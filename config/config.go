// Package config loads the service configuration: config.yaml first, then
// environment variables (SESSION_SECRET overrides session.secret).
package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	Conf *AppConfig
	once sync.Once
	k    *koanf.Koanf
)

// Load reads configPath once per process.
func Load(configPath string) error {
	var err error
	once.Do(func() {
		if envErr := godotenv.Load(); envErr != nil {
			slog.Debug("no .env file loaded", "error", envErr)
		}

		k = koanf.New(".")

		if err = k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			err = fmt.Errorf("load config file: %w", err)
			return
		}

		if err = k.Load(env.Provider("", ".", envKey), nil); err != nil {
			err = fmt.Errorf("load env: %w", err)
			return
		}

		var conf *AppConfig
		if conf, err = unmarshal(k); err != nil {
			return
		}
		Conf = conf
	})

	return err
}

// MustLoad aborts the process when Load fails.
func MustLoad(configPath string) {
	if err := Load(configPath); err != nil {
		log.Fatalf("config: %v", err)
	}
}

// FromKoanf builds a validated config from an already populated koanf
// instance. Used by tests and tools that assemble config in memory.
func FromKoanf(kk *koanf.Koanf) (*AppConfig, error) {
	return unmarshal(kk)
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

func unmarshal(kk *koanf.Koanf) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := kk.Unmarshal("", conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	conf.ApplyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ApplyDefaults fills zero values.
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8081
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 7 * 24 * time.Hour
	}
	if c.Token.TTL == 0 {
		c.Token.TTL = 24 * time.Hour
	}
	if c.Token.MaxLive == 0 {
		c.Token.MaxLive = 5
	}
	if c.RateLimit.PerEmail == 0 {
		c.RateLimit.PerEmail = 5
	}
	if c.RateLimit.PerIP == 0 {
		c.RateLimit.PerIP = 20
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 15 * time.Minute
	}
	if c.Mail.AppName == "" {
		c.Mail.AppName = "Courses"
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.AppName + " <" + c.Smtp.Username + ">"
	}
	if c.Routes.LoginPath == "" {
		c.Routes.LoginPath = "/login"
	}
	if c.Routes.HomePath == "" {
		c.Routes.HomePath = "/"
	}
}

// Validate rejects configurations the service must not start with.
func (c *AppConfig) Validate() error {
	var errs []error
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes"))
	}
	if c.Server.IsProduction() && !c.Session.Secure {
		errs = append(errs, errors.New("session.secure must be true in production"))
	}
	if c.Server.IsProduction() && !c.Smtp.Enabled() {
		errs = append(errs, errors.New("smtp.host is required in production"))
	}
	if c.Token.MaxLive < 1 {
		errs = append(errs, errors.New("token.maxlive must be positive"))
	}
	return errors.Join(errs...)
}
