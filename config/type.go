package config

import (
	"time"

	"github.com/intrpom/Kurzy-sub001/packages/email"
)

// AppConfig application configuration
type AppConfig struct {
	Server    ServerConfig    `koanf:"server"`
	GRPC      GRPCConfig      `koanf:"grpc"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Log       LogConfig       `koanf:"log"`
	Session   SessionConfig   `koanf:"session"`
	Token     TokenConfig     `koanf:"token"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Smtp      email.Config    `koanf:"smtp"`
	Mail      MailConfig      `koanf:"mail"`
	CORS      CORSConfig      `koanf:"cors"`
	Routes    RoutesConfig    `koanf:"routes"`
}

type GRPCConfig struct {
	Port int `koanf:"port"` // 0 disables the health server
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	Mode         string        `koanf:"mode"`        // debug, release, test
	Environment  string        `koanf:"environment"` // development, production
	BaseURL      string        `koanf:"baseurl"`     // public origin used in magic links
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`
}

// IsProduction reports whether debug affordances must be hidden.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

type DatabaseConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	Database     string `koanf:"database"`
	SSLMode      bool   `koanf:"sslmode"`
	LogLevel     string `koanf:"loglevel"`
	MaxOpenConns int    `koanf:"maxopenconns"`
	MaxIdleConns int    `koanf:"maxidleconns"`
	MaxLifetime  int    `koanf:"maxlifetime"` // seconds
	AutoMigrate  bool   `koanf:"automigrate"`
}

type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"poolsize"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

type SessionConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
	Secure bool          `koanf:"secure"`
	Domain string        `koanf:"domain"`
}

type TokenConfig struct {
	TTL     time.Duration `koanf:"ttl"`
	MaxLive int           `koanf:"maxlive"` // live magic links kept per user
}

type RateLimitConfig struct {
	PerEmail int           `koanf:"peremail"`
	PerIP    int           `koanf:"perip"`
	Window   time.Duration `koanf:"window"`
}

type MailConfig struct {
	From    string `koanf:"from"`
	AppName string `koanf:"appname"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type RoutesConfig struct {
	LoginPath string `koanf:"loginpath"`
	HomePath  string `koanf:"homepath"`
}
