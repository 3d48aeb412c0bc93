package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GLUCOSCREEN_SERVER_PORT
const EnvPrefix = "GLUCOSCREEN"

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Model     ModelConfig
	Session   SessionConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Privacy   PrivacyConfig
	Locale    LocaleConfig
	Logging   LoggingConfig
	Security  SecurityConfig
	Contact   ContactConfig
}

type ServerConfig struct {
	Port           int
	Mode           string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	ShutdownGrace  time.Duration
}

type DataConfig struct {
	Dir         string
	DatasetPath string
}

type ModelConfig struct {
	SplitSeed    int64
	TestFraction float64
	C            float64
	MaxIter      int
	Tolerance    float64
	Snapshot     bool
}

type SessionConfig struct {
	JWTSecret string
	TTL       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	PerMinute        int
	SessionPerHour   int
	ContactPerMinute int
	BurstMultiplier  int
}

type CacheConfig struct {
	TTL time.Duration
}

type PrivacyConfig struct {
	RetentionDays   int
	CleanupInterval time.Duration
}

type LocaleConfig struct {
	Default string
}

type ContactConfig struct {
	Recipient string
}

type LoggingConfig struct {
	Level string
}

type SecurityConfig struct {
	AllowedOrigins []string
	EnableHSTS     bool
}

// insecureDefaultSecret is refused outside debug mode
const insecureDefaultSecret = "change-me-in-production"

// Load reads .env, then configFile (or config.yaml from the usual search
// paths when configFile is empty), then GLUCOSCREEN_* environment overrides.
func Load(configFile string) (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/glucoscreen")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.requestTimeout", "30s")
	v.SetDefault("server.maxUploadBytes", 5<<20)
	v.SetDefault("server.shutdownGrace", "10s")

	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.datasetPath", "./data/diabetes.csv")

	v.SetDefault("model.splitSeed", 1)
	v.SetDefault("model.testFraction", 0.2)
	v.SetDefault("model.c", 1.0)
	v.SetDefault("model.maxIter", 1000)
	v.SetDefault("model.tolerance", 1e-4)
	v.SetDefault("model.snapshot", true)

	v.SetDefault("session.jwtSecret", insecureDefaultSecret)
	v.SetDefault("session.ttl", "24h")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.perMinute", 60)
	v.SetDefault("ratelimit.sessionPerHour", 120)
	v.SetDefault("ratelimit.contactPerMinute", 3)
	v.SetDefault("ratelimit.burstMultiplier", 2)

	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("privacy.retentionDays", 30)
	v.SetDefault("privacy.cleanupInterval", "24h")

	v.SetDefault("locale.default", "en")

	v.SetDefault("logging.level", "info")

	v.SetDefault("contact.recipient", "support@glucoscreen.local")

	v.SetDefault("security.allowedOrigins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("security.enableHSTS", false)
}

// Validate rejects values the server cannot start with
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "server.maxUploadBytes must be positive")
	}
	if c.Data.DatasetPath == "" {
		problems = append(problems, "data.datasetPath is required")
	}
	if c.Model.TestFraction < 0 || c.Model.TestFraction >= 1 {
		problems = append(problems, fmt.Sprintf("model.testFraction %.2f must be in [0, 1)", c.Model.TestFraction))
	}
	if c.Model.C <= 0 {
		problems = append(problems, "model.c must be positive")
	}
	if c.Model.MaxIter <= 0 {
		problems = append(problems, "model.maxIter must be positive")
	}
	if c.Session.JWTSecret == "" {
		problems = append(problems, "session.jwtSecret is required")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.SessionPerHour <= 0 || c.RateLimit.ContactPerMinute <= 0 {
		problems = append(problems, "ratelimit limits must be positive")
	}
	if c.Privacy.RetentionDays <= 0 {
		problems = append(problems, "privacy.retentionDays must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CheckServeSecret refuses the built-in JWT secret when serving in release mode
func (c *Config) CheckServeSecret() error {
	if c.Session.JWTSecret == insecureDefaultSecret && c.Server.Mode == "release" {
		return fmt.Errorf("session.jwtSecret must be set in release mode (%s_SESSION_JWTSECRET)", EnvPrefix)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
