package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	// Transactions runs result submissions inside a multi-document transaction.
	Transactions bool          `mapstructure:"transactions"`
	ConnectRetry time.Duration `mapstructure:"connect_retry"`
}

// S3Config configures user photo storage. Photo operations are disabled
// when BucketName is empty.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	PreviousSecrets []string      `mapstructure:"previous_secrets"`
	Expiration      time.Duration `mapstructure:"expiration"`
}

type AuthConfig struct {
	// Bypass lets every gated operation through without a token.
	Bypass bool `mapstructure:"bypass"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// keys are bound explicitly so that environment variables are honoured by
// Unmarshal even when the key is absent from config.yaml
var keys = []string{
	"app.environment",
	"server.address", "server.cors_origins",
	"database.driver", "database.uri", "database.name", "database.transactions", "database.connect_retry",
	"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name", "s3.url_expiry",
	"jwt.secret", "jwt.previous_secrets", "jwt.expiration",
	"auth.bypass",
	"log.level",
}

// LoadConfig reads config.yaml from path, a .env file from the working
// directory when present, and environment variables (server.address ->
// SERVER_ADDRESS). It does not validate the result.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	for _, key := range keys {
		if err = v.BindEnv(key); err != nil {
			return config, err
		}
	}

	v.SetDefault("app.environment", EnvDevelopment)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "twatch")
	v.SetDefault("database.transactions", false)
	v.SetDefault("database.connect_retry", "5s")
	v.SetDefault("s3.url_expiry", "15m")
	v.SetDefault("jwt.expiration", "720h")
	v.SetDefault("auth.bypass", false)
	v.SetDefault("log.level", "info")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config file: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return config, nil
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database.uri and database.name are required for the mongo driver"))
		}
	case DriverMemory:
		if c.App.IsProduction() {
			errs = append(errs, errors.New("the memory driver cannot be used in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if c.Auth.Bypass && c.App.IsProduction() {
		errs = append(errs, errors.New("auth.bypass cannot be enabled in production"))
	}
	return errors.Join(errs...)
}
