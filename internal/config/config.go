// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// StoreConfig is consulted on every gateway operation. It is passed by value
// and never modified after Load.
type StoreConfig struct {
	ACL                string
	Bucket             string
	ContentDisposition string
	// Worker overrides the remote endpoint name. Empty selects the default.
	Worker string
}

// StorageConfig holds the S3-compatible connection used by the in-process worker.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance = FromViper(v)
	})

	return instance
}

// FromViper builds a Config from v after applying defaults.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Store: StoreConfig{
			ACL:                v.GetString("S3_ACL"),
			Bucket:             v.GetString("S3_BUCKET"),
			ContentDisposition: v.GetString("S3_CONTENT_DISPOSITION"),
			Worker:             strings.TrimSpace(v.GetString("S3_WORKER")),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("S3_ACL", "public-read")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_CONTENT_DISPOSITION", "attachment")
	v.SetDefault("S3_WORKER", "")
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}
