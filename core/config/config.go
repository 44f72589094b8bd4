package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Host string
		Port int
	}
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret          string
		ExpiryMinutes   int
		RefreshExpiryHr int
	}
	Provider struct {
		// Nylas-compatible API
		BaseURL      string
		ClientID     string
		ClientSecret string
		TokenURL     string
	}
	S3 struct {
		Region    string
		Bucket    string
		AccessKey string
		SecretKey string
		Endpoint  string
	}
	Log struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (if present) plus environment variables into the config
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "meetsync")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.expiryminutes", 60)
	v.SetDefault("jwt.refreshexpiryhr", 168)
	v.SetDefault("provider.baseurl", "https://api.us.nylas.com/v3")
	v.SetDefault("provider.tokenurl", "https://api.us.nylas.com/v3/connect/token")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	cfg := &Config{}
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetInt("database.port")
	cfg.Database.User = v.GetString("database.user")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.DBName = v.GetString("database.dbname")
	cfg.Database.SSLMode = v.GetString("database.sslmode")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.ExpiryMinutes = v.GetInt("jwt.expiryminutes")
	cfg.JWT.RefreshExpiryHr = v.GetInt("jwt.refreshexpiryhr")
	cfg.Provider.BaseURL = v.GetString("provider.baseurl")
	cfg.Provider.ClientID = v.GetString("provider.clientid")
	cfg.Provider.ClientSecret = v.GetString("provider.clientsecret")
	cfg.Provider.TokenURL = v.GetString("provider.tokenurl")
	cfg.S3.Region = v.GetString("s3.region")
	cfg.S3.Bucket = v.GetString("s3.bucket")
	cfg.S3.AccessKey = v.GetString("s3.accesskey")
	cfg.S3.SecretKey = v.GetString("s3.secretkey")
	cfg.S3.Endpoint = v.GetString("s3.endpoint")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded config, panicking if Load has not run
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Load must be called before Get")
	}
	return instance
}

// GetSafe returns the loaded config and whether it is initialized
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
