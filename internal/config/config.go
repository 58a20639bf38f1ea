package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultOwnerID is the owner used when no authenticated subject is available.
const DefaultOwnerID = "67ed468b5b281d81f91a0a78"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Owner     OwnerConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

// Issuer returns the realm issuer URL, or the bare URL when no realm is set.
func (k KeycloakConfig) Issuer() string {
	if k.Realm == "" {
		return k.URL
	}
	return strings.TrimRight(k.URL, "/") + "/realms/" + k.Realm
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// StorageConfig holds MinIO connection configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// UploadConfig holds the defaults applied to attachment uploads.
type UploadConfig struct {
	Bucket      string
	Folder      string
	MaxFileSize int64
}

// OwnerConfig names the site owner. AdminSubjects are the verified token
// subjects that act as that owner; any other subject only sees its own records.
type OwnerConfig struct {
	ID            string
	AdminSubjects []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_DATABASE", "scholarfolio")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("UPLOAD_BUCKET", "files")
	v.SetDefault("UPLOAD_FOLDER", "pdfs")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("OWNER_ID", DefaultOwnerID)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
		},
		Upload: UploadConfig{
			Bucket:      v.GetString("UPLOAD_BUCKET"),
			Folder:      v.GetString("UPLOAD_FOLDER"),
			MaxFileSize: v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
		},
		Owner: OwnerConfig{
			ID:            v.GetString("OWNER_ID"),
			AdminSubjects: splitList(v.GetString("OWNER_ADMIN_SUBJECTS")),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if cfg.Storage.PublicURL == "" && cfg.Storage.Endpoint != "" {
		scheme := "http://"
		if cfg.Storage.UseSSL {
			scheme = "https://"
		}
		cfg.Storage.PublicURL = scheme + cfg.Storage.Endpoint
	}

	return cfg, nil
}

// AuthEnabled reports whether any bearer-token verifier is configured.
func (c *Config) AuthEnabled() bool {
	return (c.Keycloak.URL != "" && c.Keycloak.ClientID != "") || c.JWT.Secret != ""
}

// OwnerUnmapped reports whether OIDC logins are enabled while the public
// pages still read the built-in default owner and no admin subject maps onto
// it. Records created by such a login would never appear on the site.
func (c *Config) OwnerUnmapped() bool {
	oidc := c.Keycloak.URL != "" && c.Keycloak.ClientID != ""
	return oidc && c.Owner.ID == DefaultOwnerID && len(c.Owner.AdminSubjects) == 0
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
