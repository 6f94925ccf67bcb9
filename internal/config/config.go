package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	MQTT      MQTTConfig
	Notifier  NotifierConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	MaxRequestSize int64
}

type DatabaseConfig struct {
	Driver      string // postgres or memory
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	NodeID      int64 // snowflake node for id generation
}

type JWTConfig struct {
	Secret     string
	TTL        time.Duration
	RefreshTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Topic          string
	QoS            byte
	ConnectTimeout int
}

type NotifierConfig struct {
	Driver   string // log, smtp or mqtt
	ResetURL string
}

type StorageConfig struct {
	Driver      string // local or s3
	LocalRoot   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string
}

type RateLimitConfig struct {
	GeneralRPS    float64 // Requests per second for general endpoints
	GeneralBurst  int     // Burst size for general endpoints
	AuthPerMinute int     // Requests per minute on login/registration/password endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type LogConfig struct {
	File   string
	MaxAge time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_MAX_REQUEST_BYTES", 10<<20)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("DB_NODE_ID", 1)

	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("JWT_REFRESH_TTL_MINUTES", 20160)

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("MQTT_CLIENT_ID", "product-catalog")
	v.SetDefault("MQTT_TOPIC", "catalog/notifications/password-reset")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_CONNECT_TIMEOUT", 10)

	v.SetDefault("NOTIFIER_DRIVER", "log")
	v.SetDefault("NOTIFIER_RESET_URL", "http://localhost:3000/reset-password")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_ROOT", "assets/upload")
	v.SetDefault("STORAGE_S3_REGION", "us-east-1")

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	v.SetDefault("RATE_LIMIT_AUTH_PER_MINUTE", 30)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID")
	v.SetDefault("CORS_MAX_AGE", 43200)

	v.SetDefault("LOG_MAX_AGE_HOURS", 168)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("ENVIRONMENT"),
			MaxRequestSize: v.GetInt64("SERVER_MAX_REQUEST_BYTES"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
			NodeID:      v.GetInt64("DB_NODE_ID"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			TTL:        time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
			RefreshTTL: time.Duration(v.GetInt("JWT_REFRESH_TTL_MINUTES")) * time.Minute,
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		MQTT: MQTTConfig{
			Broker:         v.GetString("MQTT_BROKER"),
			ClientID:       v.GetString("MQTT_CLIENT_ID"),
			Username:       v.GetString("MQTT_USERNAME"),
			Password:       v.GetString("MQTT_PASSWORD"),
			Topic:          v.GetString("MQTT_TOPIC"),
			QoS:            byte(v.GetUint("MQTT_QOS")),
			ConnectTimeout: v.GetInt("MQTT_CONNECT_TIMEOUT"),
		},
		Notifier: NotifierConfig{
			Driver:   strings.ToLower(v.GetString("NOTIFIER_DRIVER")),
			ResetURL: v.GetString("NOTIFIER_RESET_URL"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
			LocalRoot:   v.GetString("STORAGE_LOCAL_ROOT"),
			S3Bucket:    v.GetString("STORAGE_S3_BUCKET"),
			S3Region:    v.GetString("STORAGE_S3_REGION"),
			S3Endpoint:  v.GetString("STORAGE_S3_ENDPOINT"),
			S3AccessKey: v.GetString("STORAGE_S3_ACCESS_KEY"),
			S3SecretKey: v.GetString("STORAGE_S3_SECRET_KEY"),
			S3Prefix:    v.GetString("STORAGE_S3_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:    v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst:  v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthPerMinute: v.GetInt("RATE_LIMIT_AUTH_PER_MINUTE"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		Log: LogConfig{
			File:   v.GetString("LOG_FILE"),
			MaxAge: time.Duration(v.GetInt("LOG_MAX_AGE_HOURS")) * time.Hour,
		},
	}

	return config, nil
}

// Validate reports the first setting the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Database.Driver == "postgres" && (c.Database.Host == "" || c.Database.DBName == "") {
		return errors.New("DB_HOST and DB_NAME are required for the postgres driver")
	}
	if c.Storage.Driver == "s3" && c.Storage.S3Bucket == "" {
		return errors.New("STORAGE_S3_BUCKET is required for the s3 storage driver")
	}
	if c.Notifier.Driver == "mqtt" && c.MQTT.Broker == "" {
		return errors.New("MQTT_BROKER is required for the mqtt notifier")
	}
	if c.Notifier.Driver == "smtp" && c.SMTP.Host == "" {
		return errors.New("SMTP_HOST is required for the smtp notifier")
	}
	return nil
}

func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
