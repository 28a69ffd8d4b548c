package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Orders   OrdersConfig
	Refunds  RefundConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr string
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type OrdersConfig struct {
	// ConfirmationTimeout is how long an order may sit in awaiting_confirmation
	// before it is promoted to pending without admin action.
	ConfirmationTimeout time.Duration
	SweepSchedule       string
}

type RefundConfig struct {
	LargeThreshold   decimal.Decimal
	ExtremeThreshold decimal.Decimal
}

type MailConfig struct {
	APIURL     string
	APIKey     string
	Sender     string
	AdminEmail string
}

// LoadEnv loads .env from the working directory, then its parent.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "smm_wallet")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("JWT_ISSUER", "smm-wallet")
	v.SetDefault("CONFIRMATION_TIMEOUT", 60*time.Second)
	v.SetDefault("CONFIRMATION_SWEEP_SCHEDULE", "@every 30s")
	v.SetDefault("REFUND_LARGE_THRESHOLD", "100000")
	v.SetDefault("REFUND_EXTREME_THRESHOLD", "1000000")
	v.SetDefault("MAIL_SENDER", "no-reply@smm-wallet.local")
}

// Load reads configuration from the environment. Call LoadEnv first to pick up .env files.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	if v.GetString("JWT_SECRET") == "" {
		return nil, ErrMissingJWTSecret
	}
	large, err := decimal.NewFromString(v.GetString("REFUND_LARGE_THRESHOLD"))
	if err != nil {
		return nil, err
	}
	extreme, err := decimal.NewFromString(v.GetString("REFUND_EXTREME_THRESHOLD"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Orders: OrdersConfig{
			ConfirmationTimeout: v.GetDuration("CONFIRMATION_TIMEOUT"),
			SweepSchedule:       v.GetString("CONFIRMATION_SWEEP_SCHEDULE"),
		},
		Refunds: RefundConfig{
			LargeThreshold:   large,
			ExtremeThreshold: extreme,
		},
		Mail: MailConfig{
			APIURL:     v.GetString("MAIL_API_URL"),
			APIKey:     v.GetString("MAIL_API_KEY"),
			Sender:     v.GetString("MAIL_SENDER"),
			AdminEmail: v.GetString("ADMIN_EMAIL"),
		},
	}, nil
}

// DefaultRefundConfig returns the ₦100,000 / ₦1,000,000 review thresholds.
func DefaultRefundConfig() RefundConfig {
	return RefundConfig{
		LargeThreshold:   decimal.NewFromInt(100000),
		ExtremeThreshold: decimal.NewFromInt(1000000),
	}
}
