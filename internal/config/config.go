// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Remote store (Firestore REST)
	// FirestoreProjectIDが空の場合、リモートミラーリングは無効となり
	// ローカルストアのみで動作する。
	FirestoreProjectID  string
	FirestoreBaseURL    string
	FirestoreCollection string
	RemoteTimeout       time.Duration

	// Auth
	BcryptCost int

	// Rate Limit（req/min単位）
	RateLimitGeneral  int
	RateLimitRegister int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（存在しなくてもエラーにしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.FirestoreProjectID = os.Getenv("FIRESTORE_PROJECT_ID")
	cfg.FirestoreBaseURL = getEnvString("FIRESTORE_BASE_URL", "https://firestore.googleapis.com/v1")
	cfg.FirestoreCollection = getEnvString("FIRESTORE_COLLECTION", "userProgress")
	cfg.RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", 5*time.Second)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRegister = getEnvInt("RATE_LIMIT_REGISTER", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

// RemoteEnabled はリモートストアミラーリングが設定されているかを返す。
func (c *Config) RemoteEnabled() bool {
	return c.FirestoreProjectID != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
