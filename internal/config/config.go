package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAppSecret はAPP_SECRET未設定時に使用する組み込みデフォルト値。
// 署名鍵とペッパーの導出に使われるため、本番環境では必ず上書きすること。
const DefaultAppSecret = "fitlog-insecure-default-secret"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Secret（署名鍵・ペッパーの導出元）
	AppSecret          string
	DefaultSecretInUse bool

	// Environment
	Production bool

	// Rate Limit
	RedisURL         string // 空の場合はインメモリカウンタを使用
	RateLimitGeneral int
	RateLimitAuth    int
	RateLimitWindow  time.Duration

	// Nutrition API
	NutritionAPIURL    string
	NutritionAPIKey    string
	NutritionAPIMaxRPS float64
	NutritionTimeout   time.Duration

	// LLM API
	LLMAPIURL  string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// Routing
	ProtectedPaths []string
	LoginPath      string
	DashboardPath  string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// APP_SECRETは未設定でもエラーにはならず、組み込みデフォルト値を使用する
// （DefaultSecretInUseがtrueになるので呼び出し側で警告を出すこと）。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Secret: 未設定時は組み込みデフォルト（安全でないため警告対象）
	cfg.AppSecret = os.Getenv("APP_SECRET")
	if cfg.AppSecret == "" {
		cfg.AppSecret = DefaultAppSecret
		cfg.DefaultSecretInUse = true
	}

	cfg.Production = os.Getenv("APP_ENV") == "production"

	// Optional fields with defaults
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 100)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 5)
	cfg.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second)
	cfg.NutritionAPIURL = getEnvString("NUTRITION_API_URL", "")
	cfg.NutritionAPIKey = getEnvString("NUTRITION_API_KEY", "")
	cfg.NutritionAPIMaxRPS = getEnvFloat("NUTRITION_API_MAX_RPS", 5)
	cfg.NutritionTimeout = getEnvDuration("NUTRITION_TIMEOUT", 10*time.Second)
	cfg.LLMAPIURL = getEnvString("LLM_API_URL", "")
	cfg.LLMAPIKey = getEnvString("LLM_API_KEY", "")
	cfg.LLMModel = getEnvString("LLM_MODEL", "gpt-4o-mini")
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", 30*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = cfg.Production
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.ProtectedPaths = getEnvList("PROTECTED_PATHS",
		[]string{"/dashboard", "/profile", "/workout", "/nutrition", "/progress"})
	cfg.LoginPath = getEnvString("LOGIN_PATH", "/login")
	cfg.DashboardPath = getEnvString("DASHBOARD_PATH", "/dashboard")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
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

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
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

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
