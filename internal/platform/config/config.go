package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "alumnet/pkg/platform/strings"
)

// Config is built once at process start and handed to the components that
// need it. Nothing reads the environment after FromEnv returns.
type Config struct {
	Addr       string
	AdminToken string

	DatabaseURL string
	Redis       RedisConfig

	JWT      JWTConfig
	Google   GoogleConfig
	LinkedIn LinkedInConfig

	// ProviderTimeout bounds every outbound identity-provider call.
	ProviderTimeout time.Duration

	// TrustedEmailDomains is the deployment-wide allow-list of campus email
	// domains. An address on this list counts as verified even when the
	// college record carries no domain of its own.
	TrustedEmailDomains []string
}

// JWTConfig drives the token issuer.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RotateRefreshTokens switches the refresh exchange from reuse to
	// rotate-and-blacklist. Off by default to match existing clients.
	RotateRefreshTokens bool
}

type GoogleConfig struct {
	ClientID string
}

type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	// BaseURL is overridable for tests; empty means the public API.
	BaseURL string
}

// RedisConfig configures the optional revocation-list backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:        getenv("ALUMNET_ADDR", ":8080"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getint("REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getdur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getdur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getdur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWTConfig{
			// Dev fallback; override in production.
			SigningKey:          getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:              getenv("JWT_ISSUER", "alumnet"),
			AccessTTL:           getdur("ACCESS_TOKEN_TTL", 60*time.Minute),
			RefreshTTL:          getdur("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			RotateRefreshTokens: os.Getenv("ROTATE_REFRESH_TOKENS") == "true",
		},
		Google: GoogleConfig{
			ClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		LinkedIn: LinkedInConfig{
			ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		},
		ProviderTimeout:     getdur("PROVIDER_TIMEOUT", 10*time.Second),
		TrustedEmailDomains: getlist("TRUSTED_EMAIL_DOMAINS", []string{"glbitm.ac.in", "iitd.ac.in", "iiit.ac.in"}),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getlist(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := platformstrings.DedupeAndTrimLower(strings.Split(v, ","))
	if len(out) == 0 {
		return fallback
	}
	return out
}
