package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	JWTSecret      string

	// SameSubnetOnly gates the local-network join policy: when two
	// participants are both on private addresses they must share a /24.
	SameSubnetOnly bool

	ICE   ICEConfig
	Redis RedisConfig
}

type ICEConfig struct {
	STUNURLs []string
	TURNURLs []string

	// TURNSecret enables coturn-style REST credentials on the
	// ice-servers endpoint when non-empty.
	TURNSecret string
	TURNTTL    time.Duration
}

type RedisConfig struct {
	// Addr enables the presence mirror when non-empty ("host:port").
	Addr     string
	Password string
	DB       int
}

func Load() *Config {
	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	stunURLs := strings.Split(getEnv("STUN_URLS", "stun:stun.l.google.com:19302"), ",")

	var turnURLs []string
	if s := getEnv("TURN_URLS", ""); s != "" {
		turnURLs = strings.Split(s, ",")
	}

	turnTTL, err := time.ParseDuration(getEnv("TURN_CREDENTIAL_TTL", "24h"))
	if err != nil {
		turnTTL = 24 * time.Hour
	}

	sameSubnet, err := strconv.ParseBool(getEnv("SAME_SUBNET_ONLY", "true"))
	if err != nil {
		sameSubnet = true
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: origins,
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		SameSubnetOnly: sameSubnet,
		ICE: ICEConfig{
			STUNURLs:   stunURLs,
			TURNURLs:   turnURLs,
			TURNSecret: getEnv("TURN_SECRET", ""),
			TURNTTL:    turnTTL,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
