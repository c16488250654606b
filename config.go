// config.go
//
// Environment configuration for the server. Values come from the process
// environment after godotenv has loaded .env (if present).

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/braindev/internal/httpserver"
)

// Config is everything main reads from the environment.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	DBPath    string
	HTTP      httpserver.Config
}

// loadConfig reads Config with defaults for local development.
func loadConfig() Config {
	def := httpserver.DefaultConfig()
	return Config{
		Port:      getEnv("PORT", "5175"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		DBPath:    getEnv("DB_PATH", "./data/app.db"),
		HTTP: httpserver.Config{
			JWTSecret:      getEnv("JWT_SECRET", def.JWTSecret),
			JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", def.JWTExpiresDays),
			CookieName:     getEnv("COOKIE_NAME", def.CookieName),
			ClientOrigin:   getEnv("CLIENT_ORIGIN", def.ClientOrigin),
			Production:     os.Getenv("NODE_ENV") == "production",
			DailySalt:      getEnv("DAILY_SALT", def.DailySalt),
			BoardWidth:     envFloat("BOARD_WIDTH", def.BoardWidth),
			FramePeriod:    time.Duration(envInt("TRAIN_FRAME_MS", int(def.FramePeriod.Milliseconds()))) * time.Millisecond,
			SessionTTL:     envDuration("SESSION_TTL", def.SessionTTL),
			SessionMax:     envInt("SESSION_MAX", def.SessionMax),
			RequestTimeout: def.RequestTimeout,
		},
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
