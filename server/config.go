package server

import (
	"os"
	"strconv"
)

// Config comes from the environment, every field with a workable
// default. An empty RedisAddr keeps sessions in process memory; an
// empty HistoryPath disables the game log.
type Config struct {
	WebAddr       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	HistoryPath   string
}

func ConfigFromEnv() Config {
	return Config{
		WebAddr:       getenv("ONENIGHT_ADDR", ":8080"),
		RedisAddr:     getenv("ONENIGHT_REDIS_ADDR", ""),
		RedisPassword: getenv("ONENIGHT_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("ONENIGHT_REDIS_DB", 0),
		HistoryPath:   getenv("ONENIGHT_HISTORY", "onenight.db"),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
