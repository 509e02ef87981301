package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	Port         string
	HubName      string
	TickInterval int // seconds between movement ticks

	AIProvider string
	AIModel    string
	ClaudeKey  string
	OpenAIKey  string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	tick, _ := strconv.Atoi(getenv("TICK_INTERVAL", "1"))
	if tick < 1 {
		tick = 1
	}
	return Config{
		MySQLDSN:     getenv("MYSQL_DSN", "robotcomms:robotcomms@tcp(127.0.0.1:3306)/robotcomms"),
		RedisURL:     os.Getenv("REDIS_URL"),
		Port:         getenv("PORT", "8080"),
		HubName:      getenv("HUB_NAME", "CENTRAL_HUB"),
		TickInterval: tick,
		AIProvider:   getenv("AI_PROVIDER", "anthropic"),
		AIModel:      os.Getenv("AI_MODEL"),
		ClaudeKey:    os.Getenv("CLAUDE_KEY"),
		OpenAIKey:    os.Getenv("OPENAI_KEY"),
	}
}
