package main

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hikari-bot/backend/config"
)

func (s *srv) loadConfig() {
	cfg := config.Configs{
		Env: getEnv("ENV", "local"),
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", ""),
			Port: getEnv("PORT", "8080"),
			Cert: os.Getenv("SERVER_CERT"),
			Key:  os.Getenv("SERVER_KEY"),
		},
		Database: config.DatabaseConfigs{
			Path: getEnv("DATABASE_PATH", "hikari.db"),
		},
		Redis: config.RedisConfigs{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Discord: config.DiscordConfigs{
			ApplicationID:      os.Getenv("DISCORD_APPLICATION_ID"),
			PublicKey:          os.Getenv("DISCORD_PUBLIC_KEY"),
			TimestampTolerance: getDuration("DISCORD_TIMESTAMP_TOLERANCE", 5*time.Minute),
		},
		Firebase: config.FirebaseConfigs{
			DatabaseURL:      os.Getenv("FIREBASE_DATABASE_URL"),
			Secret:           os.Getenv("FIREBASE_SECRET"),
			MaxWriteAttempts: getInt("FIREBASE_MAX_WRITE_ATTEMPTS", 4),
		},
		Groq: config.GroqConfigs{
			APIKey:           os.Getenv("GROQ_API_KEY"),
			CharacterFile:    getEnv("CHARACTER_FILE", "character_description.txt"),
			MaxTokens:        getInt("GROQ_MAX_TOKENS", 600),
			Temperature:      0.7,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.3,
		},
		Interaction: config.InteractionConfigs{
			InlineBudget:   getDuration("INLINE_BUDGET", 2500*time.Millisecond),
			FollowUpExpiry: getDuration("FOLLOW_UP_EXPIRY", 14*time.Minute),
		},
		Chat: config.ChatConfigs{
			HistoryLimit: getInt("CHAT_HISTORY_LIMIT", 50),
			Timezone:     getEnv("CHAT_TIMEZONE", "Asia/Taipei"),
			CacheTTL:     getDuration("CHAT_CACHE_TTL", 10*time.Minute),
		},
	}

	// An optional toml file overrides the environment defaults.
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			panic(err)
		}
	}

	s.configs = &cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}

	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}

	return d
}
