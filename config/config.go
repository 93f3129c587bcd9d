package config

import (
	"time"
)

type Configs struct {
	Env string

	ApiServer   ServerConfigs
	Database    DatabaseConfigs
	Redis       RedisConfigs
	Discord     DiscordConfigs
	Firebase    FirebaseConfigs
	Groq        GroqConfigs
	Interaction InteractionConfigs
	Chat        ChatConfigs
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

// DatabaseConfigs points at the local sqlite file keeping failure reports.
type DatabaseConfigs struct {
	Path string `toml:"path"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type DiscordConfigs struct {
	ApplicationID string `toml:"application_id"`

	// PublicKey is the hex-encoded Ed25519 key of the application, used to
	// verify inbound interaction webhooks.
	PublicKey string `toml:"public_key"`

	// TimestampTolerance bounds the accepted clock skew of the signature
	// timestamp header. Requests outside the window are rejected even if
	// the signature itself verifies.
	TimestampTolerance time.Duration `toml:"timestamp_tolerance"`
}

type FirebaseConfigs struct {
	DatabaseURL string `toml:"database_url"`
	Secret      string `toml:"secret"`

	// MaxWriteAttempts bounds the read-compute-swap retry loop on version
	// conflicts before giving up.
	MaxWriteAttempts int `toml:"max_write_attempts"`
}

type GroqConfigs struct {
	APIKey           string  `toml:"api_key"`
	CharacterFile    string  `toml:"character_file"`
	MaxTokens        int     `toml:"max_tokens"`
	Temperature      float64 `toml:"temperature"`
	PresencePenalty  float64 `toml:"presence_penalty"`
	FrequencyPenalty float64 `toml:"frequency_penalty"`
}

type InteractionConfigs struct {
	// InlineBudget is the soft deadline for replying synchronously. A
	// handler still running when it fires is switched to the deferred
	// acknowledgment path.
	InlineBudget time.Duration `toml:"inline_budget"`

	// FollowUpExpiry is the hard deadline after which the interaction
	// token can no longer receive a follow-up.
	FollowUpExpiry time.Duration `toml:"follow_up_expiry"`
}

type ChatConfigs struct {
	HistoryLimit int           `toml:"history_limit"`
	Timezone     string        `toml:"timezone"`
	CacheTTL     time.Duration `toml:"cache_ttl"`
}
