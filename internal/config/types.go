package config

type Config struct {
	Telegram   TelegramConfig   `json:"telegram"`
	Moderation ModerationConfig `json:"moderation"`
	Publisher  PublisherConfig  `json:"publisher"`
	Storage    StorageConfig    `json:"storage"`
	Censor     CensorConfig     `json:"censor,omitempty"`
	Logging    LoggingConfig    `json:"logging,omitempty"`
}

type TelegramConfig struct {
	// Token is usually supplied via the TELEGRAM_TOKEN env var, not the file.
	Token string `json:"token,omitempty" env:"TELEGRAM_TOKEN"`

	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`

	// ChannelID is the broadcast channel. When 0, publication is disabled.
	ChannelID int64 `json:"channel_id,omitempty" env:"CHANNEL_ID"`

	// ChannelName is the public @name used in user-facing texts.
	ChannelName string `json:"channel_name,omitempty" env:"CHANNEL_NAME"`

	// ChannelHashtag is appended to every published post (may be empty).
	ChannelHashtag string `json:"channel_hashtag,omitempty"`
}

type ModerationConfig struct {
	// AdminChatID receives review cards and is the only chat allowed to decide.
	AdminChatID int64 `json:"admin_chat_id" env:"ADMIN_CHAT_ID"`
}

type PublisherConfig struct {
	// Schedule accepts a cron expression ("0 10 * * *", "@hourly"),
	// an interval duration ("55m", "2h30m") or HH:MM ("02:30").
	Schedule string `json:"schedule,omitempty" env:"PUBLISH_SCHEDULE"`

	// Timezone for publish-date comparisons and cron evaluation
	// (IANA name, e.g. "Europe/Moscow").
	Timezone string `json:"timezone,omitempty" env:"TIMEZONE"`
}

type StorageConfig struct {
	Path string `json:"path" env:"DATABASE_PATH"`

	// BusyTimeout is a Go duration string; default 5s.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type CensorConfig struct {
	// ExtraTermsFile points to an optional comma-separated list of extra
	// banned terms ('#' starts a comment line).
	ExtraTermsFile string `json:"extra_terms_file,omitempty" env:"BAD_WORDS_FILE"`
}

type LoggingConfig struct {
	Level    string            `json:"level,omitempty" env:"LOG_LEVEL"`
	Console  bool              `json:"console,omitempty"`
	File     LogFileConfig     `json:"file,omitempty"`
	Telegram LogTelegramConfig `json:"telegram,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

type LogTelegramConfig struct {
	Enabled    bool   `json:"enabled,omitempty"`
	ChatID     int64  `json:"chat_id,omitempty"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}
