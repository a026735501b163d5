package config

import (
	"strings"

	"vestnik/pkg/logx"
)

// SummarizeChange returns the changed top-level sections and safe
// structured attrs for logging. Never includes secrets (token).
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 10)

	if strings.TrimSpace(oldCfg.Telegram.PollTimeout) != strings.TrimSpace(newCfg.Telegram.PollTimeout) ||
		oldCfg.Telegram.ChannelID != newCfg.Telegram.ChannelID ||
		oldCfg.Telegram.ChannelName != newCfg.Telegram.ChannelName ||
		oldCfg.Telegram.ChannelHashtag != newCfg.Telegram.ChannelHashtag {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.channel_set", newCfg.Telegram.ChannelID != 0),
			logx.String("telegram.channel_name", newCfg.Telegram.ChannelName),
		)
	}

	if oldCfg.Moderation != newCfg.Moderation {
		changed = append(changed, "moderation")
	}

	if oldCfg.Publisher != newCfg.Publisher {
		changed = append(changed, "publisher")
		attrs = append(attrs,
			logx.String("publisher.schedule", newCfg.Publisher.Schedule),
			logx.String("publisher.timezone", newCfg.Publisher.Timezone),
		)
	}

	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
	}

	if oldCfg.Censor != newCfg.Censor {
		changed = append(changed, "censor")
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logx.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}

	return changed, attrs
}
