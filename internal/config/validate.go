package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks everything the bot cannot run without. Schedule
// strings are validated by the publisher through the manager's
// validator hook, not here.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (file or TELEGRAM_TOKEN)")
	}
	if c.Moderation.AdminChatID == 0 {
		return errors.New("moderation.admin_chat_id is required (file or ADMIN_CHAT_ID)")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required (file or DATABASE_PATH)")
	}
	if _, err := ParseDurationField("telegram.poll_timeout", c.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if tz := strings.TrimSpace(c.Publisher.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("publisher.timezone: %w", err)
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the host zone.
func (c *Config) Location() *time.Location {
	tz := strings.TrimSpace(c.Publisher.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
