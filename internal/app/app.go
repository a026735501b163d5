// Package app assembles the bot: config, logging, storage, transport,
// the conversation engine, moderation and the publisher.
package app

import (
	"context"
	"fmt"
	"time"

	"vestnik/internal/censor"
	"vestnik/internal/config"
	"vestnik/internal/conversation"
	"vestnik/internal/moderation"
	"vestnik/internal/publisher"
	rtsup "vestnik/internal/runtime/supervisor"
	"vestnik/internal/store"
	"vestnik/internal/transport"
	"vestnik/internal/transport/telegram/adapter"
	"vestnik/pkg/logx"
)

const (
	defaultSchedule    = "09:00"
	defaultPollTimeout = 10 * time.Second
	defaultChannelName = "наш канал"
)

type App struct {
	manager *config.Manager
	logSvc  *logx.Service
	log     logx.Logger

	adapter *adapter.Adapter
	storage store.Store
	pub     *publisher.Publisher
	mod     *moderation.Handler
	engine  *conversation.Engine

	sup     *rtsup.Supervisor
	updates chan transport.Update
	cfgCh   chan *config.Config
}

// New loads and validates the config at path and wires every component.
// Nothing starts running until Start.
func New(path string) (*App, error) {
	a := &App{manager: config.NewManager(path)}

	cfg, err := a.manager.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := publisher.ParseSchedule(scheduleOf(cfg)); err != nil {
		return nil, fmt.Errorf("publisher.schedule: %w", err)
	}

	// The telegram log sink closes over the app so it can use the
	// adapter once it exists.
	a.logSvc, a.log = logx.New(logConfig(cfg), func(ctx context.Context, chatID int64, text string) error {
		ad := a.adapter
		if ad == nil {
			return nil
		}
		_, err := ad.SendText(ctx, transport.ChatTarget{ChatID: chatID}, text, nil)
		return err
	})

	a.manager.SetLogger(a.log.With(logx.String("comp", "config")))
	a.manager.SetValidator(func(_ context.Context, c *config.Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		_, err := publisher.ParseSchedule(scheduleOf(c))
		return err
	})

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, defaultPollTimeout)
	if err != nil {
		return nil, err
	}
	a.adapter, err = adapter.New(
		adapter.Config{Token: cfg.Telegram.Token, PollTimeout: pollTimeout},
		a.log.With(logx.String("comp", "telegram")),
	)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	a.storage, err = store.Open(
		store.Config{Path: cfg.Storage.Path, BusyTimeout: busyTimeout},
		cfg.Location(),
		a.log.With(logx.String("comp", "store")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	a.pub, err = publisher.New(publisher.Config{
		Store:    a.storage,
		Sender:   a.adapter,
		Settings: publisherSettings(cfg),
		Log:      a.log.With(logx.String("comp", "publisher")),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Telegram.ChannelID == 0 {
		a.log.Warn("no channel configured; publication is disabled (set CHANNEL_ID to enable)")
	}

	a.mod = moderation.NewHandler(moderation.Config{
		Store:       a.storage,
		Sender:      a.adapter,
		Answer:      a.adapter,
		Publisher:   a.pub,
		AdminChatID: cfg.Moderation.AdminChatID,
		Log:         a.log.With(logx.String("comp", "moderation")),
	})

	a.engine = conversation.NewEngine(conversation.Config{
		Sender:      a.adapter,
		Store:       a.storage,
		Censor:      newCensor(cfg, a.log),
		Notifier:    a.mod,
		ChannelName: channelNameOf(cfg),
		Log:         a.log.With(logx.String("comp", "conversation")),
	})

	return a, nil
}

// Start launches the update loop, the publish schedule and the config watcher.
func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.NewSupervisor(ctx,
		rtsup.WithLogger(a.log.With(logx.String("comp", "app"))),
		rtsup.WithCancelOnError(false),
	)
	runCtx := a.sup.Context()

	a.updates = make(chan transport.Update, 64)
	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		return err
	}
	if err := a.pub.Start(runCtx); err != nil {
		return err
	}

	a.sup.GoRestart("dispatch", a.dispatch,
		rtsup.WithStopOnCleanExit(false))

	a.sup.Go("config.watch", a.manager.Watch)
	a.cfgCh = a.manager.Subscribe(1)
	a.sup.Go0("config.apply", a.applyLoop)

	if err := a.adapter.UpdateMenuCommands(runCtx, []transport.BotCommand{
		{Command: "/start", Description: "Подать заявку"},
		{Command: "/cancel", Description: "Отменить текущую заявку"},
	}); err != nil {
		a.log.Warn("menu update failed", logx.Err(err))
	}

	a.log.Info("bot started")
	return nil
}

// Stop shuts the pieces down in reverse dependency order, each step
// bounded by ctx.
func (a *App) Stop(ctx context.Context) {
	if err := a.pub.Stop(ctx); err != nil {
		a.log.Warn("publisher stop incomplete", logx.Err(err))
	}
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("telegram stop incomplete", logx.Err(err))
	}
	if a.sup != nil {
		if err := a.sup.Stop(ctx); err != nil {
			a.log.Warn("shutdown incomplete", logx.Err(err))
		}
	}
	a.manager.Unsubscribe(a.cfgCh)
	if err := a.storage.Close(); err != nil {
		a.log.Warn("storage close failed", logx.Err(err))
	}
	a.log.Info("bot stopped")
	_ = a.logSvc.Close()
}

// applyLoop pushes committed config changes into the running components.
func (a *App) applyLoop(ctx context.Context) {
	old := a.manager.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-a.cfgCh:
			if !ok {
				return
			}
			sections, fields := config.SummarizeChange(old, cfg)
			a.log.Info("applying config change",
				append(fields, logx.Any("sections", sections))...)

			a.logSvc.Apply(logConfig(cfg))
			if err := a.pub.Apply(publisherSettings(cfg)); err != nil {
				a.log.Error("publisher settings rejected", logx.Err(err))
			}
			for _, s := range sections {
				// The admin chat and storage are fixed at startup;
				// channel and schedule changes apply live.
				if s == "moderation" || s == "storage" {
					a.log.Warn("change requires restart", logx.String("section", s))
				}
			}
			old = cfg
		}
	}
}

func newCensor(cfg *config.Config, log logx.Logger) *censor.Censor {
	var extra []string
	if path := cfg.Censor.ExtraTermsFile; path != "" {
		terms, err := censor.LoadTermsFile(path)
		if err != nil {
			log.Warn("extra censor terms unavailable", logx.String("path", path), logx.Err(err))
		} else {
			extra = terms
			log.Info("extra censor terms loaded", logx.Int("count", len(terms)))
		}
	}
	return censor.New(extra...)
}

func logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console || !cfg.Logging.File.Enabled,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			ChatID:     cfg.Logging.Telegram.ChatID,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func publisherSettings(cfg *config.Config) publisher.Settings {
	return publisher.Settings{
		ChannelID:   cfg.Telegram.ChannelID,
		ChannelName: cfg.Telegram.ChannelName,
		Hashtag:     cfg.Telegram.ChannelHashtag,
		Schedule:    scheduleOf(cfg),
		Location:    cfg.Location(),
	}
}

func scheduleOf(cfg *config.Config) string {
	if s := cfg.Publisher.Schedule; s != "" {
		return s
	}
	return defaultSchedule
}

func channelNameOf(cfg *config.Config) string {
	if n := cfg.Telegram.ChannelName; n != "" {
		return n
	}
	return defaultChannelName
}
