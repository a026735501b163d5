package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"vestnik/internal/store"
	"vestnik/internal/submission"
	"vestnik/internal/transport"
	"vestnik/pkg/logx"
)

// ErrDisabled is returned when publication is requested without a
// configured channel.
var ErrDisabled = errors.New("publisher: no channel configured")

// Settings is the hot-reloadable part of the publisher configuration.
// A zero ChannelID disables publication while the rest of the bot
// keeps working.
type Settings struct {
	ChannelID   int64
	ChannelName string
	Hashtag     string
	Schedule    string
	Location    *time.Location
}

type Config struct {
	Store    store.Store
	Sender   transport.Sender
	Settings Settings
	Log      logx.Logger
	Now      func() time.Time
}

// Publisher posts approved submissions whose publish date has arrived.
// All publications, scheduled and moderator-triggered, go through one
// mutex and a store compare-and-set, so a submission reaches the
// channel at most once.
type Publisher struct {
	storage store.Store
	sender  transport.Sender
	log     logx.Logger
	now     func() time.Time

	// pubMu serializes individual publications across the cron run and
	// PublishNow calls.
	pubMu sync.Mutex

	mu       sync.Mutex
	settings Settings
	spec     Spec
	cron     *cron.Cron
	baseCtx  context.Context
}

func New(cfg Config) (*Publisher, error) {
	spec, err := ParseSchedule(cfg.Settings.Schedule)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		storage:  cfg.Store,
		sender:   cfg.Sender,
		log:      cfg.Log,
		now:      cfg.Now,
		settings: cfg.Settings,
		spec:     spec,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.settings.Location == nil {
		p.settings.Location = time.Local
	}
	return p, nil
}

// Enabled reports whether a channel is configured.
func (p *Publisher) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings.ChannelID != 0
}

// Start begins the scheduled publish runs. ctx bounds the work done by
// scheduled runs and must stay valid until Stop.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron != nil {
		return fmt.Errorf("publisher already started")
	}
	p.baseCtx = ctx
	c, err := p.buildCron()
	if err != nil {
		return err
	}
	p.cron = c
	p.cron.Start()
	p.log.Info("publisher started",
		logx.String("schedule", p.settings.Schedule),
		logx.Int64("channel_id", p.settings.ChannelID))
	return nil
}

// Stop halts the schedule, waiting for an in-flight run up to ctx.
func (p *Publisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply installs new settings, rescheduling if needed. Used on config
// hot reload.
func (p *Publisher) Apply(s Settings) error {
	spec, err := ParseSchedule(s.Schedule)
	if err != nil {
		return err
	}
	if s.Location == nil {
		s.Location = time.Local
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	reschedule := p.cron != nil &&
		(s.Schedule != p.settings.Schedule || s.Location.String() != p.settings.Location.String())
	p.settings = s
	p.spec = spec
	if !reschedule {
		return nil
	}

	old := p.cron
	c, err := p.buildCron()
	if err != nil {
		return err
	}
	p.cron = c
	p.cron.Start()
	old.Stop()
	p.log.Info("publish schedule updated", logx.String("schedule", s.Schedule))
	return nil
}

// buildCron is called with p.mu held.
func (p *Publisher) buildCron() (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(p.settings.Location))
	job := func() {
		ctx := p.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}
		p.RunCycle(ctx)
	}
	switch p.spec.Kind {
	case SpecCron:
		if _, err := c.AddFunc(p.spec.Cron, job); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", p.spec.Cron, err)
		}
	case SpecInterval:
		c.Schedule(cron.Every(p.spec.Every), cron.FuncJob(job))
	}
	return c, nil
}

// RunCycle publishes every approved submission whose date has arrived.
func (p *Publisher) RunCycle(ctx context.Context) {
	if !p.Enabled() {
		return
	}
	subs, err := p.storage.ListApprovedUnpublished(ctx)
	if err != nil {
		p.log.Error("publish queue listing failed", logx.Err(err))
		return
	}
	today := p.today()

	published := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		if !sub.EligibleAt(today) {
			continue
		}
		if err := p.publishOne(ctx, sub.ID); err != nil {
			p.log.Error("publication failed", logx.Int64("id", sub.ID), logx.Err(err))
			continue
		}
		published++
		// Space the posts out a little to stay under flood limits.
		select {
		case <-time.After(300 * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}
	if published > 0 {
		p.log.Info("publish run finished", logx.Int("published", published))
	}
}

// PublishNow publishes one submission immediately, re-reading its
// current state first.
func (p *Publisher) PublishNow(ctx context.Context, id int64) error {
	if !p.Enabled() {
		return ErrDisabled
	}
	return p.publishOne(ctx, id)
}

func (p *Publisher) publishOne(ctx context.Context, id int64) error {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()

	// Fresh read under the lock: the row may have been published or
	// re-decided since the caller saw it.
	sub, err := p.storage.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != submission.StatusApproved || sub.PublishedAt != nil {
		p.log.Debug("publication skipped",
			logx.Int64("id", id), logx.String("status", string(sub.Status)))
		return nil
	}

	p.mu.Lock()
	channel := transport.ChatTarget{ChatID: p.settings.ChannelID}
	channelName := p.settings.ChannelName
	hashtag := p.settings.Hashtag
	p.mu.Unlock()

	opts := &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}
	if _, err := p.sender.SendText(ctx, channel, RenderPost(sub, hashtag), opts); err != nil {
		return fmt.Errorf("channel send: %w", err)
	}

	if err := p.storage.MarkPublished(ctx, id, p.now()); err != nil {
		// The post is out but the flag did not stick. Surface loudly:
		// without the flag the next run would post again.
		p.log.Error("publish flag not recorded", logx.Int64("id", id), logx.Err(err))
		return err
	}
	p.log.Info("submission published",
		logx.Int64("id", id), logx.Int64("channel_id", channel.ChatID))

	notice := fmt.Sprintf("✅ Ваша заявка #%d опубликована в канале!", id)
	if channelName != "" {
		notice = fmt.Sprintf("✅ Ваша заявка #%d опубликована в канале %s!", id, channelName)
	}
	if _, err := p.sender.SendText(ctx, transport.ChatTarget{ChatID: sub.UserID}, notice, nil); err != nil {
		p.log.Warn("publish notice failed",
			logx.Int64("id", id), logx.Int64("user_id", sub.UserID), logx.Err(err))
	}
	return nil
}

func (p *Publisher) today() time.Time {
	p.mu.Lock()
	loc := p.settings.Location
	p.mu.Unlock()
	return p.now().In(loc)
}
