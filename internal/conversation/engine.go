// Package conversation drives the per-user submission dialogue: a
// state machine from type selection through content input, censoring
// and completion.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"vestnik/internal/censor"
	"vestnik/internal/store"
	"vestnik/internal/submission"
	"vestnik/internal/transport"
	"vestnik/pkg/logx"
	"vestnik/pkg/tgui"
)

// Notifier receives completed submissions for moderation.
type Notifier interface {
	SubmissionReceived(ctx context.Context, sub *submission.Submission)
}

type Config struct {
	Sender      transport.Sender
	Store       store.Store
	Censor      *censor.Censor
	Notifier    Notifier
	ChannelName string
	Log         logx.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Engine owns all user sessions and routes dialogue events through an
// explicit (stage, action) transition table.
type Engine struct {
	sender      transport.Sender
	store       store.Store
	censor      *censor.Censor
	notify      Notifier
	channelName string
	log         logx.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session

	callbacks map[transitionKey]callbackFn
	texts     map[Stage]textFn
}

// event carries the reply route of one inbound update. A set edit ref
// means the originating message should be edited in place.
type event struct {
	chatID   int64
	userID   int64
	username string
	edit     *transport.MessageRef
}

type transitionKey struct {
	stage  Stage
	action ActionKind
}

type (
	callbackFn func(ctx context.Context, s *Session, ev event, a Action)
	textFn     func(ctx context.Context, s *Session, ev event, text string)
)

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		sender:      cfg.Sender,
		store:       cfg.Store,
		censor:      cfg.Censor,
		notify:      cfg.Notifier,
		channelName: cfg.ChannelName,
		log:         cfg.Log,
		now:         cfg.Now,
		sessions:    make(map[int64]*Session),
	}
	if e.now == nil {
		e.now = time.Now
	}

	// The transition table is the single source of truth for which
	// action is legal in which stage. ActionBackStart is global and
	// handled before the lookup.
	e.callbacks = map[transitionKey]callbackFn{
		{StageTypeSelect, ActionSelectType}:            e.onSelectType,
		{StageRecipientName, ActionEditSenderName}:     e.onEditSenderName,
		{StageHolidayChoice, ActionSelectHoliday}:      e.onSelectHoliday,
		{StageHolidayChoice, ActionCustomCongrat}:      e.onCustomCongrat,
		{StageHolidayChoice, ActionEditSenderName}:     e.onEditSenderName,
		{StageHolidayChoice, ActionEditRecipientName}:  e.onEditRecipientName,
		{StageCustomText, ActionBackHolidays}:          e.onShowHolidays,
		{StageDateInput, ActionBackText}:               e.onShowCustomPrompt,
		{StageDateInput, ActionBackHolidays}:           e.onShowHolidays,
		{StageSubtypeSelect, ActionSelectSubtype}:      e.onSelectSubtype,
		{StagePlainText, ActionBackSubtypes}:           e.onShowSubtypes,
		{StageCensorApproval, ActionAcceptCensored}:    e.onAcceptCensored,
		{StageCensorApproval, ActionEditCensored}:      e.onEditCensored,
		{StageCensorApproval, ActionBackHolidays}:      e.onShowHolidays,
		{StageCensorApproval, ActionBackSubtypes}:      e.onShowSubtypes,
	}
	e.texts = map[Stage]textFn{
		StageSenderName:    e.onSenderNameText,
		StageRecipientName: e.onRecipientNameText,
		StageCustomText:    e.onCustomTextInput,
		StageDateInput:     e.onDateText,
		StagePlainText:     e.onPlainTextInput,
	}
	return e
}

// ---- entry points (called from the app dispatch loop) ----

// HandleMessage processes a private text message from a user.
func (e *Engine) HandleMessage(ctx context.Context, msg *transport.Message) {
	ev := event{chatID: msg.ChatID, userID: msg.FromID, username: msg.FromUsername}
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		e.startSession(ctx, ev)
		return
	case strings.HasPrefix(text, "/cancel"):
		e.cancel(ctx, ev)
		return
	case strings.HasPrefix(text, "/"):
		e.respond(ctx, ev, textUnknownCommand, nil)
		return
	}

	s := e.session(ev.userID)
	if s == nil {
		e.respond(ctx, ev, textUnknownCommand, nil)
		return
	}
	fn, ok := e.texts[s.Stage]
	if !ok {
		// Stages waiting for a button press; repeat the prompt.
		e.reprompt(ctx, s, ev)
		return
	}
	fn(ctx, s, ev, text)
}

// HandleCallback processes a conversation callback. Returns false for
// callback data belonging to another namespace.
func (e *Engine) HandleCallback(ctx context.Context, cb *transport.Callback) bool {
	a, ok := DecodeAction(cb.Data)
	if !ok {
		return false
	}
	ev := event{
		chatID: cb.ChatID,
		userID: cb.FromID,
		edit:   &transport.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID},
	}

	if a.Kind == ActionBackStart {
		e.startSession(ctx, ev)
		return true
	}

	s := e.session(ev.userID)
	if s == nil {
		e.respond(ctx, ev, textUnknownCommand, nil)
		return true
	}
	fn, ok := e.callbacks[transitionKey{s.Stage, a.Kind}]
	if !ok {
		e.log.Debug("callback ignored for stage",
			logx.Int64("user_id", ev.userID), logx.String("stage", s.Stage.String()))
		return true
	}
	fn(ctx, s, ev, a)
	return true
}

// ---- session bookkeeping ----

func (e *Engine) session(userID int64) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[userID]
}

func (e *Engine) put(s *Session) {
	e.mu.Lock()
	e.sessions[s.UserID] = s
	e.mu.Unlock()
}

func (e *Engine) drop(userID int64) {
	e.mu.Lock()
	delete(e.sessions, userID)
	e.mu.Unlock()
}

// startSession begins a fresh dialogue, overwriting any existing one.
func (e *Engine) startSession(ctx context.Context, ev event) {
	username := ev.username
	if username == "" {
		if old := e.session(ev.userID); old != nil {
			username = old.Username
		}
	}
	s := &Session{
		UserID:   ev.userID,
		ChatID:   ev.chatID,
		Username: username,
		Stage:    StageTypeSelect,
	}
	e.put(s)
	e.respond(ctx, ev, fmt.Sprintf(textChooseType, e.channelName), typeKeyboard())
}

func (e *Engine) cancel(ctx context.Context, ev event) {
	e.drop(ev.userID)
	e.respond(ctx, ev, textCancelled, nil)
}

// ---- callback handlers ----

func (e *Engine) onSelectType(ctx context.Context, s *Session, ev event, a Action) {
	t := submission.Type(a.Arg)
	if !t.Valid() {
		e.respond(ctx, ev, fmt.Sprintf(textChooseType, e.channelName), typeKeyboard())
		return
	}
	s.Type = t
	switch t {
	case submission.TypeCongrat:
		s.Stage = StageSenderName
		e.respond(ctx, ev, textSenderName, startOnlyKeyboard())
	case submission.TypeAnnouncement:
		s.Stage = StageSubtypeSelect
		e.respond(ctx, ev, textChooseSubtype, subtypeKeyboard())
	case submission.TypeNews:
		s.Stage = StagePlainText
		e.respond(ctx, ev, fmt.Sprintf(textNewsPrompt, submission.MaxPlainText), plainTextKeyboard(t))
	}
}

func (e *Engine) onEditSenderName(ctx context.Context, s *Session, ev event, _ Action) {
	s.Stage = StageSenderName
	e.respond(ctx, ev, textSenderEdit, startOnlyKeyboard())
}

func (e *Engine) onEditRecipientName(ctx context.Context, s *Session, ev event, _ Action) {
	s.Stage = StageRecipientName
	e.respond(ctx, ev, textRecipientEdit, startOnlyKeyboard())
}

func (e *Engine) onSelectHoliday(ctx context.Context, s *Session, ev event, a Action) {
	i, ok := a.HolidayIndex()
	if !ok {
		e.respond(ctx, ev, textChooseHoliday, holidayKeyboard())
		return
	}
	h := Holidays[i]
	occurrence, active := h.Occurrence(e.now())
	if !active {
		e.respond(ctx, ev, fmt.Sprintf(textHolidayClosed, h.Name), holidayKeyboard())
		return
	}
	s.CongratTag = h.Name
	s.Text = h.Template
	s.PublishDate = occurrence
	e.complete(ctx, s, ev)
}

func (e *Engine) onCustomCongrat(ctx context.Context, s *Session, ev event, _ Action) {
	s.CongratTag = ""
	s.Stage = StageCustomText
	e.respond(ctx, ev, fmt.Sprintf(textCustomPrompt, submission.MaxCongratText), customTextKeyboard())
}

func (e *Engine) onSelectSubtype(ctx context.Context, s *Session, ev event, a Action) {
	st := submission.Subtype(a.Arg)
	switch st {
	case submission.SubtypeRide, submission.SubtypeOffer, submission.SubtypeLost:
	default:
		e.respond(ctx, ev, textChooseSubtype, subtypeKeyboard())
		return
	}
	s.Subtype = st
	s.Stage = StagePlainText
	e.respond(ctx, ev, guidanceFor(st), plainTextKeyboard(s.Type))
}

func (e *Engine) onAcceptCensored(ctx context.Context, s *Session, ev event, _ Action) {
	s.Text = s.CensoredText
	if s.Type == submission.TypeCongrat {
		s.Stage = StageDateInput
		e.respond(ctx, ev, "Текст принят с изменениями фильтра. "+textDatePrompt, dateKeyboard())
		return
	}
	s.PublishDate = submission.DateOnly(e.now())
	e.complete(ctx, s, ev)
}

func (e *Engine) onEditCensored(ctx context.Context, s *Session, ev event, _ Action) {
	s.CensoredText = ""
	if s.Type == submission.TypeCongrat {
		s.Stage = StageCustomText
		e.respond(ctx, ev, fmt.Sprintf(textCustomRedo, submission.MaxCongratText), customTextKeyboard())
		return
	}
	s.Stage = StagePlainText
	e.respond(ctx, ev, fmt.Sprintf(textPlainRedo, submission.MaxPlainText), plainTextKeyboard(s.Type))
}

func (e *Engine) onShowHolidays(ctx context.Context, s *Session, ev event, _ Action) {
	if s.Type != submission.TypeCongrat {
		return
	}
	s.Stage = StageHolidayChoice
	e.respond(ctx, ev, textChooseHoliday, holidayKeyboard())
}

func (e *Engine) onShowSubtypes(ctx context.Context, s *Session, ev event, _ Action) {
	if s.Type != submission.TypeAnnouncement {
		return
	}
	s.Stage = StageSubtypeSelect
	e.respond(ctx, ev, textChooseSubtype, subtypeKeyboard())
}

func (e *Engine) onShowCustomPrompt(ctx context.Context, s *Session, ev event, _ Action) {
	s.Stage = StageCustomText
	e.respond(ctx, ev, fmt.Sprintf(textCustomPrompt, submission.MaxCongratText), customTextKeyboard())
}

// ---- text handlers ----

func (e *Engine) onSenderNameText(ctx context.Context, s *Session, ev event, text string) {
	name, err := submission.ValidateName(text)
	if err != nil {
		e.respond(ctx, ev, fmt.Sprintf(textBadName, submission.MaxNameLen), startOnlyKeyboard())
		return
	}
	s.FromName = name
	s.Stage = StageRecipientName
	e.respond(ctx, ev, fmt.Sprintf(textRecipientName, tgui.Esc(name)), recipientKeyboard())
}

func (e *Engine) onRecipientNameText(ctx context.Context, s *Session, ev event, text string) {
	name, err := submission.ValidateName(text)
	if err != nil {
		e.respond(ctx, ev, fmt.Sprintf(textBadName, submission.MaxNameLen), recipientKeyboard())
		return
	}
	s.ToName = name
	s.Stage = StageHolidayChoice
	e.respond(ctx, ev,
		fmt.Sprintf("Имя получателя: %s\n\n%s", tgui.Esc(name), textChooseHoliday),
		holidayKeyboard())
}

func (e *Engine) onCustomTextInput(ctx context.Context, s *Session, ev event, raw string) {
	text, err := submission.ValidateText(submission.TypeCongrat, raw)
	if err != nil {
		e.respond(ctx, ev, textErrFor(err, submission.MaxCongratText), customTextKeyboard())
		return
	}
	masked, flagged := e.censor.Apply(text)
	if flagged {
		s.CensoredText = masked
		s.Stage = StageCensorApproval
		e.respond(ctx, ev, fmt.Sprintf(textCensored, tgui.Esc(masked)), censorKeyboard(s.Type))
		return
	}
	s.Text = text
	s.Stage = StageDateInput
	e.respond(ctx, ev, textDatePrompt, dateKeyboard())
}

func (e *Engine) onDateText(ctx context.Context, s *Session, ev event, raw string) {
	d, err := submission.ParsePublishDate(raw, e.now())
	switch {
	case errors.Is(err, submission.ErrDatePast):
		e.respond(ctx, ev, textDatePast, dateKeyboard())
		return
	case err != nil:
		e.respond(ctx, ev, textDateBadFormat, dateKeyboard())
		return
	}
	s.PublishDate = d
	e.complete(ctx, s, ev)
}

func (e *Engine) onPlainTextInput(ctx context.Context, s *Session, ev event, raw string) {
	text, err := submission.ValidateText(s.Type, raw)
	if err != nil {
		e.respond(ctx, ev, textErrFor(err, submission.MaxPlainText), plainTextKeyboard(s.Type))
		return
	}
	masked, flagged := e.censor.Apply(text)
	if flagged {
		s.CensoredText = masked
		s.Stage = StageCensorApproval
		e.respond(ctx, ev, fmt.Sprintf(textCensored, tgui.Esc(masked)), censorKeyboard(s.Type))
		return
	}
	s.Text = text
	s.PublishDate = submission.DateOnly(e.now())
	e.complete(ctx, s, ev)
}

func textErrFor(err error, limit int) string {
	if errors.Is(err, submission.ErrTextTooLong) {
		return fmt.Sprintf(textTooLong, limit)
	}
	return textEmptyText
}

// ---- completion ----

func (e *Engine) complete(ctx context.Context, s *Session, ev event) {
	sub := &submission.Submission{
		UserID:      s.UserID,
		Username:    s.Username,
		Type:        s.Type,
		Subtype:     s.Subtype,
		FromName:    s.FromName,
		ToName:      s.ToName,
		CongratTag:  s.CongratTag,
		Text:        s.Text,
		PublishDate: s.PublishDate,
		CreatedAt:   e.now(),
	}
	if _, err := e.store.Insert(ctx, sub); err != nil {
		e.log.Error("submission insert failed",
			logx.Int64("user_id", s.UserID), logx.String("type", string(s.Type)), logx.Err(err))
		e.respond(ctx, ev, textSaveFailed, nil)
		e.drop(s.UserID)
		return
	}
	e.log.Info("submission received",
		logx.Int64("id", sub.ID), logx.Int64("user_id", sub.UserID), logx.String("type", string(sub.Type)))

	e.respond(ctx, ev, textSubmitted, nil)
	if e.notify != nil {
		e.notify.SubmissionReceived(ctx, sub)
	}
	e.drop(s.UserID)
}

// ---- replies ----

// reprompt repeats the current stage's prompt for stages that expect a
// button press but received free text.
func (e *Engine) reprompt(ctx context.Context, s *Session, ev event) {
	switch s.Stage {
	case StageTypeSelect:
		e.respond(ctx, ev, fmt.Sprintf(textChooseType, e.channelName), typeKeyboard())
	case StageHolidayChoice:
		e.respond(ctx, ev, textChooseHoliday, holidayKeyboard())
	case StageSubtypeSelect:
		e.respond(ctx, ev, textChooseSubtype, subtypeKeyboard())
	case StageCensorApproval:
		e.respond(ctx, ev, fmt.Sprintf(textCensored, tgui.Esc(s.CensoredText)), censorKeyboard(s.Type))
	}
}

func (e *Engine) respond(ctx context.Context, ev event, text string, markup *tele.ReplyMarkup) {
	opts := &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}
	if markup != nil {
		opts.ReplyMarkupAdapter = markup
	}
	if ev.edit != nil {
		if err := e.sender.EditText(ctx, *ev.edit, text, opts); err == nil {
			return
		}
		// Edit can fail when the message is too old; fall through to a
		// regular send.
	}
	if _, err := e.sender.SendText(ctx, transport.ChatTarget{ChatID: ev.chatID}, text, opts); err != nil {
		e.log.Warn("reply failed", logx.Int64("chat_id", ev.chatID), logx.Err(err))
	}
}
