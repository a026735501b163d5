package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vestnik/internal/store"
	"vestnik/internal/submission"
	"vestnik/internal/transport"
	"vestnik/pkg/logx"
)

// PublishTrigger lets an approval push an already-due submission out
// immediately instead of waiting for the next scheduled run.
type PublishTrigger interface {
	Enabled() bool
	PublishNow(ctx context.Context, id int64) error
}

// Answerer acknowledges callback queries.
type Answerer interface {
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}

type Config struct {
	Store       store.Store
	Sender      transport.Sender
	Answer      Answerer
	Publisher   PublishTrigger
	AdminChatID int64
	Log         logx.Logger
	Now         func() time.Time
}

// Handler owns the moderation side of the flow: it posts review cards
// for new submissions and executes the moderator's decisions.
type Handler struct {
	store       store.Store
	sender      transport.Sender
	answer      Answerer
	publisher   PublishTrigger
	adminChatID int64
	log         logx.Logger
	now         func() time.Time
}

func NewHandler(cfg Config) *Handler {
	h := &Handler{
		store:       cfg.Store,
		sender:      cfg.Sender,
		answer:      cfg.Answer,
		publisher:   cfg.Publisher,
		adminChatID: cfg.AdminChatID,
		log:         cfg.Log,
		now:         cfg.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// SubmissionReceived posts the review card for a freshly stored
// submission to the admin chat.
func (h *Handler) SubmissionReceived(ctx context.Context, sub *submission.Submission) {
	opts := &transport.SendOptions{
		ParseMode:          "HTML",
		DisablePreview:     true,
		ReplyMarkupAdapter: ReviewKeyboard(sub.ID),
	}
	_, err := h.sender.SendText(ctx, transport.ChatTarget{ChatID: h.adminChatID}, ReviewCard(sub), opts)
	if err != nil {
		h.log.Error("review card delivery failed",
			logx.Int64("id", sub.ID), logx.Int64("admin_chat_id", h.adminChatID), logx.Err(err))
		return
	}
	h.log.Info("submission sent for review",
		logx.Int64("id", sub.ID), logx.String("type", string(sub.Type)))
}

// HandleCallback processes a moderation callback. Returns false for
// callback data belonging to another namespace. Decisions are
// idempotent: a second press on an already decided card only refreshes
// the card.
func (h *Handler) HandleCallback(ctx context.Context, cb *transport.Callback) bool {
	d, ok := DecodeDecision(cb.Data)
	if !ok {
		return false
	}

	if cb.FromID != h.adminChatID {
		h.log.Warn("moderation callback from non-admin",
			logx.Int64("from_id", cb.FromID), logx.Int64("id", d.ID))
		h.ack(ctx, cb.ID, "Недостаточно прав.")
		return true
	}

	sub, err := h.store.GetByID(ctx, d.ID)
	if errors.Is(err, store.ErrNotFound) {
		h.ack(ctx, cb.ID, "Заявка не найдена.")
		return true
	}
	if err != nil {
		h.log.Error("submission lookup failed", logx.Int64("id", d.ID), logx.Err(err))
		h.ack(ctx, cb.ID, "Ошибка, попробуйте ещё раз.")
		return true
	}

	card := transport.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
	if sub.Status != submission.StatusPending {
		h.refreshCard(ctx, card, sub)
		h.ack(ctx, cb.ID, "Заявка уже обработана.")
		return true
	}

	if d.Approve {
		h.approve(ctx, cb.ID, card, sub)
	} else {
		h.reject(ctx, cb.ID, card, sub)
	}
	return true
}

func (h *Handler) approve(ctx context.Context, callbackID string, card transport.MessageRef, sub *submission.Submission) {
	err := h.store.UpdateStatus(ctx, sub.ID, submission.StatusApproved)
	if errors.Is(err, store.ErrDecided) {
		// Lost the race to a concurrent decision; show the current state.
		if cur, gerr := h.store.GetByID(ctx, sub.ID); gerr == nil {
			h.refreshCard(ctx, card, cur)
		}
		h.ack(ctx, callbackID, "Заявка уже обработана.")
		return
	}
	if err != nil {
		h.log.Error("approve failed", logx.Int64("id", sub.ID), logx.Err(err))
		h.ack(ctx, callbackID, "Ошибка, попробуйте ещё раз.")
		return
	}
	sub.Status = submission.StatusApproved
	h.log.Info("submission approved", logx.Int64("id", sub.ID))

	h.refreshCard(ctx, card, sub)
	h.ack(ctx, callbackID, "Одобрено ✅")

	if h.publisher != nil && h.publisher.Enabled() && sub.EligibleAt(h.now()) {
		if err := h.publisher.PublishNow(ctx, sub.ID); err != nil {
			h.log.Error("immediate publish failed", logx.Int64("id", sub.ID), logx.Err(err))
		}
		return
	}
	h.notifyUser(ctx, sub, fmt.Sprintf(
		"✅ Ваша заявка #%d одобрена и будет опубликована %s.",
		sub.ID, sub.PublishDate.Format("02.01.2006")))
}

func (h *Handler) reject(ctx context.Context, callbackID string, card transport.MessageRef, sub *submission.Submission) {
	err := h.store.UpdateStatus(ctx, sub.ID, submission.StatusRejected)
	if errors.Is(err, store.ErrDecided) {
		if cur, gerr := h.store.GetByID(ctx, sub.ID); gerr == nil {
			h.refreshCard(ctx, card, cur)
		}
		h.ack(ctx, callbackID, "Заявка уже обработана.")
		return
	}
	if err != nil {
		h.log.Error("reject failed", logx.Int64("id", sub.ID), logx.Err(err))
		h.ack(ctx, callbackID, "Ошибка, попробуйте ещё раз.")
		return
	}
	sub.Status = submission.StatusRejected
	h.log.Info("submission rejected", logx.Int64("id", sub.ID))

	h.refreshCard(ctx, card, sub)
	h.ack(ctx, callbackID, "Отклонено ❌")
	h.notifyUser(ctx, sub, fmt.Sprintf("❌ Ваша заявка #%d была отклонена модератором.", sub.ID))
}

func (h *Handler) refreshCard(ctx context.Context, card transport.MessageRef, sub *submission.Submission) {
	opts := &transport.SendOptions{ParseMode: "HTML", DisablePreview: true}
	if err := h.sender.EditText(ctx, card, DecidedCard(sub), opts); err != nil {
		h.log.Warn("card refresh failed", logx.Int64("id", sub.ID), logx.Err(err))
	}
}

func (h *Handler) notifyUser(ctx context.Context, sub *submission.Submission, text string) {
	_, err := h.sender.SendText(ctx, transport.ChatTarget{ChatID: sub.UserID}, text, nil)
	if err != nil {
		h.log.Warn("user notification failed",
			logx.Int64("id", sub.ID), logx.Int64("user_id", sub.UserID), logx.Err(err))
	}
}

func (h *Handler) ack(ctx context.Context, callbackID, text string) {
	if h.answer == nil {
		return
	}
	if err := h.answer.AnswerCallback(ctx, callbackID, text); err != nil {
		h.log.Debug("callback answer failed", logx.Err(err))
	}
}
