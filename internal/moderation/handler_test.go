package moderation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vestnik/internal/store"
	"vestnik/internal/submission"
	"vestnik/internal/transport"
	"vestnik/pkg/logx"
)

const adminID int64 = 100

type sentMsg struct {
	chatID int64
	text   string
	edit   bool
}

type recSender struct {
	mu  sync.Mutex
	log []sentMsg
}

func (r *recSender) SendText(_ context.Context, to transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, sentMsg{chatID: to.ChatID, text: text})
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(r.log)}, nil
}

func (r *recSender) EditText(_ context.Context, ref transport.MessageRef, text string, _ *transport.SendOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, sentMsg{chatID: ref.ChatID, text: text, edit: true})
	return nil
}

func (r *recSender) sentTo(chatID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.log {
		if m.chatID == chatID && !m.edit {
			out = append(out, m.text)
		}
	}
	return out
}

func (r *recSender) lastEdit(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.log) - 1; i >= 0; i-- {
		if r.log[i].edit {
			return r.log[i].text
		}
	}
	t.Fatal("no edits recorded")
	return ""
}

type memStore struct {
	mu   sync.Mutex
	subs map[int64]*submission.Submission
}

func newMemStore(subs ...*submission.Submission) *memStore {
	m := &memStore{subs: make(map[int64]*submission.Submission)}
	for _, s := range subs {
		m.subs[s.ID] = s
	}
	return m
}

func (m *memStore) Insert(_ context.Context, s *submission.Submission) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = int64(len(m.subs) + 1)
	m.subs[s.ID] = s
	return s.ID, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*submission.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListApprovedUnpublished(context.Context) ([]*submission.Submission, error) {
	return nil, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, to submission.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return store.ErrNotFound
	}
	if s.Status != submission.StatusPending {
		return store.ErrDecided
	}
	s.Status = to
	return nil
}

func (m *memStore) MarkPublished(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return store.ErrNotFound
	}
	if s.Status != submission.StatusApproved || s.PublishedAt != nil {
		return store.ErrAlreadyPublished
	}
	s.Status = submission.StatusPublished
	s.PublishedAt = &at
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) status(id int64) submission.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[id].Status
}

type recAnswerer struct {
	mu    sync.Mutex
	texts []string
}

func (r *recAnswerer) AnswerCallback(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	return nil
}

func (r *recAnswerer) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		t.Fatal("no callback answers recorded")
	}
	return r.texts[len(r.texts)-1]
}

type fakePublisher struct {
	mu        sync.Mutex
	enabled   bool
	err       error
	published []int64
}

func (f *fakePublisher) Enabled() bool { return f.enabled }

func (f *fakePublisher) PublishNow(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func pendingSub(id int64, publishDate time.Time) *submission.Submission {
	return &submission.Submission{
		ID:          id,
		UserID:      42,
		Username:    "vasya",
		Type:        submission.TypeNews,
		Text:        "Открылась новая пекарня",
		Status:      submission.StatusPending,
		PublishDate: publishDate,
		CreatedAt:   publishDate,
	}
}

func decision(fromID int64, data string) *transport.Callback {
	return &transport.Callback{
		ID:        "cb",
		FromID:    fromID,
		ChatID:    adminID,
		MessageID: 9,
		Data:      data,
	}
}

func newTestHandler(st store.Store, pub *fakePublisher, now time.Time) (*Handler, *recSender, *recAnswerer) {
	sender := &recSender{}
	answer := &recAnswerer{}
	h := NewHandler(Config{
		Store:       st,
		Sender:      sender,
		Answer:      answer,
		Publisher:   pub,
		AdminChatID: adminID,
		Log:         logx.Nop(),
		Now:         func() time.Time { return now },
	})
	return h, sender, answer
}

func TestReviewCardEscapesUserText(t *testing.T) {
	t.Parallel()

	sub := pendingSub(5, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	sub.Text = "продам <b>гараж</b>"

	card := ReviewCard(sub)
	if !strings.Contains(card, "Новая заявка #5") {
		t.Fatalf("card header missing: %q", card)
	}
	if !strings.Contains(card, "&lt;b&gt;гараж&lt;/b&gt;") {
		t.Fatalf("user HTML not escaped: %q", card)
	}
	if !strings.Contains(card, "@vasya") {
		t.Fatalf("author missing: %q", card)
	}
}

func TestUnauthorizedDecisionIsRefused(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(1, now))
	h, _, answer := newTestHandler(st, nil, now)

	if !h.HandleCallback(context.Background(), decision(999, approveData(1))) {
		t.Fatal("moderation callback not claimed")
	}
	if got := st.status(1); got != submission.StatusPending {
		t.Fatalf("status = %q, want pending", got)
	}
	if got := answer.last(t); got != "Недостаточно прав." {
		t.Fatalf("answer = %q", got)
	}
}

func TestApprovePublishesImmediatelyWhenDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(1, now))
	pub := &fakePublisher{enabled: true}
	h, sender, _ := newTestHandler(st, pub, now)

	h.HandleCallback(context.Background(), decision(adminID, approveData(1)))

	if got := st.status(1); got != submission.StatusApproved {
		t.Fatalf("status = %q, want approved", got)
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Fatalf("publish trigger = %v, want [1]", pub.published)
	}
	// The publisher owns the user notification on this path.
	if msgs := sender.sentTo(42); len(msgs) != 0 {
		t.Fatalf("unexpected user messages: %v", msgs)
	}
	if got := sender.lastEdit(t); !strings.Contains(got, "✅ Одобрена") {
		t.Fatalf("card not refreshed: %q", got)
	}
}

func TestApproveWithFutureDateNotifiesSchedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(1, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	pub := &fakePublisher{enabled: true}
	h, sender, _ := newTestHandler(st, pub, now)

	h.HandleCallback(context.Background(), decision(adminID, approveData(1)))

	if len(pub.published) != 0 {
		t.Fatalf("future submission must not publish now: %v", pub.published)
	}
	msgs := sender.sentTo(42)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "15.06.2025") {
		t.Fatalf("schedule notice = %v", msgs)
	}
}

func TestRejectNotifiesUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(7, now))
	h, sender, answer := newTestHandler(st, nil, now)

	h.HandleCallback(context.Background(), decision(adminID, rejectData(7)))

	if got := st.status(7); got != submission.StatusRejected {
		t.Fatalf("status = %q, want rejected", got)
	}
	msgs := sender.sentTo(42)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "заявка #7 была отклонена") {
		t.Fatalf("rejection notice = %v", msgs)
	}
	if got := answer.last(t); got != "Отклонено ❌" {
		t.Fatalf("answer = %q", got)
	}
}

func TestRepeatedDecisionIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(1, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	h, sender, answer := newTestHandler(st, nil, now)

	h.HandleCallback(context.Background(), decision(adminID, rejectData(1)))
	h.HandleCallback(context.Background(), decision(adminID, approveData(1)))

	if got := st.status(1); got != submission.StatusRejected {
		t.Fatalf("status = %q, want the first decision to stick", got)
	}
	if got := answer.last(t); got != "Заявка уже обработана." {
		t.Fatalf("answer = %q", got)
	}
	if got := sender.lastEdit(t); !strings.Contains(got, "❌ Отклонена") {
		t.Fatalf("card should show the actual state: %q", got)
	}
}

func TestForeignCallbackNotClaimed(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	h, _, _ := newTestHandler(newMemStore(), nil, now)

	if h.HandleCallback(context.Background(), decision(adminID, "conv:type:news")) {
		t.Fatal("foreign namespace must not be claimed")
	}
}

func TestPublishFailureKeepsApproval(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	st := newMemStore(pendingSub(1, now))
	pub := &fakePublisher{enabled: true, err: errors.New("channel unavailable")}
	h, _, _ := newTestHandler(st, pub, now)

	h.HandleCallback(context.Background(), decision(adminID, approveData(1)))

	// A failed immediate publish leaves the submission approved for the
	// next scheduled run.
	if got := st.status(1); got != submission.StatusApproved {
		t.Fatalf("status = %q, want approved", got)
	}
}
