package conversation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"vestnik/internal/censor"
	"vestnik/internal/submission"
	"vestnik/internal/transport"
	"vestnik/pkg/logx"
)

// fakeSender records sends and edits in one ordered log.
type fakeSender struct {
	mu  sync.Mutex
	log []string
}

func (f *fakeSender) SendText(_ context.Context, to transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, text)
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(f.log)}, nil
}

func (f *fakeSender) EditText(_ context.Context, _ transport.MessageRef, text string, _ *transport.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, text)
	return nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.log) == 0 {
		t.Fatal("nothing was sent")
	}
	return f.log[len(f.log)-1]
}

type fakeStore struct {
	mu       sync.Mutex
	inserted []*submission.Submission
	failNext bool
}

func (f *fakeStore) Insert(_ context.Context, s *submission.Submission) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return 0, context.DeadlineExceeded
	}
	s.ID = int64(len(f.inserted) + 1)
	s.Status = submission.StatusPending
	f.inserted = append(f.inserted, s)
	return s.ID, nil
}

func (f *fakeStore) GetByID(context.Context, int64) (*submission.Submission, error) {
	return nil, nil
}

func (f *fakeStore) ListApprovedUnpublished(context.Context) ([]*submission.Submission, error) {
	return nil, nil
}

func (f *fakeStore) UpdateStatus(context.Context, int64, submission.Status) error { return nil }

func (f *fakeStore) MarkPublished(context.Context, int64, time.Time) error { return nil }

func (f *fakeStore) Close() error { return nil }

type fakeNotifier struct {
	mu  sync.Mutex
	got []*submission.Submission
}

func (f *fakeNotifier) SubmissionReceived(_ context.Context, s *submission.Submission) {
	f.mu.Lock()
	f.got = append(f.got, s)
	f.mu.Unlock()
}

func newTestEngine(now time.Time) (*Engine, *fakeSender, *fakeStore, *fakeNotifier) {
	sender := &fakeSender{}
	st := &fakeStore{}
	notifier := &fakeNotifier{}
	e := NewEngine(Config{
		Sender:      sender,
		Store:       st,
		Censor:      censor.New(),
		Notifier:    notifier,
		ChannelName: "Небольшой Мир: Николаевск",
		Log:         logx.Nop(),
		Now:         func() time.Time { return now },
	})
	return e, sender, st, notifier
}

const testUser int64 = 42

func sendText(e *Engine, text string) {
	e.HandleMessage(context.Background(), &transport.Message{
		ID:           1,
		ChatID:       testUser,
		FromID:       testUser,
		FromUsername: "vasya",
		Text:         text,
	})
}

func press(e *Engine, verb, payload string) bool {
	return e.HandleCallback(context.Background(), &transport.Callback{
		ID:        "cb",
		FromID:    testUser,
		ChatID:    testUser,
		MessageID: 7,
		Data:      actionData(verb, payload),
	})
}

func TestHolidayCongratFlow(t *testing.T) {
	t.Parallel()

	// Late December: the New Year window is open across the year edge.
	now := time.Date(2024, time.December, 28, 10, 0, 0, 0, time.UTC)
	e, sender, st, notifier := newTestEngine(now)

	sendText(e, "/start")
	if got := sender.last(t); !strings.Contains(got, "Выберите тип заявки") {
		t.Fatalf("welcome prompt missing, got %q", got)
	}

	press(e, "type", string(submission.TypeCongrat))
	sendText(e, "Внук Виталий")
	if got := sender.last(t); !strings.Contains(got, "Внук Виталий") {
		t.Fatalf("sender name not echoed, got %q", got)
	}
	sendText(e, "Бабушку Вику")
	press(e, "holiday", "0")

	if len(st.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(st.inserted))
	}
	sub := st.inserted[0]
	if sub.Type != submission.TypeCongrat || sub.FromName != "Внук Виталий" || sub.ToName != "Бабушку Вику" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if sub.CongratTag != Holidays[0].Name {
		t.Fatalf("congrat tag = %q, want %q", sub.CongratTag, Holidays[0].Name)
	}
	// Selecting New Year in December schedules the upcoming January 1.
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !sub.PublishDate.Equal(want) {
		t.Fatalf("publish date = %v, want %v", sub.PublishDate, want)
	}
	if len(notifier.got) != 1 || notifier.got[0].ID != sub.ID {
		t.Fatalf("moderation was not notified: %+v", notifier.got)
	}
	if got := sender.last(t); got != textSubmitted {
		t.Fatalf("confirmation = %q", got)
	}
	if e.session(testUser) != nil {
		t.Fatal("session should be discarded after completion")
	}
}

func TestHolidayOutsideWindowStaysInChoice(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	e, sender, st, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeCongrat))
	sendText(e, "Внук Виталий")
	sendText(e, "Бабушку Вику")
	press(e, "holiday", "0") // New Year in June

	if len(st.inserted) != 0 {
		t.Fatalf("submission created outside holiday window")
	}
	if got := sender.last(t); !strings.Contains(got, "принимаются за 5 дней") {
		t.Fatalf("window refusal missing, got %q", got)
	}
	if s := e.session(testUser); s == nil || s.Stage != StageHolidayChoice {
		t.Fatalf("stage = %v, want holiday choice", s)
	}
}

func TestAnnouncementCensorAccept(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, sender, st, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeAnnouncement))
	press(e, "subtype", string(submission.SubtypeRide))
	sendText(e, "звоните 89991234567")

	if got := sender.last(t); !strings.Contains(got, "фильтр отредактировал") {
		t.Fatalf("censor prompt missing, got %q", got)
	}
	if s := e.session(testUser); s == nil || s.Stage != StageCensorApproval {
		t.Fatal("expected censor approval stage")
	}

	press(e, "accept", "")

	if len(st.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(st.inserted))
	}
	sub := st.inserted[0]
	if sub.Text != "*** 89991234567" {
		t.Fatalf("text = %q, want masked", sub.Text)
	}
	if sub.Subtype != submission.SubtypeRide {
		t.Fatalf("subtype = %q", sub.Subtype)
	}
	if !sub.PublishDate.Equal(submission.DateOnly(now)) {
		t.Fatalf("publish date = %v, want today", sub.PublishDate)
	}
}

func TestCensorEditReturnsToInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, _, st, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeNews))
	sendText(e, "пишите мне скорее")
	press(e, "edit", "")

	if s := e.session(testUser); s == nil || s.Stage != StagePlainText {
		t.Fatal("expected return to text input")
	}

	sendText(e, "Открылась новая пекарня")
	if len(st.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(st.inserted))
	}
	if got := st.inserted[0].Text; got != "Открылась новая пекарня" {
		t.Fatalf("text = %q", got)
	}
}

func TestCustomCongratDateFlow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, sender, st, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeCongrat))
	sendText(e, "Внук Виталий")
	sendText(e, "Бабушку Вику")
	press(e, "custom", "")
	sendText(e, "С юбилеем, дорогая бабушка!")

	if got := sender.last(t); !strings.Contains(got, "дату публикации") {
		t.Fatalf("date prompt missing, got %q", got)
	}

	sendText(e, "01.01.2020")
	if got := sender.last(t); !strings.Contains(got, "прошедшую дату") {
		t.Fatalf("past date should be rejected, got %q", got)
	}

	sendText(e, "15.06.2030")
	if len(st.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(st.inserted))
	}
	sub := st.inserted[0]
	if sub.CongratTag != "" {
		t.Fatalf("custom congrat should carry no holiday tag, got %q", sub.CongratTag)
	}
	want := time.Date(2030, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !sub.PublishDate.Equal(want) {
		t.Fatalf("publish date = %v, want %v", sub.PublishDate, want)
	}
}

func TestNameValidationKeepsStage(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, sender, _, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeCongrat))
	sendText(e, "John")

	if got := sender.last(t); !strings.Contains(got, "корректное имя") {
		t.Fatalf("name rejection missing, got %q", got)
	}
	if s := e.session(testUser); s == nil || s.Stage != StageSenderName {
		t.Fatal("stage should remain sender name")
	}
}

func TestCancelDropsSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, sender, _, _ := newTestEngine(now)

	sendText(e, "/start")
	sendText(e, "/cancel")
	if e.session(testUser) != nil {
		t.Fatal("session should be dropped on /cancel")
	}

	sendText(e, "произвольный текст")
	if got := sender.last(t); got != textUnknownCommand {
		t.Fatalf("expected start hint, got %q", got)
	}
}

func TestBackToStartResetsSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, _, _, _ := newTestEngine(now)

	sendText(e, "/start")
	press(e, "type", string(submission.TypeCongrat))
	sendText(e, "Внук Виталий")
	press(e, "start", "")

	s := e.session(testUser)
	if s == nil || s.Stage != StageTypeSelect {
		t.Fatal("back to start should reset to type selection")
	}
	if s.FromName != "" {
		t.Fatalf("stale state survived reset: %+v", s)
	}
}

func TestInsertFailureInformsUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	e, sender, st, notifier := newTestEngine(now)
	st.failNext = true

	sendText(e, "/start")
	press(e, "type", string(submission.TypeNews))
	sendText(e, "Открылась новая пекарня")

	if got := sender.last(t); got != textSaveFailed {
		t.Fatalf("expected save failure notice, got %q", got)
	}
	if len(notifier.got) != 0 {
		t.Fatal("moderation must not be notified on failed insert")
	}
	if e.session(testUser) != nil {
		t.Fatal("session should be discarded after failed save")
	}
}
