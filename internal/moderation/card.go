package moderation

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"vestnik/internal/submission"
	"vestnik/pkg/tgui"
)

// ReviewCard renders the admin-chat card for a pending submission.
func ReviewCard(sub *submission.Submission) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📨 %s\n\n", tgui.B(fmt.Sprintf("Новая заявка #%d", sub.ID)))
	fmt.Fprintf(&b, "Тип: %s\n", tgui.Esc(typeLine(sub)))
	fmt.Fprintf(&b, "От: %s\n", authorRef(sub))
	fmt.Fprintf(&b, "Дата публикации: %s\n", sub.PublishDate.Format("02.01.2006"))

	if sub.Type == submission.TypeCongrat {
		fmt.Fprintf(&b, "Поздравляет: %s\n", tgui.Esc(sub.FromName))
		fmt.Fprintf(&b, "Кого: %s\n", tgui.Esc(sub.ToName))
	}
	fmt.Fprintf(&b, "\n%s", tgui.Esc(sub.Text))

	return b.String()
}

// DecidedCard re-renders a card after the moderator's decision so
// repeated button presses stay visibly idempotent.
func DecidedCard(sub *submission.Submission) string {
	return ReviewCard(sub) + "\n\n" + string(tgui.B(statusLine(sub.Status)))
}

func statusLine(st submission.Status) string {
	switch st {
	case submission.StatusApproved:
		return "✅ Одобрена"
	case submission.StatusRejected:
		return "❌ Отклонена"
	case submission.StatusPublished:
		return "📣 Опубликована"
	}
	return string(st)
}

func typeLine(sub *submission.Submission) string {
	label := submission.TypeLabel(sub.Type)
	switch {
	case sub.CongratTag != "":
		return label + " (" + sub.CongratTag + ")"
	case sub.Subtype != submission.SubtypeNone:
		return label + " / " + submission.SubtypeLabel(sub.Subtype)
	}
	return label
}

func authorRef(sub *submission.Submission) tgui.H {
	if sub.Username != "" {
		return tgui.Esc(fmt.Sprintf("@%s (id %d)", sub.Username, sub.UserID))
	}
	return tgui.Mention(fmt.Sprintf("id %d", sub.UserID), sub.UserID)
}

// ReviewKeyboard builds the approve/reject buttons for a card.
func ReviewKeyboard(id int64) *tele.ReplyMarkup {
	return tgui.NewInline().Row(
		tgui.Btn("✅ Одобрить", approveData(id)),
		tgui.Btn("❌ Отклонить", rejectData(id)),
	).Markup()
}
