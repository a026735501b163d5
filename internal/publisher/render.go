package publisher

import (
	"fmt"
	"strings"

	"vestnik/internal/submission"
	"vestnik/pkg/tgui"
)

// RenderPost builds the channel post HTML for a submission.
func RenderPost(sub *submission.Submission, hashtag string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n%s", tgui.B(postTitle(sub)), tgui.Esc(sub.Text))

	switch sub.Type {
	case submission.TypeCongrat:
		if sub.FromName != "" && sub.ToName != "" {
			fmt.Fprintf(&b, "\n\n%s", tgui.I(fmt.Sprintf("%s поздравляет %s.", sub.FromName, sub.ToName)))
		}
	case submission.TypeAnnouncement:
		fmt.Fprintf(&b, "\n\nОбращаться: %s", contactRef(sub))
	case submission.TypeNews:
		fmt.Fprintf(&b, "\n\n%s", tgui.Raw("<i>Новость от: "+contactRef(sub).String()+"</i>"))
	}

	if hashtag != "" {
		fmt.Fprintf(&b, "\n\n%s", tgui.Esc(hashtag))
	}
	return b.String()
}

func postTitle(sub *submission.Submission) string {
	title := submission.TypeLabel(sub.Type)
	switch {
	case sub.CongratTag != "":
		return title + " (" + sub.CongratTag + ")"
	case sub.Subtype != submission.SubtypeNone:
		return title + " / " + submission.SubtypeLabel(sub.Subtype)
	}
	return title
}

func contactRef(sub *submission.Submission) tgui.H {
	if sub.Username != "" {
		return tgui.Esc("@" + sub.Username)
	}
	return tgui.Mention("написать автору", sub.UserID)
}
