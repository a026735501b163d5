// Package moderation delivers new submissions to the admin chat and
// applies the moderator's approve/reject decisions.
package moderation

import (
	"strconv"

	"vestnik/pkg/tgui"
)

// Namespace prefixes moderation callback data ("mod:verb:id").
const Namespace = "mod"

// Decision is a decoded moderator callback.
type Decision struct {
	Approve bool
	ID      int64
}

// DecodeDecision parses moderation callback data. The second return is
// false for data belonging to other namespaces.
func DecodeDecision(data string) (Decision, bool) {
	ns, verb, payload := tgui.Parse(data)
	if ns != Namespace {
		return Decision{}, false
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || id <= 0 {
		return Decision{}, false
	}
	switch verb {
	case "approve":
		return Decision{Approve: true, ID: id}, true
	case "reject":
		return Decision{Approve: false, ID: id}, true
	}
	return Decision{}, false
}

func approveData(id int64) string {
	return tgui.Data(Namespace, "approve", strconv.FormatInt(id, 10))
}

func rejectData(id int64) string {
	return tgui.Data(Namespace, "reject", strconv.FormatInt(id, 10))
}
