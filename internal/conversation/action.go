package conversation

import (
	"strconv"

	"vestnik/pkg/tgui"
)

// Namespace prefixes conversation callback data ("conv:action:payload").
const Namespace = "conv"

// ActionKind is the closed set of conversation callback actions.
// Callback data is decoded into this set once, at the dispatch
// boundary, so handlers never parse strings.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSelectType
	ActionSelectSubtype
	ActionSelectHoliday
	ActionCustomCongrat
	ActionAcceptCensored
	ActionEditCensored
	ActionEditSenderName
	ActionEditRecipientName
	ActionBackStart
	ActionBackHolidays
	ActionBackSubtypes
	ActionBackText
)

type Action struct {
	Kind ActionKind
	// Arg carries the payload: a type/subtype value or a holiday index.
	Arg string
}

// HolidayIndex resolves the holiday payload of ActionSelectHoliday.
func (a Action) HolidayIndex() (int, bool) {
	i, err := strconv.Atoi(a.Arg)
	if err != nil || i < 0 || i >= len(Holidays) {
		return 0, false
	}
	return i, true
}

var actionVerbs = map[string]ActionKind{
	"type":      ActionSelectType,
	"subtype":   ActionSelectSubtype,
	"holiday":   ActionSelectHoliday,
	"custom":    ActionCustomCongrat,
	"accept":    ActionAcceptCensored,
	"edit":      ActionEditCensored,
	"sender":    ActionEditSenderName,
	"recipient": ActionEditRecipientName,
	"start":     ActionBackStart,
	"holidays":  ActionBackHolidays,
	"subtypes":  ActionBackSubtypes,
	"text":      ActionBackText,
}

// DecodeAction parses conversation callback data. The second return is
// false for data belonging to other namespaces.
func DecodeAction(data string) (Action, bool) {
	ns, verb, payload := tgui.Parse(data)
	if ns != Namespace {
		return Action{}, false
	}
	kind, ok := actionVerbs[verb]
	if !ok {
		return Action{}, false
	}
	return Action{Kind: kind, Arg: payload}, true
}

func actionData(verb, payload string) string {
	return tgui.Data(Namespace, verb, payload)
}
