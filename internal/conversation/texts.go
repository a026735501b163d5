package conversation

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"vestnik/internal/submission"
	"vestnik/pkg/tgui"
)

const (
	textChooseType     = "Добро пожаловать в %s!\nВыберите тип заявки:"
	textSenderName     = "Как вас зовут? (кто поздравляет, например: Внук Виталий)"
	textSenderEdit     = "Введите исправленное имя отправителя (кто поздравляет):"
	textRecipientName  = "Имя отправителя: %s\n\nКого вы хотите поздравить? (например: Бабушку Вику)"
	textRecipientEdit  = "Введите исправленное имя получателя (кого поздравляете):"
	textChooseHoliday  = "Выберите праздник или тип поздравления:"
	textHolidayClosed  = "❗ Поздравления с праздником «%s» принимаются за 5 дней до и после даты.\nВыберите другой праздник или вернитесь к началу."
	textCustomPrompt   = "Введите ваш текст поздравления (до %d символов):"
	textCustomRedo     = "Введите исправленный текст поздравления (до %d символов):"
	textDatePrompt     = "📅 Укажите дату публикации (ДД.ММ.ГГГГ, ДД-ММ-ГГГГ или 'сегодня'):"
	textDatePast       = "Нельзя указать прошедшую дату. Введите сегодняшнюю или будущую дату:"
	textDateBadFormat  = "Неверный формат даты. Введите дату в формате ДД.ММ.ГГГГ, ДД-ММ-ГГГГ или 'сегодня':"
	textChooseSubtype  = "Выберите тип объявления:"
	textNewsPrompt     = "Введите вашу новость (до %d символов):"
	textPlainRedo      = "Введите исправленный текст (до %d символов):"
	textEmptyText      = "Текст не может быть пустым. Пожалуйста, введите текст:"
	textTooLong        = "Сообщение слишком длинное. Максимум %d символов. Пожалуйста, сократите текст:"
	textBadName        = "Пожалуйста, введите корректное имя (2–%d букв кириллицы, пробел, дефис):"
	textCensored       = "⚠️ Наш фильтр отредактировал ваше сообщение:\n%s\n\nВыберите действие:"
	textSubmitted      = "✅ Ваша заявка отправлена на модерацию!"
	textSaveFailed     = "❌ Произошла ошибка при сохранении вашей заявки. Попробуйте позже."
	textCancelled      = "❌ Действие отменено."
	textUnknownCommand = "Отправьте /start, чтобы подать заявку, или /cancel, чтобы прервать текущую."
)

var subtypeGuidance = map[submission.Subtype]string{
	submission.SubtypeRide:  "Укажите маршрут, дату и время. Например: 'Волгоград, 15 сентября, 8:00, 3 места' (до %d символов)",
	submission.SubtypeOffer: "Опишите что предлагаете. Правило: запрещена реклама. (до %d символов)",
	submission.SubtypeLost:  "Опишите что потеряли/нашли и где. (до %d символов)",
}

func guidanceFor(st submission.Subtype) string {
	g, ok := subtypeGuidance[st]
	if !ok {
		g = "Введите текст вашего объявления (до %d символов):"
	}
	return fmt.Sprintf(g, submission.MaxPlainText)
}

// ---- keyboards ----

func btnBackStart() tele.Btn {
	return tgui.Btn("🔙 Вернуться в начало", actionData("start", ""))
}

func typeKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().Row(
		tgui.Btn(submission.TypeLabel(submission.TypeCongrat), actionData("type", string(submission.TypeCongrat))),
		tgui.Btn(submission.TypeLabel(submission.TypeAnnouncement), actionData("type", string(submission.TypeAnnouncement))),
		tgui.Btn(submission.TypeLabel(submission.TypeNews), actionData("type", string(submission.TypeNews))),
	).Markup()
}

func startOnlyKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().Row(btnBackStart()).Markup()
}

func recipientKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("✏️ Исправить имя отправителя", actionData("sender", ""))).
		Row(btnBackStart()).
		Markup()
}

func holidayKeyboard() *tele.ReplyMarkup {
	kb := tgui.NewInline()
	for i, h := range Holidays {
		kb.Row(tgui.Btn(h.Name, actionData("holiday", strconv.Itoa(i))))
	}
	kb.Row(tgui.Btn("💬 Своё поздравление", actionData("custom", "")))
	kb.Row(tgui.Btn("✏️ Исправить имя получателя", actionData("recipient", "")))
	kb.Row(tgui.Btn("✏️ Исправить имя отправителя", actionData("sender", "")))
	kb.Row(btnBackStart())
	return kb.Markup()
}

func customTextKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("🔙 Вернуться к выбору праздника", actionData("holidays", ""))).
		Row(btnBackStart()).
		Markup()
}

func dateKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("🔙 Вернуться к вводу текста", actionData("text", ""))).
		Row(tgui.Btn("🔙 Вернуться к выбору праздника", actionData("holidays", ""))).
		Row(btnBackStart()).
		Markup()
}

func subtypeKeyboard() *tele.ReplyMarkup {
	kb := tgui.NewInline()
	for _, st := range []submission.Subtype{submission.SubtypeRide, submission.SubtypeOffer, submission.SubtypeLost} {
		kb.Row(tgui.Btn(submission.SubtypeLabel(st), actionData("subtype", string(st))))
	}
	kb.Row(btnBackStart())
	return kb.Markup()
}

func plainTextKeyboard(t submission.Type) *tele.ReplyMarkup {
	kb := tgui.NewInline()
	if t == submission.TypeAnnouncement {
		kb.Row(tgui.Btn("🔙 Вернуться к выбору подтипа", actionData("subtypes", "")))
	}
	kb.Row(btnBackStart())
	return kb.Markup()
}

func censorKeyboard(t submission.Type) *tele.ReplyMarkup {
	kb := tgui.NewInline().
		Row(tgui.Btn("✅ Отправить как есть", actionData("accept", ""))).
		Row(tgui.Btn("✏️ Исправить текст", actionData("edit", "")))
	switch t {
	case submission.TypeCongrat:
		kb.Row(tgui.Btn("🔙 Вернуться к выбору праздника", actionData("holidays", "")))
	case submission.TypeAnnouncement:
		kb.Row(tgui.Btn("🔙 Вернуться к выбору подтипа", actionData("subtypes", "")))
	}
	kb.Row(btnBackStart())
	return kb.Markup()
}
