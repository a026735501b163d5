package conversation

import (
	"time"

	"vestnik/internal/submission"
)

// Holiday is a fixed month/day celebration with a ready-made
// congratulation template.
type Holiday struct {
	Name     string // user-facing, with emoji
	Month    time.Month
	Day      int
	Template string
}

// Holidays the bot offers template congratulations for.
var Holidays = []Holiday{
	{"🎄 Новый год", time.January, 1, "С Новым годом!\nПусть исполняются все ваши желания!"},
	{"🪖 23 Февраля", time.February, 23, "С Днём защитника Отечества!\nМужества, отваги и мирного неба над головой!"},
	{"💐 8 Марта", time.March, 8, "С 8 Марта!\nКрасоты, счастья и весеннего настроения!"},
	{"🏅 9 Мая", time.May, 9, "С Днём Победы!\nВечная память героям!"},
	{"🇷🇺 12 Июня", time.June, 12, "С Днём России!\nМира, благополучия и процветания нашей стране!"},
	{"🤝 4 Ноября", time.November, 4, "С Днём народного единства!\nСогласия, мира и добра!"},
}

// windowDays bounds template selection to the days around the holiday.
const windowDays = 5

// Occurrence returns the holiday date whose +-5 day window contains
// today. Adjacent years are checked so the window works across New
// Year's eve.
func (h Holiday) Occurrence(today time.Time) (time.Time, bool) {
	day := submission.DateOnly(today)
	for _, year := range []int{day.Year() - 1, day.Year(), day.Year() + 1} {
		date := time.Date(year, h.Month, h.Day, 0, 0, 0, 0, day.Location())
		from := date.AddDate(0, 0, -windowDays)
		to := date.AddDate(0, 0, windowDays)
		if !day.Before(from) && !day.After(to) {
			return date, true
		}
	}
	return time.Time{}, false
}

// ActiveAt reports whether the holiday can currently be selected.
func (h Holiday) ActiveAt(today time.Time) bool {
	_, ok := h.Occurrence(today)
	return ok
}
