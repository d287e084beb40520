package leaderboard

import "time"

// WeekOf returns the half-open window [monday, nextMonday) of the calendar
// week containing t, in t's location. An event at Sunday 23:59:59 is inside
// the window; one at the following Monday 00:00:00 starts the next week.
func WeekOf(t time.Time) (start, end time.Time) {
	// time.Weekday has Sunday = 0; shift so Monday = 0
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	year, month, day := t.AddDate(0, 0, -daysSinceMonday).Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 7)
	return start, end
}
