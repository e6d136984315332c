package worklog

import (
	"strconv"
	"strings"
)

// HoursMinutes is a duration split into whole hours and leftover minutes.
type HoursMinutes struct {
	Hours   int
	Minutes int
}

// SecondsToHoursMinutes splits s seconds into hours and minutes; leftover
// seconds are dropped.
func SecondsToHoursMinutes(s int) HoursMinutes {
	return HoursMinutes{Hours: s / 3600, Minutes: (s % 3600) / 60}
}

// Display renders the value the way the worklog sheet shows it: the bare hour
// count when there are no minutes, otherwise the hour count, sep, and the
// digits after the point of minutes/60 (1h30m -> "1,5" with sep ",").
func (hm HoursMinutes) Display(sep string) string {
	h := strconv.Itoa(hm.Hours)
	if hm.Minutes == 0 {
		return h
	}
	frac := strconv.FormatFloat(float64(hm.Minutes)/60, 'f', -1, 64)
	frac = strings.TrimPrefix(frac, "0.")
	return h + sep + frac
}

// SecondsToMinutes returns whole minutes in s seconds.
func SecondsToMinutes(s int) int {
	return s / 60
}
