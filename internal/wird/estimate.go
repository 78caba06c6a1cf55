package wird

import "unicode/utf8"

// Estimate returns how many days a daily portion of dailyMinutes needs to
// complete the named recitation, echoing the configured duration back.
//
// This is a deterministic placeholder keyed off the name's character count,
// not a real audio-duration model. Always at least one day.
func Estimate(name string, dailyMinutes int) (daysNeeded, minutes int) {
	length := utf8.RuneCountInString(name)%5 + 1
	daysNeeded = length / 2
	if daysNeeded < 1 {
		daysNeeded = 1
	}
	return daysNeeded, dailyMinutes
}
