package services

import "time"

// dayKey collapses t to its calendar date in loc.
func dayKey(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return y*10000 + int(m)*100 + d
}

// sameDay compares calendar dates in the location of b.
func sameDay(a, b time.Time) bool {
	return dayKey(a, b.Location()) == dayKey(b, b.Location())
}

// activeOn reports whether begin <= asOf <= (end or asOf) on calendar dates.
func activeOn(begin time.Time, end *time.Time, asOf time.Time) bool {
	loc := asOf.Location()
	today := dayKey(asOf, loc)
	if dayKey(begin, loc) > today {
		return false
	}
	return end == nil || today <= dayKey(*end, loc)
}
