package schedule

import "time"

// slotBuffer is blocked on each side of an existing match.
const slotBuffer = 60

// IsSlotAvailable reports whether candidate is clear of every existing match on the same
// calendar day. A match starting at S blocks [S-1h, S+1h) at minute granularity.
// The lower bound is inclusive: with a 14:00 match, 13:00 is unavailable while 12:59
// and 15:00 are available (pinned by TestIsSlotAvailable).
// The result is advisory; the backend decides real conflicts.
func IsSlotAvailable(existing []MatchRecord, candidate time.Time) bool {
	return len(Conflicts(existing, candidate)) == 0
}

// DaySlots lists candidate start times on day from the from offset to the to offset
// (inclusive) every step, annotated with availability against existing.
func DaySlots(existing []MatchRecord, day time.Time, from, to, step time.Duration) []Slot {
	if step <= 0 || to < from {
		return []Slot{}
	}
	y, m, d := day.Date()
	slots := make([]Slot, 0, int((to-from)/step)+1)
	for off := from; off <= to; off += step {
		minutes := int(off / time.Minute)
		start := time.Date(y, m, d, minutes/60, minutes%60, 0, 0, day.Location())
		c := Conflicts(existing, start)
		slots = append(slots, Slot{
			Start:     start,
			Label:     start.Format("15:04"),
			Available: len(c) == 0,
			Conflicts: c,
		})
	}
	return slots
}

// Conflicts returns the ids of the matches in existing that block candidate.
func Conflicts(existing []MatchRecord, candidate time.Time) []string {
	loc := candidate.Location()
	c := minuteOfDay(candidate)

	var ids []string
	for _, m := range existing {
		start, err := m.StartTime(loc)
		if err != nil || !sameDay(start, candidate) {
			continue
		}
		s := minuteOfDay(start)
		if c >= s-slotBuffer && c < s+slotBuffer {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
