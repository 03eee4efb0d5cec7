package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Zone-less layouts the backend has been seen to send. They are read in the
// view model's location.
var scheduledAtLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseScheduledAt parses a backend timestamp and returns it in loc.
// A nil loc means time.Local.
func ParseScheduledAt(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range scheduledAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// ComputeWeekWindow returns the Monday..Sunday dates of the week containing ref,
// as midnights in ref's location.
func ComputeWeekWindow(ref time.Time) WeekWindow {
	day := midnight(ref)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)

	var w WeekWindow
	for i := range w {
		w[i] = monday.AddDate(0, 0, i)
	}
	return w
}

// Location is the time zone every date of the window is expressed in.
func (w WeekWindow) Location() *time.Location {
	return w[0].Location()
}

// Start is the Monday of the window.
func (w WeekWindow) Start() time.Time {
	return w[0]
}

// IndexOf returns the position of t's calendar day in the window.
func (w WeekWindow) IndexOf(t time.Time) (int, bool) {
	t = t.In(w.Location())
	for i, d := range w {
		if sameDay(d, t) {
			return i, true
		}
	}
	return 0, false
}

// Next returns the following week.
func (w WeekWindow) Next() WeekWindow {
	return ComputeWeekWindow(w[0].AddDate(0, 0, 7))
}

// Previous returns the preceding week.
func (w WeekWindow) Previous() WeekWindow {
	return ComputeWeekWindow(w[0].AddDate(0, 0, -7))
}

// BucketByDay assigns each match to the day of the window its start falls on,
// compared by calendar day in the window's location. Input order is kept inside a
// bucket. Matches that cannot be parsed are reported in Malformed; parsed matches
// on other weeks are only counted.
func BucketByDay(matches []MatchRecord, window WeekWindow) WeekGrid {
	loc := window.Location()
	grid := WeekGrid{
		Window:    window,
		Malformed: []MalformedRecordError{},
	}
	for i, date := range window {
		grid.Days[i] = DayBucket{Date: date, Matches: []MatchRecord{}}
	}

	for _, m := range matches {
		start, err := m.StartTime(loc)
		if err != nil {
			grid.Malformed = append(grid.Malformed, MalformedRecordError{
				MatchID:     m.ID,
				ScheduledAt: m.ScheduledAt,
				Reason:      err.Error(),
			})
			continue
		}
		idx, ok := window.IndexOf(start)
		if !ok {
			grid.OutsideWindow++
			continue
		}
		grid.Days[idx].Matches = append(grid.Days[idx].Matches, m)
	}
	return grid
}

// Day returns the bucket for date, or nil when date is not in the window.
func (g WeekGrid) Day(date time.Time) []MatchRecord {
	idx, ok := g.Window.IndexOf(date)
	if !ok {
		return nil
	}
	return g.Days[idx].Matches
}

// Count is the number of bucketed matches.
func (g WeekGrid) Count() int {
	n := 0
	for _, d := range g.Days {
		n += len(d.Matches)
	}
	return n
}

// BuildWeek classifies matches with opts and buckets the result into the week of ref.
func BuildWeek(matches []MatchRecord, ref time.Time, opts FilterOptions) Week {
	classified := Classify(matches, opts)
	return Week{
		Reference: ref,
		Options:   opts,
		Matches:   classified,
		WeekGrid:  BucketByDay(classified, ComputeWeekWindow(ref)),
	}
}

// SortByTime returns a copy of matches ordered by start time. Unparsable entries go last
// in their original order.
func SortByTime(matches []MatchRecord, loc *time.Location) []MatchRecord {
	type keyed struct {
		m     MatchRecord
		start time.Time
		ok    bool
	}
	items := make([]keyed, len(matches))
	for i, m := range matches {
		start, err := m.StartTime(loc)
		items[i] = keyed{m: m, start: start, ok: err == nil}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].ok && items[i].start.Before(items[j].start)
	})

	out := make([]MatchRecord, len(items))
	for i, it := range items {
		out[i] = it.m
	}
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
