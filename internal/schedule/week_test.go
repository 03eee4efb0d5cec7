package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("CET", 60*60)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02 15:04", value, testLoc)
	require.NoError(t, err)
	return d
}

func TestComputeWeekWindow(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		wantMonday string
	}{
		{"monday morning", "2024-01-15 08:00", "2024-01-15 00:00"},
		{"tuesday", "2024-01-16 23:59", "2024-01-15 00:00"},
		{"sunday late", "2024-01-21 23:30", "2024-01-15 00:00"},
		{"across year boundary", "2025-01-01 12:00", "2024-12-30 00:00"},
		{"across month boundary", "2024-03-31 10:00", "2024-03-25 00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWeekWindow(date(t, tt.ref))

			require.Len(t, w, 7)
			assert.True(t, w[0].Equal(date(t, tt.wantMonday)), "got %s", w[0])
			assert.Equal(t, time.Monday, w[0].Weekday())
			assert.Equal(t, time.Sunday, w[6].Weekday())
			for i := 1; i < len(w); i++ {
				assert.True(t, w[i].Equal(w[i-1].AddDate(0, 0, 1)), "day %d is not the day after day %d", i, i-1)
			}
		})
	}
}

func TestComputeWeekWindow_IsPure(t *testing.T) {
	ref := date(t, "2024-01-17 10:00")
	assert.Equal(t, ComputeWeekWindow(ref), ComputeWeekWindow(ref))
}

func TestWeekWindow_NextPrevious(t *testing.T) {
	w := ComputeWeekWindow(date(t, "2024-01-17 10:00"))
	assert.True(t, w.Next().Start().Equal(date(t, "2024-01-22 00:00")))
	assert.True(t, w.Previous().Start().Equal(date(t, "2024-01-08 00:00")))
}

func TestParseScheduledAt(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"rfc3339 utc converted to local", "2024-01-15T09:00:00Z", "2024-01-15 10:00", false},
		{"rfc3339 with offset", "2024-01-15T10:00:00+01:00", "2024-01-15 10:00", false},
		{"zone-less seconds", "2024-01-15T10:00:00", "2024-01-15 10:00", false},
		{"zone-less minutes", "2024-01-15T10:00", "2024-01-15 10:00", false},
		{"space separated", "2024-01-15 10:00", "2024-01-15 10:00", false},
		{"surrounding whitespace", "  2024-01-15 10:00:00 ", "2024-01-15 10:00", false},
		{"empty", "", "", true},
		{"garbage", "next tuesday", "", true},
		{"impossible date", "2024-02-31T10:00:00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScheduledAt(tt.raw, testLoc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(date(t, tt.want)), "got %s", got)
		})
	}
}

func TestBucketByDay(t *testing.T) {
	window := ComputeWeekWindow(date(t, "2024-01-15 12:00"))
	matches := []MatchRecord{
		{ID: "mon-late", ScheduledAt: "2024-01-15T18:00:00", Status: "Accepted"},
		{ID: "mon-early", ScheduledAt: "2024-01-15T08:00:00", Status: "Pending"},
		{ID: "bad", ScheduledAt: "not a date", Status: "Pending"},
		{ID: "sun", ScheduledAt: "2024-01-21T23:59:00", Status: "Scheduled"},
		{ID: "next-week", ScheduledAt: "2024-01-22T00:00:00", Status: "Scheduled"},
		{ID: "utc-late", ScheduledAt: "2024-01-16T23:30:00Z", Status: "Confirmed"},
	}

	grid := BucketByDay(matches, window)

	assert.Equal(t, []string{"mon-late", "mon-early"}, ids(grid.Days[0].Matches), "bucket keeps input order")
	assert.Empty(t, grid.Days[1].Matches)
	assert.Equal(t, []string{"utc-late"}, ids(grid.Days[2].Matches), "23:30Z is Wednesday 00:30 local")
	assert.Equal(t, []string{"sun"}, ids(grid.Days[6].Matches))

	require.Len(t, grid.Malformed, 1)
	assert.Equal(t, "bad", grid.Malformed[0].MatchID)
	assert.ErrorIs(t, grid.Malformed[0], ErrMalformedRecord)
	assert.Equal(t, 1, grid.OutsideWindow)

	assert.Equal(t, len(matches), grid.Count()+len(grid.Malformed)+grid.OutsideWindow)
}

func TestBucketByDay_EveryMatchInExactlyOneBucket(t *testing.T) {
	window := ComputeWeekWindow(date(t, "2024-01-18 12:00"))
	var matches []MatchRecord
	for day := 15; day <= 21; day++ {
		for _, hour := range []string{"00:00", "12:30", "23:59"} {
			matches = append(matches, MatchRecord{
				ID:          time.Date(2024, 1, day, 0, 0, 0, 0, testLoc).Format("02") + "-" + hour,
				ScheduledAt: time.Date(2024, 1, day, 0, 0, 0, 0, testLoc).Format("2006-01-02") + " " + hour,
			})
		}
	}
	matches = append(matches, MatchRecord{ID: "broken", ScheduledAt: "2024-13-01 10:00"})

	grid := BucketByDay(matches, window)

	seen := map[string]int{}
	for i, d := range grid.Days {
		assert.Len(t, d.Matches, 3, "day %d", i)
		for _, m := range d.Matches {
			seen[m.ID]++
			start, err := m.StartTime(testLoc)
			require.NoError(t, err)
			assert.Equal(t, d.Date.Day(), start.Day())
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "match %s bucketed more than once", id)
	}
	assert.Len(t, grid.Malformed, 1)
	assert.Equal(t, len(matches), grid.Count()+len(grid.Malformed)+grid.OutsideWindow)
}

func TestBucketByDay_Idempotent(t *testing.T) {
	window := ComputeWeekWindow(date(t, "2024-01-15 12:00"))
	matches := []MatchRecord{
		{ID: "a", ScheduledAt: "2024-01-17T10:00:00"},
		{ID: "b", ScheduledAt: "2024-01-17T09:00:00"},
		{ID: "c", ScheduledAt: "oops"},
	}

	first := BucketByDay(matches, window)
	second := BucketByDay(matches, window)
	assert.Equal(t, first, second)
}

func TestBucketByDay_EmptySnapshot(t *testing.T) {
	grid := BucketByDay(nil, ComputeWeekWindow(date(t, "2024-01-15 12:00")))
	assert.Equal(t, 0, grid.Count())
	assert.Empty(t, grid.Malformed)
	for _, d := range grid.Days {
		assert.NotNil(t, d.Matches)
	}
}

func TestBuildWeek_PendingAndRejected(t *testing.T) {
	monday := date(t, "2024-01-15 00:00")
	matches := []MatchRecord{
		{ID: "p", Status: "Pending", ScheduledAt: "2024-01-15T10:00:00"},
		{ID: "r", Status: "Rejected", ScheduledAt: "2024-01-16T09:00:00"},
	}

	week := BuildWeek(matches, monday, FilterOptions{IncludeRejected: false})

	assert.Equal(t, []string{"p"}, ids(week.Days[0].Matches))
	assert.Empty(t, week.Days[1].Matches)
	assert.Equal(t, []string{"p"}, ids(week.Matches))
}

func TestSortByTime(t *testing.T) {
	matches := []MatchRecord{
		{ID: "late", ScheduledAt: "2024-01-15T18:00:00"},
		{ID: "bad", ScheduledAt: "??"},
		{ID: "early", ScheduledAt: "2024-01-15T08:00:00"},
		{ID: "early-too", ScheduledAt: "2024-01-15 08:00"},
	}

	sorted := SortByTime(matches, testLoc)

	assert.Equal(t, []string{"early", "early-too", "late", "bad"}, ids(sorted))
	assert.Equal(t, "late", matches[0].ID, "input is not modified")
}

func ids(matches []MatchRecord) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}
	return out
}
