package schedule

import (
	"strings"
	"time"
)

// Normalized status values. The backend sends them in any case.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusConfirmed = "confirmed"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// MatchType is the format of a match.
type MatchType string

const (
	MatchTypeSingles MatchType = "Singles"
	MatchTypeDoubles MatchType = "Doubles"
)

// MatchRecord is a match exactly as received from the backend. The view model only reads it.
type MatchRecord struct {
	ID           string    `json:"id" msgpack:"id"`
	Participants []string  `json:"participants" msgpack:"participants"`
	ScheduledAt  string    `json:"scheduled_at" msgpack:"scheduled_at"`
	Location     string    `json:"location" msgpack:"location"`
	Status       string    `json:"status,omitempty" msgpack:"status"`
	Notes        string    `json:"notes,omitempty" msgpack:"notes"`
	MatchType    MatchType `json:"match_type,omitempty" msgpack:"match_type"`
	IsPractice   bool      `json:"is_practice,omitempty" msgpack:"is_practice"`
}

// Requester returns the player who proposed the match.
func (m MatchRecord) Requester() string {
	if len(m.Participants) > 0 {
		return m.Participants[0]
	}
	return ""
}

// Opponent returns the invited player.
func (m MatchRecord) Opponent() string {
	if len(m.Participants) > 1 {
		return m.Participants[1]
	}
	return ""
}

// Type returns the match type, defaulting to singles.
func (m MatchRecord) Type() MatchType {
	switch strings.ToLower(strings.TrimSpace(string(m.MatchType))) {
	case "doubles":
		return MatchTypeDoubles
	default:
		return MatchTypeSingles
	}
}

// NormalizedStatus returns the lower-cased, trimmed status. Empty means absent.
func (m MatchRecord) NormalizedStatus() string {
	return NormalizeStatus(m.Status)
}

// StartTime parses ScheduledAt in loc.
func (m MatchRecord) StartTime(loc *time.Location) (time.Time, error) {
	return ParseScheduledAt(m.ScheduledAt, loc)
}

// Involves reports whether playerID is one of the participants.
func (m MatchRecord) Involves(playerID string) bool {
	for _, p := range m.Participants {
		if p == playerID {
			return true
		}
	}
	return false
}

// WeekWindow is the seven local dates of a week, Monday first.
type WeekWindow [7]time.Time

// DayBucket holds the matches of one calendar day, in input order.
type DayBucket struct {
	Date    time.Time     `json:"date"`
	Matches []MatchRecord `json:"matches"`
}

// WeekGrid is the result of bucketing a match set into a WeekWindow.
type WeekGrid struct {
	Window        WeekWindow             `json:"window"`
	Days          [7]DayBucket           `json:"days"`
	Malformed     []MalformedRecordError `json:"malformed"`
	OutsideWindow int                    `json:"outside_window"`
}

// FilterOptions controls which matches Classify keeps.
type FilterOptions struct {
	PendingOnly     bool `json:"pending_only"`
	IncludeRejected bool `json:"include_rejected"`
}

// Class is the display bucket of a status.
type Class string

const (
	ClassPending Class = "pending"
	ClassActive  Class = "active"
	ClassClosed  Class = "closed"
)

// Week is a classified and bucketed week ready for rendering.
type Week struct {
	Reference time.Time     `json:"reference"`
	Options   FilterOptions `json:"options"`
	Matches   []MatchRecord `json:"matches"`
	WeekGrid
}

// Slot is a candidate start time for the scheduling form.
type Slot struct {
	Start     time.Time `json:"start"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
	Conflicts []string  `json:"conflicts,omitempty"`
}
