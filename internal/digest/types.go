package digest

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/session"
)

const weekLayout = "2006-01-02"

// Record is one posted digest.
type Record struct {
	UserID     string    `json:"user_id"`
	WeekStart  time.Time `json:"week_start"`
	ChannelID  string    `json:"channel_id"`
	MessageTS  string    `json:"message_ts"`
	MatchCount int       `json:"match_count"`
	SentAt     time.Time `json:"sent_at"`
}

// Result describes what a Run did.
type Result struct {
	UserID      string    `json:"user_id"`
	WeekStart   time.Time `json:"week_start"`
	Matches     int       `json:"matches"`
	ChannelID   string    `json:"channel_id,omitempty"`
	MessageTS   string    `json:"message_ts,omitempty"`
	AlreadySent bool      `json:"already_sent"`
	DryRun      bool      `json:"dry_run"`
}

type store struct {
	db *sql.DB
}

// Job posts the weekly digest of the logged in player.
type Job struct {
	sessions  session.Provider
	dashboard dashboard.Dashboard
	notifier  notifier.Notifier
	store     Store
	now       func() time.Time

	// sendMu makes check, post and record one step for concurrent runs.
	sendMu sync.Mutex
}
