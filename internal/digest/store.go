package digest

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NewStore creates a Store backed by the digests table.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) WasSent(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM digests WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(weekLayout)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check digest log: %w", err)
	}
	return n > 0, nil
}

// Record inserts rec. Recording the same user and week twice is an error.
func (s *store) Record(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO digests (user_id, week_start, channel_id, message_ts, match_count, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.UserID, rec.WeekStart.Format(weekLayout), rec.ChannelID, rec.MessageTS, rec.MatchCount, rec.SentAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record digest: %w", err)
	}
	return nil
}

func (s *store) Recent(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, week_start, channel_id, message_ts, match_count, sent_at
		FROM digests WHERE user_id = ?
		ORDER BY week_start DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query digests: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec       Record
			weekStart string
			channelID sql.NullString
			messageTS sql.NullString
			sentAt    int64
		)
		if err := rows.Scan(&rec.UserID, &weekStart, &channelID, &messageTS, &rec.MatchCount, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan digest: %w", err)
		}
		rec.WeekStart, err = time.Parse(weekLayout, weekStart)
		if err != nil {
			return nil, fmt.Errorf("failed to parse week_start %q: %w", weekStart, err)
		}
		rec.ChannelID = channelID.String
		rec.MessageTS = messageTS.String
		rec.SentAt = time.Unix(sentAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
