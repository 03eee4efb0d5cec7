package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqlStore struct {
	db *sql.DB
}

// NewStore creates a Store backed by the sessions table.
func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

// Load returns ErrNoSession when nobody is logged in.
func (s *sqlStore) Load(ctx context.Context) (Session, error) {
	var (
		sess       Session
		loggedInAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT user_id, token, logged_in_at FROM sessions WHERE id = 1`).
		Scan(&sess.UserID, &sess.Token, &loggedInAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	sess.LoggedInAt = time.Unix(loggedInAt, 0)
	return sess, nil
}

func (s *sqlStore) Save(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token, logged_in_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			token = excluded.token,
			logged_in_at = excluded.logged_in_at;
	`, sess.UserID, sess.Token, sess.LoggedInAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
