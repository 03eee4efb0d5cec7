package digest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/database"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/schedule"
	"github.com/mauv0809/rally/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("CET", 3600)

func setupJob(t *testing.T, userID string) (*Job, *notifier.Mock, Store) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	dash := dashboard.NewMock()
	dash.WeekFunc = func(ctx context.Context, userID string, view dashboard.View) (schedule.Week, error) {
		matches := []schedule.MatchRecord{
			{ID: "m1", Participants: []string{userID, "bob"}, ScheduledAt: "2025-03-04T18:00:00", Status: "Accepted"},
		}
		return schedule.BuildWeek(matches, view.Ref.In(testLoc), view.Options), nil
	}
	n := notifier.NewMock()
	store := NewStore(db)
	job := NewJob(session.NewMockProvider(userID), dash, n, store)
	job.now = func() time.Time { return time.Date(2025, 3, 3, 7, 0, 0, 0, testLoc) }
	return job, n, store
}

func TestRun_SendsOncePerWeek(t *testing.T) {
	job, n, store := setupJob(t, "alice")
	ctx := context.Background()

	res, err := job.Run(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.AlreadySent)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, "mock-ts", res.MessageTS)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, testLoc), res.WeekStart)

	again, err := job.Run(ctx, false)
	require.NoError(t, err)
	assert.True(t, again.AlreadySent)
	assert.Len(t, n.Digests(), 1, "the second run must not post")

	records, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C-mock", records[0].ChannelID)
	assert.Equal(t, 1, records[0].MatchCount)
	assert.Equal(t, "2025-03-03", records[0].WeekStart.Format(weekLayout))
}

func TestRun_ConcurrentRunsPostOnce(t *testing.T) {
	job, n, store := setupJob(t, "alice")
	ctx := context.Background()
	posting := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	n.SendWeeklyDigestFunc = func(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error) {
		once.Do(func() { close(posting) })
		<-gate
		return "C-mock", "mock-ts", nil
	}

	results := make(chan Result, 2)
	errs := make(chan error, 2)
	run := func() {
		res, err := job.Run(ctx, false)
		results <- res
		errs <- err
	}
	go run()
	<-posting
	go run()
	time.Sleep(50 * time.Millisecond)
	close(gate)

	alreadySent := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
		if (<-results).AlreadySent {
			alreadySent++
		}
	}
	assert.Equal(t, 1, alreadySent)
	assert.Len(t, n.Digests(), 1)
	records, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRun_NextWeekSendsAgain(t *testing.T) {
	job, n, _ := setupJob(t, "alice")
	ctx := context.Background()

	_, err := job.Run(ctx, false)
	require.NoError(t, err)
	job.now = func() time.Time { return time.Date(2025, 3, 10, 7, 0, 0, 0, testLoc) }
	res, err := job.Run(ctx, false)

	require.NoError(t, err)
	assert.False(t, res.AlreadySent)
	assert.Len(t, n.Digests(), 2)
}

func TestRun_DryRunDoesNotRecord(t *testing.T) {
	job, n, store := setupJob(t, "alice")
	ctx := context.Background()

	res, err := job.Run(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)

	digests := n.Digests()
	require.Len(t, digests, 1)
	assert.True(t, digests[0].DryRun)

	sent, err := store.WasSent(ctx, "alice", res.WeekStart)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestRun_NoSession(t *testing.T) {
	job, n, _ := setupJob(t, "")

	_, err := job.Run(context.Background(), false)

	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Empty(t, n.Digests())

	// The scheduled entry point swallows it.
	job.Scheduled(context.Background())
}

func TestRun_SendFailureIsNotRecorded(t *testing.T) {
	job, n, store := setupJob(t, "alice")
	n.SendWeeklyDigestFunc = func(ctx context.Context, userID string, week schedule.Week, dryRun bool) (string, string, error) {
		return "", "", errors.New("slack down")
	}

	_, err := job.Run(context.Background(), false)

	require.Error(t, err)
	sent, err := store.WasSent(context.Background(), "alice", time.Date(2025, 3, 3, 0, 0, 0, 0, testLoc))
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestStore_RecordTwiceFails(t *testing.T) {
	_, _, store := setupJob(t, "alice")
	ctx := context.Background()
	rec := Record{UserID: "alice", WeekStart: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), SentAt: time.Now()}

	require.NoError(t, store.Record(ctx, rec))
	assert.Error(t, store.Record(ctx, rec))
}
