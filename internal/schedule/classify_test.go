package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusFixture() []MatchRecord {
	return []MatchRecord{
		{ID: "1", Status: "Pending"},
		{ID: "2", Status: "PENDING"},
		{ID: "3", Status: "Accepted"},
		{ID: "4", Status: "rejected"},
		{ID: "5", Status: "Cancelled"},
		{ID: "6", Status: ""},
		{ID: "7", Status: "Completed"},
		{ID: "8", Status: " pending "},
		{ID: "9", Status: "Scheduled"},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{
			name: "pending only ignores include rejected",
			opts: FilterOptions{PendingOnly: true, IncludeRejected: true},
			want: []string{"1", "2", "8"},
		},
		{
			name: "default drops rejected and cancelled",
			opts: FilterOptions{},
			want: []string{"1", "2", "3", "6", "7", "8", "9"},
		},
		{
			name: "include rejected passes everything through",
			opts: FilterOptions{IncludeRejected: true},
			want: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Classify(statusFixture(), tt.opts)))
		})
	}
}

func TestClassify_PendingOnlyIsSubsetOfAll(t *testing.T) {
	matches := statusFixture()
	all := map[string]bool{}
	for _, m := range Classify(matches, FilterOptions{IncludeRejected: true}) {
		all[m.ID] = true
	}

	for _, m := range Classify(matches, FilterOptions{PendingOnly: true}) {
		assert.True(t, all[m.ID])
		assert.Equal(t, StatusPending, m.NormalizedStatus())
	}
}

func TestClassify_NeverReturnsClosedByDefault(t *testing.T) {
	for _, m := range Classify(statusFixture(), FilterOptions{IncludeRejected: false}) {
		assert.NotEqual(t, StatusRejected, m.NormalizedStatus())
		assert.NotEqual(t, StatusCancelled, m.NormalizedStatus())
	}
}

func TestClassify_AbsentStatus(t *testing.T) {
	matches := []MatchRecord{{ID: "no-status"}}
	assert.Empty(t, Classify(matches, FilterOptions{PendingOnly: true}), "absent status is not pending")
	assert.Len(t, Classify(matches, FilterOptions{}), 1, "absent status is not rejected")
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassPending, ClassOf("Pending"))
	assert.Equal(t, ClassActive, ClassOf("Confirmed"))
	assert.Equal(t, ClassActive, ClassOf(""))
	assert.Equal(t, ClassActive, ClassOf("Something New"))
	assert.Equal(t, ClassClosed, ClassOf("REJECTED"))
	assert.Equal(t, ClassClosed, ClassOf("canceled"))
}

func TestCanRespond(t *testing.T) {
	m := MatchRecord{ID: "m", Participants: []string{"alice", "bob"}, Status: "Pending"}
	assert.True(t, CanRespond(m, "bob"))
	assert.False(t, CanRespond(m, "alice"), "the requester cannot answer their own request")
	assert.False(t, CanRespond(m, ""))

	m.Status = "Accepted"
	assert.False(t, CanRespond(m, "bob"))
}

func TestCanReschedule(t *testing.T) {
	assert.True(t, CanReschedule(MatchRecord{Status: "Accepted"}))
	assert.False(t, CanReschedule(MatchRecord{Status: "Completed"}))
	assert.False(t, CanReschedule(MatchRecord{Status: "Pending"}))
	assert.False(t, CanReschedule(MatchRecord{Status: "Rejected"}))
}

func TestParseFilterOptions(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]string
		want     FilterOptions
		wantErrs int
	}{
		{"empty", map[string]string{}, FilterOptions{}, 0},
		{"snake case", map[string]string{"pending_only": "true"}, FilterOptions{PendingOnly: true}, 0},
		{"camel case", map[string]string{"includeRejected": "1"}, FilterOptions{IncludeRejected: true}, 0},
		{"bare flag", map[string]string{"pending-only": ""}, FilterOptions{PendingOnly: true}, 0},
		{"legacy view link", map[string]string{"view": "pending"}, FilterOptions{PendingOnly: true}, 0},
		{"unknown key ignored", map[string]string{"colour": "blue", "include_rejected": "false"}, FilterOptions{}, 1},
		{"bad value ignored", map[string]string{"pending_only": "maybe"}, FilterOptions{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, errs := ParseFilterOptions(tt.raw)
			assert.Equal(t, tt.want, opts)
			require.Len(t, errs, tt.wantErrs)
			for _, err := range errs {
				assert.ErrorIs(t, err, ErrInvalidFilterOptions)
			}
		})
	}
}

func TestMatchRecord_Accessors(t *testing.T) {
	m := MatchRecord{Participants: []string{"a"}, MatchType: "doubles"}
	assert.Equal(t, "a", m.Requester())
	assert.Equal(t, "", m.Opponent())
	assert.Equal(t, MatchTypeDoubles, m.Type())
	assert.Equal(t, MatchTypeSingles, MatchRecord{}.Type())
	assert.True(t, m.Involves("a"))
	assert.False(t, m.Involves("b"))
}
