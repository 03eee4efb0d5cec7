package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord      = errors.New("malformed match record")
	ErrInvalidFilterOptions = errors.New("invalid filter options")
)

// MalformedRecordError reports a match whose scheduled_at could not be parsed.
type MalformedRecordError struct {
	MatchID     string `json:"match_id"`
	ScheduledAt string `json:"scheduled_at"`
	Reason      string `json:"reason"`
}

func (e MalformedRecordError) Error() string {
	return fmt.Sprintf("match %q has unparsable scheduled_at %q: %s", e.MatchID, e.ScheduledAt, e.Reason)
}

func (e MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// InvalidFilterOptionError reports a filter key or value that was ignored.
type InvalidFilterOptionError struct {
	Key     string
	Value   string
	Unknown bool
}

func (e InvalidFilterOptionError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unrecognized filter option %q", e.Key)
	}
	return fmt.Sprintf("invalid value %q for filter option %q", e.Value, e.Key)
}

func (e InvalidFilterOptionError) Is(target error) bool {
	return target == ErrInvalidFilterOptions
}
