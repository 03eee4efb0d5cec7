package schedule

import (
	"sort"
	"strconv"
	"strings"
)

// NormalizeStatus lower-cases and trims a backend status.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// ClassOf maps a status to its display bucket. Unknown and absent statuses are active.
func ClassOf(status string) Class {
	switch NormalizeStatus(status) {
	case StatusPending:
		return ClassPending
	case StatusRejected, StatusCancelled, "canceled":
		return ClassClosed
	default:
		return ClassActive
	}
}

// Classify filters matches by status. PendingOnly wins over every other option;
// otherwise rejected and cancelled matches are dropped unless IncludeRejected is set.
// The relative order of the input is kept.
func Classify(matches []MatchRecord, opts FilterOptions) []MatchRecord {
	out := make([]MatchRecord, 0, len(matches))
	for _, m := range matches {
		switch {
		case opts.PendingOnly:
			if m.NormalizedStatus() == StatusPending {
				out = append(out, m)
			}
		case !opts.IncludeRejected:
			if ClassOf(m.Status) != ClassClosed {
				out = append(out, m)
			}
		default:
			out = append(out, m)
		}
	}
	return out
}

// CanRespond reports whether playerID may accept or reject m.
func CanRespond(m MatchRecord, playerID string) bool {
	return playerID != "" && ClassOf(m.Status) == ClassPending && m.Opponent() == playerID
}

// CanReschedule reports whether m is still open for a new time.
func CanReschedule(m MatchRecord) bool {
	return ClassOf(m.Status) == ClassActive && m.NormalizedStatus() != StatusCompleted
}

var (
	pendingOnlyKey     = "pendingonly"
	includeRejectedKey = "includerejected"
	viewKey            = "view"
)

// ParseFilterOptions reads filter options from string pairs such as query parameters.
// Keys are matched ignoring case, underscores and dashes. An empty value means true.
// Unknown keys and bad values are returned as InvalidFilterOptionError and otherwise
// ignored.
func ParseFilterOptions(raw map[string]string) (FilterOptions, []error) {
	var (
		opts FilterOptions
		errs []error
	)

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	canon := strings.NewReplacer("_", "", "-", "")
	for _, key := range keys {
		value := strings.TrimSpace(raw[key])
		switch canon.Replace(strings.ToLower(key)) {
		case pendingOnlyKey:
			b, ok := parseFlag(value)
			if !ok {
				errs = append(errs, InvalidFilterOptionError{Key: key, Value: value})
				continue
			}
			opts.PendingOnly = b
		case includeRejectedKey:
			b, ok := parseFlag(value)
			if !ok {
				errs = append(errs, InvalidFilterOptionError{Key: key, Value: value})
				continue
			}
			opts.IncludeRejected = b
		case viewKey:
			// Older links use ?view=pending.
			switch strings.ToLower(value) {
			case StatusPending:
				opts.PendingOnly = true
			case "", "all":
			default:
				errs = append(errs, InvalidFilterOptionError{Key: key, Value: value})
			}
		default:
			errs = append(errs, InvalidFilterOptionError{Key: key, Value: value, Unknown: true})
		}
	}
	return opts, errs
}

func parseFlag(value string) (bool, bool) {
	if value == "" {
		return true, true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}
