package domain

import (
	"strconv"
	"strings"
)

// QueryMode identifies which filter combination a log query resolved to.
type QueryMode string

const (
	// QueryRangeLimit filters by date range then truncates.
	QueryRangeLimit QueryMode = "range_limit"
	// QueryRange filters by date range only.
	QueryRange QueryMode = "range"
	// QueryLimit truncates without looking at dates.
	QueryLimit QueryMode = "limit"
	// QueryFull returns the whole log.
	QueryFull QueryMode = "full"
)

// LogQuery is a validated request for a user's activity log. Limit 0 means no limit.
type LogQuery struct {
	UserID string
	From   string
	To     string
	Limit  int
}

// ParseLogQuery validates raw query parameters. Empty values count as absent.
func ParseLogQuery(userID, from, to, limit string) (LogQuery, error) {
	q := LogQuery{
		UserID: strings.TrimSpace(userID),
		From:   strings.TrimSpace(from),
		To:     strings.TrimSpace(to),
	}

	verr := &ValidationError{}
	if q.UserID == "" {
		verr.add("userId", "userId is required")
	}
	if raw := strings.TrimSpace(limit); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			verr.add("limit", "limit must be a positive integer")
		} else {
			q.Limit = parsed
		}
	}
	switch {
	case q.From != "" && q.To == "":
		verr.add("to", "to is required when from is given")
	case q.From == "" && q.To != "":
		verr.add("from", "from is required when to is given")
	}

	if err := verr.orNil(); err != nil {
		return LogQuery{}, err
	}
	return q, nil
}

// HasRange reports whether both date bounds are set.
func (q LogQuery) HasRange() bool {
	return q.From != "" && q.To != ""
}

// Mode resolves the filter combination.
func (q LogQuery) Mode() QueryMode {
	switch {
	case q.HasRange() && q.Limit > 0:
		return QueryRangeLimit
	case q.HasRange():
		return QueryRange
	case q.Limit > 0:
		return QueryLimit
	default:
		return QueryFull
	}
}

// LogResult carries a query answer. Range modes fill Matches; the others fill Log, which is nil
// when the user has no log.
type LogResult struct {
	Mode    QueryMode
	Matches []ActivityLog
	Log     *ActivityLog
}

// FilterByDate keeps activities whose date lies in [from, to] by plain string comparison,
// preserving order.
func FilterByDate(activities []Activity, from, to string) []Activity {
	out := make([]Activity, 0, len(activities))
	for _, activity := range activities {
		if activity.Date >= from && activity.Date <= to {
			out = append(out, activity)
		}
	}
	return out
}

// Truncate returns at most the first limit activities. A limit of 0 keeps everything.
func Truncate(activities []Activity, limit int) []Activity {
	if limit <= 0 || len(activities) <= limit {
		return activities
	}
	return activities[:limit]
}
