package core

import "time"

// TimeRange selects how far back transaction history is fetched.
type TimeRange string

const (
	RangeWeek       TimeRange = "week"
	RangeMonth      TimeRange = "month"
	RangeThreeMonth TimeRange = "threeMonth"
	RangeSixMonth   TimeRange = "sixMonth"
	RangeYear       TimeRange = "year"
	RangeAll        TimeRange = "all"
)

// DefaultRange is applied when a request carries an empty or unknown range
// token. Unknown tokens never fail a request; they resolve exactly like
// DefaultRange.
const DefaultRange = RangeSixMonth

// IsValid reports whether the token is a known range.
func (r TimeRange) IsValid() bool {
	switch r {
	case RangeWeek, RangeMonth, RangeThreeMonth, RangeSixMonth, RangeYear, RangeAll:
		return true
	}
	return false
}

// Resolve maps the range to an inclusive epoch-seconds lower bound on
// transacted_at. bounded is false for RangeAll, meaning no filter applies.
// Unknown tokens resolve as DefaultRange.
func (r TimeRange) Resolve(now time.Time) (cutoff int64, bounded bool) {
	var days int
	switch r {
	case RangeWeek:
		days = 7
	case RangeMonth:
		days = 30
	case RangeThreeMonth:
		days = 90
	case RangeSixMonth:
		days = 180
	case RangeYear:
		days = 365
	case RangeAll:
		return 0, false
	default:
		return DefaultRange.Resolve(now)
	}
	return now.AddDate(0, 0, -days).Unix(), true
}
