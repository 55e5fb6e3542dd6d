package domain

import (
	"strings"
	"time"
)

const filterAny = "any"

type AgeBucket string

const (
	AgeBucketAny          AgeBucket = "any"
	AgeBucketUnder3Days   AgeBucket = "under3days"
	AgeBucketUnder7Days   AgeBucket = "under7days"
	AgeBucketAtLeast7Days AgeBucket = "atLeast7days"
)

var ageBuckets = []AgeBucket{AgeBucketAny, AgeBucketUnder3Days, AgeBucketUnder7Days, AgeBucketAtLeast7Days}

func ParseAgeBucket(raw string) (AgeBucket, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AgeBucketAny, nil
	}
	return parseEnum("age bucket", raw, ageBuckets)
}

const day = 24 * time.Hour

// Contains reports whether a dispute of the given age falls in the bucket.
// under7days includes disputes younger than three days.
func (b AgeBucket) Contains(age time.Duration) bool {
	switch b {
	case AgeBucketUnder3Days:
		return age < 3*day
	case AgeBucketUnder7Days:
		return age < 7*day
	case AgeBucketAtLeast7Days:
		return age >= 7*day
	default:
		return true
	}
}

// DisputeFilter selects disputes for the queue. Absent fields match any value.
type DisputeFilter struct {
	Status   Optional[DisputeStatus]
	Category Optional[DisputeCategory]
	Age      AgeBucket
}

// ParseDisputeFilter builds a filter from query values; "" and "any" match everything.
func ParseDisputeFilter(status, category, age string) (DisputeFilter, error) {
	var f DisputeFilter
	if s := strings.TrimSpace(status); s != "" && s != filterAny {
		v, err := ParseDisputeStatus(s)
		if err != nil {
			return DisputeFilter{}, err
		}
		f.Status = Some(v)
	}
	if c := strings.TrimSpace(category); c != "" && c != filterAny {
		v, err := ParseDisputeCategory(c)
		if err != nil {
			return DisputeFilter{}, err
		}
		f.Category = Some(v)
	}
	bucket, err := ParseAgeBucket(age)
	if err != nil {
		return DisputeFilter{}, err
	}
	f.Age = bucket
	return f, nil
}

func (f DisputeFilter) Matches(d *Dispute, now time.Time) bool {
	if s, ok := f.Status.Get(); ok && d.Status != s {
		return false
	}
	if c, ok := f.Category.Get(); ok && d.Category != c {
		return false
	}
	return f.Age.Contains(d.Age(now))
}

// FilterDisputes returns the disputes matching every predicate of f, in input order.
func FilterDisputes(disputes []Dispute, f DisputeFilter, now time.Time) []Dispute {
	out := make([]Dispute, 0, len(disputes))
	for i := range disputes {
		if f.Matches(&disputes[i], now) {
			out = append(out, disputes[i])
		}
	}
	return out
}
