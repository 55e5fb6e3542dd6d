package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeBucket_Contains(t *testing.T) {
	tests := []struct {
		name   string
		bucket AgeBucket
		age    time.Duration
		want   bool
	}{
		{"any matches fresh", AgeBucketAny, 0, true},
		{"under3days at 71h", AgeBucketUnder3Days, 71 * time.Hour, true},
		{"under3days at 72h", AgeBucketUnder3Days, 72 * time.Hour, false},
		{"under7days includes young disputes", AgeBucketUnder7Days, time.Hour, true},
		{"under7days at 167h", AgeBucketUnder7Days, 167 * time.Hour, true},
		{"under7days at 168h", AgeBucketUnder7Days, 168 * time.Hour, false},
		{"atLeast7days at 168h", AgeBucketAtLeast7Days, 168 * time.Hour, true},
		{"atLeast7days at 6 days", AgeBucketAtLeast7Days, 6 * 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bucket.Contains(tt.age))
		})
	}
}

func TestParseDisputeFilter(t *testing.T) {
	f, err := ParseDisputeFilter("any", "", "")
	require.NoError(t, err)
	assert.False(t, f.Status.IsSet())
	assert.False(t, f.Category.IsSet())
	assert.Equal(t, AgeBucketAny, f.Age)

	f, err = ParseDisputeFilter("reviewing", "quality", "under3days")
	require.NoError(t, err)
	assert.Equal(t, DisputeStatusReviewing, f.Status.OrElse(""))
	assert.Equal(t, DisputeCategoryQuality, f.Category.OrElse(""))
	assert.Equal(t, AgeBucketUnder3Days, f.Age)

	_, err = ParseDisputeFilter("pending", "", "")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = ParseDisputeFilter("", "", "old")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFilterDisputes(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, status DisputeStatus, category DisputeCategory, ageDays int) Dispute {
		d := newTestDispute(status)
		d.ID = id
		d.Category = category
		d.OpenedAt = now.Add(-time.Duration(ageDays) * 24 * time.Hour)
		return *d
	}
	disputes := []Dispute{
		mk("d1", DisputeStatusOpen, DisputeCategoryQuality, 1),
		mk("d2", DisputeStatusReviewing, DisputeCategoryQuality, 5),
		mk("d3", DisputeStatusOpen, DisputeCategoryDeliveryLate, 10),
		mk("d4", DisputeStatusOpen, DisputeCategoryQuality, 8),
	}

	ids := func(ds []Dispute) []string {
		out := make([]string, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	t.Run("Empty filter keeps order", func(t *testing.T) {
		assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, ids(FilterDisputes(disputes, DisputeFilter{}, now)))
	})

	t.Run("Conjunctive", func(t *testing.T) {
		f := DisputeFilter{Status: Some(DisputeStatusOpen), Category: Some(DisputeCategoryQuality), Age: AgeBucketAtLeast7Days}
		assert.Equal(t, []string{"d4"}, ids(FilterDisputes(disputes, f, now)))
	})

	t.Run("Under seven days", func(t *testing.T) {
		f := DisputeFilter{Age: AgeBucketUnder7Days}
		assert.Equal(t, []string{"d1", "d2"}, ids(FilterDisputes(disputes, f, now)))
	})

	t.Run("Age moves with the clock", func(t *testing.T) {
		f := DisputeFilter{Age: AgeBucketUnder3Days}
		assert.Equal(t, []string{"d1"}, ids(FilterDisputes(disputes, f, now)))
		assert.Empty(t, FilterDisputes(disputes, f, now.Add(3*24*time.Hour)))
	})
}
