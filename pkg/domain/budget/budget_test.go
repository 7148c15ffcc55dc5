package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		limit    string
		spent    string
		pct      string
		exceeded bool
	}{
		{"under", "500", "125", "25", false},
		{"exact", "200", "200", "100", false},
		{"over", "100", "150", "150", true},
		{"zero limit", "0", "50", "0", true},
		{"nothing spent", "300", "0", "0", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Evaluate(d(tc.limit), d(tc.spent))
			assert.True(t, d(tc.pct).Equal(s.PercentageUsed), "pct=%s", s.PercentageUsed)
			assert.Equal(t, tc.exceeded, s.IsExceeded)
			assert.True(t, d(tc.limit).Sub(d(tc.spent)).Equal(s.Remaining))
		})
	}
}

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, Period{Month: 3, Year: 2025}.Validate())
	assert.ErrorIs(t, Period{Month: 0, Year: 2025}.Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Period{Month: 13, Year: 2025}.Validate(), ErrInvalidMonth)
	assert.ErrorIs(t, Period{Month: 1, Year: 1999}.Validate(), ErrInvalidYear)
	assert.ErrorIs(t, Period{Month: 1, Year: 2101}.Validate(), ErrInvalidYear)
}

func TestPeriod_Range(t *testing.T) {
	start, end := Period{Month: 12, Year: 2024}.Range()
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
