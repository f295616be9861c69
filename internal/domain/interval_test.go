package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterval(t *testing.T) {
	interval, err := NewInterval("09:30", 60)
	require.NoError(t, err)
	assert.Equal(t, Interval{StartMinutes: 570, EndMinutes: 630}, interval)

	_, err = NewInterval("bad", 60)
	assert.Error(t, err)
}

func TestInterval_Overlaps(t *testing.T) {
	base := Interval{StartMinutes: 600, EndMinutes: 660} // 10:00 - 11:00

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{600, 660}, true},
		{"partial overlap at start", Interval{570, 630}, true},
		{"partial overlap at end", Interval{630, 690}, true},
		{"contained", Interval{615, 645}, true},
		{"containing", Interval{540, 720}, true},
		{"touching at end is not a conflict", Interval{660, 720}, false},
		{"touching at start is not a conflict", Interval{540, 600}, false},
		{"disjoint", Interval{720, 780}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestInterval_Expand(t *testing.T) {
	interval := Interval{StartMinutes: 600, EndMinutes: 660}

	expanded := interval.Expand(15)
	assert.Equal(t, Interval{StartMinutes: 585, EndMinutes: 675}, expanded)

	// Границы ограничиваются пределами суток
	early := Interval{StartMinutes: 5, EndMinutes: 65}
	assert.Equal(t, Interval{StartMinutes: 0, EndMinutes: 80}, early.Expand(15))

	late := Interval{StartMinutes: 23 * 60, EndMinutes: 24 * 60}
	assert.Equal(t, Interval{StartMinutes: 23*60 - 15, EndMinutes: 24 * 60}, late.Expand(15))
}

func TestInterval_ExpandMakesAdjacentSlotsConflict(t *testing.T) {
	// Существующее бронирование 10:00-11:00 с буфером 15 минут
	// блокирует кандидата 10:45-11:30
	existing := Interval{StartMinutes: 600, EndMinutes: 660}
	candidate := Interval{StartMinutes: 645, EndMinutes: 690}

	assert.False(t, candidate.Overlaps(existing.Expand(0)))
	assert.True(t, candidate.Overlaps(existing.Expand(15)))
}

func TestInterval_Contains(t *testing.T) {
	window := Interval{StartMinutes: 540, EndMinutes: 1080} // 09:00 - 18:00

	assert.True(t, window.Contains(Interval{600, 660}))
	assert.True(t, window.Contains(window))
	assert.False(t, window.Contains(Interval{500, 600}))
	assert.False(t, window.Contains(Interval{1050, 1090}))
}

func TestInterval_IsValid(t *testing.T) {
	assert.True(t, Interval{StartMinutes: 600, EndMinutes: 660}.IsValid())
	assert.False(t, Interval{StartMinutes: 600, EndMinutes: 600}.IsValid())
	assert.False(t, Interval{StartMinutes: 660, EndMinutes: 600}.IsValid())
}
