package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingPolicy_IsEffectiveAt(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	current := &BookingPolicy{EffectiveFrom: from}
	assert.True(t, current.IsEffectiveAt(from))
	assert.True(t, current.IsEffectiveAt(from.AddDate(1, 0, 0)))
	assert.False(t, current.IsEffectiveAt(from.Add(-time.Second)))

	closed := &BookingPolicy{EffectiveFrom: from, EffectiveTo: &to}
	assert.True(t, closed.IsEffectiveAt(to.Add(-time.Second)))
	assert.False(t, closed.IsEffectiveAt(to))
}

func TestBookingPolicy_CancellationFeeConfigured(t *testing.T) {
	assert.True(t, (&BookingPolicy{CancellationFeeFlat: 500}).CancellationFeeConfigured())
	assert.True(t, (&BookingPolicy{CancellationFeePercent: 50}).CancellationFeeConfigured())
	assert.True(t, (&BookingPolicy{}).CancellationFeeConfigured())

	// Обе ставки сразу - ошибка конфигурации
	assert.False(t, (&BookingPolicy{CancellationFeeFlat: 500, CancellationFeePercent: 50}).CancellationFeeConfigured())
}

func TestConstraintDefinition_Apply(t *testing.T) {
	def := ConstraintDefinition{
		ID:           1,
		Name:         "max_bookings_per_day",
		Mandatory:    false,
		Active:       true,
		Customizable: true,
		Rules:        ConstraintRules{MaxPerCustomerPerDay: intPtr(2)},
	}

	t.Run("nil override keeps catalog values", func(t *testing.T) {
		assert.Equal(t, def, def.Apply(nil))
	})

	t.Run("override disables optional constraint", func(t *testing.T) {
		disabled := false
		applied := def.Apply(&BusinessConstraintOverride{Enabled: &disabled})
		assert.False(t, applied.Active)
	})

	t.Run("override replaces rules payload", func(t *testing.T) {
		applied := def.Apply(&BusinessConstraintOverride{
			Rules: &ConstraintRules{MaxPerCustomerPerDay: intPtr(5)},
		})
		assert.Equal(t, 5, *applied.Rules.MaxPerCustomerPerDay)
	})

	t.Run("non-customizable constraint ignores override", func(t *testing.T) {
		locked := def
		locked.Customizable = false
		disabled := false
		applied := locked.Apply(&BusinessConstraintOverride{Enabled: &disabled})
		assert.True(t, applied.Active)
	})

	t.Run("mandatory constraint cannot be disabled", func(t *testing.T) {
		mandatory := def
		mandatory.Mandatory = true
		disabled := false
		applied := mandatory.Apply(&BusinessConstraintOverride{Enabled: &disabled})
		assert.True(t, applied.Active)
	})
}

func intPtr(v int) *int { return &v }
