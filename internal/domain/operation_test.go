package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/pkg/ptr"
)

func TestOperationPayload_Roundtrip(t *testing.T) {
	payloads := []OperationPayload{
		&CreatePayload{
			ServiceID:  10,
			ResourceID: ptr.Ptr(int64(3)),
			Date:       "2026-03-02",
			StartTime:  "10:00",
			Deposit:    ptr.Ptr(500.0),
		},
		&StatusChangePayload{Reason: "confirmed by phone"},
		&CancelPayload{Reason: "client request", FeeAmount: 250, RefundEligible: false, Emergency: true},
		&ReschedulePayload{OldBookingID: 1, NewBookingID: 2, NewDate: "2026-03-05", NewStartTime: "12:00", FeeAmount: 100},
		&FinancialPayload{Amount: 300, Currency: "RUB", Reason: "deposit"},
	}

	for _, payload := range payloads {
		raw, err := MarshalOperationPayload(payload)
		require.NoError(t, err)

		restored, err := UnmarshalOperationPayload(raw)
		require.NoError(t, err)
		assert.Equal(t, payload, restored)
	}
}

func TestOperationPayload_Nil(t *testing.T) {
	raw, err := MarshalOperationPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	restored, err := UnmarshalOperationPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestUnmarshalOperationPayload_UnknownType(t *testing.T) {
	_, err := UnmarshalOperationPayload([]byte(`{"type":"mystery","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownOperationPayload)
}

func TestParseOperationType(t *testing.T) {
	op, ok := ParseOperationType("reschedule")
	require.True(t, ok)
	assert.Equal(t, OperationReschedule, op)

	_, ok = ParseOperationType("destroy")
	assert.False(t, ok)
}

func TestParseActorRole(t *testing.T) {
	role, ok := ParseActorRole("staff")
	require.True(t, ok)
	assert.Equal(t, ActorStaff, role)

	_, ok = ParseActorRole("root")
	assert.False(t, ok)
}
