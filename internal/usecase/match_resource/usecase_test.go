package match_resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/pkg/ptr"
)

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeDirectory struct {
	service   *directoryservice.Service
	resources []directoryservice.Resource
}

func (f *fakeDirectory) GetService(_ context.Context, _, _ int64) (*directoryservice.Service, error) {
	if f.service == nil {
		return nil, directoryservice.ErrServiceNotFound
	}
	return f.service, nil
}

func (f *fakeDirectory) GetResources(_ context.Context, _ int64) ([]directoryservice.Resource, error) {
	return f.resources, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func validMatchRequest() MatchRequest {
	return MatchRequest{
		BusinessID:      1,
		ServiceID:       10,
		BookingDate:     "2026-03-02",
		StartTime:       "10:00",
		DurationMinutes: 60,
	}
}

func TestUseCase_Execute_PicksBestFreeResource(t *testing.T) {
	service := &directoryservice.Service{
		ID:            10,
		ResourceType:  "staff",
		RequiredSkill: strPtr("haircut"),
		MinSkillLevel: 2,
	}
	junior := staffResource(1, directoryservice.ResourceSkill{Name: "haircut", Level: 2})
	senior := staffResource(2, directoryservice.ResourceSkill{Name: "haircut", Level: 5})

	uc := NewUseCase(
		&fakeBookingRepo{},
		&fakeDirectory{service: service, resources: []directoryservice.Resource{junior, senior}},
		nopLogger{},
	)

	resp, err := uc.Execute(context.Background(), validMatchRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Resource)
	assert.Equal(t, int64(2), resp.Resource.ID)
	assert.Len(t, resp.Candidates, 2)
	assert.False(t, resp.PreferencesDropped)
}

func TestUseCase_Execute_NoFreeResourceIsNotAnError(t *testing.T) {
	service := &directoryservice.Service{ID: 10, ResourceType: "staff"}
	worker := staffResource(1)

	uc := NewUseCase(
		&fakeBookingRepo{bookings: []*domain.Booking{{
			ID:              99,
			ResourceID:      ptr.Ptr(int64(1)),
			StartTime:       "10:00",
			DurationMinutes: 60,
			Status:          domain.StatusConfirmed,
		}}},
		&fakeDirectory{service: service, resources: []directoryservice.Resource{worker}},
		nopLogger{},
	)

	resp, err := uc.Execute(context.Background(), validMatchRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Resource)
	assert.Empty(t, resp.Candidates)
}

func TestUseCase_Execute_DroppedPreferencesProduceWarning(t *testing.T) {
	service := &directoryservice.Service{ID: 10, ResourceType: "staff"}
	worker := staffResource(1)
	worker.Attributes = map[string]string{"gender": "male"}

	uc := NewUseCase(
		&fakeBookingRepo{},
		&fakeDirectory{service: service, resources: []directoryservice.Resource{worker}},
		nopLogger{},
	)

	req := validMatchRequest()
	req.Preferences = map[string]string{"gender": "female"}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Resource)
	assert.True(t, resp.PreferencesDropped)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, domain.ViolationPreferenceDrop, resp.Warnings[0].Code)
}

func TestUseCase_Execute_RequiredResourceKeepsOnlyIt(t *testing.T) {
	service := &directoryservice.Service{ID: 10, ResourceType: "staff"}
	first := staffResource(1)
	second := staffResource(2)

	uc := NewUseCase(
		&fakeBookingRepo{},
		&fakeDirectory{service: service, resources: []directoryservice.Resource{first, second}},
		nopLogger{},
	)

	req := validMatchRequest()
	req.RequiredResourceID = ptr.Ptr(int64(2))

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Resource)
	assert.Equal(t, int64(2), resp.Resource.ID)
}

func TestUseCase_Execute_ServiceNotFound(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{}, &fakeDirectory{}, nopLogger{})

	_, err := uc.Execute(context.Background(), validMatchRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{}, &fakeDirectory{}, nopLogger{})

	req := validMatchRequest()
	req.DurationMinutes = 0
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validMatchRequest()
	req.StartTime = "25:77"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
