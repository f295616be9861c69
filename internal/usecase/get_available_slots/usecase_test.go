package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

type fakeBookingRepo struct {
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeRuleSetRepo struct {
	rules *domain.RuleSet
}

func (f *fakeRuleSetRepo) GetByBusiness(_ context.Context, businessID int64) (*domain.RuleSet, error) {
	if f.rules == nil {
		return nil, rulesetstore.ErrRuleSetNotFound
	}
	return f.rules, nil
}

type fakeDirectory struct {
	business  *directoryservice.Business
	service   *directoryservice.Service
	resources []directoryservice.Resource
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ int64) (*directoryservice.Business, error) {
	if f.business == nil {
		return nil, directoryservice.ErrBusinessNotFound
	}
	return f.business, nil
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

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func strPtr(s string) *string { return &s }

// Понедельник 2026-03-02, рабочий день 09:00-18:00 с перерывом 13:00-14:00
func workingBusiness() *directoryservice.Business {
	day := directoryservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  strPtr("09:00"),
		CloseTime: strPtr("18:00"),
		Breaks:    []directoryservice.BreakInterval{{StartTime: "13:00", EndTime: "14:00"}},
	}
	return &directoryservice.Business{
		ID:       1,
		Industry: "beauty",
		WorkingHours: directoryservice.WeekSchedule{
			Monday: day,
		},
	}
}

func hourService() *directoryservice.Service {
	return &directoryservice.Service{ID: 10, BusinessID: 1, DurationMinutes: 60, ResourceType: "staff"}
}

func newSlotsUseCase(bookings []*domain.Booking, rules *domain.RuleSet, dir *fakeDirectory, now time.Time) *UseCase {
	return NewUseCase(
		&fakeBookingRepo{bookings: bookings},
		&fakeRuleSetRepo{rules: rules},
		dir,
		fixedTime{now: now},
		nopLogger{},
	)
}

func slotByStart(t *testing.T, slots []domain.Slot, start types.TimeString) domain.Slot {
	t.Helper()
	for _, s := range slots {
		if s.StartTime == start {
			return s
		}
	}
	t.Fatalf("slot %s not found", start)
	return domain.Slot{}
}

func TestExecute_Grid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	uc := newSlotsUseCase(nil, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)

	// 09:00..12:00 и 14:00..17:00 с шагом 15 минут, услуга на час
	assert.Len(t, resp.Slots, 26)
	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)

	for _, slot := range resp.Slots {
		startMin, err := slot.StartTime.Minutes()
		require.NoError(t, err)
		// Окно услуги не задевает перерыв 13:00-14:00
		assert.False(t, startMin > 720 && startMin < 840, "slot %s overlaps break", slot.StartTime)
		assert.True(t, slot.Available)
		assert.Equal(t, 1, slot.TotalSpots)
	}

	// Последний слот заканчивается ровно в закрытие
	assert.Equal(t, types.TimeString("17:00"), resp.Slots[len(resp.Slots)-1].StartTime)
}

func TestExecute_ClosedDayGivesEmptyGrid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	uc := newSlotsUseCase(nil, nil, dir, now)

	// Вторник закрыт
	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-03",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PastDateGivesEmptyGrid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	uc := newSlotsUseCase(nil, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_BeyondAdvanceLimitGivesEmptyGrid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	rules := domain.DefaultRuleSet(1)
	rules.MaxAdvanceBookingDays = 7
	uc := newSlotsUseCase(nil, rules, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-16",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_SameDayRespectsAdvanceHours(t *testing.T) {
	// Сейчас 08:00, минимальный горизонт 2 часа: слоты раньше 10:00 отбрасываются
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	uc := newSlotsUseCase(nil, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].StartTime)
}

func TestExecute_BusinessLevelBookingOccupiesSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	existing := []*domain.Booking{{
		ID: 5, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed,
	}}
	uc := newSlotsUseCase(existing, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)

	occupied := slotByStart(t, resp.Slots, "10:00")
	assert.False(t, occupied.Available)
	assert.Equal(t, 0, occupied.AvailableSpots)

	free := slotByStart(t, resp.Slots, "11:00")
	assert.True(t, free.Available)
}

func TestExecute_CancelledBookingFreesSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	existing := []*domain.Booking{{
		ID: 5, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusCancelled,
	}}
	uc := newSlotsUseCase(existing, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.True(t, slotByStart(t, resp.Slots, "10:00").Available)
}

func TestExecute_AllowDoubleBookingIgnoresConflicts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{business: workingBusiness(), service: hourService()}
	rules := domain.DefaultRuleSet(1)
	rules.AllowDoubleBooking = true
	existing := []*domain.Booking{{
		ID: 5, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed,
	}}
	uc := newSlotsUseCase(existing, rules, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)

	slot := slotByStart(t, resp.Slots, "10:00")
	assert.True(t, slot.Available)
	assert.Equal(t, slot.TotalSpots, slot.AvailableSpots)
}

func TestExecute_ResourceCapacityCountsSpots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resources := []directoryservice.Resource{
		{ID: 1, Type: "staff", Capacity: 1, Active: true},
		{ID: 2, Type: "staff", Capacity: 1, Active: true},
	}
	dir := &fakeDirectory{business: workingBusiness(), service: hourService(), resources: resources}

	resourceID := int64(1)
	existing := []*domain.Booking{{
		ID: 5, ResourceID: &resourceID, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed,
	}}
	uc := newSlotsUseCase(existing, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)

	slot := slotByStart(t, resp.Slots, "10:00")
	assert.True(t, slot.Available)
	assert.Equal(t, 2, slot.TotalSpots)
	assert.Equal(t, 1, slot.AvailableSpots)
}

func TestExecute_UnqualifiedRosterMarksSlotsUnavailable(t *testing.T) {
	// Есть штат, но никто не дотягивает до требуемого уровня навыка:
	// ёмкость нулевая, а не бронирование на уровне бизнеса
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := hourService()
	service.RequiredSkill = strPtr("стрижка")
	service.MinSkillLevel = 5
	resources := []directoryservice.Resource{
		{ID: 1, Type: "staff", Capacity: 1, Active: true, Skills: []directoryservice.ResourceSkill{{Name: "стрижка", Level: 1}}},
	}
	dir := &fakeDirectory{business: workingBusiness(), service: service, resources: resources}
	uc := newSlotsUseCase(nil, nil, dir, now)

	resp, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Slots)
	for _, slot := range resp.Slots {
		assert.False(t, slot.Available, "slot %s must be unavailable", slot.StartTime)
		assert.Equal(t, 0, slot.TotalSpots)
		assert.Equal(t, 0, slot.AvailableSpots)
	}
}

func TestExecute_BusinessNotFound(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc := newSlotsUseCase(nil, nil, &fakeDirectory{}, now)

	_, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{
		BusinessID: 1, ServiceID: 10, Date: "2026-03-02",
	})
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc := newSlotsUseCase(nil, nil, &fakeDirectory{}, now)

	_, err := uc.Execute(context.Background(), GetAvailableSlotsRequest{ServiceID: 10, Date: "2026-03-02"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), GetAvailableSlotsRequest{BusinessID: 1, ServiceID: 10, Date: "02.03.2026"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
