package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	bookingstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/service/bookings/models"
)

type fakeBookingRepo struct {
	booking  *domain.Booking
	bookings []*domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	if f.booking == nil {
		return nil, bookingstore.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) GetByCustomerID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeOperationRepo struct {
	ops     []*domain.BookingOperation
	history []*domain.BookingStatusHistory
}

func (f *fakeOperationRepo) ListByBooking(_ context.Context, _ int64) ([]*domain.BookingOperation, error) {
	return f.ops, nil
}

func (f *fakeOperationRepo) ListStatusHistory(_ context.Context, _ int64) ([]*domain.BookingStatusHistory, error) {
	return f.history, nil
}

type fakeDirectory struct {
	business *directoryservice.Business
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ int64) (*directoryservice.Business, error) {
	if f.business == nil {
		return nil, directoryservice.ErrBusinessNotFound
	}
	return f.business, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:              1,
		BusinessID:      1,
		CustomerID:      42,
		ServiceID:       10,
		BookingDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "14:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		ServiceName:     "Стрижка",
		ServicePrice:    1500,
	}
}

func managedBusiness() *directoryservice.Business {
	return &directoryservice.Business{ID: 1, ManagerIDs: []int64{7}}
}

func TestGetByID_OwnerSeesBooking(t *testing.T) {
	svc := NewService(&fakeBookingRepo{booking: testBooking()}, &fakeOperationRepo{}, &fakeDirectory{}, nopLogger{})

	resp, err := svc.GetByID(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "2026-03-02", resp.BookingDate)
	assert.Equal(t, "14:00", resp.StartTime)
}

func TestGetByID_ManagerSeesBooking(t *testing.T) {
	svc := NewService(&fakeBookingRepo{booking: testBooking()}, &fakeOperationRepo{}, &fakeDirectory{business: managedBusiness()}, nopLogger{})

	_, err := svc.GetByID(context.Background(), 1, 7)
	assert.NoError(t, err)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	svc := NewService(&fakeBookingRepo{booking: testBooking()}, &fakeOperationRepo{}, &fakeDirectory{business: managedBusiness()}, nopLogger{})

	_, err := svc.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeOperationRepo{}, &fakeDirectory{}, nopLogger{})

	_, err := svc.GetByID(context.Background(), 404, 42)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetCustomerBookings(t *testing.T) {
	svc := NewService(&fakeBookingRepo{bookings: []*domain.Booking{testBooking()}}, &fakeOperationRepo{}, &fakeDirectory{}, nopLogger{})

	resp, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{CustomerID: 42})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "confirmed", resp.Bookings[0].Status)
}

func TestGetCustomerBookings_InvalidStatus(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeOperationRepo{}, &fakeDirectory{}, nopLogger{})

	bad := "vanished"
	_, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{CustomerID: 42, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetBusinessBookings_ManagerOnly(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{testBooking()}}
	svc := NewService(repo, &fakeOperationRepo{}, &fakeDirectory{business: managedBusiness()}, nopLogger{})

	resp, err := svc.GetBusinessBookings(context.Background(), &models.GetBusinessBookingsRequest{BusinessID: 1, UserID: 7})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetBusinessBookings(context.Background(), &models.GetBusinessBookingsRequest{BusinessID: 1, UserID: 99})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetBusinessBookings_BusinessNotFound(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, &fakeOperationRepo{}, &fakeDirectory{}, nopLogger{})

	_, err := svc.GetBusinessBookings(context.Background(), &models.GetBusinessBookingsRequest{BusinessID: 1, UserID: 7})
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestGetHistory(t *testing.T) {
	prior := domain.StatusRequested
	ops := &fakeOperationRepo{
		ops: []*domain.BookingOperation{{
			ID: 1, BookingID: 1, Type: domain.OperationCreate,
			NewStatus: domain.StatusRequested, ConstraintsPassed: true,
		}, {
			ID: 2, BookingID: 1, Type: domain.OperationConfirm,
			PriorStatus: &prior, NewStatus: domain.StatusConfirmed, ConstraintsPassed: true,
		}},
		history: []*domain.BookingStatusHistory{
			{BookingID: 1, ToStatus: domain.StatusRequested, OperationID: 1},
			{BookingID: 1, FromStatus: &prior, ToStatus: domain.StatusConfirmed, OperationID: 2},
		},
	}
	svc := NewService(&fakeBookingRepo{booking: testBooking()}, ops, &fakeDirectory{}, nopLogger{})

	resp, err := svc.GetHistory(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.BookingID)
	require.Len(t, resp.Operations, 2)
	assert.Equal(t, "create", resp.Operations[0].Type)
	require.Len(t, resp.StatusHistory, 2)
	assert.Equal(t, "confirmed", resp.StatusHistory[1].ToStatus)
}

func TestGetHistory_AccessDenied(t *testing.T) {
	svc := NewService(&fakeBookingRepo{booking: testBooking()}, &fakeOperationRepo{}, &fakeDirectory{business: managedBusiness()}, nopLogger{})

	_, err := svc.GetHistory(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
