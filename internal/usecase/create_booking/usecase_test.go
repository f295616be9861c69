package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/ptr"
)

type fakeBookingRepo struct {
	existing []*domain.Booking
	created  []*domain.Booking
	nextID   int64
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	saved := *booking
	saved.ID = f.nextID
	saved.CreatedAt = time.Now()
	f.created = append(f.created, &saved)
	return &saved, nil
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.existing, nil
}

type fakeRuleSetRepo struct {
	rules *domain.RuleSet
}

func (f *fakeRuleSetRepo) GetByBusiness(_ context.Context, _ int64) (*domain.RuleSet, error) {
	if f.rules == nil {
		return nil, rulesetstore.ErrRuleSetNotFound
	}
	return f.rules, nil
}

type fakeOperationRepo struct {
	ops     []*domain.BookingOperation
	history []*domain.BookingStatusHistory
	actions []*domain.ScheduledAction
	nextID  int64
}

func (f *fakeOperationRepo) Append(_ context.Context, op *domain.BookingOperation) (*domain.BookingOperation, error) {
	f.nextID++
	saved := *op
	saved.ID = f.nextID
	f.ops = append(f.ops, &saved)
	return &saved, nil
}

func (f *fakeOperationRepo) AppendStatusHistory(_ context.Context, h *domain.BookingStatusHistory) (*domain.BookingStatusHistory, error) {
	f.history = append(f.history, h)
	return h, nil
}

func (f *fakeOperationRepo) CreateScheduledAction(_ context.Context, action *domain.ScheduledAction) (*domain.ScheduledAction, error) {
	f.actions = append(f.actions, action)
	return action, nil
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

type fakeValidator struct {
	verdict *validate_booking.ValidateBookingResponse
	err     error
}

func (f *fakeValidator) Execute(_ context.Context, _ validate_booking.ValidateBookingRequest) (*validate_booking.ValidateBookingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

type fakeMatcher struct {
	resp *match_resource.MatchResponse
}

func (f *fakeMatcher) Execute(_ context.Context, _ match_resource.MatchRequest) (*match_resource.MatchResponse, error) {
	return f.resp, nil
}

// fakeTxManager выполняет функцию без транзакции и может симулировать
// конфликт коммита
type fakeTxManager struct {
	commitErrs []error
	calls      int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	if len(f.commitErrs) > 0 {
		err := f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
		return err
	}
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type createEnv struct {
	bookings   *fakeBookingRepo
	rules      *fakeRuleSetRepo
	operations *fakeOperationRepo
	directory  *fakeDirectory
	validator  *fakeValidator
	matcher    *fakeMatcher
	tx         *fakeTxManager
	uc         *UseCase
}

func newCreateEnv(now time.Time) *createEnv {
	price := 1500.0
	env := &createEnv{
		bookings:   &fakeBookingRepo{},
		rules:      &fakeRuleSetRepo{},
		operations: &fakeOperationRepo{},
		directory: &fakeDirectory{
			business: &directoryservice.Business{ID: 1, Industry: "beauty"},
			service: &directoryservice.Service{
				ID: 10, BusinessID: 1, Name: "Стрижка", Price: &price,
				DurationMinutes: 60, ResourceType: "staff",
			},
		},
		validator: &fakeValidator{verdict: &validate_booking.ValidateBookingResponse{Valid: true}},
		matcher:   &fakeMatcher{resp: &match_resource.MatchResponse{}},
		tx:        &fakeTxManager{},
	}
	env.uc = NewUseCase(
		env.bookings,
		env.rules,
		env.operations,
		env.directory,
		env.validator,
		env.matcher,
		env.tx,
		fixedTime{now: now},
		nopLogger{},
	)
	return env
}

func validCreateRequest() CreateBookingRequest {
	return CreateBookingRequest{
		BusinessID:  1,
		CustomerID:  42,
		ServiceID:   10,
		BookingDate: "2026-03-02",
		StartTime:   "12:00",
	}
}

func TestExecute_CreatesBookingWithAudit(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)

	resp, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusRequested), resp.Status)
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.Equal(t, 1500.0, resp.ServicePrice)
	assert.Nil(t, resp.ResourceID)

	// Операция создания с результатами проверок
	require.Len(t, env.operations.ops, 1)
	op := env.operations.ops[0]
	assert.Equal(t, domain.OperationCreate, op.Type)
	assert.Equal(t, domain.ActorCustomer, op.PerformedByRole)
	assert.Equal(t, domain.StatusRequested, op.NewStatus)
	assert.Nil(t, op.PriorStatus)
	assert.True(t, op.ConstraintsPassed)

	// История статусов ссылается на операцию
	require.Len(t, env.operations.history, 1)
	assert.Equal(t, op.ID, env.operations.history[0].OperationID)

	// Напоминание за 24 часа до начала
	require.Len(t, env.operations.actions, 1)
	action := env.operations.actions[0]
	assert.Equal(t, domain.ScheduledReminder, action.Type)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), action.ExecuteAt)
}

func TestExecute_NoReminderForNearBooking(t *testing.T) {
	// До начала меньше суток: момент напоминания уже прошёл
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)

	_, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Empty(t, env.operations.actions)
}

func TestExecute_ValidationFailureReturnsViolations(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.validator.verdict = &validate_booking.ValidateBookingResponse{
		Valid:      false,
		Violations: []domain.Violation{{Code: domain.ViolationAdvanceTooSoon, Message: "too soon"}},
	}

	_, err := env.uc.Execute(context.Background(), validCreateRequest())

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 1)
	assert.Empty(t, env.bookings.created)
	assert.Empty(t, env.operations.ops)
}

func TestExecute_SlotConflictInsideTransaction(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	// Конфликт появился между валидацией и транзакцией
	env.bookings.existing = []*domain.Booking{{
		ID: 99, StartTime: "12:30", DurationMinutes: 60, Status: domain.StatusConfirmed,
	}}

	_, err := env.uc.Execute(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, env.bookings.created)
}

func TestExecute_RetriesOnceOnCommitConflict(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.tx.commitErrs = []error{&pq.Error{Code: "40001"}}

	resp, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, env.tx.calls)
	assert.NotZero(t, resp.ID)
}

func TestExecute_SecondConflictMeansSlotTaken(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.tx.commitErrs = []error{&pq.Error{Code: "40001"}, &pq.Error{Code: "40001"}}

	_, err := env.uc.Execute(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 2, env.tx.calls)
}

func TestExecute_AssignsMatchedResource(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.matcher.resp = &match_resource.MatchResponse{
		Resource: &directoryservice.Resource{ID: 7, Type: "staff", Active: true},
	}

	resp, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.ResourceID)
	assert.Equal(t, int64(7), *resp.ResourceID)
}

func TestExecute_NoFreeResourceMeansSlotTaken(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	// Есть ресурсы, но свободных нет
	env.directory.resources = []directoryservice.Resource{{ID: 1, Type: "staff", Active: true}}
	env.matcher.resp = &match_resource.MatchResponse{}

	_, err := env.uc.Execute(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_DepositFromRules(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	rules := domain.DefaultRuleSet(1)
	rules.RequireDeposit = true
	rules.DepositAmount = 500
	env.rules.rules = rules

	resp, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.DepositAmount)
	assert.Equal(t, 500.0, *resp.DepositAmount)
}

func TestExecute_PropagatesWarnings(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.validator.verdict = &validate_booking.ValidateBookingResponse{
		Valid:    true,
		Warnings: []domain.Violation{{Code: domain.ViolationConstraintFailed, Message: "advisory"}},
	}
	env.matcher.resp = &match_resource.MatchResponse{
		Resource: &directoryservice.Resource{ID: 7, Type: "staff", Active: true},
		Warnings: []domain.Violation{{Code: domain.ViolationPreferenceDrop, Message: "dropped"}},
	}

	resp, err := env.uc.Execute(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Len(t, resp.Warnings, 2)
	assert.Equal(t, domain.ViolationConstraintFailed, resp.Warnings[0].Code)
	assert.Equal(t, domain.ViolationPreferenceDrop, resp.Warnings[1].Code)
}

func TestExecute_ValidatorErrorsAreMapped(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	env := newCreateEnv(now)
	env.validator.err = validate_booking.ErrBusinessNotFound
	_, err := env.uc.Execute(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	env = newCreateEnv(now)
	env.validator.err = validate_booking.ErrServiceNotFound
	_, err = env.uc.Execute(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)

	req := validCreateRequest()
	req.BusinessID = 0
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validCreateRequest()
	notes := string(make([]byte, domain.MaxNotesLength+1))
	req.Notes = &notes
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ResourceRequestIsPassedToMatcher(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newCreateEnv(now)
	env.matcher.resp = &match_resource.MatchResponse{
		Resource: &directoryservice.Resource{ID: 3, Type: "staff", Active: true},
	}

	req := validCreateRequest()
	req.ResourceID = ptr.Ptr(int64(3))

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.ResourceID)
	assert.Equal(t, int64(3), *resp.ResourceID)
}
