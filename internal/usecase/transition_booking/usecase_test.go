package transition_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	bookingstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/booking"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

type fakeBookingRepo struct {
	bookings   map[int64]*domain.Booking
	nextID     int64
	statusLog  []domain.BookingStatus
	terminated []int64
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{}, nextID: 100}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, bookingstore.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	saved := *booking
	saved.ID = f.nextID
	f.bookings[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	f.bookings[id].Status = status
	f.statusLog = append(f.statusLog, status)
	return nil
}

func (f *fakeBookingRepo) Terminate(_ context.Context, id int64, status domain.BookingStatus, _ string) error {
	f.bookings[id].Status = status
	f.terminated = append(f.terminated, id)
	return nil
}

type fakeRuleSetRepo struct{}

func (fakeRuleSetRepo) GetByBusiness(_ context.Context, _ int64) (*domain.RuleSet, error) {
	return nil, rulesetstore.ErrRuleSetNotFound
}

type fakeOperationRepo struct {
	ops       []*domain.BookingOperation
	history   []*domain.BookingStatusHistory
	actions   []*domain.ScheduledAction
	cancelled []int64
	nextID    int64
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

func (f *fakeOperationRepo) CancelScheduledActions(_ context.Context, bookingID int64) error {
	f.cancelled = append(f.cancelled, bookingID)
	return nil
}

type fakePolicyEngine struct {
	policy   *domain.BookingPolicy
	decision *domain.PolicyDecision
	err      error
}

func (f *fakePolicyEngine) Current(_ context.Context, businessID int64) (*domain.BookingPolicy, error) {
	if f.policy == nil {
		return domain.DefaultBookingPolicy(businessID), nil
	}
	return f.policy, nil
}

func (f *fakePolicyEngine) Decide(_ context.Context, booking *domain.Booking, action domain.PolicyAction, _ bool) (*domain.BookingPolicy, *domain.PolicyDecision, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	policy, _ := f.Current(context.Background(), booking.BusinessID)
	if f.decision != nil {
		return policy, f.decision, nil
	}
	return policy, &domain.PolicyDecision{Action: action, Allowed: true, RefundEligible: true}, nil
}

type fakeValidator struct {
	verdict *validate_booking.ValidateBookingResponse
}

func (f *fakeValidator) Execute(_ context.Context, _ validate_booking.ValidateBookingRequest) (*validate_booking.ValidateBookingResponse, error) {
	if f.verdict == nil {
		return &validate_booking.ValidateBookingResponse{Valid: true}, nil
	}
	return f.verdict, nil
}

type fakeMatcher struct {
	resp *match_resource.MatchResponse
}

func (f *fakeMatcher) Execute(_ context.Context, _ match_resource.MatchRequest) (*match_resource.MatchResponse, error) {
	if f.resp == nil {
		return &match_resource.MatchResponse{}, nil
	}
	return f.resp, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type transitionEnv struct {
	bookings   *fakeBookingRepo
	operations *fakeOperationRepo
	policy     *fakePolicyEngine
	validator  *fakeValidator
	matcher    *fakeMatcher
	uc         *UseCase
}

func newTransitionEnv(now time.Time, bookings ...*domain.Booking) *transitionEnv {
	env := &transitionEnv{
		bookings:   newFakeBookingRepo(bookings...),
		operations: &fakeOperationRepo{},
		policy:     &fakePolicyEngine{},
		validator:  &fakeValidator{},
		matcher:    &fakeMatcher{},
	}
	env.uc = NewUseCase(
		env.bookings,
		fakeRuleSetRepo{},
		env.operations,
		env.policy,
		env.validator,
		env.matcher,
		fakeTxManager{},
		fixedTime{now: now},
		nopLogger{},
	)
	return env
}

func strPtr(s string) *string { return &s }

// Бронирование 2026-03-02 14:00
func requestedBooking() *domain.Booking {
	return &domain.Booking{
		ID:              1,
		BusinessID:      1,
		CustomerID:      42,
		ServiceID:       10,
		BookingDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "14:00",
		DurationMinutes: 60,
		Status:          domain.StatusRequested,
		ServiceName:     "Стрижка",
		ServicePrice:    1500,
		Industry:        "beauty",
	}
}

func confirmedBooking() *domain.Booking {
	booking := requestedBooking()
	booking.Status = domain.StatusConfirmed
	return booking
}

func TestExecute_ConfirmByStaff(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, requestedBooking())

	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "confirm", ActorID: 7, ActorRole: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRequested), resp.FromStatus)
	assert.Equal(t, string(domain.StatusConfirmed), resp.ToStatus)

	require.Len(t, env.operations.ops, 1)
	assert.Equal(t, domain.OperationConfirm, env.operations.ops[0].Type)
	require.Len(t, env.operations.history, 1)

	// Инструкция авто-фиксации неявки после льготного периода
	require.Len(t, env.operations.actions, 1)
	action := env.operations.actions[0]
	assert.Equal(t, domain.ScheduledAutoNoShow, action.Type)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 15, 0, 0, time.UTC), action.ExecuteAt)
}

func TestExecute_ConfirmByCustomerForbidden(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, requestedBooking())

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "confirm", ActorID: 42,
	})
	require.ErrorIs(t, err, ErrForbidden)

	// Отклонённая попытка журналируется с непройденными проверками
	require.Len(t, env.operations.ops, 1)
	rejected := env.operations.ops[0]
	assert.False(t, rejected.ConstraintsPassed)
	require.Len(t, rejected.Violations, 1)
	assert.Equal(t, domain.ViolationIllegalState, rejected.Violations[0].Code)
}

func TestExecute_CancelWithFee(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())
	env.policy.decision = &domain.PolicyDecision{
		Action: domain.PolicyActionCancel, Allowed: true, FeeAmount: 750,
	}

	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "cancel", ActorID: 42, Reason: strPtr("передумал"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.ToStatus)
	require.NotNil(t, resp.Decision)
	assert.Equal(t, 750.0, resp.Decision.FeeAmount)

	assert.Equal(t, []int64{1}, env.bookings.terminated)
	assert.Equal(t, []int64{1}, env.operations.cancelled)

	require.Len(t, env.operations.ops, 1)
	op := env.operations.ops[0]
	assert.Equal(t, domain.OperationCancel, op.Type)
	assert.Equal(t, 750.0, op.FinancialImpact)
	payload, ok := op.Payload.(*domain.CancelPayload)
	require.True(t, ok)
	assert.Equal(t, 750.0, payload.FeeAmount)
	assert.Equal(t, "передумал", payload.Reason)
}

func TestExecute_CancelBlockedByPolicy(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())
	env.policy.decision = &domain.PolicyDecision{
		Action: domain.PolicyActionCancel, Allowed: false, Reason: "booking has already started",
	}

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "cancel", ActorID: 42,
	})

	var policyErr *domain.PolicyViolationError
	require.ErrorAs(t, err, &policyErr)
	assert.Empty(t, env.bookings.terminated)

	// Отклонение журналируется
	require.Len(t, env.operations.ops, 1)
	assert.False(t, env.operations.ops[0].ConstraintsPassed)
	assert.Equal(t, domain.ViolationPolicy, env.operations.ops[0].Violations[0].Code)
}

func TestExecute_IllegalTransitionJournaled(t *testing.T) {
	now := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	booking := requestedBooking()
	booking.Status = domain.StatusCompleted
	env := newTransitionEnv(now, booking)

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "cancel", ActorID: 42,
	})
	require.ErrorIs(t, err, ErrIllegalTransition)

	require.Len(t, env.operations.ops, 1)
	rejected := env.operations.ops[0]
	assert.False(t, rejected.ConstraintsPassed)
	assert.Equal(t, domain.ViolationIllegalState, rejected.Violations[0].Code)
}

func TestExecute_CompleteByStaff(t *testing.T) {
	now := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "complete", ActorID: 7, ActorRole: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.ToStatus)
	assert.Equal(t, []int64{1}, env.operations.cancelled)
}

func TestExecute_NoShowRecordsFee(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())
	env.policy.decision = &domain.PolicyDecision{
		Action: domain.PolicyActionNoShow, Allowed: true, FeeAmount: 1500,
	}

	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "no_show", ActorID: 7, ActorRole: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.ToStatus)

	require.Len(t, env.operations.ops, 1)
	assert.Equal(t, 1500.0, env.operations.ops[0].FinancialImpact)
}

func TestExecute_Reschedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	newStart := types.TimeString("16:00")
	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID:    1,
		Operation:    "reschedule",
		ActorID:      42,
		NewDate:      strPtr("2026-03-05"),
		NewStartTime: &newStart,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRescheduled), resp.ToStatus)
	require.NotNil(t, resp.NewBookingID)

	// Старое бронирование закрыто, новое создано со связью и счётчиком
	created := env.bookings.bookings[*resp.NewBookingID]
	require.NotNil(t, created)
	assert.Equal(t, domain.StatusRequested, created.Status)
	require.NotNil(t, created.RelatedBookingID)
	assert.Equal(t, int64(1), *created.RelatedBookingID)
	assert.Equal(t, 1, created.RescheduleCount)
	assert.Equal(t, domain.StatusRescheduled, env.bookings.bookings[1].Status)

	// Парные операции несут общий ReferenceID
	require.Len(t, env.operations.ops, 2)
	oldOp, newOp := env.operations.ops[0], env.operations.ops[1]
	assert.Equal(t, domain.OperationReschedule, oldOp.Type)
	assert.Equal(t, domain.OperationCreate, newOp.Type)
	assert.NotEmpty(t, oldOp.ReferenceID)
	assert.Equal(t, oldOp.ReferenceID, newOp.ReferenceID)

	require.Len(t, env.operations.history, 2)
	assert.Equal(t, []int64{1}, env.operations.cancelled)

	// Напоминание для нового бронирования
	require.Len(t, env.operations.actions, 1)
	assert.Equal(t, domain.ScheduledReminder, env.operations.actions[0].Type)
	assert.Equal(t, *resp.NewBookingID, env.operations.actions[0].BookingID)
}

func TestExecute_RescheduleRejectedByValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())
	env.validator.verdict = &validate_booking.ValidateBookingResponse{
		Valid:      false,
		Violations: []domain.Violation{{Code: domain.ViolationClosedDay, Message: "closed"}},
	}

	newStart := types.TimeString("16:00")
	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID:    1,
		Operation:    "reschedule",
		ActorID:      42,
		NewDate:      strPtr("2026-03-05"),
		NewStartTime: &newStart,
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, domain.StatusConfirmed, env.bookings.bookings[1].Status)
}

func TestExecute_RescheduleWithBusyResourceMeansSlotTaken(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	booking := confirmedBooking()
	resourceID := int64(7)
	booking.ResourceID = &resourceID
	env := newTransitionEnv(now, booking)
	// Подбор не нашёл свободного ресурса для нового слота
	env.matcher.resp = &match_resource.MatchResponse{}

	newStart := types.TimeString("16:00")
	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID:    1,
		Operation:    "reschedule",
		ActorID:      42,
		NewDate:      strPtr("2026-03-05"),
		NewStartTime: &newStart,
	})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// Проигранная гонка за слот тоже фиксируется в журнале
	require.Len(t, env.operations.ops, 1)
	rejected := env.operations.ops[0]
	assert.Equal(t, domain.OperationReschedule, rejected.Type)
	assert.False(t, rejected.ConstraintsPassed)
	require.Len(t, rejected.Violations, 1)
	assert.Equal(t, domain.ViolationSlotConflict, rejected.Violations[0].Code)
}

func TestExecute_MalformedRescheduleJournaled(t *testing.T) {
	// Переносу не хватает новой даты: запрос отклоняется, но попытка
	// над существующим бронированием остаётся в журнале операций
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "reschedule", ActorID: 42,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.Len(t, env.operations.ops, 1)
	rejected := env.operations.ops[0]
	assert.Equal(t, domain.OperationReschedule, rejected.Type)
	assert.Equal(t, int64(42), rejected.PerformedBy)
	assert.False(t, rejected.ConstraintsPassed)
	require.Len(t, rejected.Violations, 1)
	assert.Equal(t, domain.ViolationMalformedRequest, rejected.Violations[0].Code)
}

func TestExecute_RefundByStaff(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	amount := 500.0
	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "refund", ActorID: 7, ActorRole: "staff", Amount: &amount,
	})
	require.NoError(t, err)
	// Финансовая операция не меняет статус
	assert.Equal(t, resp.FromStatus, resp.ToStatus)

	require.Len(t, env.operations.ops, 1)
	op := env.operations.ops[0]
	assert.Equal(t, domain.OperationRefund, op.Type)
	assert.Equal(t, -500.0, op.FinancialImpact)
}

func TestExecute_ChargeRequiresAmount(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "charge", ActorID: 7, ActorRole: "staff",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ReminderSentRequiresSystem(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "reminder_sent", ActorID: 7, ActorRole: "staff",
	})
	require.ErrorIs(t, err, ErrForbidden)

	resp, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 1, Operation: "reminder_sent", ActorID: 1, ActorRole: "system",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.ToStatus)
}

func TestExecute_BookingNotFound(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now)

	_, err := env.uc.Execute(context.Background(), TransitionBookingRequest{
		BookingID: 404, Operation: "confirm", ActorID: 7, ActorRole: "staff",
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	env := newTransitionEnv(now, confirmedBooking())

	cases := []TransitionBookingRequest{
		{BookingID: 0, Operation: "confirm", ActorID: 7},
		{BookingID: 1, Operation: "create", ActorID: 7},
		{BookingID: 1, Operation: "vanish", ActorID: 7},
		{BookingID: 1, Operation: "confirm", ActorID: 7, ActorRole: "root"},
		{BookingID: 1, Operation: "reschedule", ActorID: 7}, // без новой даты
	}
	for _, req := range cases {
		_, err := env.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput, "operation %s", req.Operation)
	}
}
