package evaluate_policy

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
)

// evaluateCancellation оценивает отмену бронирования.
// Внутри бесплатного окна штрафа нет; снаружи применяется ровно один
// из способов расчёта - фиксированный или процент от цены услуги
func evaluateCancellation(policy *domain.BookingPolicy, booking *domain.Booking, now time.Time, emergency bool) (domain.PolicyDecision, error) {
	decision := domain.PolicyDecision{Action: domain.PolicyActionCancel, Allowed: true}

	if emergency {
		decision.RefundEligible = true
		decision.Reason = "emergency override, no fee applied"
		return decision, nil
	}

	startsAt := booking.StartsAt()
	if !now.Before(startsAt) {
		decision.Allowed = false
		decision.Reason = "booking has already started"
		return decision, nil
	}

	freeWindow := time.Duration(policy.FreeCancellationHours) * time.Hour
	if startsAt.Sub(now) >= freeWindow {
		decision.RefundEligible = true
		return decision, nil
	}

	if !policy.CancellationFeeConfigured() {
		return domain.PolicyDecision{}, fmt.Errorf(
			"%w: both flat and percent cancellation fees are set for business %d",
			ErrPolicyMisconfigured, policy.BusinessID)
	}

	if policy.CancellationFeeFlat > 0 {
		decision.FeeAmount = policy.CancellationFeeFlat
	} else {
		decision.FeeAmount = booking.ServicePrice * policy.CancellationFeePercent / 100
	}
	decision.RefundEligible = decision.FeeAmount == 0
	decision.Reason = fmt.Sprintf("cancellation within %d hour(s) of start incurs a fee",
		policy.FreeCancellationHours)
	return decision, nil
}

// evaluateReschedule оценивает перенос: крайний срок жёсткий, а лимит
// бесплатных переносов мягкий - сверх лимита перенос платный
func evaluateReschedule(policy *domain.BookingPolicy, booking *domain.Booking, now time.Time) domain.PolicyDecision {
	decision := domain.PolicyDecision{Action: domain.PolicyActionReschedule, Allowed: true}

	deadline := booking.StartsAt().Add(-time.Duration(policy.RescheduleAllowedUntilHours) * time.Hour)
	if !now.Before(deadline) {
		decision.Allowed = false
		decision.Reason = fmt.Sprintf("reschedule is allowed no later than %d hour(s) before start",
			policy.RescheduleAllowedUntilHours)
		return decision
	}

	if policy.MaxReschedules > 0 && booking.RescheduleCount >= policy.MaxReschedules {
		decision.FeeAmount = policy.RescheduleFeeFlat
		decision.Reason = fmt.Sprintf("free reschedule limit of %d exceeded", policy.MaxReschedules)
	}
	decision.RefundEligible = decision.FeeAmount == 0
	return decision
}

// evaluateNoShow оценивает фиксацию неявки. До истечения льготного периода
// неявка не фиксируется; повторные неявки в скользящем окне дают
// рекомендацию блокировки
func evaluateNoShow(policy *domain.BookingPolicy, booking *domain.Booking, now time.Time, priorNoShows int) domain.PolicyDecision {
	decision := domain.PolicyDecision{Action: domain.PolicyActionNoShow, Allowed: true}

	graceEnd := booking.StartsAt().Add(time.Duration(policy.NoShowGraceMinutes) * time.Minute)
	if now.Before(graceEnd) {
		decision.Allowed = false
		decision.Reason = fmt.Sprintf("no-show can be recorded only %d minute(s) after start",
			policy.NoShowGraceMinutes)
		return decision
	}

	decision.FeeAmount = booking.ServicePrice * policy.NoShowFeePercent / 100
	if policy.NoShowBlockAfter > 0 && priorNoShows+1 >= policy.NoShowBlockAfter {
		decision.BlockRecommended = true
		decision.BlockDays = policy.NoShowBlockDays
		decision.Reason = fmt.Sprintf("%d no-show(s) within %d day(s), blocking recommended",
			priorNoShows+1, policy.NoShowWindowDays)
	}
	return decision
}

// evaluatePayment возвращает требуемый депозит по текущей политике
func evaluatePayment(policy *domain.BookingPolicy, booking *domain.Booking) domain.PolicyDecision {
	return domain.PolicyDecision{
		Action:         domain.PolicyActionPayment,
		Allowed:        true,
		FeeAmount:      booking.ServicePrice * policy.DepositPercent / 100,
		RefundEligible: policy.DepositPercent == 0,
	}
}
