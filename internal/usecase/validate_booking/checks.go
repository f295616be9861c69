package validate_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// checkAdvanceWindow проверяет границы горизонта бронирования из RuleSet
func checkAdvanceWindow(now, startsAt time.Time, rules *domain.RuleSet) []domain.Violation {
	var violations []domain.Violation

	minStart := now.Add(time.Duration(rules.AdvanceBookingHours) * time.Hour)
	if startsAt.Before(minStart) {
		violations = append(violations, domain.Violation{
			Code: domain.ViolationAdvanceTooSoon,
			Message: fmt.Sprintf("booking must be made at least %d hour(s) in advance",
				rules.AdvanceBookingHours),
		})
	}

	if rules.HasAdvanceLimit() {
		maxStart := now.Add(time.Duration(rules.MaxAdvanceBookingDays) * 24 * time.Hour)
		if startsAt.After(maxStart) {
			violations = append(violations, domain.Violation{
				Code: domain.ViolationAdvanceTooFar,
				Message: fmt.Sprintf("booking cannot be made more than %d day(s) in advance",
					rules.MaxAdvanceBookingDays),
			})
		}
	}

	return violations
}

// checkBusinessHours проверяет, что интервал целиком лежит в рабочем окне дня
// и не пересекает перерывы
func checkBusinessHours(day directoryservice.DaySchedule, interval domain.Interval) *domain.Violation {
	openMin, closeMin, ok := day.OpenWindow()
	if !ok {
		return &domain.Violation{
			Code:    domain.ViolationClosedDay,
			Message: "business is closed on the requested day",
		}
	}

	window := domain.Interval{StartMinutes: openMin, EndMinutes: closeMin}
	if !window.Contains(interval) {
		return &domain.Violation{
			Code:    domain.ViolationOutsideHours,
			Message: "booking does not fit within business working hours",
		}
	}

	for _, brk := range day.Breaks {
		startMin, endMin, err := brk.Window()
		if err != nil {
			continue
		}
		if interval.Overlaps(domain.Interval{StartMinutes: startMin, EndMinutes: endMin}) {
			return &domain.Violation{
				Code:    domain.ViolationOutsideHours,
				Message: "booking overlaps a scheduled break",
			}
		}
	}

	return nil
}
