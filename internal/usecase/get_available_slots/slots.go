package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// generationInput всё, что нужно для генерации сетки на один день
type generationInput struct {
	day             directoryservice.DaySchedule
	weekday         time.Weekday
	durationMinutes int
	bufferMinutes   int
	resources       []directoryservice.Resource // уже квалифицированные
	rosterSize      int                         // полный штат бизнеса, до фильтрации по квалификации
	existing        []*domain.Booking
	minStartMinutes int // слоты раньше этой отметки отбрасываются (горизонт same-day)
	allowDouble     bool
}

// generateSlots строит сетку слотов с шагом domain.SlotStepMinutes.
// Слот входит в сетку, только если окно услуги целиком помещается
// в рабочие часы и не задевает перерывы; доступность считается
// по свободной ёмкости ресурсов
func generateSlots(in generationInput) []domain.Slot {
	openMin, closeMin, ok := in.day.OpenWindow()
	if !ok {
		return []domain.Slot{}
	}

	slots := []domain.Slot{}
	for start := openMin; start+in.durationMinutes <= closeMin; start += domain.SlotStepMinutes {
		if start < in.minStartMinutes {
			continue
		}

		interval := domain.Interval{StartMinutes: start, EndMinutes: start + in.durationMinutes}
		if overlapsBreak(in.day.Breaks, interval) {
			continue
		}

		startTime, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			continue
		}

		total, free := countSpots(in, interval)
		if in.allowDouble {
			free = total
		}

		slots = append(slots, domain.Slot{
			StartTime:       startTime,
			DurationMinutes: in.durationMinutes,
			Available:       free > 0,
			AvailableSpots:  free,
			TotalSpots:      total,
		})
	}
	return slots
}

// countSpots считает общую и свободную ёмкость окна.
// Бизнес без штата бронируется на уровне бизнеса с единичной ёмкостью;
// штат без квалифицированных ресурсов означает нулевую ёмкость
func countSpots(in generationInput, interval domain.Interval) (total, free int) {
	if len(in.resources) == 0 {
		if in.rosterSize > 0 {
			return 0, 0
		}
		if domain.HasConflict(interval, in.existing, in.bufferMinutes, nil) {
			return 1, 0
		}
		return 1, 1
	}

	for i := range in.resources {
		total++
		if !match_resource.WorksDuring(in.resources[i], in.weekday, interval) {
			continue
		}
		if match_resource.IsFree(in.resources[i], in.existing, interval, in.bufferMinutes) {
			free++
		}
	}
	return total, free
}

func overlapsBreak(breaks []directoryservice.BreakInterval, interval domain.Interval) bool {
	for _, brk := range breaks {
		startMin, endMin, err := brk.Window()
		if err != nil {
			continue
		}
		if interval.Overlaps(domain.Interval{StartMinutes: startMin, EndMinutes: endMin}) {
			return true
		}
	}
	return false
}
