package match_resource

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// Qualified отбирает ресурсы, способные оказать услугу:
// активные, совпадающие по типу и обладающие требуемым навыком
func Qualified(resources []directoryservice.Resource, service *directoryservice.Service) []directoryservice.Resource {
	var qualified []directoryservice.Resource
	for i := range resources {
		if resources[i].CanProvide(service) {
			qualified = append(qualified, resources[i])
		}
	}
	return qualified
}

// FilterByPreferences оставляет ресурсы, атрибуты которых удовлетворяют
// всем предпочтениям. Предпочтения мягкие: если не подошёл никто,
// возвращается исходный список с признаком dropped
func FilterByPreferences(resources []directoryservice.Resource, preferences map[string]string) ([]directoryservice.Resource, bool) {
	if len(preferences) == 0 || len(resources) == 0 {
		return resources, false
	}

	var matched []directoryservice.Resource
	for i := range resources {
		if matchesPreferences(resources[i], preferences) {
			matched = append(matched, resources[i])
		}
	}
	if len(matched) == 0 {
		return resources, true
	}
	return matched, false
}

func matchesPreferences(resource directoryservice.Resource, preferences map[string]string) bool {
	for key, want := range preferences {
		if resource.Attributes[key] != want {
			return false
		}
	}
	return true
}

// WorksDuring проверяет, что ресурс работает в течение интервала.
// Ресурс без собственного расписания следует расписанию бизнеса
// и считается доступным
func WorksDuring(resource directoryservice.Resource, weekday time.Weekday, interval domain.Interval) bool {
	if !hasOwnSchedule(resource.WorkingHours) {
		return true
	}

	day := resource.WorkingHours.ForDay(weekday)
	openMin, closeMin, ok := day.OpenWindow()
	if !ok {
		return false
	}
	window := domain.Interval{StartMinutes: openMin, EndMinutes: closeMin}
	if !window.Contains(interval) {
		return false
	}
	for _, brk := range day.Breaks {
		startMin, endMin, err := brk.Window()
		if err != nil {
			continue
		}
		if interval.Overlaps(domain.Interval{StartMinutes: startMin, EndMinutes: endMin}) {
			return false
		}
	}
	return true
}

func hasOwnSchedule(week directoryservice.WeekSchedule) bool {
	for _, day := range []directoryservice.DaySchedule{
		week.Monday, week.Tuesday, week.Wednesday, week.Thursday,
		week.Friday, week.Saturday, week.Sunday,
	} {
		if day.IsOpen {
			return true
		}
	}
	return false
}

// IsFree проверяет, что у ресурса осталась ёмкость на интервал
// с учётом буфера. Ресурс с capacity > 1 вмещает несколько
// пересекающихся бронирований
func IsFree(resource directoryservice.Resource, existing []*domain.Booking, interval domain.Interval, bufferMinutes int) bool {
	capacity := resource.Capacity
	if capacity < 1 {
		capacity = 1
	}
	return domain.CountConflicts(interval, existing, bufferMinutes, &resource.ID) < capacity
}

// Rank упорядочивает кандидатов: сначала более квалифицированные,
// при равенстве - менее загруженные в этот день, затем по ID
// для детерминированности
func Rank(candidates []directoryservice.Resource, service *directoryservice.Service, existing []*domain.Booking) {
	load := make(map[int64]int, len(candidates))
	for _, booking := range existing {
		if booking.ResourceID != nil && booking.IsActive() {
			load[*booking.ResourceID]++
		}
	}

	skill := func(r directoryservice.Resource) int {
		if service.RequiredSkill == nil {
			return 0
		}
		return r.SkillLevel(*service.RequiredSkill)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := skill(candidates[i]), skill(candidates[j])
		if si != sj {
			return si > sj
		}
		li, lj := load[candidates[i].ID], load[candidates[j].ID]
		if li != lj {
			return li < lj
		}
		return candidates[i].ID < candidates[j].ID
	})
}
