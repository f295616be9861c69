package domain

import "github.com/m04kA/SMC-ReservationEngine/pkg/types"

// Slot кандидат временного окна фиксированной длительности
// AvailableSpots - число квалифицированных ресурсов, свободных в это окно
type Slot struct {
	StartTime       types.TimeString
	DurationMinutes int
	Available       bool
	AvailableSpots  int
	TotalSpots      int
}

// IsFull сообщает, что в окне не осталось свободных мест
func (s *Slot) IsFull() bool {
	return s.AvailableSpots <= 0
}

// IsPartiallyAvailable сообщает, что окно занято частично
func (s *Slot) IsPartiallyAvailable() bool {
	return s.AvailableSpots > 0 && s.AvailableSpots < s.TotalSpots
}
