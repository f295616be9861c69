package get_available_slots

import "github.com/m04kA/SMC-ReservationEngine/internal/domain"

// GetAvailableSlotsRequest запрос доступных слотов на день
type GetAvailableSlotsRequest struct {
	BusinessID int64
	ServiceID  int64
	Date       string // YYYY-MM-DD
	ResourceID *int64
}

// GetAvailableSlotsResponse сетка слотов на день.
// Закрытый или прошедший день даёт пустую сетку, а не ошибку
type GetAvailableSlotsResponse struct {
	BusinessID int64
	ServiceID  int64
	Date       string
	Slots      []domain.Slot
}
