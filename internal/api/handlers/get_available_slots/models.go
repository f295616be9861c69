package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/SMC-ReservationEngine/internal/usecase/get_available_slots"
)

// SlotResponse доступное временное окно
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	AvailableSpots  int    `json:"availableSpots"`
	TotalSpots      int    `json:"totalSpots"`
}

// AvailableSlotsResponse сетка слотов на день
type AvailableSlotsResponse struct {
	BusinessID int64          `json:"businessId"`
	ServiceID  int64          `json:"serviceId"`
	Date       string         `json:"date"`
	Slots      []SlotResponse `json:"slots"`
}

// ToUseCaseRequest конвертирует параметры запроса в модель use case
func ToUseCaseRequest(businessID, serviceID int64, date string, resourceID *int64) getAvailableSlots.GetAvailableSlotsRequest {
	return getAvailableSlots.GetAvailableSlotsRequest{
		BusinessID: businessID,
		ServiceID:  serviceID,
		Date:       date,
		ResourceID: resourceID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.GetAvailableSlotsResponse) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:       slot.StartTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
			AvailableSpots:  slot.AvailableSpots,
			TotalSpots:      slot.TotalSpots,
		})
	}

	return &AvailableSlotsResponse{
		BusinessID: resp.BusinessID,
		ServiceID:  resp.ServiceID,
		Date:       resp.Date,
		Slots:      slots,
	}
}
