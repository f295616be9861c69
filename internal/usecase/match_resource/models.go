package match_resource

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// MatchRequest запрос на подбор ресурса под бронирование
type MatchRequest struct {
	BusinessID      int64
	ServiceID       int64
	BookingDate     string // YYYY-MM-DD
	StartTime       types.TimeString
	DurationMinutes int
	BufferMinutes   int
	// Жёсткое требование: конкретный ресурс, иначе пустой результат
	RequiredResourceID *int64
	// Мягкие предпочтения по атрибутам (gender, specialty и т.п.):
	// отбрасываются с предупреждением, если им никто не соответствует
	Preferences map[string]string
}

// MatchResponse результат подбора. Resource = nil означает, что свободных
// подходящих ресурсов нет - это факт о загрузке, а не ошибка
type MatchResponse struct {
	Resource           *directoryservice.Resource
	Candidates         []directoryservice.Resource
	PreferencesDropped bool
	Warnings           []domain.Violation
}
