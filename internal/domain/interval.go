package domain

import "github.com/m04kA/SMC-ReservationEngine/pkg/types"

// Interval временной интервал внутри одного дня в минутах с начала суток
// Единственный примитив проверки пересечений: генерация слотов, валидация
// бронирований и подбор ресурсов обязаны использовать его, а не собственные
// реализации
type Interval struct {
	StartMinutes int
	EndMinutes   int
}

// NewInterval создает интервал из времени начала и длительности
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	startMin, err := start.Minutes()
	if err != nil {
		return Interval{}, err
	}
	return Interval{
		StartMinutes: startMin,
		EndMinutes:   startMin + durationMinutes,
	}, nil
}

// NewIntervalFromRange создает интервал из времени начала и конца
func NewIntervalFromRange(start, end types.TimeString) (Interval, error) {
	startMin, err := start.Minutes()
	if err != nil {
		return Interval{}, err
	}
	endMin, err := end.Minutes()
	if err != nil {
		return Interval{}, err
	}
	return Interval{StartMinutes: startMin, EndMinutes: endMin}, nil
}

// IsValid проверяет, что конец строго позже начала
func (i Interval) IsValid() bool {
	return i.EndMinutes > i.StartMinutes
}

// Expand возвращает интервал, расширенный на bufferMinutes с обеих сторон
// Границы ограничиваются пределами суток
func (i Interval) Expand(bufferMinutes int) Interval {
	start := i.StartMinutes - bufferMinutes
	if start < 0 {
		start = 0
	}
	end := i.EndMinutes + bufferMinutes
	if end > 24*60 {
		end = 24 * 60
	}
	return Interval{StartMinutes: start, EndMinutes: end}
}

// Overlaps проверяет реальное пересечение интервалов
// Используются строгие неравенства: интервалы, граничащие точка-в-точку
// (один кончается ровно там, где начинается другой), не пересекаются
func (i Interval) Overlaps(other Interval) bool {
	return i.StartMinutes < other.EndMinutes && i.EndMinutes > other.StartMinutes
}

// Contains проверяет, что other целиком лежит внутри интервала
func (i Interval) Contains(other Interval) bool {
	return other.StartMinutes >= i.StartMinutes && other.EndMinutes <= i.EndMinutes
}
