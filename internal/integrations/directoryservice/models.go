package directoryservice

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// Business профиль бизнеса из DirectoryService
type Business struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Industry     string       `json:"industry"`
	ManagerIDs   []int64      `json:"managerIds"`
	WorkingHours WeekSchedule `json:"workingHours"`
}

// WeekSchedule расписание работы по дням недели
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForDay возвращает расписание на указанный день недели
func (w WeekSchedule) ForDay(weekday time.Weekday) DaySchedule {
	switch weekday {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// DaySchedule расписание одного дня с перерывами
type DaySchedule struct {
	IsOpen    bool            `json:"isOpen"`
	OpenTime  *string         `json:"openTime,omitempty"`  // "09:00"
	CloseTime *string         `json:"closeTime,omitempty"` // "18:00"
	Breaks    []BreakInterval `json:"breaks,omitempty"`
}

// OpenWindow возвращает границы рабочего дня в минутах от полуночи.
// ok = false, если день закрыт или расписание не заполнено
func (d DaySchedule) OpenWindow() (openMin, closeMin int, ok bool) {
	if !d.IsOpen || d.OpenTime == nil || d.CloseTime == nil {
		return 0, 0, false
	}
	var err error
	openMin, err = parseMinutes(*d.OpenTime)
	if err != nil {
		return 0, 0, false
	}
	closeMin, err = parseMinutes(*d.CloseTime)
	if err != nil || closeMin <= openMin {
		return 0, 0, false
	}
	return openMin, closeMin, true
}

// BreakInterval перерыв внутри рабочего дня
type BreakInterval struct {
	StartTime string `json:"startTime"` // "13:00"
	EndTime   string `json:"endTime"`   // "14:00"
}

// Window возвращает границы перерыва в минутах от полуночи
func (b BreakInterval) Window() (startMin, endMin int, err error) {
	startMin, err = parseMinutes(b.StartTime)
	if err != nil {
		return 0, 0, err
	}
	endMin, err = parseMinutes(b.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return startMin, endMin, nil
}

func parseMinutes(value string) (int, error) {
	ts, err := types.NewTimeStringFromString(value)
	if err != nil {
		return 0, err
	}
	return ts.Minutes()
}

// Service услуга бизнеса
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"businessId"`
	Name            string   `json:"name"`
	Price           *float64 `json:"price,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	ResourceType    string   `json:"resourceType"` // staff / table / room / equipment
	RequiredSkill   *string  `json:"requiredSkill,omitempty"`
	MinSkillLevel   int      `json:"minSkillLevel"`
}

// Resource бронируемая единица (мастер, стол, комната, оборудование)
type Resource struct {
	ID           int64             `json:"id"`
	BusinessID   int64             `json:"businessId"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Capacity     int               `json:"capacity"`
	Active       bool              `json:"active"`
	WorkingHours WeekSchedule      `json:"workingHours"`
	Skills       []ResourceSkill   `json:"skills,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"` // gender, specialty и т.п.
}

// ResourceSkill навык ресурса с уровнем квалификации
type ResourceSkill struct {
	Name  string `json:"name"`
	Level int    `json:"level"` // 1 = junior ... 5 = expert
}

// HasSkill проверяет наличие навыка с уровнем не ниже minLevel
func (r *Resource) HasSkill(name string, minLevel int) bool {
	for _, skill := range r.Skills {
		if skill.Name == name && skill.Level >= minLevel {
			return true
		}
	}
	return false
}

// CanProvide проверяет, что ресурс способен оказать услугу:
// активен, совпадает по типу и обладает требуемым навыком нужного уровня
func (r *Resource) CanProvide(s *Service) bool {
	if !r.Active || r.Type != s.ResourceType {
		return false
	}
	if s.RequiredSkill != nil {
		return r.HasSkill(*s.RequiredSkill, s.MinSkillLevel)
	}
	return true
}

// SkillLevel возвращает уровень навыка ресурса (0, если навыка нет)
func (r *Resource) SkillLevel(name string) int {
	for _, skill := range r.Skills {
		if skill.Name == name {
			return skill.Level
		}
	}
	return 0
}
