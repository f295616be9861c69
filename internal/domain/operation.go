package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

var (
	// ErrUnknownOperationPayload возвращается при десериализации payload
	// с неизвестным дискриминатором типа
	ErrUnknownOperationPayload = errors.New("domain: unknown operation payload type")
)

// OperationType тип операции над бронированием
type OperationType string

const (
	OperationCreate       OperationType = "create"
	OperationConfirm      OperationType = "confirm"
	OperationCancel       OperationType = "cancel"
	OperationReschedule   OperationType = "reschedule"
	OperationNoShow       OperationType = "no_show"
	OperationComplete     OperationType = "complete"
	OperationModify       OperationType = "modify"
	OperationRefund       OperationType = "refund"
	OperationCharge       OperationType = "charge"
	OperationReminderSent OperationType = "reminder_sent"
)

// ParseOperationType валидирует и конвертирует строку в OperationType
func ParseOperationType(s string) (OperationType, bool) {
	switch op := OperationType(s); op {
	case OperationCreate, OperationConfirm, OperationCancel, OperationReschedule,
		OperationNoShow, OperationComplete, OperationModify, OperationRefund,
		OperationCharge, OperationReminderSent:
		return op, true
	default:
		return "", false
	}
}

// ActorRole роль инициатора операции
type ActorRole string

const (
	ActorCustomer ActorRole = "customer"
	ActorStaff    ActorRole = "staff"
	ActorSystem   ActorRole = "system"
	ActorAdmin    ActorRole = "admin"
)

// ParseActorRole валидирует и конвертирует строку в ActorRole
func ParseActorRole(s string) (ActorRole, bool) {
	switch role := ActorRole(s); role {
	case ActorCustomer, ActorStaff, ActorSystem, ActorAdmin:
		return role, true
	default:
		return "", false
	}
}

// OperationPayload типизированный payload операции
// Вместо нетипизированного JSON-блоба каждая операция несёт собственную
// структуру, что делает таблицу переходов проверяемой на исчерпываемость
type OperationPayload interface {
	payloadType() string
}

// CreatePayload payload операции создания бронирования
type CreatePayload struct {
	ServiceID  int64            `json:"serviceId"`
	ResourceID *int64           `json:"resourceId,omitempty"`
	Date       string           `json:"date"`
	StartTime  types.TimeString `json:"startTime"`
	Deposit    *float64         `json:"deposit,omitempty"`
}

func (CreatePayload) payloadType() string { return string(OperationCreate) }

// StatusChangePayload payload операций confirm/complete/no_show/modify
type StatusChangePayload struct {
	Reason string `json:"reason,omitempty"`
}

func (StatusChangePayload) payloadType() string { return "status_change" }

// CancelPayload payload операции отмены
type CancelPayload struct {
	Reason         string  `json:"reason,omitempty"`
	FeeAmount      float64 `json:"feeAmount"`
	RefundEligible bool    `json:"refundEligible"`
	Emergency      bool    `json:"emergency,omitempty"`
}

func (CancelPayload) payloadType() string { return string(OperationCancel) }

// ReschedulePayload payload парных операций переноса
// Обе операции пары (cancel-old и create-new) несут один ReferenceID
type ReschedulePayload struct {
	OldBookingID int64            `json:"oldBookingId"`
	NewBookingID int64            `json:"newBookingId,omitempty"`
	NewDate      string           `json:"newDate"`
	NewStartTime types.TimeString `json:"newStartTime"`
	FeeAmount    float64          `json:"feeAmount"`
}

func (ReschedulePayload) payloadType() string { return string(OperationReschedule) }

// FinancialPayload payload операций refund/charge
type FinancialPayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

func (FinancialPayload) payloadType() string { return "financial" }

// payloadEnvelope обёртка сериализации с дискриминатором типа
type payloadEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalOperationPayload сериализует payload с дискриминатором типа
func MarshalOperationPayload(p OperationPayload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadEnvelope{Type: p.payloadType(), Data: data})
}

// UnmarshalOperationPayload восстанавливает типизированный payload
func UnmarshalOperationPayload(raw []byte) (OperationPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var envelope payloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	var payload OperationPayload
	switch envelope.Type {
	case string(OperationCreate):
		payload = &CreatePayload{}
	case "status_change":
		payload = &StatusChangePayload{}
	case string(OperationCancel):
		payload = &CancelPayload{}
	case string(OperationReschedule):
		payload = &ReschedulePayload{}
	case "financial":
		payload = &FinancialPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperationPayload, envelope.Type)
	}

	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// BookingOperation неизменяемая запись аудита одного перехода состояния
// Append-only; единственный источник истины о том, "что произошло".
// Текущий статус бронирования обязан восстанавливаться свёрткой
// последовательности его операций
type BookingOperation struct {
	ID         int64
	BookingID  int64
	BusinessID int64
	Type       OperationType

	PerformedBy     int64
	PerformedByRole ActorRole

	PriorStatus *BookingStatus // nil для операции создания
	NewStatus   BookingStatus

	Payload OperationPayload

	ConstraintsPassed bool
	ConstraintResults []ConstraintResult
	Violations        []Violation

	FinancialImpact float64

	// ReferenceID связывает парные операции (cancel-old + create-new переноса)
	ReferenceID string

	CreatedAt time.Time
}

// BookingStatusHistory производная запись истории статусов
// Отчётное представление поверх журнала операций, не самостоятельный
// источник истины
type BookingStatusHistory struct {
	ID          int64
	BookingID   int64
	FromStatus  *BookingStatus
	ToStatus    BookingStatus
	Reason      string
	OperationID int64
	CreatedAt   time.Time
}

// ScheduledActionType тип отложенного действия
type ScheduledActionType string

const (
	ScheduledReminder   ScheduledActionType = "reminder"
	ScheduledAutoNoShow ScheduledActionType = "auto_cancel_no_show"
)

// ScheduledAction отложенное действие для внешнего планировщика
// Движок никогда не спит и не поллит: проактивные действия записываются
// как инструкции с целевым временем, исполняет их внешний worker
type ScheduledAction struct {
	ID        int64
	BookingID int64
	Type      ScheduledActionType
	ExecuteAt time.Time
	Payload   json.RawMessage
	CreatedAt time.Time
}
