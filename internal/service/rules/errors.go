package rules

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrConstraintNotFound возвращается при переопределении неизвестного ограничения
	ErrConstraintNotFound = errors.New("constraint not found in catalog")

	// ErrConstraintNotCustomizable возвращается при попытке переопределить
	// некастомизируемое ограничение
	ErrConstraintNotCustomizable = errors.New("constraint is not customizable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
