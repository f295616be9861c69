package operation

import "errors"

var (
	// ErrOperationNotFound возвращается, когда операция не найдена
	ErrOperationNotFound = errors.New("operation.repository: operation not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("operation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("operation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("operation.repository: failed to scan row")

	// ErrEncodePayload возвращается при ошибке сериализации payload операции
	ErrEncodePayload = errors.New("operation.repository: failed to encode payload")
)
