package directoryservice

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("directoryservice: business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("directoryservice: service not found")

	// ErrInvalidResponse возвращается при некорректном ответе DirectoryService
	ErrInvalidResponse = errors.New("directoryservice: invalid response")

	// ErrServiceDegraded возвращается при недоступности DirectoryService,
	// когда вызывающий код может продолжить в деградированном режиме
	ErrServiceDegraded = errors.New("directoryservice: service degraded")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("directoryservice: internal error")
)
