package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrCodeCollision возвращается при коллизии confirmation code
	// Вызывающий код генерирует новый код и повторяет вставку
	ErrCodeCollision = errors.New("appointment.repository: confirmation code already exists")

	// ErrNotActive возвращается, когда условный переход статуса не прошёл:
	// запись уже в терминальном статусе
	ErrNotActive = errors.New("appointment.repository: appointment is not in an active status")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
