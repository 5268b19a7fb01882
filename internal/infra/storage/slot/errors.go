package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotUnavailable возвращается, когда условный инкремент не прошёл:
	// слот заблокирован, заполнен или не существует
	ErrSlotUnavailable = errors.New("slot.repository: slot is not available")

	// ErrNothingToRelease возвращается, когда декремент не нашёл брони для снятия
	ErrNothingToRelease = errors.New("slot.repository: no bookings to release")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
