package scheduleconfig

import "errors"

var (
	// ErrConfigNotFound конфигурация не найдена
	ErrConfigNotFound = errors.New("scheduleconfig repository: config not found")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("scheduleconfig repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("scheduleconfig repository: failed to execute query")

	// ErrScanRow ошибка сканирования результата
	ErrScanRow = errors.New("scheduleconfig repository: failed to scan row")
)
