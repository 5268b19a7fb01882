package history

import "errors"

var (
	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("history repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("history repository: failed to execute query")

	// ErrScanRow ошибка сканирования результата
	ErrScanRow = errors.New("history repository: failed to scan row")
)
