package dbmetrics

import "context"

// txContextKey ключ для передачи активной транзакции через context
// Репозитории не знают о транзакциях напрямую: transaction manager кладёт
// транзакцию в context, а GetExecutor достаёт её вместо pool
type txContextKey struct{}

// WithTx кладет транзакцию в context
func WithTx(ctx context.Context, tx DBExecutor) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// GetExecutor возвращает транзакцию из context, если она там есть,
// иначе переданный fallback (обычно connection pool)
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(txContextKey{}).(DBExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction проверяет, выполняется ли запрос внутри транзакции
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txContextKey{}).(DBExecutor)
	return ok
}
