package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/findmyvet/FMV-BookingService/pkg/dbmetrics"
)

const (
	// txTimeout максимальное время удержания одной транзакции
	txTimeout = 5 * time.Second

	// maxSerializableAttempts количество повторов при serialization failure
	maxSerializableAttempts = 3

	// retryBackoff базовая пауза между повторами
	retryBackoff = 25 * time.Millisecond
)

var (
	// ErrSerializationFailure возвращается, когда транзакция не прошла из-за
	// конфликта сериализации или deadlock после всех повторов.
	// Состояние БД не изменено, вызывающий код может безопасно повторить операцию
	ErrSerializationFailure = errors.New("txmanager: serialization failure, safe to retry")

	// ErrTxTimeout возвращается при превышении таймаута транзакции
	// Транзакция полностью откачена
	ErrTxTimeout = errors.New("txmanager: transaction timed out")
)

// Коды ошибок PostgreSQL, означающие конфликт сериализации
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// TxBeginner интерфейс для начала транзакций (реализуется *dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager управляет транзакциями через *dbmetrics.DB
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции
// При serialization failure или deadlock повторяет до maxSerializableAttempts раз
// с экспоненциальным backoff; каждая неудачная попытка полностью откатывается
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxSerializableAttempts; attempt++ {
		lastErr = m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if !IsSerializationFailure(lastErr) {
			return lastErr
		}

		if attempt < maxSerializableAttempts {
			select {
			case <-time.After(retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrTxTimeout, ctx.Err())
			}
		}
	}

	return fmt.Errorf("%w: %d attempts exhausted: %v", ErrSerializationFailure, maxSerializableAttempts, lastErr)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := m.db.BeginTx(txCtx, opts)
	if err != nil {
		return fmt.Errorf("txmanager: failed to begin transaction: %w", err)
	}

	if err := fn(dbmetrics.WithTx(txCtx, tx)); err != nil {
		_ = tx.Rollback()
		if errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTxTimeout, err)
		}
		if isPqSerializationError(err) {
			return fmt.Errorf("%w: %v", ErrSerializationFailure, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isPqSerializationError(err) {
			return fmt.Errorf("%w: %v", ErrSerializationFailure, err)
		}
		return fmt.Errorf("txmanager: failed to commit transaction: %w", err)
	}

	return nil
}

// IsSerializationFailure проверяет, что ошибка - конфликт сериализации (retryable)
func IsSerializationFailure(err error) bool {
	return errors.Is(err, ErrSerializationFailure)
}

// isPqSerializationError распознает коды PostgreSQL 40001 и 40P01
func isPqSerializationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqSerializationFailure || string(pqErr.Code) == pqDeadlockDetected
}
