package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/pkg/dbmetrics"
	"github.com/findmyvet/FMV-BookingService/pkg/psqlbuilder"
)

var historyColumns = []string{
	"id",
	"appointment_id",
	"prev_status",
	"new_status",
	"actor",
	"actor_id",
	"reason",
	"created_at",
}

// Repository репозиторий аудита переходов статусов
// Таблица append-only: только INSERT и SELECT, без UPDATE/DELETE
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория истории
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись аудита
// Вызывается в той же транзакции, что и смена статуса записи
func (r *Repository) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointment_status_history").
		Columns("appointment_id", "prev_status", "new_status", "actor", "actor_id", "reason").
		Values(entry.AppointmentID, entry.PrevStatus, entry.NewStatus, entry.Actor, entry.ActorID, entry.Reason).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListByAppointment получает историю переходов записи в хронологическом порядке
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From("appointment_status_history").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.StatusHistoryEntry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByAppointment - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (*domain.StatusHistoryEntry, error) {
	var (
		e          domain.StatusHistoryEntry
		prevStatus sql.NullString
		actor      string
		newStatus  string
	)

	err := rows.Scan(
		&e.ID,
		&e.AppointmentID,
		&prevStatus,
		&newStatus,
		&actor,
		&e.ActorID,
		&e.Reason,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if prevStatus.Valid {
		prev := domain.AppointmentStatus(prevStatus.String)
		e.PrevStatus = &prev
	}
	e.NewStatus = domain.AppointmentStatus(newStatus)
	e.Actor = domain.HistoryActor(actor)

	return &e, nil
}
