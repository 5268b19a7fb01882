package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/pkg/dbmetrics"
	"github.com/findmyvet/FMV-BookingService/pkg/psqlbuilder"
)

// pqUniqueViolation код ошибки PostgreSQL unique_violation
const pqUniqueViolation = "23505"

// appointmentColumns полный список колонок таблицы appointments
var appointmentColumns = []string{
	"id",
	"confirmation_code",
	"clinic_id",
	"owner_id",
	"pet_id",
	"vet_id",
	"service_id",
	"slot_id",
	"appointment_type",
	"scheduled_date",
	"scheduled_start",
	"scheduled_end",
	"home_address_line1",
	"home_address_line2",
	"home_city",
	"home_state",
	"home_postal_code",
	"home_access_notes",
	"owner_notes",
	"clinic_notes",
	"status",
	"is_emergency",
	"cancelled_by",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// activeStatusStrings статусы, из которых разрешены переходы
// Условные UPDATE используют этот список как последнюю линию защиты
// графа переходов на уровне БД
var activeStatusStrings = func() []string {
	result := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		result[i] = string(s)
	}
	return result
}()

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись на приём
// При коллизии confirmation code возвращает ErrCodeCollision:
// вызывающий код обязан сгенерировать новый код и повторить
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"confirmation_code",
			"clinic_id",
			"owner_id",
			"pet_id",
			"vet_id",
			"service_id",
			"slot_id",
			"appointment_type",
			"scheduled_date",
			"scheduled_start",
			"scheduled_end",
			"home_address_line1",
			"home_address_line2",
			"home_city",
			"home_state",
			"home_postal_code",
			"home_access_notes",
			"owner_notes",
			"clinic_notes",
			"status",
			"is_emergency",
		).
		Values(
			appt.ID,
			appt.ConfirmationCode,
			appt.ClinicID,
			appt.OwnerID,
			appt.PetID,
			appt.VetID,
			appt.ServiceID,
			appt.SlotID,
			appt.AppointmentType,
			appt.ScheduledDate,
			appt.ScheduledStart,
			appt.ScheduledEnd,
			appt.HomeAddressLine1,
			appt.HomeAddressLine2,
			appt.HomeCity,
			appt.HomeState,
			appt.HomePostalCode,
			appt.HomeAccessNotes,
			appt.OwnerNotes,
			appt.ClinicNotes,
			appt.Status,
			appt.IsEmergency,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isCodeCollision(err) {
			return nil, ErrCodeCollision
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
// Внутри транзакции блокирует строку (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointmentRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// GetByCode получает запись по confirmation code
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"confirmation_code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointmentRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// ListByOwner получает записи владельца с пагинацией
// Возвращает страницу и общее количество записей под фильтром
func (r *Repository) ListByOwner(ctx context.Context, filter domain.OwnerAppointmentsFilter) ([]*domain.Appointment, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	conditions := []squirrel.Sqlizer{squirrel.Eq{"owner_id": filter.OwnerID}}

	if filter.Status != nil {
		conditions = append(conditions, squirrel.Eq{"status": *filter.Status})
	}
	if filter.UpcomingOnly {
		conditions = append(conditions,
			squirrel.GtOrEq{"scheduled_date": time.Now().Truncate(24 * time.Hour)},
			squirrel.Eq{"status": activeStatusStrings},
		)
	}

	countBuilder := psqlbuilder.Select("COUNT(*)").From("appointments")
	for _, c := range conditions {
		countBuilder = countBuilder.Where(c)
	}

	query, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListByOwner - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: ListByOwner - scan count: %v", ErrScanRow, err)
	}

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		OrderBy("scheduled_date DESC, scheduled_start DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))
	for _, c := range conditions {
		selectBuilder = selectBuilder.Where(c)
	}

	query, args, err = selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListByOwner - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: ListByOwner - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}

	return appts, total, nil
}

// ListByClinicWithFilter получает записи клиники с гибкой фильтрацией
// по врачу, периоду, статусу и включению терминальных записей
func (r *Repository) ListByClinicWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"clinic_id": filter.ClinicID})

	if filter.VetID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"vet_id": *filter.VetID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"scheduled_date": *filter.EndDate})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings})
	}

	// Для конкретной даты сортируем по времени начала, иначе - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("scheduled_start ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("scheduled_date DESC, scheduled_start DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClinicWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClinicWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListActiveBySlot получает активные записи на конкретный слот
// Используется при блокировке слота с каскадной отменой
func (r *Repository) ListActiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		OrderBy("created_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListStaleActive получает активные записи, чьё время окончания прошло
// раньше cutoff. Используется no-show sweep'ом
func (r *Repository) ListStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": activeStatusStrings}).
		Where(squirrel.Expr("(scheduled_date + scheduled_end) < ?", cutoff)).
		OrderBy("scheduled_date ASC, scheduled_start ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListStaleActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStaleActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// TransitionStatus условно переводит запись в новый статус
// UPDATE проходит только из активного статуса: попытка перехода из
// терминального возвращает ErrNotActive (или ErrAppointmentNotFound,
// если записи нет вовсе). Граф переходов валидируется выше по стеку,
// здесь - защита на уровне данных
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", newStatus).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: TransitionStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: TransitionStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.notActiveOrMissing(ctx, id)
	}

	return nil
}

// Reschedule условно переносит запись на новый слот
// Обновляет ссылку на слот, денормализованное расписание и статус
// одним UPDATE, который проходит только из активного статуса
func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, slot *domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("slot_id", slot.ID).
		Set("vet_id", slot.VetID).
		Set("scheduled_date", slot.SlotDate).
		Set("scheduled_start", slot.StartTime).
		Set("scheduled_end", slot.EndTime).
		Set("status", domain.StatusRescheduled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reschedule - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.notActiveOrMissing(ctx, id)
	}

	return nil
}

// Cancel условно переводит запись в терминальный статус отмены
// с фиксацией инициатора, причины и времени отмены
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, cancelledBy *uuid.UUID, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("cancelled_by", cancelledBy).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": activeStatusStrings}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.notActiveOrMissing(ctx, id)
	}

	return nil
}

// notActiveOrMissing различает "запись не найдена" и "запись в терминальном статусе"
// после непрошедшего условного UPDATE
func (r *Repository) notActiveOrMissing(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: notActiveOrMissing - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: notActiveOrMissing - scan: %v", ErrScanRow, err)
	}

	return ErrNotActive
}

// isCodeCollision распознает нарушение уникальности confirmation code
func isCodeCollision(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqUniqueViolation &&
		strings.Contains(pqErr.Constraint, "confirmation_code")
}

// scanAppointmentRow сканирует одну строку в domain.Appointment
func scanAppointmentRow(row *sql.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	return scanInto(&a, row.Scan)
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appts := make([]*domain.Appointment, 0)

	for rows.Next() {
		var a domain.Appointment
		if _, err := scanInto(&a, rows.Scan); err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appts = append(appts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appts, nil
}

// scanInto сканирует колонки записи в переданную структуру
// Порядок аргументов строго соответствует appointmentColumns
func scanInto(a *domain.Appointment, scan func(dest ...interface{}) error) (*domain.Appointment, error) {
	var (
		status    string
		apptType  string
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := scan(
		&a.ID,
		&a.ConfirmationCode,
		&a.ClinicID,
		&a.OwnerID,
		&a.PetID,
		&a.VetID,
		&a.ServiceID,
		&a.SlotID,
		&apptType,
		&a.ScheduledDate,
		&a.ScheduledStart,
		&a.ScheduledEnd,
		&a.HomeAddressLine1,
		&a.HomeAddressLine2,
		&a.HomeCity,
		&a.HomeState,
		&a.HomePostalCode,
		&a.HomeAccessNotes,
		&a.OwnerNotes,
		&a.ClinicNotes,
		&status,
		&a.IsEmergency,
		&a.CancelledBy,
		&a.CancellationReason,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AppointmentStatus(status)
	a.AppointmentType = domain.AppointmentType(apptType)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}
