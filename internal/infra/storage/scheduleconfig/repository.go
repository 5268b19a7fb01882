package scheduleconfig

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

var configColumns = []string{
	"id",
	"clinic_id",
	"service_id",
	"slot_capacity",
	"lead_time_minutes",
	"advance_booking_days",
	"created_at",
	"updated_at",
}

// Repository репозиторий конфигурации расписания клиник
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или обновляет конфигурацию для пары (clinic_id, service_id)
// Уникальный индекс по паре (NULLS NOT DISTINCT) гарантирует одну строку на уровень
func (r *Repository) Upsert(ctx context.Context, config *domain.ClinicScheduleConfig) (*domain.ClinicScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clinic_schedule_config").
		Columns(
			"clinic_id",
			"service_id",
			"slot_capacity",
			"lead_time_minutes",
			"advance_booking_days",
		).
		Values(
			config.ClinicID,
			config.ServiceID,
			config.SlotCapacity,
			config.LeadTimeMinutes,
			config.AdvanceBookingDays,
		).
		Suffix(`ON CONFLICT (clinic_id, service_id) DO UPDATE SET
			slot_capacity = EXCLUDED.slot_capacity,
			lead_time_minutes = EXCLUDED.lead_time_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// GetByClinicAndService получает конфигурацию для точной пары (clinic_id, service_id)
// serviceID = nil означает конфигурацию уровня клиники
func (r *Repository) GetByClinicAndService(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*domain.ClinicScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("clinic_schedule_config").
		Where(squirrel.Eq{"clinic_id": clinicID})

	if serviceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClinicAndService - build select query: %v", ErrBuildQuery, err)
	}

	config, err := scanConfig(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClinicAndService - scan config: %v", ErrScanRow, err)
	}

	return config, nil
}

// GetWithHierarchy получает конфигурацию с учётом иерархии приоритетов:
// 1. Конфигурация для конкретной услуги (clinic_id, service_id)
// 2. Конфигурация уровня клиники (clinic_id, NULL)
// Если конфигурация не найдена ни на одном уровне, возвращает ErrConfigNotFound:
// встроенные дефолты применяет вызывающий слой
func (r *Repository) GetWithHierarchy(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*domain.ClinicScheduleConfig, error) {
	if serviceID != nil {
		config, err := r.GetByClinicAndService(ctx, clinicID, serviceID)
		if err == nil {
			return config, nil
		}
		if err != ErrConfigNotFound {
			return nil, fmt.Errorf("%w: GetWithHierarchy - service level: %v", ErrExecQuery, err)
		}
	}

	config, err := r.GetByClinicAndService(ctx, clinicID, nil)
	if err == nil {
		return config, nil
	}
	if err != ErrConfigNotFound {
		return nil, fmt.Errorf("%w: GetWithHierarchy - clinic level: %v", ErrExecQuery, err)
	}

	return nil, ErrConfigNotFound
}

// ListByClinic получает все конфигурации клиники, уровень клиники первым
func (r *Repository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*domain.ClinicScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("clinic_schedule_config").
		Where(squirrel.Eq{"clinic_id": clinicID}).
		OrderBy("service_id ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClinic - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClinic - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.ClinicScheduleConfig, 0)

	for rows.Next() {
		var config domain.ClinicScheduleConfig
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&config.ID,
			&config.ClinicID,
			&config.ServiceID,
			&config.SlotCapacity,
			&config.LeadTimeMinutes,
			&config.AdvanceBookingDays,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByClinic - scan row: %v", ErrScanRow, err)
		}

		config.CreatedAt = createdAt.Time
		config.UpdatedAt = updatedAt.Time

		configs = append(configs, &config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByClinic - rows error: %v", ErrScanRow, err)
	}

	return configs, nil
}

// Delete удаляет конфигурацию для пары (clinic_id, service_id)
func (r *Repository) Delete(ctx context.Context, clinicID uuid.UUID, serviceID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete("clinic_schedule_config").
		Where(squirrel.Eq{"clinic_id": clinicID})

	if serviceID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"service_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrConfigNotFound
	}

	return nil
}

func scanConfig(row *sql.Row) (*domain.ClinicScheduleConfig, error) {
	var config domain.ClinicScheduleConfig
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&config.ID,
		&config.ClinicID,
		&config.ServiceID,
		&config.SlotCapacity,
		&config.LeadTimeMinutes,
		&config.AdvanceBookingDays,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}
