package slot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/pkg/dbmetrics"
	"github.com/findmyvet/FMV-BookingService/pkg/psqlbuilder"
)

// slotColumns полный список колонок таблицы availability_slots
var slotColumns = []string{
	"id",
	"clinic_id",
	"vet_id",
	"service_id",
	"slot_date",
	"start_time",
	"end_time",
	"slot_type",
	"capacity",
	"booked_count",
	"blocked",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами доступности
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch вставляет пачку слотов, пропуская уже существующие
// Конфликт по натуральному ключу (clinic_id, vet_id, slot_date, start_time, slot_type)
// игнорируется: слот с бронированиями или ручной блокировкой остаётся нетронутым,
// что делает перегенерацию идемпотентной
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.Slot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("availability_slots").
		Columns(
			"id",
			"clinic_id",
			"vet_id",
			"service_id",
			"slot_date",
			"start_time",
			"end_time",
			"slot_type",
			"capacity",
			"booked_count",
			"blocked",
		)

	for _, s := range slots {
		insertBuilder = insertBuilder.Values(
			s.ID,
			s.ClinicID,
			s.VetID,
			s.ServiceID,
			s.SlotDate,
			s.StartTime,
			s.EndTime,
			s.SlotType,
			s.Capacity,
			0,
			false,
		)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (clinic_id, vet_id, slot_date, start_time, slot_type) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - get rows affected: %v", ErrExecQuery, err)
	}

	return inserted, nil
}

// GetByID получает слот по ID
// Внутри транзакции блокирует строку (FOR UPDATE) - это основа
// пер-слотовой сериализации бронирований
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// ListOpen получает открытые слоты (не заблокированы, есть свободные места)
// по фильтру, отсортированные по дате и времени начала
func (r *Repository) ListOpen(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"clinic_id": filter.ClinicID}).
		Where(squirrel.Eq{"blocked": false}).
		Where(squirrel.Expr("booked_count < capacity")).
		Where(squirrel.GtOrEq{"slot_date": filter.StartDate}).
		Where(squirrel.LtOrEq{"slot_date": filter.EndDate}).
		Where(squirrel.Eq{"slot_type": filter.SlotType}).
		Where(squirrel.Or{
			squirrel.Eq{"service_id": nil},
			squirrel.Eq{"service_id": filter.ServiceID},
		}).
		OrderBy("slot_date ASC, start_time ASC")

	// Фильтрация по врачу (если указан)
	if filter.VetID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"vet_id": *filter.VetID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpen - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpen - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// NextOpen получает ближайший открытый слот клиники начиная с указанной даты
func (r *Repository) NextOpen(ctx context.Context, filter domain.SlotsFilter) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("availability_slots").
		Where(squirrel.Eq{"clinic_id": filter.ClinicID}).
		Where(squirrel.Eq{"blocked": false}).
		Where(squirrel.Expr("booked_count < capacity")).
		Where(squirrel.GtOrEq{"slot_date": filter.StartDate}).
		Where(squirrel.Eq{"slot_type": filter.SlotType}).
		Where(squirrel.Or{
			squirrel.Eq{"service_id": nil},
			squirrel.Eq{"service_id": filter.ServiceID},
		}).
		OrderBy("slot_date ASC, start_time ASC").
		Limit(1)

	if filter.VetID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"vet_id": *filter.VetID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: NextOpen - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: NextOpen - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// IncrementBooked атомарно занимает одно место в слоте
// Проверка вместимости и инкремент выполняются одним условным UPDATE:
// запрос не проходит, если слот заблокирован, заполнен или не существует.
// Именно этот запрос гарантирует отсутствие овербукинга - чтение с последующей
// записью двумя шагами здесь недопустимо
func (r *Repository) IncrementBooked(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("booked_count", squirrel.Expr("booked_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"blocked": false}).
		Where(squirrel.Expr("booked_count < capacity")).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: IncrementBooked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementBooked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementBooked - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotUnavailable
	}

	return nil
}

// DecrementBooked атомарно освобождает одно место в слоте
// Защита booked_count > 0 не даёт счётчику уйти в минус
func (r *Repository) DecrementBooked(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("booked_count", squirrel.Expr("booked_count - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("booked_count > 0")).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DecrementBooked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DecrementBooked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DecrementBooked - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrNothingToRelease
	}

	return nil
}

// SetBlocked выставляет флаг ручной блокировки слота
// Счётчик booked_count не трогается
func (r *Repository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("blocked", blocked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// DeleteEmpty удаляет слоты без бронирований и без ручной блокировки в диапазоне дат
// Используется перед перегенерацией: слоты с бронированиями и заблокированные
// вручную никогда не удаляются и не меняют размер. Фильтры по услуге и врачу
// сужают удаление до цели перегенерации - чужие слоты не трогаются
func (r *Repository) DeleteEmpty(ctx context.Context, clinicID uuid.UUID, slotType domain.AppointmentType, serviceID *int64, vetID *uuid.UUID, startDate, endDate time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete("availability_slots").
		Where(squirrel.Eq{"clinic_id": clinicID}).
		Where(squirrel.Eq{"slot_type": slotType}).
		Where(squirrel.GtOrEq{"slot_date": startDate}).
		Where(squirrel.LtOrEq{"slot_date": endDate}).
		Where(squirrel.Eq{"booked_count": 0}).
		Where(squirrel.Eq{"blocked": false})

	if serviceID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"service_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}
	if vetID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"vet_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"vet_id": *vetID})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteEmpty - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteEmpty - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteEmpty - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

// scanSlot сканирует одну строку в domain.Slot
func scanSlot(row *sql.Row) (*domain.Slot, error) {
	var s domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.ClinicID,
		&s.VetID,
		&s.ServiceID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.SlotType,
		&s.Capacity,
		&s.BookedCount,
		&s.Blocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)

	for rows.Next() {
		var s domain.Slot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.ID,
			&s.ClinicID,
			&s.VetID,
			&s.ServiceID,
			&s.SlotDate,
			&s.StartTime,
			&s.EndTime,
			&s.SlotType,
			&s.Capacity,
			&s.BookedCount,
			&s.Blocked,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}

		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time

		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
