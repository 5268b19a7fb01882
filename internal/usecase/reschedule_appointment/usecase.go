package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	apptRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/appointment"
	slotRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/slot"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
)

// UseCase use case переноса записи на другой слот
// Занятие целевого слота, освобождение исходного, обновление записи и аудит
// выполняются в одной сериализуемой транзакции: на заполненном целевом слоте
// транзакция откатывается целиком и оба слота остаются без изменений
type UseCase struct {
	apptRepo     AppointmentRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	clinicClient ClinicServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	clinicClient ClinicServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		clinicClient: clinicClient,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%s, newSlot=%s by user=%s",
		req.AppointmentID, req.NewSlotID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Определяем инициатора до транзакции
	appt, err := uc.apptRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: repository error for appointment id=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	actor := domain.ActorOwner
	if appt.OwnerID != req.UserID {
		if err := uc.checkStaffAccess(ctx, appt.ClinicID, req.UserID); err != nil {
			uc.logger.Warn("RescheduleAppointment: access denied for user=%s to appointment id=%s",
				req.UserID, req.AppointmentID)
			return nil, err
		}
		actor = domain.ActorClinic
	}

	var result *domain.Appointment

	// 3. Переносим в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Перечитываем запись с блокировкой
		locked, err := uc.apptRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to lock appointment: %v", ErrInternal, err)
		}

		if !locked.CanBeRescheduled() {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s is not active, status=%s",
				req.AppointmentID, locked.Status)
			return ErrNotActive
		}

		if locked.SlotID != nil && *locked.SlotID == req.NewSlotID {
			return ErrSameSlot
		}

		// 3.2. Читаем целевой слот с блокировкой
		target, err := uc.slotRepo.GetByID(txCtx, req.NewSlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: failed to get target slot: %v", ErrInternal, err)
		}

		// 3.3. Целевой слот должен подходить записи
		if target.ClinicID != locked.ClinicID ||
			target.SlotType != locked.AppointmentType ||
			!target.AcceptsService(locked.ServiceID) {
			return ErrSlotMismatch
		}
		if !slotStartsAfter(target, now) {
			return ErrSlotInPast
		}

		// 3.4. Занимаем место в целевом слоте: отказ откатывает всю транзакцию
		if err := uc.slotRepo.IncrementBooked(txCtx, req.NewSlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotUnavailable) {
				uc.logger.Warn("RescheduleAppointment: target slot id=%s is full or blocked", req.NewSlotID)
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: failed to reserve target slot: %v", ErrInternal, err)
		}

		// 3.5. Освобождаем место в исходном слоте
		if locked.SlotID != nil {
			if err := uc.slotRepo.DecrementBooked(txCtx, *locked.SlotID); err != nil {
				return fmt.Errorf("%w: failed to release source slot: %v", ErrInternal, err)
			}
		}

		// 3.6. Обновляем запись: новый слот, новое расписание, статус rescheduled
		if err := uc.apptRepo.Reschedule(txCtx, req.AppointmentID, target); err != nil {
			if errors.Is(err, apptRepo.ErrNotActive) {
				return ErrNotActive
			}
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to reschedule appointment: %v", ErrInternal, err)
		}

		// 3.7. Запись аудита в той же транзакции
		prevStatus := locked.Status
		entry := &domain.StatusHistoryEntry{
			AppointmentID: req.AppointmentID,
			PrevStatus:    &prevStatus,
			NewStatus:     domain.StatusRescheduled,
			Actor:         actor,
			ActorID:       &req.UserID,
			Reason:        req.Reason,
		}
		if err := uc.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) || errors.Is(err, txmanager.ErrTxTimeout) {
			uc.logger.Warn("RescheduleAppointment: transient conflict for appointment id=%s: %v",
				req.AppointmentID, err)
			return nil, ErrRetryable
		}
		return nil, err
	}

	result, err = uc.apptRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to reload appointment id=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to reload appointment: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleAppointment: successfully moved appointment id=%s to slot=%s",
		req.AppointmentID, req.NewSlotID)

	return &Response{
		ID:               result.ID,
		ConfirmationCode: result.ConfirmationCode,
		SlotID:           req.NewSlotID,
		VetID:            result.VetID,
		ScheduledDate:    result.ScheduledDate.Format(domain.DateFormat),
		ScheduledStart:   result.ScheduledStart.String(),
		ScheduledEnd:     result.ScheduledEnd.String(),
		Status:           string(result.Status),
	}, nil
}

// checkStaffAccess проверяет, что пользователь является сотрудником клиники
func (uc *UseCase) checkStaffAccess(ctx context.Context, clinicID uuid.UUID, userID uuid.UUID) error {
	clinic, err := uc.clinicClient.GetClinic(ctx, clinicID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrClinicNotFound) {
			return ErrClinicNotFound
		}
		return fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	if !clinic.IsStaff(userID) {
		return ErrAccessDenied
	}

	return nil
}

// slotStartsAfter проверяет, что слот ещё не начался
func slotStartsAfter(slot *domain.Slot, now time.Time) bool {
	start, err := time.Parse(domain.TimeFormat, slot.StartTime.String())
	if err != nil {
		return false
	}
	d := slot.SlotDate
	startAt := time.Date(d.Year(), d.Month(), d.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
	return startAt.After(now)
}
