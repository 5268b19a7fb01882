package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	apptRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/appointment"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
)

// Service сервис жизненного цикла записей на приём
// Все смены статуса проходят в сериализуемой транзакции вместе с записью аудита:
// живой статус и история никогда не расходятся
type Service struct {
	apptRepo     AppointmentRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	clinicClient ClinicServiceClient
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	apptRepo AppointmentRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	clinicClient ClinicServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		apptRepo:     apptRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		clinicClient: clinicClient,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetByID получает запись по ID
// Доступ: владелец записи или сотрудник клиники
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for user=%s", id, userID)

	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, appt, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%s to appointment id=%s", userID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// GetByCode получает запись по confirmation code
// Код выдается владельцу при бронировании, поэтому доступ проверяется так же
func (s *Service) GetByCode(ctx context.Context, code string, userID uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByCode: fetching appointment code=%s for user=%s", code, userID)

	appt, err := s.apptRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByCode: appointment code=%s not found", code)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByCode: repository error for code=%s: %v", code, err)
		return nil, fmt.Errorf("%w: GetByCode - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, appt, userID); err != nil {
		s.logger.Warn("GetByCode: access denied for user=%s to appointment code=%s", userID, code)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// GetOwnerAppointments получает записи владельца с пагинацией
func (s *Service) GetOwnerAppointments(ctx context.Context, req *models.GetOwnerAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetOwnerAppointments: fetching appointments for owner=%s, upcoming=%t", req.OwnerID, req.UpcomingOnly)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetOwnerAppointments: invalid filter for owner=%s: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appts, total, err := s.apptRepo.ListByOwner(ctx, filter)
	if err != nil {
		s.logger.Error("GetOwnerAppointments: repository error for owner=%s: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: GetOwnerAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetOwnerAppointments: fetched %d of %d appointments for owner=%s", len(appts), total, req.OwnerID)
	return models.FromDomainAppointmentList(appts, total, req.Page, req.PageSize), nil
}

// GetClinicAppointments получает записи клиники с гибкой фильтрацией
// Доступно только сотрудникам клиники
func (s *Service) GetClinicAppointments(ctx context.Context, req *models.GetClinicAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClinicAppointments: fetching appointments for clinic=%s, user=%s", req.ClinicID, req.UserID)

	if err := s.checkStaffAccess(ctx, req.ClinicID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetClinicAppointments: invalid filter for clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appts, err := s.apptRepo.ListByClinicWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetClinicAppointments: repository error for clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: GetClinicAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClinicAppointments: fetched %d appointments for clinic=%s", len(appts), req.ClinicID)
	return models.FromDomainAppointmentList(appts, len(appts), 1, len(appts)), nil
}

// GetHistory получает историю переходов статуса записи
// Доступ: владелец записи или сотрудник клиники
func (s *Service) GetHistory(ctx context.Context, appointmentID uuid.UUID, userID uuid.UUID) (*models.HistoryResponse, error) {
	s.logger.Info("GetHistory: fetching history for appointment id=%s, user=%s", appointmentID, userID)

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetHistory: appointment id=%s not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetHistory: repository error for appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, appt, userID); err != nil {
		s.logger.Warn("GetHistory: access denied for user=%s to appointment id=%s", userID, appointmentID)
		return nil, err
	}

	entries, err := s.historyRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("GetHistory: history repository error for appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(appointmentID, entries), nil
}

// Cancel отменяет запись и освобождает место в слоте
// Владелец отменяет свою запись (cancelled_by_owner), сотрудник клиники -
// любую запись клиники (cancelled_by_clinic). Смена статуса, декремент
// booked_count и запись аудита выполняются в одной сериализуемой транзакции.
// Повторная отмена уже отменённой записи возвращает ErrNotActive:
// место в слоте освобождается ровно один раз
func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%s by user=%s", appointmentID, req.UserID)

	// Читаем запись до транзакции, чтобы определить инициатора отмены
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%s not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	var cancelStatus domain.AppointmentStatus
	var actor domain.HistoryActor

	if appt.OwnerID == req.UserID {
		cancelStatus = domain.StatusCancelledByOwner
		actor = domain.ActorOwner
	} else {
		if err := s.checkStaffAccess(ctx, appt.ClinicID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%s to appointment id=%s", req.UserID, appointmentID)
			return nil, ErrAccessDenied
		}
		cancelStatus = domain.StatusCancelledByClinic
		actor = domain.ActorClinic
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем с блокировкой: статус мог измениться между чтением и транзакцией
		locked, err := s.apptRepo.GetByID(txCtx, appointmentID)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Cancel - lock appointment: %v", ErrInternal, err)
		}

		if !locked.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%s is not active, status=%s", appointmentID, locked.Status)
			return ErrNotActive
		}

		prevStatus := locked.Status

		if err := s.apptRepo.Cancel(txCtx, appointmentID, cancelStatus, &req.UserID, req.Reason); err != nil {
			if errors.Is(err, apptRepo.ErrNotActive) {
				return ErrNotActive
			}
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: Cancel - update status: %v", ErrInternal, err)
		}

		// Освобождаем место в слоте, если запись была привязана к слоту
		if locked.SlotID != nil {
			if err := s.slotRepo.DecrementBooked(txCtx, *locked.SlotID); err != nil {
				return fmt.Errorf("%w: Cancel - release slot: %v", ErrInternal, err)
			}
		}

		entry := &domain.StatusHistoryEntry{
			AppointmentID: appointmentID,
			PrevStatus:    &prevStatus,
			NewStatus:     cancelStatus,
			Actor:         actor,
			ActorID:       &req.UserID,
			Reason:        req.Reason,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("%w: Cancel - append history: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) || errors.Is(err, txmanager.ErrTxTimeout) {
			s.logger.Warn("Cancel: transient conflict for appointment id=%s: %v", appointmentID, err)
			return nil, ErrRetryable
		}
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%s with status=%s", appointmentID, cancelStatus)

	cancelled, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		s.logger.Error("Cancel: failed to reload appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Cancel - reload appointment: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(cancelled), nil
}

// UpdateStatus переводит запись в completed или no_show
// Доступно только сотрудникам клиники. Отмены идут через Cancel,
// переносы - через reschedule: здесь принимаются только терминальные
// статусы посещения
func (s *Service) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%s to status=%s by user=%s",
		appointmentID, req.Status, req.UserID)

	newStatus, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%s", req.Status, appointmentID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	if newStatus != domain.StatusCompleted && newStatus != domain.StatusNoShow {
		s.logger.Warn("UpdateStatus: status=%s is not allowed via status update", newStatus)
		return nil, fmt.Errorf("%w: only completed and no_show are allowed", ErrInvalidInput)
	}

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%s not found", appointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, appt.ClinicID, req.UserID); err != nil {
		return nil, err
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		locked, err := s.apptRepo.GetByID(txCtx, appointmentID)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - lock appointment: %v", ErrInternal, err)
		}

		if err := locked.Status.ValidateTransition(newStatus); err != nil {
			s.logger.Warn("UpdateStatus: transition %s -> %s rejected for appointment id=%s",
				locked.Status, newStatus, appointmentID)
			return ErrInvalidTransition
		}

		prevStatus := locked.Status

		if err := s.apptRepo.TransitionStatus(txCtx, appointmentID, newStatus); err != nil {
			if errors.Is(err, apptRepo.ErrNotActive) {
				return ErrNotActive
			}
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - update status: %v", ErrInternal, err)
		}

		entry := &domain.StatusHistoryEntry{
			AppointmentID: appointmentID,
			PrevStatus:    &prevStatus,
			NewStatus:     newStatus,
			Actor:         domain.ActorClinic,
			ActorID:       &req.UserID,
			Reason:        req.Reason,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("%w: UpdateStatus - append history: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) || errors.Is(err, txmanager.ErrTxTimeout) {
			s.logger.Warn("UpdateStatus: transient conflict for appointment id=%s: %v", appointmentID, err)
			return nil, ErrRetryable
		}
		return nil, err
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%s to status=%s", appointmentID, newStatus)

	updated, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - reload appointment: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(updated), nil
}

// SweepNoShows переводит просроченные активные записи в no_show
// Системный переход: время окончания приёма прошло дольше grace-периода назад,
// а клиника не отметила посещение. Каждая запись обрабатывается в отдельной
// транзакции: сбой на одной не откатывает остальные
func (s *Service) SweepNoShows(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := time.Now().Add(-grace)
	s.logger.Info("SweepNoShows: sweeping active appointments ended before %s", cutoff.Format(time.RFC3339))

	stale, err := s.apptRepo.ListStaleActive(ctx, cutoff)
	if err != nil {
		s.logger.Error("SweepNoShows: failed to list stale appointments: %v", err)
		return 0, fmt.Errorf("%w: SweepNoShows - repository error: %v", ErrInternal, err)
	}

	swept := 0
	for _, appt := range stale {
		if err := s.sweepOne(ctx, appt.ID); err != nil {
			s.logger.Error("SweepNoShows: failed to sweep appointment id=%s: %v", appt.ID, err)
			continue
		}
		swept++
	}

	s.logger.Info("SweepNoShows: swept %d of %d stale appointments", swept, len(stale))
	return swept, nil
}

func (s *Service) sweepOne(ctx context.Context, appointmentID uuid.UUID) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		locked, err := s.apptRepo.GetByID(txCtx, appointmentID)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return nil
			}
			return err
		}

		// Клиника могла отметить посещение между выборкой и транзакцией
		if !locked.IsActive() {
			return nil
		}

		prevStatus := locked.Status

		if err := s.apptRepo.TransitionStatus(txCtx, appointmentID, domain.StatusNoShow); err != nil {
			if errors.Is(err, apptRepo.ErrNotActive) {
				return nil
			}
			return err
		}

		entry := &domain.StatusHistoryEntry{
			AppointmentID: appointmentID,
			PrevStatus:    &prevStatus,
			NewStatus:     domain.StatusNoShow,
			Actor:         domain.ActorSystem,
			Reason:        "scheduled window passed with no attendance",
		}
		return s.historyRepo.Append(txCtx, entry)
	})
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к записи
// Доступ есть у владельца записи и у сотрудников клиники
func (s *Service) checkUserAccess(ctx context.Context, appt *domain.Appointment, userID uuid.UUID) error {
	if appt.OwnerID == userID {
		return nil
	}

	if err := s.checkStaffAccess(ctx, appt.ClinicID, userID); err != nil {
		return ErrAccessDenied
	}

	return nil
}

// checkStaffAccess проверяет, что пользователь является сотрудником клиники
func (s *Service) checkStaffAccess(ctx context.Context, clinicID uuid.UUID, userID uuid.UUID) error {
	clinic, err := s.clinicClient.GetClinic(ctx, clinicID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrClinicNotFound) {
			s.logger.Warn("checkStaffAccess: clinic id=%s not found", clinicID)
			return ErrClinicNotFound
		}
		s.logger.Error("checkStaffAccess: failed to get clinic id=%s: %v", clinicID, err)
		return fmt.Errorf("%w: checkStaffAccess - failed to get clinic: %v", ErrInternal, err)
	}

	if !clinic.IsStaff(userID) {
		s.logger.Warn("checkStaffAccess: user=%s is not staff of clinic=%s", userID, clinicID)
		return ErrAccessDenied
	}

	return nil
}
