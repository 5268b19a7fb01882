package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	slotRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/slot"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
)

// Service сервис управления слотами: блокировка и поиск ближайшего окна
type Service struct {
	slotRepo     SlotRepository
	apptRepo     AppointmentRepository
	historyRepo  HistoryRepository
	clinicClient ClinicServiceClient
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	apptRepo AppointmentRepository,
	historyRepo HistoryRepository,
	clinicClient ClinicServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		apptRepo:     apptRepo,
		historyRepo:  historyRepo,
		clinicClient: clinicClient,
		txManager:    txManager,
		logger:       logger,
	}
}

// Block блокирует слот для бронирования
// Блокировка не трогает booked_count. Если на слот есть активные записи,
// запрос без CascadeCancel отклоняется; с CascadeCancel каждая запись
// отменяется как cancelled_by_clinic с записью аудита и освобождением места -
// всё в одной сериализуемой транзакции, тихое сиротение записей исключено
func (s *Service) Block(ctx context.Context, slotID uuid.UUID, req *models.BlockSlotRequest) (*models.BlockSlotResponse, error) {
	s.logger.Info("Block: blocking slot id=%s by user=%s, cascade=%t", slotID, req.UserID, req.CascadeCancel)

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("Block: slot id=%s not found", slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Block: repository error for slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: Block - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, slot.ClinicID, req.UserID); err != nil {
		return nil, err
	}

	cancelled := 0

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем слот с блокировкой строки
		locked, err := s.slotRepo.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: Block - lock slot: %v", ErrInternal, err)
		}

		active, err := s.apptRepo.ListActiveBySlot(txCtx, slotID)
		if err != nil {
			return fmt.Errorf("%w: Block - list active appointments: %v", ErrInternal, err)
		}

		if len(active) > 0 && !req.CascadeCancel {
			s.logger.Warn("Block: slot id=%s has %d active appointments, cascade not requested", slotID, len(active))
			return ErrSlotHasBookings
		}

		for _, appt := range active {
			prevStatus := appt.Status

			if err := s.apptRepo.Cancel(txCtx, appt.ID, domain.StatusCancelledByClinic, &req.UserID, req.Reason); err != nil {
				return fmt.Errorf("%w: Block - cancel appointment %s: %v", ErrInternal, appt.ID, err)
			}
			if err := s.slotRepo.DecrementBooked(txCtx, slotID); err != nil {
				return fmt.Errorf("%w: Block - release slot for appointment %s: %v", ErrInternal, appt.ID, err)
			}

			entry := &domain.StatusHistoryEntry{
				AppointmentID: appt.ID,
				PrevStatus:    &prevStatus,
				NewStatus:     domain.StatusCancelledByClinic,
				Actor:         domain.ActorClinic,
				ActorID:       &req.UserID,
				Reason:        req.Reason,
			}
			if err := s.historyRepo.Append(txCtx, entry); err != nil {
				return fmt.Errorf("%w: Block - append history for appointment %s: %v", ErrInternal, appt.ID, err)
			}

			cancelled++
		}

		if !locked.Blocked {
			if err := s.slotRepo.SetBlocked(txCtx, slotID, true); err != nil {
				return fmt.Errorf("%w: Block - set blocked: %v", ErrInternal, err)
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) || errors.Is(err, txmanager.ErrTxTimeout) {
			s.logger.Warn("Block: transient conflict for slot id=%s: %v", slotID, err)
			return nil, ErrRetryable
		}
		return nil, err
	}

	s.logger.Info("Block: successfully blocked slot id=%s, cancelled %d appointments", slotID, cancelled)

	blocked, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		s.logger.Error("Block: failed to reload slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: Block - reload slot: %v", ErrInternal, err)
	}

	return &models.BlockSlotResponse{
		Slot:                  *models.FromDomainSlot(blocked),
		CancelledAppointments: cancelled,
	}, nil
}

// Unblock снимает блокировку слота, booked_count не меняется
func (s *Service) Unblock(ctx context.Context, slotID uuid.UUID, req *models.UnblockSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Unblock: unblocking slot id=%s by user=%s", slotID, req.UserID)

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("Unblock: slot id=%s not found", slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Unblock: repository error for slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: Unblock - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStaffAccess(ctx, slot.ClinicID, req.UserID); err != nil {
		return nil, err
	}

	if err := s.slotRepo.SetBlocked(ctx, slotID, false); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Unblock: failed to unblock slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: Unblock - set blocked: %v", ErrInternal, err)
	}

	s.logger.Info("Unblock: successfully unblocked slot id=%s", slotID)

	unblocked, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		s.logger.Error("Unblock: failed to reload slot id=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: Unblock - reload slot: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(unblocked), nil
}

// NextAvailable находит ближайший открытый слот клиники для услуги
func (s *Service) NextAvailable(ctx context.Context, req *models.NextAvailableRequest) (*models.SlotResponse, error) {
	s.logger.Info("NextAvailable: searching next open slot for clinic=%s, service=%d", req.ClinicID, req.ServiceID)

	slotType, err := domain.ParseAppointmentType(req.SlotType)
	if err != nil {
		s.logger.Warn("NextAvailable: invalid slot type=%s", req.SlotType)
		return nil, fmt.Errorf("%w: invalid slot type", ErrInvalidInput)
	}

	now := time.Now()
	filter := domain.SlotsFilter{
		ClinicID:  req.ClinicID,
		ServiceID: req.ServiceID,
		StartDate: now.Truncate(24 * time.Hour),
		EndDate:   now.AddDate(0, 0, domain.DefaultAdvanceBookingDays),
		SlotType:  slotType,
		VetID:     req.VetID,
	}

	slot, err := s.slotRepo.NextOpen(ctx, filter)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Info("NextAvailable: no open slots for clinic=%s, service=%d", req.ClinicID, req.ServiceID)
			return nil, ErrNoSlotsAvailable
		}
		s.logger.Error("NextAvailable: repository error for clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: NextAvailable - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("NextAvailable: found slot id=%s on %s %s", slot.ID, slot.SlotDate.Format(domain.DateFormat), slot.StartTime)
	return models.FromDomainSlot(slot), nil
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
