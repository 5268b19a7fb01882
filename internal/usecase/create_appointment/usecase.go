package create_appointment

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
	petClient "github.com/findmyvet/FMV-BookingService/internal/integrations/petservice"
	"github.com/findmyvet/FMV-BookingService/pkg/ptr"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
)

// maxCodeAttempts лимит повторов генерации confirmation code при коллизии
const maxCodeAttempts = 5

// UseCase use case создания записи на приём
// Занятие места в слоте, вставка записи и аудит выполняются в одной
// сериализуемой транзакции: гонка двух бронирований последнего места
// разрешается условным UPDATE по слоту, овербукинг невозможен
type UseCase struct {
	apptRepo     AppointmentRepository
	slotRepo     SlotRepository
	historyRepo  HistoryRepository
	clinicClient ClinicServiceClient
	petClient    PetServiceClient
	txManager    TransactionManager
	codeGen      CodeGenerator
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	slotRepo SlotRepository,
	historyRepo HistoryRepository,
	clinicClient ClinicServiceClient,
	petClient PetServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		slotRepo:     slotRepo,
		historyRepo:  historyRepo,
		clinicClient: clinicClient,
		petClient:    petClient,
		txManager:    txManager,
		codeGen:      &RandomCodeGenerator{},
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: owner=%s, clinic=%s, pet=%s, service=%d, slot=%s",
		req.OwnerID, req.ClinicID, req.PetID, req.ServiceID, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	apptType, _ := domain.ParseAppointmentType(req.AppointmentType)
	now := uc.timeProvider.Now()

	// 2. Получаем клинику
	clinic, err := uc.clinicClient.GetClinic(ctx, req.ClinicID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrClinicNotFound) {
			uc.logger.Warn("CreateAppointment: clinic id=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get clinic id=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	// 3. Домашние визиты доступны не во всех клиниках
	if apptType == domain.TypeHomeVisit && !clinic.OffersHomeVisits {
		uc.logger.Warn("CreateAppointment: clinic=%s does not offer home visits", req.ClinicID)
		return nil, ErrHomeVisitsNotOffered
	}

	// 4. Получаем услугу
	service, err := uc.clinicClient.GetService(ctx, req.ClinicID, req.ServiceID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Получаем питомца и проверяем владельца
	pet, err := uc.petClient.GetPet(ctx, req.PetID)
	if err != nil {
		if errors.Is(err, petClient.ErrPetNotFound) {
			uc.logger.Warn("CreateAppointment: pet id=%s not found", req.PetID)
			return nil, ErrPetNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get pet id=%s: %v", req.PetID, err)
		return nil, fmt.Errorf("%w: failed to get pet: %v", ErrInternal, err)
	}
	if pet.OwnerID != req.OwnerID {
		uc.logger.Warn("CreateAppointment: pet id=%s belongs to another owner", req.PetID)
		return nil, ErrAccessDenied
	}

	var result *domain.Appointment

	// 6. Занимаем место и создаем запись в сериализуемой транзакции.
	// Нарушение уникальности confirmation code абортирует транзакцию в
	// Postgres целиком, поэтому новый код пробуется новой транзакцией
	var txErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := uc.codeGen.Generate()

		txErr = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			// 6.1. Читаем слот с блокировкой строки
			slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotNotFound) {
					return ErrSlotNotFound
				}
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}

			// 6.2. Слот должен подходить запросу
			if slot.ClinicID != req.ClinicID || slot.SlotType != apptType || !slot.AcceptsService(req.ServiceID) {
				return ErrSlotMismatch
			}

			// 6.3. Слот должен быть в будущем
			if !slotStartsAfter(slot, now) {
				return ErrSlotInPast
			}

			// 6.4. Занимаем место: условный UPDATE не проходит для заполненного
			// или заблокированного слота
			if err := uc.slotRepo.IncrementBooked(txCtx, req.SlotID); err != nil {
				if errors.Is(err, slotRepo.ErrSlotUnavailable) {
					uc.logger.Warn("CreateAppointment: slot id=%s is full or blocked", req.SlotID)
					return ErrSlotConflict
				}
				return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
			}

			// 6.5. Создаем запись; коллизия кода выходит из транзакции как есть,
			// откатывая и занятое место
			appt, err := uc.apptRepo.Create(txCtx, buildAppointment(req, slot, service.IsEmergency, code))
			if err != nil {
				if errors.Is(err, apptRepo.ErrCodeCollision) {
					return err
				}
				return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}

			// 6.6. Первая запись аудита: prev_status = NULL
			entry := &domain.StatusHistoryEntry{
				AppointmentID: appt.ID,
				PrevStatus:    nil,
				NewStatus:     domain.StatusBooked,
				Actor:         domain.ActorOwner,
				ActorID:       &req.OwnerID,
				Reason:        "appointment booked",
			}
			if err := uc.historyRepo.Append(txCtx, entry); err != nil {
				return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
			}

			result = appt
			return nil
		})

		if errors.Is(txErr, apptRepo.ErrCodeCollision) {
			uc.logger.Warn("CreateAppointment: confirmation code collision, attempt %d/%d", attempt, maxCodeAttempts)
			continue
		}
		break
	}

	if txErr != nil {
		if errors.Is(txErr, apptRepo.ErrCodeCollision) {
			uc.logger.Error("CreateAppointment: exhausted %d confirmation code attempts", maxCodeAttempts)
			return nil, ErrCodeExhausted
		}
		if errors.Is(txErr, txmanager.ErrSerializationFailure) || errors.Is(txErr, txmanager.ErrTxTimeout) {
			uc.logger.Warn("CreateAppointment: transient conflict for slot id=%s: %v", req.SlotID, txErr)
			return nil, ErrRetryable
		}
		return nil, txErr
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%s, code=%s",
		result.ID, result.ConfirmationCode)

	return &Response{
		ID:               result.ID,
		ConfirmationCode: result.ConfirmationCode,
		ClinicID:         result.ClinicID,
		OwnerID:          result.OwnerID,
		PetID:            result.PetID,
		VetID:            result.VetID,
		ServiceID:        result.ServiceID,
		SlotID:           req.SlotID,
		AppointmentType:  string(result.AppointmentType),
		ScheduledDate:    result.ScheduledDate.Format(domain.DateFormat),
		ScheduledStart:   result.ScheduledStart.String(),
		ScheduledEnd:     result.ScheduledEnd.String(),
		Status:           string(result.Status),
		IsEmergency:      result.IsEmergency,
		PetName:          pet.Name,
		ServiceName:      service.Name,
	}, nil
}

// buildAppointment собирает domain.Appointment с денормализацией расписания слота
func buildAppointment(req *Request, slot *domain.Slot, isEmergency bool, code string) *domain.Appointment {
	appt := &domain.Appointment{
		ID:               uuid.New(),
		ConfirmationCode: code,
		ClinicID:         req.ClinicID,
		OwnerID:          req.OwnerID,
		PetID:            req.PetID,
		VetID:            slot.VetID,
		ServiceID:        req.ServiceID,
		SlotID:           &slot.ID,
		AppointmentType:  domain.AppointmentType(req.AppointmentType),
		ScheduledDate:    slot.SlotDate,
		ScheduledStart:   slot.StartTime,
		ScheduledEnd:     slot.EndTime,
		OwnerNotes:       req.OwnerNotes,
		Status:           domain.StatusBooked,
		IsEmergency:      isEmergency,
	}

	if appt.AppointmentType == domain.TypeHomeVisit && req.HomeVisit != nil {
		appt.HomeAddressLine1 = ptr.Ptr(req.HomeVisit.AddressLine1)
		appt.HomeAddressLine2 = req.HomeVisit.AddressLine2
		appt.HomeCity = ptr.Ptr(req.HomeVisit.City)
		appt.HomeState = ptr.Ptr(req.HomeVisit.State)
		appt.HomePostalCode = ptr.Ptr(req.HomeVisit.PostalCode)
		appt.HomeAccessNotes = req.HomeVisit.AccessNotes
	}

	return appt
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
