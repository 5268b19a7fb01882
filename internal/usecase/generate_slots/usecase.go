package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	configRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/scheduleconfig"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

// UseCase use case генерации слотов доступности
// Перегенерация идемпотентна: пустые незаблокированные слоты в диапазоне
// заменяются, слоты с бронированиями или ручной блокировкой не трогаются
type UseCase struct {
	slotRepo     SlotRepository
	configRepo   ConfigRepository
	clinicClient ClinicServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	configRepo ConfigRepository,
	clinicClient ClinicServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		configRepo:   configRepo,
		clinicClient: clinicClient,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case генерации слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: clinic=%s, service=%v, range=%s..%s by user=%s",
		req.ClinicID, req.ServiceID,
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	slotType, err := domain.ParseAppointmentType(req.SlotType)
	if err != nil {
		uc.logger.Warn("GenerateSlots: invalid slot type=%s", req.SlotType)
		return nil, fmt.Errorf("%w: invalid slot type", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 2. Получаем клинику
	clinic, err := uc.clinicClient.GetClinic(ctx, req.ClinicID)
	if err != nil {
		if errors.Is(err, clinicClient.ErrClinicNotFound) {
			uc.logger.Warn("GenerateSlots: clinic id=%s not found", req.ClinicID)
			return nil, ErrClinicNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get clinic id=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: failed to get clinic: %v", ErrInternal, err)
	}

	// 3. Проверяем права доступа
	if !clinic.IsStaff(req.UserID) {
		uc.logger.Warn("GenerateSlots: user=%s is not staff of clinic=%s", req.UserID, req.ClinicID)
		return nil, ErrAccessDenied
	}

	// 4. Проверяем врача
	if req.VetID != nil && !clinic.HasVet(*req.VetID) {
		uc.logger.Warn("GenerateSlots: vet id=%s not found in clinic=%s", *req.VetID, req.ClinicID)
		return nil, ErrVetNotFound
	}

	// 5. Домашние визиты доступны не во всех клиниках
	if slotType == domain.TypeHomeVisit && !clinic.OffersHomeVisits {
		uc.logger.Warn("GenerateSlots: clinic=%s does not offer home visits", req.ClinicID)
		return nil, ErrHomeVisitsNotOffered
	}

	// 6. Длительность слота берём из услуги, без услуги - дефолтная
	durationMinutes := domain.DefaultSlotDurationMinutes
	if req.ServiceID != nil {
		service, err := uc.clinicClient.GetService(ctx, req.ClinicID, *req.ServiceID)
		if err != nil {
			if errors.Is(err, clinicClient.ErrServiceNotFound) {
				uc.logger.Warn("GenerateSlots: service id=%d not found", *req.ServiceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("GenerateSlots: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		durationMinutes = service.DurationMinutes
	}

	// 7. Получаем конфигурацию расписания с учетом иерархии
	config, err := uc.configRepo.GetWithHierarchy(ctx, req.ClinicID, req.ServiceID)
	if err != nil && !errors.Is(err, configRepo.ErrConfigNotFound) {
		uc.logger.Error("GenerateSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}
	if config == nil {
		config = domain.DefaultScheduleConfig()
		uc.logger.Info("GenerateSlots: using default config for clinic=%s", req.ClinicID)
	} else {
		uc.logger.Info("GenerateSlots: using config id=%d", config.ID)
	}

	// 8. Валидация диапазона против горизонта бронирования
	if err := validateDateRange(req.StartDate, req.EndDate, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GenerateSlots: date range validation failed: %v", err)
		return nil, err
	}

	// 9. Нарезаем слоты по дням, пропуская закрытые и blackout дни
	candidates := make([]*domain.Slot, 0)
	skipped := make([]string, 0)

	for date := dateOnly(req.StartDate); !date.After(dateOnly(req.EndDate)); date = date.AddDate(0, 0, 1) {
		if clinic.IsBlackout(date) {
			skipped = append(skipped, date.Format(domain.DateFormat))
			continue
		}

		schedule := clinic.HoursFor(date)
		if !schedule.IsOpen {
			skipped = append(skipped, date.Format(domain.DateFormat))
			continue
		}

		daySlots, err := buildDaySlots(req, schedule, date, now, durationMinutes, config.SlotCapacity, config.LeadTimeMinutes)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to build slots for %s: %v", date.Format(domain.DateFormat), err)
			return nil, fmt.Errorf("%w: failed to build slots: %v", ErrInternal, err)
		}

		candidates = append(candidates, daySlots...)
	}

	// 10. Заменяем пустые слоты и вставляем новые в одной транзакции
	var created, removed int64

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		removed, err = uc.slotRepo.DeleteEmpty(txCtx, req.ClinicID, slotType, req.ServiceID, req.VetID, req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("%w: failed to delete empty slots: %v", ErrInternal, err)
		}

		created, err = uc.slotRepo.CreateBatch(txCtx, candidates)
		if err != nil {
			return fmt.Errorf("%w: failed to insert slots: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GenerateSlots: created %d slots (removed %d empty) for clinic=%s",
		created, removed, req.ClinicID)

	return &Response{
		ClinicID:     req.ClinicID,
		StartDate:    req.StartDate.Format(domain.DateFormat),
		EndDate:      req.EndDate.Format(domain.DateFormat),
		SlotsCreated: created,
		SlotsRemoved: removed,
		DaysSkipped:  skipped,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
