package scheduleconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	configRepo "github.com/findmyvet/FMV-BookingService/internal/infra/storage/scheduleconfig"
	clinicClient "github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig/models"
)

// Service сервис конфигурации расписания клиник
type Service struct {
	configRepo   ConfigRepository
	clinicClient ClinicServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	clinicClient ClinicServiceClient,
	logger Logger,
) *Service {
	return &Service{
		configRepo:   configRepo,
		clinicClient: clinicClient,
		logger:       logger,
	}
}

// GetEffective получает действующую конфигурацию для пары (клиника, услуга)
// с учётом иерархии: услуга -> клиника -> встроенные дефолты
func (s *Service) GetEffective(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*models.ConfigResponse, error) {
	s.logger.Info("GetEffective: fetching config for clinic=%s, service=%v", clinicID, serviceID)

	config, err := s.configRepo.GetWithHierarchy(ctx, clinicID, serviceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("GetEffective: no config for clinic=%s, using defaults", clinicID)
			return models.DefaultConfigResponse(clinicID, serviceID), nil
		}
		s.logger.Error("GetEffective: repository error for clinic=%s: %v", clinicID, err)
		return nil, fmt.Errorf("%w: GetEffective - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(config), nil
}

// List получает все конфигурации клиники
// Доступно только сотрудникам клиники
func (s *Service) List(ctx context.Context, clinicID uuid.UUID, userID uuid.UUID) (*models.ConfigListResponse, error) {
	s.logger.Info("List: fetching configs for clinic=%s, user=%s", clinicID, userID)

	if err := s.checkStaffAccess(ctx, clinicID, userID); err != nil {
		return nil, err
	}

	configs, err := s.configRepo.ListByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error("List: repository error for clinic=%s: %v", clinicID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d configs for clinic=%s", len(configs), clinicID)
	return models.FromDomainConfigList(configs), nil
}

// Upsert создает или обновляет конфигурацию расписания
// Доступно только сотрудникам клиники
func (s *Service) Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Upsert: upserting config for clinic=%s, service=%v by user=%s",
		req.ClinicID, req.ServiceID, req.UserID)

	if err := validateConfigValues(req); err != nil {
		s.logger.Warn("Upsert: validation failed for clinic=%s: %v", req.ClinicID, err)
		return nil, err
	}

	if err := s.checkStaffAccess(ctx, req.ClinicID, req.UserID); err != nil {
		return nil, err
	}

	config := &domain.ClinicScheduleConfig{
		ClinicID:           req.ClinicID,
		ServiceID:          req.ServiceID,
		SlotCapacity:       req.SlotCapacity,
		LeadTimeMinutes:    req.LeadTimeMinutes,
		AdvanceBookingDays: req.AdvanceBookingDays,
	}

	saved, err := s.configRepo.Upsert(ctx, config)
	if err != nil {
		s.logger.Error("Upsert: repository error for clinic=%s: %v", req.ClinicID, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully saved config id=%d for clinic=%s", saved.ID, req.ClinicID)
	return models.FromDomainConfig(saved), nil
}

// Delete удаляет конфигурацию расписания
// После удаления для пары действует следующий уровень иерархии
func (s *Service) Delete(ctx context.Context, req *models.DeleteConfigRequest) error {
	s.logger.Info("Delete: deleting config for clinic=%s, service=%v by user=%s",
		req.ClinicID, req.ServiceID, req.UserID)

	if err := s.checkStaffAccess(ctx, req.ClinicID, req.UserID); err != nil {
		return err
	}

	if err := s.configRepo.Delete(ctx, req.ClinicID, req.ServiceID); err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Warn("Delete: config for clinic=%s, service=%v not found", req.ClinicID, req.ServiceID)
			return ErrConfigNotFound
		}
		s.logger.Error("Delete: repository error for clinic=%s: %v", req.ClinicID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted config for clinic=%s, service=%v", req.ClinicID, req.ServiceID)
	return nil
}

// validateConfigValues проверяет границы значений конфигурации
func validateConfigValues(req *models.UpsertConfigRequest) error {
	if req.SlotCapacity < domain.MinSlotCapacity || req.SlotCapacity > domain.MaxSlotCapacity {
		return fmt.Errorf("%w: slotCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, domain.MaxSlotCapacity)
	}
	if req.LeadTimeMinutes < domain.MinLeadTimeMinutes || req.LeadTimeMinutes > domain.MaxLeadTimeMinutes {
		return fmt.Errorf("%w: leadTimeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinLeadTimeMinutes, domain.MaxLeadTimeMinutes)
	}
	if req.AdvanceBookingDays < domain.MinAdvanceDays || req.AdvanceBookingDays > domain.MaxAdvanceDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceDays, domain.MaxAdvanceDays)
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
