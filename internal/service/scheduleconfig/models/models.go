package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
)

// Request модели

// UpsertConfigRequest запрос на создание/обновление конфигурации расписания
// ServiceID = nil задает конфигурацию уровня клиники
type UpsertConfigRequest struct {
	UserID    uuid.UUID `json:"userId"`
	ClinicID  uuid.UUID `json:"clinicId"`
	ServiceID *int64    `json:"serviceId,omitempty"`

	SlotCapacity       int `json:"slotCapacity"`
	LeadTimeMinutes    int `json:"leadTimeMinutes"`
	AdvanceBookingDays int `json:"advanceBookingDays"`
}

// DeleteConfigRequest запрос на удаление конфигурации расписания
type DeleteConfigRequest struct {
	UserID    uuid.UUID `json:"userId"`
	ClinicID  uuid.UUID `json:"clinicId"`
	ServiceID *int64    `json:"serviceId,omitempty"`
}

// Response модели

// ConfigResponse ответ с конфигурацией расписания
type ConfigResponse struct {
	ID        int64     `json:"id,omitempty"` // 0 для встроенных дефолтов
	ClinicID  uuid.UUID `json:"clinicId"`
	ServiceID *int64    `json:"serviceId,omitempty"`

	SlotCapacity       int `json:"slotCapacity"`
	LeadTimeMinutes    int `json:"leadTimeMinutes"`
	AdvanceBookingDays int `json:"advanceBookingDays"`

	IsDefault bool `json:"isDefault"` // true = конфигурация не задана, применены дефолты

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ConfigListResponse ответ со списком конфигураций клиники
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ClinicScheduleConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                 c.ID,
		ClinicID:           c.ClinicID,
		ServiceID:          c.ServiceID,
		SlotCapacity:       c.SlotCapacity,
		LeadTimeMinutes:    c.LeadTimeMinutes,
		AdvanceBookingDays: c.AdvanceBookingDays,
	}

	if !c.CreatedAt.IsZero() {
		created := c.CreatedAt
		updated := c.UpdatedAt
		resp.CreatedAt = &created
		resp.UpdatedAt = &updated
	}

	return resp
}

// DefaultConfigResponse возвращает DTO со встроенными дефолтами
func DefaultConfigResponse(clinicID uuid.UUID, serviceID *int64) *ConfigResponse {
	return &ConfigResponse{
		ClinicID:           clinicID,
		ServiceID:          serviceID,
		SlotCapacity:       domain.DefaultSlotCapacity,
		LeadTimeMinutes:    domain.DefaultLeadTimeMinutes,
		AdvanceBookingDays: domain.DefaultAdvanceBookingDays,
		IsDefault:          true,
	}
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.ClinicScheduleConfig) *ConfigListResponse {
	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, 0, len(configs)),
	}

	for _, c := range configs {
		if cfgResp := FromDomainConfig(c); cfgResp != nil {
			resp.Configs = append(resp.Configs, *cfgResp)
		}
	}

	return resp
}
