package scheduleconfig

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	configstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/scheduleconfig"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/scheduleconfig/models"
)

var (
	_ ConfigRepository    = (*mockConfigRepo)(nil)
	_ ClinicServiceClient = (*mockClinicClient)(nil)
	_ Logger              = noopLogger{}
)

type mockConfigRepo struct {
	config     *domain.ClinicScheduleConfig
	list       []*domain.ClinicScheduleConfig
	getErr     error
	deleteErr  error
	upserted   *domain.ClinicScheduleConfig
	deletedSvc *int64
}

func (m *mockConfigRepo) Upsert(ctx context.Context, config *domain.ClinicScheduleConfig) (*domain.ClinicScheduleConfig, error) {
	m.upserted = config
	saved := *config
	saved.ID = 42
	return &saved, nil
}

func (m *mockConfigRepo) GetWithHierarchy(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*domain.ClinicScheduleConfig, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.config, nil
}

func (m *mockConfigRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*domain.ClinicScheduleConfig, error) {
	return m.list, nil
}

func (m *mockConfigRepo) Delete(ctx context.Context, clinicID uuid.UUID, serviceID *int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedSvc = serviceID
	return nil
}

type mockClinicClient struct {
	clinic *clinicservice.Clinic
	err    error
}

func (m *mockClinicClient) GetClinic(ctx context.Context, clinicID uuid.UUID) (*clinicservice.Clinic, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.clinic, nil
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fixture struct {
	svc        *Service
	configRepo *mockConfigRepo
	clinic     *mockClinicClient

	staffID  uuid.UUID
	clinicID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		staffID:  uuid.New(),
		clinicID: uuid.New(),
	}

	f.configRepo = &mockConfigRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:       f.clinicID,
			StaffIDs: []uuid.UUID{f.staffID},
		},
	}

	f.svc = NewService(f.configRepo, f.clinic, noopLogger{})
	return f
}

func TestGetEffective_StoredConfig(t *testing.T) {
	f := newFixture(t)
	serviceID := int64(10)
	f.configRepo.config = &domain.ClinicScheduleConfig{
		ID:                 7,
		ClinicID:           f.clinicID,
		ServiceID:          &serviceID,
		SlotCapacity:       5,
		LeadTimeMinutes:    120,
		AdvanceBookingDays: 30,
	}

	resp, err := f.svc.GetEffective(context.Background(), f.clinicID, &serviceID)
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, 5, resp.SlotCapacity)
	assert.False(t, resp.IsDefault)
}

// Конфигурация не задана: применяются встроенные дефолты с пометкой isDefault
func TestGetEffective_FallsBackToDefaults(t *testing.T) {
	f := newFixture(t)
	f.configRepo.getErr = configstorage.ErrConfigNotFound

	resp, err := f.svc.GetEffective(context.Background(), f.clinicID, nil)
	require.NoError(t, err)

	assert.True(t, resp.IsDefault)
	assert.Equal(t, domain.DefaultSlotCapacity, resp.SlotCapacity)
	assert.Equal(t, domain.DefaultLeadTimeMinutes, resp.LeadTimeMinutes)
	assert.Equal(t, domain.DefaultAdvanceBookingDays, resp.AdvanceBookingDays)
}

func TestUpsert(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Upsert(context.Background(), &models.UpsertConfigRequest{
		UserID:             f.staffID,
		ClinicID:           f.clinicID,
		SlotCapacity:       3,
		LeadTimeMinutes:    60,
		AdvanceBookingDays: 21,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, 3, resp.SlotCapacity)
	require.NotNil(t, f.configRepo.upserted)
	assert.Nil(t, f.configRepo.upserted.ServiceID)
}

func TestUpsert_NonStaffDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upsert(context.Background(), &models.UpsertConfigRequest{
		UserID:             uuid.New(),
		ClinicID:           f.clinicID,
		SlotCapacity:       3,
		LeadTimeMinutes:    60,
		AdvanceBookingDays: 21,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, f.configRepo.upserted)
}

func TestUpsert_ValidatesBounds(t *testing.T) {
	f := newFixture(t)

	cases := []models.UpsertConfigRequest{
		{SlotCapacity: 0, LeadTimeMinutes: 60, AdvanceBookingDays: 21},
		{SlotCapacity: domain.MaxSlotCapacity + 1, LeadTimeMinutes: 60, AdvanceBookingDays: 21},
		{SlotCapacity: 3, LeadTimeMinutes: -1, AdvanceBookingDays: 21},
		{SlotCapacity: 3, LeadTimeMinutes: domain.MaxLeadTimeMinutes + 1, AdvanceBookingDays: 21},
		{SlotCapacity: 3, LeadTimeMinutes: 60, AdvanceBookingDays: domain.MaxAdvanceDays + 1},
	}

	for _, c := range cases {
		c.UserID = f.staffID
		c.ClinicID = f.clinicID
		_, err := f.svc.Upsert(context.Background(), &c)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	serviceID := int64(10)

	err := f.svc.Delete(context.Background(), &models.DeleteConfigRequest{
		UserID:    f.staffID,
		ClinicID:  f.clinicID,
		ServiceID: &serviceID,
	})
	require.NoError(t, err)
	assert.Equal(t, &serviceID, f.configRepo.deletedSvc)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	f.configRepo.deleteErr = configstorage.ErrConfigNotFound

	err := f.svc.Delete(context.Background(), &models.DeleteConfigRequest{
		UserID:   f.staffID,
		ClinicID: f.clinicID,
	})
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestList_StaffOnly(t *testing.T) {
	f := newFixture(t)
	f.configRepo.list = []*domain.ClinicScheduleConfig{
		{ID: 1, ClinicID: f.clinicID, SlotCapacity: 1, LeadTimeMinutes: 1440, AdvanceBookingDays: 14},
	}

	resp, err := f.svc.List(context.Background(), f.clinicID, f.staffID)
	require.NoError(t, err)
	assert.Len(t, resp.Configs, 1)

	_, err = f.svc.List(context.Background(), f.clinicID, uuid.New())
	assert.ErrorIs(t, err, ErrAccessDenied)
}
