package generate_slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	configstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/scheduleconfig"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
)

var (
	_ SlotRepository      = (*mockSlotRepo)(nil)
	_ ConfigRepository    = (*mockConfigRepo)(nil)
	_ ClinicServiceClient = (*mockClinicClient)(nil)
	_ TransactionManager  = (*mockTxManager)(nil)
	_ Logger              = noopLogger{}
)

type mockSlotRepo struct {
	inserted   []*domain.Slot
	deleted    int64
	deleteErr  error
	DeleteArgs struct {
		ServiceID *int64
		VetID     *uuid.UUID
	}
}

func (m *mockSlotRepo) CreateBatch(ctx context.Context, slots []*domain.Slot) (int64, error) {
	m.inserted = append(m.inserted, slots...)
	return int64(len(slots)), nil
}

func (m *mockSlotRepo) DeleteEmpty(ctx context.Context, clinicID uuid.UUID, slotType domain.AppointmentType, serviceID *int64, vetID *uuid.UUID, startDate, endDate time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.DeleteArgs.ServiceID = serviceID
	m.DeleteArgs.VetID = vetID
	return m.deleted, nil
}

type mockConfigRepo struct {
	config *domain.ClinicScheduleConfig
	err    error
}

func (m *mockConfigRepo) GetWithHierarchy(ctx context.Context, clinicID uuid.UUID, serviceID *int64) (*domain.ClinicScheduleConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.config, nil
}

type mockClinicClient struct {
	clinic     *clinicservice.Clinic
	clinicErr  error
	service    *clinicservice.Service
	serviceErr error
}

func (m *mockClinicClient) GetClinic(ctx context.Context, clinicID uuid.UUID) (*clinicservice.Clinic, error) {
	if m.clinicErr != nil {
		return nil, m.clinicErr
	}
	return m.clinic, nil
}

func (m *mockClinicClient) GetService(ctx context.Context, clinicID uuid.UUID, serviceID int64) (*clinicservice.Service, error) {
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	return m.service, nil
}

type mockTxManager struct {
	err error
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type mockTimeProvider struct {
	now time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	return m.now
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func strPtr(s string) *string { return &s }

type fixture struct {
	uc         *UseCase
	slotRepo   *mockSlotRepo
	configRepo *mockConfigRepo
	clinic     *mockClinicClient

	staffID  uuid.UUID
	clinicID uuid.UUID
	now      time.Time
}

// newFixture собирает клинику, работающую пн-пт 09:00-17:00,
// текущее время - вторник 1 сентября 2026, 10:00 UTC
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		staffID:  uuid.New(),
		clinicID: uuid.New(),
		now:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}

	weekday := clinicservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  strPtr("09:00"),
		CloseTime: strPtr("17:00"),
	}
	closed := clinicservice.DaySchedule{IsOpen: false}

	f.slotRepo = &mockSlotRepo{}
	f.configRepo = &mockConfigRepo{err: configstorage.ErrConfigNotFound}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:       f.clinicID,
			StaffIDs: []uuid.UUID{f.staffID},
			WorkingHours: clinicservice.WeekSchedule{
				Monday:    weekday,
				Tuesday:   weekday,
				Wednesday: weekday,
				Thursday:  weekday,
				Friday:    weekday,
				Saturday:  closed,
				Sunday:    closed,
			},
			OffersHomeVisits: false,
		},
		service: &clinicservice.Service{
			ID:              10,
			Name:            "Первичный осмотр",
			DurationMinutes: 60,
			IsActive:        true,
		},
	}

	f.uc = NewUseCase(f.slotRepo, f.configRepo, f.clinic, &mockTxManager{}, noopLogger{})
	f.uc.timeProvider = &mockTimeProvider{now: f.now}

	return f
}

func (f *fixture) request(start, end time.Time) *Request {
	return &Request{
		UserID:    f.staffID,
		ClinicID:  f.clinicID,
		SlotType:  "in_person",
		StartDate: start,
		EndDate:   end,
	}
}

// Понедельник 7 сентября, окно 09:00-17:00, слоты по 30 минут = 16 слотов
func TestExecute_SingleOpenDay(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), f.request(day, day))
	require.NoError(t, err)

	assert.Equal(t, int64(16), resp.SlotsCreated)
	assert.Empty(t, resp.DaysSkipped)
	require.Len(t, f.slotRepo.inserted, 16)

	first := f.slotRepo.inserted[0]
	assert.Equal(t, "09:00", first.StartTime.String())
	assert.Equal(t, "09:30", first.EndTime.String())
	assert.Equal(t, domain.TypeInPerson, first.SlotType)
	assert.Equal(t, domain.DefaultSlotCapacity, first.Capacity)

	last := f.slotRepo.inserted[15]
	assert.Equal(t, "16:30", last.StartTime.String())
	assert.Equal(t, "17:00", last.EndTime.String())
}

// Длительность слота берётся из услуги: 60 минут = 8 слотов за день
func TestExecute_ServiceDuration(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	serviceID := int64(10)
	req := f.request(day, day)
	req.ServiceID = &serviceID

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.SlotsCreated)
	assert.Equal(t, &serviceID, f.slotRepo.DeleteArgs.ServiceID)
}

// Закрытые дни недели и blackout даты попадают в DaysSkipped
func TestExecute_SkipsClosedAndBlackoutDays(t *testing.T) {
	f := newFixture(t)
	f.clinic.clinic.BlackoutDates = []string{"2026-09-08"}

	// Пн 7 - вс 13: вторник blackout, суббота и воскресенье закрыты
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), f.request(start, end))
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-09-08", "2026-09-12", "2026-09-13"}, resp.DaysSkipped)
	assert.Equal(t, int64(4*16), resp.SlotsCreated)
}

// Lead time отсекает ближайшие слоты: при генерации на завтра с лимитом
// в сутки создаются только слоты после 10:00
func TestExecute_LeadTimeCutsNearSlots(t *testing.T) {
	f := newFixture(t)
	f.configRepo = &mockConfigRepo{
		config: &domain.ClinicScheduleConfig{
			ID:                 1,
			ClinicID:           f.clinicID,
			SlotCapacity:       2,
			LeadTimeMinutes:    1440,
			AdvanceBookingDays: 14,
		},
	}
	f.uc.configRepo = f.configRepo

	// Завтра, среда 2 сентября: earliest = 2 сентября 10:00
	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), f.request(day, day))
	require.NoError(t, err)

	// 10:00-17:00 по 30 минут = 14 слотов
	assert.Equal(t, int64(14), resp.SlotsCreated)
	require.NotEmpty(t, f.slotRepo.inserted)
	assert.Equal(t, "10:00", f.slotRepo.inserted[0].StartTime.String())
	assert.Equal(t, 2, f.slotRepo.inserted[0].Capacity)
}

// Перегенерация заменяет пустые слоты: DeleteEmpty выполняется в той же
// транзакции, что и вставка
func TestExecute_RegenerationReportsRemoved(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.deleted = 16
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), f.request(day, day))
	require.NoError(t, err)

	assert.Equal(t, int64(16), resp.SlotsRemoved)
	assert.Equal(t, int64(16), resp.SlotsCreated)
}

func TestExecute_NonStaffDenied(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	req := f.request(day, day)
	req.UserID = uuid.New()

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_UnknownVet(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	vetID := uuid.New()
	req := f.request(day, day)
	req.VetID = &vetID

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrVetNotFound)
}

func TestExecute_HomeVisitsNotOffered(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	req := f.request(day, day)
	req.SlotType = "home_visit"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrHomeVisitsNotOffered)
}

// Горизонт по умолчанию 14 дней: диапазон дальше отклоняется
func TestExecute_BeyondBookingHorizon(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(start, end))
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_RangeInPast(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(start, end))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestExecute_EndBeforeStart(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(start, end))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
