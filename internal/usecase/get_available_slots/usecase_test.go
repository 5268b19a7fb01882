package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

var (
	_ SlotRepository      = (*mockSlotRepo)(nil)
	_ ClinicServiceClient = (*mockClinicClient)(nil)
	_ Logger              = noopLogger{}
)

type mockSlotRepo struct {
	slots      []*domain.Slot
	err        error
	lastFilter domain.SlotsFilter
}

func (m *mockSlotRepo) ListOpen(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFilter = filter
	return m.slots, nil
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

type fixture struct {
	uc       *UseCase
	slotRepo *mockSlotRepo
	clinic   *mockClinicClient

	clinicID uuid.UUID
	vetID    uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clinicID: uuid.New(),
		vetID:    uuid.New(),
		now:      time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	f.slotRepo = &mockSlotRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:   f.clinicID,
			Vets: []clinicservice.Vet{{ID: f.vetID, Name: "Доктор Айболит"}},
		},
		service: &clinicservice.Service{ID: 10, Name: "Первичный осмотр", IsActive: true},
	}

	f.uc = NewUseCase(f.slotRepo, f.clinic, noopLogger{})
	f.uc.timeProvider = &mockTimeProvider{now: f.now}

	return f
}

func (f *fixture) slot(date time.Time, start, end string, booked, capacity int) *domain.Slot {
	return &domain.Slot{
		ID:          uuid.New(),
		ClinicID:    f.clinicID,
		SlotDate:    date,
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		SlotType:    domain.TypeInPerson,
		Capacity:    capacity,
		BookedCount: booked,
	}
}

func (f *fixture) request(start, end time.Time) *Request {
	return &Request{
		ClinicID:  f.clinicID,
		ServiceID: 10,
		SlotType:  "in_person",
		StartDate: start,
		EndDate:   end,
	}
}

// Трёхдневный диапазон с открытыми слотами только во втором дне: пустые дни
// присутствуют в ответе с пустым списком
func TestExecute_GroupsByDayWithEmptyDays(t *testing.T) {
	f := newFixture(t)

	day2 := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	f.slotRepo.slots = []*domain.Slot{
		f.slot(day2, "10:00", "10:30", 1, 3),
		f.slot(day2, "14:00", "14:30", 0, 1),
	}

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)

	resp, err := f.uc.Execute(context.Background(), f.request(start, end))
	require.NoError(t, err)

	require.Len(t, resp.Days, 3)
	assert.Equal(t, "2026-09-07", resp.Days[0].Date)
	assert.Empty(t, resp.Days[0].Slots)

	require.Len(t, resp.Days[1].Slots, 2)
	assert.Equal(t, "10:00", resp.Days[1].Slots[0].StartTime)
	assert.Equal(t, 2, resp.Days[1].Slots[0].AvailableSpots)
	assert.Equal(t, 3, resp.Days[1].Slots[0].TotalSpots)

	assert.Empty(t, resp.Days[2].Slots)
}

// Слоты сегодняшнего дня, уже начавшиеся к текущему моменту, отбрасываются
func TestExecute_DropsStartedSlots(t *testing.T) {
	f := newFixture(t)

	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	f.slotRepo.slots = []*domain.Slot{
		f.slot(today, "09:00", "09:30", 0, 1), // уже прошёл
		f.slot(today, "12:00", "12:30", 0, 1), // начался ровно сейчас
		f.slot(today, "15:00", "15:30", 0, 1),
	}

	resp, err := f.uc.Execute(context.Background(), f.request(today, today))
	require.NoError(t, err)

	require.Len(t, resp.Days, 1)
	require.Len(t, resp.Days[0].Slots, 1)
	assert.Equal(t, "15:00", resp.Days[0].Slots[0].StartTime)
}

func TestExecute_VetFilterPassedToRepo(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	req := f.request(day, day)
	req.VetID = &f.vetID

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &f.vetID, f.slotRepo.lastFilter.VetID)
}

func TestExecute_UnknownVet(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	unknown := uuid.New()
	req := f.request(day, day)
	req.VetID = &unknown

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrVetNotFound)
}

func TestExecute_RangeTooWide(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC) // 16 дней

	_, err := f.uc.Execute(context.Background(), f.request(start, end))
	assert.ErrorIs(t, err, ErrRangeTooWide)
}

func TestExecute_RangeInPast(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(start, end))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestExecute_ClinicNotFound(t *testing.T) {
	f := newFixture(t)
	f.clinic.clinicErr = clinicservice.ErrClinicNotFound
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(day, day))
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	f := newFixture(t)
	f.clinic.serviceErr = clinicservice.ErrServiceNotFound
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request(day, day))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
