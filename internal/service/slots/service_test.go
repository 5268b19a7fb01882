package slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	slotstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/slot"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/slots/models"
	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

var (
	_ SlotRepository        = (*mockSlotRepo)(nil)
	_ AppointmentRepository = (*mockApptRepo)(nil)
	_ HistoryRepository     = (*mockHistoryRepo)(nil)
	_ ClinicServiceClient   = (*mockClinicClient)(nil)
	_ TransactionManager    = (*mockTxManager)(nil)
	_ Logger                = noopLogger{}
)

type mockSlotRepo struct {
	slot     *domain.Slot
	nextOpen *domain.Slot
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	if m.slot == nil || m.slot.ID != id {
		return nil, slotstorage.ErrSlotNotFound
	}
	copied := *m.slot
	return &copied, nil
}

func (m *mockSlotRepo) NextOpen(ctx context.Context, filter domain.SlotsFilter) (*domain.Slot, error) {
	if m.nextOpen == nil {
		return nil, slotstorage.ErrSlotNotFound
	}
	return m.nextOpen, nil
}

func (m *mockSlotRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	m.slot.Blocked = blocked
	return nil
}

func (m *mockSlotRepo) DecrementBooked(ctx context.Context, id uuid.UUID) error {
	m.slot.BookedCount--
	return nil
}

type mockApptRepo struct {
	active []*domain.Appointment
}

func (m *mockApptRepo) ListActiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Appointment, error) {
	return m.active, nil
}

func (m *mockApptRepo) Cancel(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, cancelledBy *uuid.UUID, reason string) error {
	for _, appt := range m.active {
		if appt.ID == id {
			appt.Status = status
			appt.CancelledBy = cancelledBy
		}
	}
	return nil
}

type mockHistoryRepo struct {
	entries []*domain.StatusHistoryEntry
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	m.entries = append(m.entries, entry)
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

type mockTxManager struct {
	err error
}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *mockTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fixture struct {
	svc      *Service
	slotRepo *mockSlotRepo
	apptRepo *mockApptRepo
	history  *mockHistoryRepo
	clinic   *mockClinicClient

	staffID  uuid.UUID
	clinicID uuid.UUID
	slotID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		staffID:  uuid.New(),
		clinicID: uuid.New(),
		slotID:   uuid.New(),
	}

	f.slotRepo = &mockSlotRepo{
		slot: &domain.Slot{
			ID:        f.slotID,
			ClinicID:  f.clinicID,
			SlotDate:  time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
			StartTime: types.TimeString("10:00"),
			EndTime:   types.TimeString("10:30"),
			SlotType:  domain.TypeInPerson,
			Capacity:  3,
		},
	}
	f.apptRepo = &mockApptRepo{}
	f.history = &mockHistoryRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:       f.clinicID,
			StaffIDs: []uuid.UUID{f.staffID},
		},
	}

	f.svc = NewService(f.slotRepo, f.apptRepo, f.history, f.clinic, &mockTxManager{}, noopLogger{})
	return f
}

func (f *fixture) activeAppointment(ownerID uuid.UUID) *domain.Appointment {
	return &domain.Appointment{
		ID:       uuid.New(),
		ClinicID: f.clinicID,
		OwnerID:  ownerID,
		SlotID:   &f.slotID,
		Status:   domain.StatusBooked,
	}
}

func TestBlock_EmptySlot(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Block(context.Background(), f.slotID, &models.BlockSlotRequest{UserID: f.staffID})
	require.NoError(t, err)

	assert.True(t, resp.Slot.Blocked)
	assert.Equal(t, 0, resp.CancelledAppointments)
	assert.Empty(t, f.history.entries)
}

// Слот с активными записями без запроса каскадной отмены не блокируется
func TestBlock_ActiveBookingsWithoutCascade(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.BookedCount = 1
	f.apptRepo.active = []*domain.Appointment{f.activeAppointment(uuid.New())}

	_, err := f.svc.Block(context.Background(), f.slotID, &models.BlockSlotRequest{UserID: f.staffID})
	assert.ErrorIs(t, err, ErrSlotHasBookings)

	assert.False(t, f.slotRepo.slot.Blocked)
	assert.Equal(t, 1, f.slotRepo.slot.BookedCount)
	assert.Equal(t, domain.StatusBooked, f.apptRepo.active[0].Status)
}

// Каскадная отмена: каждая запись отменяется как cancelled_by_clinic
// с аудитом и освобождением места
func TestBlock_CascadeCancelsActiveBookings(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.BookedCount = 2
	f.apptRepo.active = []*domain.Appointment{
		f.activeAppointment(uuid.New()),
		f.activeAppointment(uuid.New()),
	}

	resp, err := f.svc.Block(context.Background(), f.slotID, &models.BlockSlotRequest{
		UserID:        f.staffID,
		CascadeCancel: true,
		Reason:        "врач ушёл в отпуск",
	})
	require.NoError(t, err)

	assert.True(t, resp.Slot.Blocked)
	assert.Equal(t, 2, resp.CancelledAppointments)
	assert.Equal(t, 0, f.slotRepo.slot.BookedCount)

	for _, appt := range f.apptRepo.active {
		assert.Equal(t, domain.StatusCancelledByClinic, appt.Status)
		assert.Equal(t, &f.staffID, appt.CancelledBy)
	}

	require.Len(t, f.history.entries, 2)
	for _, entry := range f.history.entries {
		assert.Equal(t, domain.StatusCancelledByClinic, entry.NewStatus)
		assert.Equal(t, domain.ActorClinic, entry.Actor)
		assert.Equal(t, "врач ушёл в отпуск", entry.Reason)
	}
}

func TestBlock_NonStaffDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Block(context.Background(), f.slotID, &models.BlockSlotRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, f.slotRepo.slot.Blocked)
}

func TestBlock_SlotNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Block(context.Background(), uuid.New(), &models.BlockSlotRequest{UserID: f.staffID})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

// Снятие блокировки не трогает booked_count
func TestUnblock(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.Blocked = true
	f.slotRepo.slot.BookedCount = 2

	resp, err := f.svc.Unblock(context.Background(), f.slotID, &models.UnblockSlotRequest{UserID: f.staffID})
	require.NoError(t, err)

	assert.False(t, resp.Blocked)
	assert.Equal(t, 2, resp.BookedCount)
}

func TestNextAvailable(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.nextOpen = f.slotRepo.slot

	resp, err := f.svc.NextAvailable(context.Background(), &models.NextAvailableRequest{
		ClinicID:  f.clinicID,
		ServiceID: 10,
		SlotType:  "in_person",
	})
	require.NoError(t, err)

	assert.Equal(t, f.slotID, resp.ID)
	assert.Equal(t, "2026-09-08", resp.SlotDate)
	assert.Equal(t, "10:00", resp.StartTime)
}

func TestNextAvailable_NoSlots(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.NextAvailable(context.Background(), &models.NextAvailableRequest{
		ClinicID:  f.clinicID,
		ServiceID: 10,
		SlotType:  "in_person",
	})
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
}

func TestNextAvailable_InvalidSlotType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.NextAvailable(context.Background(), &models.NextAvailableRequest{
		ClinicID:  f.clinicID,
		ServiceID: 10,
		SlotType:  "by-phone",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
