package reschedule_appointment

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
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

var (
	_ AppointmentRepository = (*mockApptRepo)(nil)
	_ SlotRepository        = (*mockSlotRepo)(nil)
	_ HistoryRepository     = (*mockHistoryRepo)(nil)
	_ ClinicServiceClient   = (*mockClinicClient)(nil)
	_ TransactionManager    = (*mockTxManager)(nil)
	_ Logger                = noopLogger{}
)

type mockApptRepo struct {
	appt *domain.Appointment
	err  error
}

func (m *mockApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.appt
	return &copied, nil
}

func (m *mockApptRepo) Reschedule(ctx context.Context, id uuid.UUID, slot *domain.Slot) error {
	m.appt.SlotID = &slot.ID
	m.appt.VetID = slot.VetID
	m.appt.ScheduledDate = slot.SlotDate
	m.appt.ScheduledStart = slot.StartTime
	m.appt.ScheduledEnd = slot.EndTime
	m.appt.Status = domain.StatusRescheduled
	return nil
}

type mockSlotRepo struct {
	slots map[uuid.UUID]*domain.Slot
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, slotstorage.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (m *mockSlotRepo) IncrementBooked(ctx context.Context, id uuid.UUID) error {
	slot := m.slots[id]
	if slot.Blocked || slot.BookedCount >= slot.Capacity {
		return slotstorage.ErrSlotUnavailable
	}
	slot.BookedCount++
	return nil
}

func (m *mockSlotRepo) DecrementBooked(ctx context.Context, id uuid.UUID) error {
	m.slots[id].BookedCount--
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

type fixture struct {
	uc       *UseCase
	apptRepo *mockApptRepo
	slotRepo *mockSlotRepo
	history  *mockHistoryRepo
	clinic   *mockClinicClient

	ownerID      uuid.UUID
	staffID      uuid.UUID
	clinicID     uuid.UUID
	sourceSlotID uuid.UUID
	targetSlotID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ownerID:      uuid.New(),
		staffID:      uuid.New(),
		clinicID:     uuid.New(),
		sourceSlotID: uuid.New(),
		targetSlotID: uuid.New(),
	}

	f.apptRepo = &mockApptRepo{
		appt: &domain.Appointment{
			ID:               uuid.New(),
			ConfirmationCode: "KWRT-4821",
			ClinicID:         f.clinicID,
			OwnerID:          f.ownerID,
			ServiceID:        10,
			SlotID:           &f.sourceSlotID,
			AppointmentType:  domain.TypeInPerson,
			ScheduledDate:    time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
			ScheduledStart:   types.TimeString("10:00"),
			ScheduledEnd:     types.TimeString("10:30"),
			Status:           domain.StatusBooked,
		},
	}
	f.slotRepo = &mockSlotRepo{
		slots: map[uuid.UUID]*domain.Slot{
			f.sourceSlotID: {
				ID:          f.sourceSlotID,
				ClinicID:    f.clinicID,
				SlotDate:    time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
				StartTime:   types.TimeString("10:00"),
				EndTime:     types.TimeString("10:30"),
				SlotType:    domain.TypeInPerson,
				Capacity:    1,
				BookedCount: 1,
			},
			f.targetSlotID: {
				ID:        f.targetSlotID,
				ClinicID:  f.clinicID,
				SlotDate:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
				StartTime: types.TimeString("14:00"),
				EndTime:   types.TimeString("14:30"),
				SlotType:  domain.TypeInPerson,
				Capacity:  1,
			},
		},
	}
	f.history = &mockHistoryRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:       f.clinicID,
			StaffIDs: []uuid.UUID{f.staffID},
		},
	}

	f.uc = NewUseCase(f.apptRepo, f.slotRepo, f.history, f.clinic, &mockTxManager{}, noopLogger{})
	f.uc.timeProvider = &mockTimeProvider{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}

	return f
}

func (f *fixture) request() *Request {
	return &Request{
		UserID:        f.ownerID,
		AppointmentID: f.apptRepo.appt.ID,
		NewSlotID:     f.targetSlotID,
		Reason:        "владелец попросил другое время",
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, "rescheduled", resp.Status)
	assert.Equal(t, f.targetSlotID, resp.SlotID)
	assert.Equal(t, "2026-09-10", resp.ScheduledDate)
	assert.Equal(t, "14:00", resp.ScheduledStart)
	assert.Equal(t, "14:30", resp.ScheduledEnd)

	// Место перешло из исходного слота в целевой
	assert.Equal(t, 0, f.slotRepo.slots[f.sourceSlotID].BookedCount)
	assert.Equal(t, 1, f.slotRepo.slots[f.targetSlotID].BookedCount)

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	require.NotNil(t, entry.PrevStatus)
	assert.Equal(t, domain.StatusBooked, *entry.PrevStatus)
	assert.Equal(t, domain.StatusRescheduled, entry.NewStatus)
	assert.Equal(t, domain.ActorOwner, entry.Actor)
}

func TestExecute_StaffCanReschedule(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.UserID = f.staffID

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.ActorClinic, f.history.entries[0].Actor)
}

func TestExecute_StrangerDenied(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.UserID = uuid.New()

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

// Заполненный целевой слот откатывает перенос целиком: исходный слот
// остаётся занятым, запись не меняется
func TestExecute_TargetFullNothingChanges(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slots[f.targetSlotID].BookedCount = 1

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotConflict)

	assert.Equal(t, 1, f.slotRepo.slots[f.sourceSlotID].BookedCount)
	assert.Equal(t, domain.StatusBooked, f.apptRepo.appt.Status)
	assert.Equal(t, f.sourceSlotID, *f.apptRepo.appt.SlotID)
	assert.Empty(t, f.history.entries)
}

func TestExecute_SameSlot(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.NewSlotID = f.sourceSlotID

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSameSlot)
}

func TestExecute_TerminalStatus(t *testing.T) {
	f := newFixture(t)
	f.apptRepo.appt.Status = domain.StatusCancelledByOwner

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestExecute_TargetSlotMismatch(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slots[f.targetSlotID].SlotType = domain.TypeHomeVisit

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotMismatch)
}

func TestExecute_TargetSlotInPast(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slots[f.targetSlotID].SlotDate = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotInPast)
	assert.Equal(t, 1, f.slotRepo.slots[f.sourceSlotID].BookedCount)
}

func TestExecute_TargetSlotNotFound(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.NewSlotID = uuid.New()

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SerializationConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.uc.txManager = &mockTxManager{err: txmanager.ErrSerializationFailure}

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrRetryable)
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.NewSlotID = uuid.Nil

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
