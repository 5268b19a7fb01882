package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	apptstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/appointment"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/service/appointments/models"
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
	appts map[uuid.UUID]*domain.Appointment
	stale []*domain.Appointment
}

func (m *mockApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	appt, ok := m.appts[id]
	if !ok {
		return nil, apptstorage.ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (m *mockApptRepo) GetByCode(ctx context.Context, code string) (*domain.Appointment, error) {
	for _, appt := range m.appts {
		if appt.ConfirmationCode == code {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, apptstorage.ErrAppointmentNotFound
}

func (m *mockApptRepo) ListByOwner(ctx context.Context, filter domain.OwnerAppointmentsFilter) ([]*domain.Appointment, int, error) {
	out := make([]*domain.Appointment, 0)
	for _, appt := range m.appts {
		if appt.OwnerID == filter.OwnerID {
			out = append(out, appt)
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListByClinicWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	out := make([]*domain.Appointment, 0)
	for _, appt := range m.appts {
		if appt.ClinicID == filter.ClinicID {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *mockApptRepo) ListStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error) {
	return m.stale, nil
}

// TransitionStatus воспроизводит условный UPDATE: переход только из активного статуса
func (m *mockApptRepo) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus domain.AppointmentStatus) error {
	appt, ok := m.appts[id]
	if !ok {
		return apptstorage.ErrAppointmentNotFound
	}
	if !appt.Status.IsActive() {
		return apptstorage.ErrNotActive
	}
	appt.Status = newStatus
	return nil
}

func (m *mockApptRepo) Cancel(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, cancelledBy *uuid.UUID, reason string) error {
	appt, ok := m.appts[id]
	if !ok {
		return apptstorage.ErrAppointmentNotFound
	}
	if !appt.Status.IsActive() {
		return apptstorage.ErrNotActive
	}
	appt.Status = status
	appt.CancelledBy = cancelledBy
	now := time.Now()
	appt.CancelledAt = &now
	if reason != "" {
		appt.CancellationReason = &reason
	}
	return nil
}

type mockSlotRepo struct {
	decrements map[uuid.UUID]int
}

func (m *mockSlotRepo) DecrementBooked(ctx context.Context, id uuid.UUID) error {
	if m.decrements == nil {
		m.decrements = make(map[uuid.UUID]int)
	}
	m.decrements[id]++
	return nil
}

type mockHistoryRepo struct {
	entries []*domain.StatusHistoryEntry
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepo) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*domain.StatusHistoryEntry, error) {
	out := make([]*domain.StatusHistoryEntry, 0)
	for _, e := range m.entries {
		if e.AppointmentID == appointmentID {
			out = append(out, e)
		}
	}
	return out, nil
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
	apptRepo *mockApptRepo
	slotRepo *mockSlotRepo
	history  *mockHistoryRepo
	clinic   *mockClinicClient

	ownerID  uuid.UUID
	staffID  uuid.UUID
	clinicID uuid.UUID
	slotID   uuid.UUID
	apptID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ownerID:  uuid.New(),
		staffID:  uuid.New(),
		clinicID: uuid.New(),
		slotID:   uuid.New(),
		apptID:   uuid.New(),
	}

	f.apptRepo = &mockApptRepo{
		appts: map[uuid.UUID]*domain.Appointment{
			f.apptID: {
				ID:               f.apptID,
				ConfirmationCode: "KWRT-4821",
				ClinicID:         f.clinicID,
				OwnerID:          f.ownerID,
				PetID:            uuid.New(),
				ServiceID:        10,
				SlotID:           &f.slotID,
				AppointmentType:  domain.TypeInPerson,
				ScheduledDate:    time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
				ScheduledStart:   types.TimeString("10:00"),
				ScheduledEnd:     types.TimeString("10:30"),
				Status:           domain.StatusBooked,
			},
		},
	}
	f.slotRepo = &mockSlotRepo{}
	f.history = &mockHistoryRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:       f.clinicID,
			StaffIDs: []uuid.UUID{f.staffID},
		},
	}

	f.svc = NewService(f.apptRepo, f.slotRepo, f.history, f.clinic, &mockTxManager{}, noopLogger{})
	return f
}

func TestGetByID_OwnerAndStaffAllowed(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetByID(context.Background(), f.apptID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, f.apptID, resp.ID)

	_, err = f.svc.GetByID(context.Background(), f.apptID, f.staffID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), f.apptID, uuid.New())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByCode(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetByCode(context.Background(), "KWRT-4821", f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, f.apptID, resp.ID)

	_, err = f.svc.GetByCode(context.Background(), "XXXX-0000", f.ownerID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel_ByOwner(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Cancel(context.Background(), f.apptID, &models.CancelAppointmentRequest{
		UserID: f.ownerID,
		Reason: "не сможем прийти",
	})
	require.NoError(t, err)

	assert.Equal(t, "cancelled_by_owner", resp.Status)
	assert.Equal(t, 1, f.slotRepo.decrements[f.slotID])

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Equal(t, domain.StatusCancelledByOwner, entry.NewStatus)
	assert.Equal(t, domain.ActorOwner, entry.Actor)
	require.NotNil(t, entry.PrevStatus)
	assert.Equal(t, domain.StatusBooked, *entry.PrevStatus)
}

func TestCancel_ByStaff(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Cancel(context.Background(), f.apptID, &models.CancelAppointmentRequest{
		UserID: f.staffID,
		Reason: "врач заболел",
	})
	require.NoError(t, err)

	assert.Equal(t, "cancelled_by_clinic", resp.Status)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.ActorClinic, f.history.entries[0].Actor)
}

// Повторная отмена возвращает ErrNotActive: место в слоте освобождается
// ровно один раз
func TestCancel_SecondCancelReleasesSlotOnce(t *testing.T) {
	f := newFixture(t)
	req := &models.CancelAppointmentRequest{UserID: f.ownerID}

	_, err := f.svc.Cancel(context.Background(), f.apptID, req)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.apptID, req)
	assert.ErrorIs(t, err, ErrNotActive)

	assert.Equal(t, 1, f.slotRepo.decrements[f.slotID])
	assert.Len(t, f.history.entries, 1)
}

func TestCancel_StrangerDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), f.apptID, &models.CancelAppointmentRequest{
		UserID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, f.slotRepo.decrements)
}

func TestCancel_SerializationConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.svc.txManager = &mockTxManager{err: txmanager.ErrSerializationFailure}

	_, err := f.svc.Cancel(context.Background(), f.apptID, &models.CancelAppointmentRequest{
		UserID: f.ownerID,
	})
	assert.ErrorIs(t, err, ErrRetryable)
}

func TestUpdateStatus_Completed(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.UpdateStatus(context.Background(), f.apptID, &models.UpdateStatusRequest{
		UserID: f.staffID,
		Status: "completed",
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.StatusCompleted, f.history.entries[0].NewStatus)
	assert.Equal(t, domain.ActorClinic, f.history.entries[0].Actor)
}

// Через UpdateStatus проходят только терминальные статусы посещения:
// отмены и переносы идут своими операциями
func TestUpdateStatus_OnlyVisitOutcomesAllowed(t *testing.T) {
	f := newFixture(t)

	for _, status := range []string{"booked", "rescheduled", "cancelled_by_owner", "cancelled_by_clinic"} {
		_, err := f.svc.UpdateStatus(context.Background(), f.apptID, &models.UpdateStatusRequest{
			UserID: f.staffID,
			Status: status,
		})
		assert.ErrorIs(t, err, ErrInvalidInput, "status %s", status)
	}
}

func TestUpdateStatus_OwnerDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.apptID, &models.UpdateStatusRequest{
		UserID: f.ownerID,
		Status: "completed",
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_TerminalRejected(t *testing.T) {
	f := newFixture(t)
	f.apptRepo.appts[f.apptID].Status = domain.StatusCompleted

	_, err := f.svc.UpdateStatus(context.Background(), f.apptID, &models.UpdateStatusRequest{
		UserID: f.staffID,
		Status: "no_show",
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSweepNoShows(t *testing.T) {
	f := newFixture(t)
	f.apptRepo.stale = []*domain.Appointment{f.apptRepo.appts[f.apptID]}

	swept, err := f.svc.SweepNoShows(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, swept)
	assert.Equal(t, domain.StatusNoShow, f.apptRepo.appts[f.apptID].Status)

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Equal(t, domain.ActorSystem, entry.Actor)
	assert.Nil(t, entry.ActorID)
	require.NotNil(t, entry.PrevStatus)
	assert.Equal(t, domain.StatusBooked, *entry.PrevStatus)
}

// Клиника отметила посещение между выборкой и транзакцией:
// запись пропускается без ошибки
func TestSweepNoShows_SkipsNoLongerActive(t *testing.T) {
	f := newFixture(t)
	f.apptRepo.stale = []*domain.Appointment{f.apptRepo.appts[f.apptID]}
	f.apptRepo.appts[f.apptID].Status = domain.StatusCompleted

	swept, err := f.svc.SweepNoShows(context.Background(), 30*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, swept)
	assert.Equal(t, domain.StatusCompleted, f.apptRepo.appts[f.apptID].Status)
	assert.Empty(t, f.history.entries)
}

func TestGetHistory_AccessControl(t *testing.T) {
	f := newFixture(t)
	f.history.entries = []*domain.StatusHistoryEntry{
		{AppointmentID: f.apptID, NewStatus: domain.StatusBooked, Actor: domain.ActorOwner},
	}

	resp, err := f.svc.GetHistory(context.Background(), f.apptID, f.ownerID)
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 1)

	_, err = f.svc.GetHistory(context.Background(), f.apptID, uuid.New())
	assert.ErrorIs(t, err, ErrAccessDenied)
}
