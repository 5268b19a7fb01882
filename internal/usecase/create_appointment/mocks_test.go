package create_appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	slotstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/slot"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/petservice"
)

var (
	_ AppointmentRepository = (*mockAppointmentRepo)(nil)
	_ SlotRepository        = (*mockSlotRepo)(nil)
	_ HistoryRepository     = (*mockHistoryRepo)(nil)
	_ ClinicServiceClient   = (*mockClinicClient)(nil)
	_ PetServiceClient      = (*mockPetClient)(nil)
	_ TransactionManager    = (*mockTxManager)(nil)
	_ CodeGenerator         = (*mockCodeGen)(nil)
	_ TimeProvider          = (*mockTimeProvider)(nil)
	_ Logger                = noopLogger{}
)

type mockAppointmentRepo struct {
	mu         sync.Mutex
	CreateFunc func(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	created    []*domain.Appointment
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, appt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, appt)
	return appt, nil
}

func (m *mockAppointmentRepo) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockSlotRepo struct {
	mu          sync.Mutex
	slot        *domain.Slot
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	incErr      error
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *m.slot
	return &copied, nil
}

// IncrementBooked воспроизводит условный UPDATE: занятие места не проходит
// для заполненного или заблокированного слота
func (m *mockSlotRepo) IncrementBooked(ctx context.Context, id uuid.UUID) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot.Blocked || m.slot.BookedCount >= m.slot.Capacity {
		return slotstorage.ErrSlotUnavailable
	}
	m.slot.BookedCount++
	return nil
}

func (m *mockSlotRepo) bookedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot.BookedCount
}

func (m *mockSlotRepo) setBookedCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot.BookedCount = n
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*domain.StatusHistoryEntry
	err     error
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepo) entriesCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
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

type mockPetClient struct {
	pet *petservice.Pet
	err error
}

func (m *mockPetClient) GetPet(ctx context.Context, petID uuid.UUID) (*petservice.Pet, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pet, nil
}

// mockTxManager выполняет fn под мьютексом, воспроизводя сериализуемую
// изоляцию для конкурентных тестов. begin снимает состояние моков на старте
// и возвращает откат, который выполняется при ошибке fn, как в Postgres
type mockTxManager struct {
	mu     sync.Mutex
	err    error
	begin  func() (rollback func())
	starts int
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	var rollback func()
	if m.begin != nil {
		rollback = m.begin()
	}
	if err := fn(ctx); err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}
	return nil
}

type mockCodeGen struct {
	mu    sync.Mutex
	codes []string
	idx   int
}

func (m *mockCodeGen) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx >= len(m.codes) {
		return "ZZZZ-9999"
	}
	code := m.codes[m.idx]
	m.idx++
	return code
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
