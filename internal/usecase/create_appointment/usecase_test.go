package create_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmyvet/FMV-BookingService/internal/domain"
	apptstorage "github.com/findmyvet/FMV-BookingService/internal/infra/storage/appointment"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/clinicservice"
	"github.com/findmyvet/FMV-BookingService/internal/integrations/petservice"
	"github.com/findmyvet/FMV-BookingService/pkg/txmanager"
	"github.com/findmyvet/FMV-BookingService/pkg/types"
)

type fixture struct {
	uc        *UseCase
	apptRepo  *mockAppointmentRepo
	slotRepo  *mockSlotRepo
	history   *mockHistoryRepo
	clinic    *mockClinicClient
	pet       *mockPetClient
	codeGen   *mockCodeGen
	txManager *mockTxManager

	ownerID  uuid.UUID
	clinicID uuid.UUID
	petID    uuid.UUID
	slotID   uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ownerID:  uuid.New(),
		clinicID: uuid.New(),
		petID:    uuid.New(),
		slotID:   uuid.New(),
		now:      time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	f.apptRepo = &mockAppointmentRepo{}
	f.slotRepo = &mockSlotRepo{
		slot: &domain.Slot{
			ID:        f.slotID,
			ClinicID:  f.clinicID,
			SlotDate:  time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
			StartTime: types.TimeString("10:00"),
			EndTime:   types.TimeString("10:30"),
			SlotType:  domain.TypeInPerson,
			Capacity:  1,
		},
	}
	f.history = &mockHistoryRepo{}
	f.clinic = &mockClinicClient{
		clinic: &clinicservice.Clinic{
			ID:               f.clinicID,
			Name:             "Лапа и Хвост",
			OffersHomeVisits: true,
		},
		service: &clinicservice.Service{
			ID:              10,
			Name:            "Первичный осмотр",
			DurationMinutes: 30,
			IsActive:        true,
		},
	}
	f.pet = &mockPetClient{
		pet: &petservice.Pet{
			ID:      f.petID,
			OwnerID: f.ownerID,
			Name:    "Барсик",
			Species: "cat",
		},
	}
	f.codeGen = &mockCodeGen{}

	// Откат неуспешной транзакции возвращает занятое место, как в Postgres
	f.txManager = &mockTxManager{}
	f.txManager.begin = func() func() {
		booked := f.slotRepo.bookedCount()
		return func() { f.slotRepo.setBookedCount(booked) }
	}

	f.uc = NewUseCase(f.apptRepo, f.slotRepo, f.history, f.clinic, f.pet, f.txManager, noopLogger{})
	f.uc.codeGen = f.codeGen
	f.uc.timeProvider = &mockTimeProvider{now: f.now}

	return f
}

func (f *fixture) request() *Request {
	return &Request{
		OwnerID:         f.ownerID,
		ClinicID:        f.clinicID,
		PetID:           f.petID,
		ServiceID:       10,
		SlotID:          f.slotID,
		AppointmentType: "in_person",
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, "booked", resp.Status)
	assert.Equal(t, "ZZZZ-9999", resp.ConfirmationCode)
	assert.Equal(t, "2026-09-08", resp.ScheduledDate)
	assert.Equal(t, "10:00", resp.ScheduledStart)
	assert.Equal(t, "10:30", resp.ScheduledEnd)
	assert.Equal(t, "Барсик", resp.PetName)
	assert.Equal(t, "Первичный осмотр", resp.ServiceName)

	// Место занято, запись и аудит созданы
	assert.Equal(t, 1, f.slotRepo.slot.BookedCount)
	assert.Equal(t, 1, f.apptRepo.createdCount())
	require.Equal(t, 1, f.history.entriesCount())

	entry := f.history.entries[0]
	assert.Nil(t, entry.PrevStatus)
	assert.Equal(t, domain.StatusBooked, entry.NewStatus)
	assert.Equal(t, domain.ActorOwner, entry.Actor)
}

func TestExecute_SlotFull(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.BookedCount = 1 // capacity = 1

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, 0, f.apptRepo.createdCount())
	assert.Equal(t, 0, f.history.entriesCount())
}

func TestExecute_SlotBlocked(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.Blocked = true

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestExecute_SlotInPast(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.SlotDate = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotInPast)
	assert.Equal(t, 0, f.slotRepo.slot.BookedCount)
}

func TestExecute_SlotMismatch(t *testing.T) {
	f := newFixture(t)

	// Слот другой клиники
	f.slotRepo.slot.ClinicID = uuid.New()
	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotMismatch)

	// Слот другого типа приёма
	f = newFixture(t)
	f.slotRepo.slot.SlotType = domain.TypeHomeVisit
	_, err = f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotMismatch)

	// Слот привязан к другой услуге
	f = newFixture(t)
	otherService := int64(99)
	f.slotRepo.slot.ServiceID = &otherService
	_, err = f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrSlotMismatch)
}

func TestExecute_PetOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t)
	f.pet.pet.OwnerID = uuid.New()

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_HomeVisitRequiresAddress(t *testing.T) {
	f := newFixture(t)
	f.slotRepo.slot.SlotType = domain.TypeHomeVisit

	req := f.request()
	req.AppointmentType = "home_visit"
	req.HomeVisit = nil

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_HomeVisitNotOffered(t *testing.T) {
	f := newFixture(t)
	f.clinic.clinic.OffersHomeVisits = false
	f.slotRepo.slot.SlotType = domain.TypeHomeVisit

	req := f.request()
	req.AppointmentType = "home_visit"
	req.HomeVisit = &HomeVisitAddress{
		AddressLine1: "ул. Пушкина, 10",
		City:         "Москва",
		State:        "Москва",
		PostalCode:   "101000",
	}

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrHomeVisitsNotOffered)
}

func TestExecute_ClinicNotFound(t *testing.T) {
	f := newFixture(t)
	f.clinic.clinicErr = clinicservice.ErrClinicNotFound

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestExecute_CodeCollisionRetried(t *testing.T) {
	f := newFixture(t)
	f.codeGen.codes = []string{"AAAA-0001", "AAAA-0001", "BBBB-0002"}

	// Первые две попытки упираются в занятый код
	seen := map[string]bool{"AAAA-0001": true}
	f.apptRepo.CreateFunc = func(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
		if seen[appt.ConfirmationCode] {
			return nil, apptstorage.ErrCodeCollision
		}
		return appt, nil
	}

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "BBBB-0002", resp.ConfirmationCode)
	assert.Equal(t, 1, f.slotRepo.bookedCount())
}

// Коллизия confirmation code абортирует транзакцию в Postgres целиком:
// повторная вставка в той же транзакции невозможна, каждый новый код
// пробуется свежей транзакцией, а откат возвращает занятое место
func TestExecute_CodeCollisionRetriesInNewTransaction(t *testing.T) {
	f := newFixture(t)
	f.codeGen.codes = []string{"AAAA-0001", "BBBB-0002"}

	// Запоминаем, в какой по счету транзакции выполнялась каждая вставка
	var insertTx []int
	f.apptRepo.CreateFunc = func(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
		insertTx = append(insertTx, f.txManager.starts)
		if appt.ConfirmationCode == "AAAA-0001" {
			return nil, apptstorage.ErrCodeCollision
		}
		return appt, nil
	}

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "BBBB-0002", resp.ConfirmationCode)

	// Каждая вставка в своей транзакции
	require.Equal(t, []int{1, 2}, insertTx)

	// Откат первой транзакции вернул место: занято ровно одно,
	// аудит только у успешной записи
	assert.Equal(t, 1, f.slotRepo.bookedCount())
	assert.Equal(t, 1, f.history.entriesCount())
}

func TestExecute_CodeSpaceExhausted(t *testing.T) {
	f := newFixture(t)
	f.apptRepo.CreateFunc = func(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
		return nil, apptstorage.ErrCodeCollision
	}

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrCodeExhausted)

	// Все попытки откатились: место свободно, аудита нет
	assert.Equal(t, maxCodeAttempts, f.txManager.starts)
	assert.Equal(t, 0, f.slotRepo.bookedCount())
	assert.Equal(t, 0, f.history.entriesCount())
}

func TestExecute_SerializationConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.uc.txManager = &mockTxManager{err: txmanager.ErrSerializationFailure}

	_, err := f.uc.Execute(context.Background(), f.request())
	assert.ErrorIs(t, err, ErrRetryable)
}

// Гонка за последнее место: из K конкурентных запросов проходят ровно
// Capacity, овербукинг исключён
func TestExecute_ConcurrentBookingsNoOverbooking(t *testing.T) {
	const workers = 25
	const capacity = 3

	f := newFixture(t)
	f.slotRepo.slot.Capacity = capacity

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), f.request())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrSlotConflict):
			conflicts++
		}
	}

	assert.Equal(t, capacity, successes)
	assert.Equal(t, workers-capacity, conflicts)
	assert.Equal(t, capacity, f.slotRepo.slot.BookedCount)
	assert.Equal(t, capacity, f.apptRepo.createdCount())
	assert.Equal(t, capacity, f.history.entriesCount())
}

func TestValidateRequest(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.OwnerID = uuid.Nil
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.request()
	req.ServiceID = 0
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.request()
	req.AppointmentType = "telepathy"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
