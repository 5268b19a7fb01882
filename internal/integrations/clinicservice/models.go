package clinicservice

import (
	"time"

	"github.com/google/uuid"
)

// Clinic модель клиники из ClinicService
type Clinic struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Phone         *string      `json:"phone,omitempty"`
	AddressLine1  *string      `json:"address_line1,omitempty"`
	City          *string      `json:"city,omitempty"`
	State         *string      `json:"state,omitempty"`
	PostalCode    *string      `json:"postal_code,omitempty"`
	StaffIDs      []uuid.UUID  `json:"staff_ids"`
	Vets          []Vet        `json:"vets"`
	WorkingHours  WeekSchedule `json:"working_hours"`
	BlackoutDates []string     `json:"blackout_dates"` // Даты в формате YYYY-MM-DD
	OffersHomeVisits bool      `json:"offers_home_visits"`
}

// Vet врач клиники
type Vet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
}

// WeekSchedule недельное расписание работы клиники
type WeekSchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// DaySchedule расписание работы на один день недели
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "09:00"
	CloseTime *string `json:"close_time,omitempty"` // "17:00"
}

// Service модель услуги из ClinicService
type Service struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
	IsActive        bool     `json:"is_active"`
	IsEmergency     bool     `json:"is_emergency"`
}

// ErrorResponse модель ошибки от ClinicService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HoursFor возвращает расписание работы клиники на указанный день недели
func (c *Clinic) HoursFor(date time.Time) DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return c.WorkingHours.Monday
	case time.Tuesday:
		return c.WorkingHours.Tuesday
	case time.Wednesday:
		return c.WorkingHours.Wednesday
	case time.Thursday:
		return c.WorkingHours.Thursday
	case time.Friday:
		return c.WorkingHours.Friday
	case time.Saturday:
		return c.WorkingHours.Saturday
	case time.Sunday:
		return c.WorkingHours.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// IsBlackout проверяет, что дата входит в blackout список клиники
func (c *Clinic) IsBlackout(date time.Time) bool {
	formatted := date.Format("2006-01-02")
	for _, d := range c.BlackoutDates {
		if d == formatted {
			return true
		}
	}
	return false
}

// IsStaff проверяет, что пользователь - сотрудник клиники
func (c *Clinic) IsStaff(userID uuid.UUID) bool {
	for _, id := range c.StaffIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasVet проверяет, что врач работает в клинике
func (c *Clinic) HasVet(vetID uuid.UUID) bool {
	for _, v := range c.Vets {
		if v.ID == vetID {
			return true
		}
	}
	return false
}
