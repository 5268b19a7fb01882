package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryActor инициатор перехода статуса
type HistoryActor string

const (
	ActorOwner  HistoryActor = "owner"
	ActorClinic HistoryActor = "clinic"
	ActorSystem HistoryActor = "system" // Автоматические переходы (no-show sweep)
)

// ParseHistoryActor валидирует строку и возвращает HistoryActor
func ParseHistoryActor(s string) (HistoryActor, error) {
	switch HistoryActor(s) {
	case ActorOwner, ActorClinic, ActorSystem:
		return HistoryActor(s), nil
	default:
		return "", ErrUnknownActor
	}
}

// StatusHistoryEntry запись аудита переходов статуса, append-only
// PrevStatus = nil только у первой записи (создание в статусе booked).
// Запись добавляется в той же транзакции, что и смена статуса:
// живой статус и аудит никогда не расходятся
type StatusHistoryEntry struct {
	ID            int64
	AppointmentID uuid.UUID
	PrevStatus    *AppointmentStatus
	NewStatus     AppointmentStatus
	Actor         HistoryActor
	ActorID       *uuid.UUID // nil = системный переход
	Reason        string
	CreatedAt     time.Time
}
