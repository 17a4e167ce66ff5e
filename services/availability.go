package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-reservation/repository"
	"gorm.io/gorm"
)

// Availability is the result of a slot check. Conflicting holds the requested
// tables already held by another active reservation, sorted ascending.
type Availability struct {
	Available   bool     `json:"available"`
	Conflicting []string `json:"conflictingTables"`
}

type AvailabilityChecker struct {
	reservations repository.ReservationRepository
}

func NewAvailabilityChecker(reservations repository.ReservationRepository) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: reservations}
}

// Check reports whether every table in tables is free for (date, time).
// excludeOrderID skips a reservation's own claims when it is being updated.
func (a *AvailabilityChecker) Check(ctx context.Context, date, slotTime string, tables []string, excludeOrderID string) (*Availability, error) {
	date, slotTime, err := canonicalSlot(date, slotTime)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, newValidationError("tables", "is required")
	}
	_, numbers, err := canonicalTables(tables)
	if err != nil {
		return nil, err
	}

	result, err := a.check(ctx, nil, date, slotTime, numbers, excludeOrderID)
	if err != nil {
		return nil, storageErr("check availability", err)
	}
	return result, nil
}

func (a *AvailabilityChecker) check(ctx context.Context, tx *gorm.DB, date, slotTime string, numbers []int, excludeOrderID string) (*Availability, error) {
	claimed, err := a.reservations.ClaimedTables(ctx, tx, date, slotTime, numbers, excludeOrderID)
	if err != nil {
		return nil, err
	}
	return &Availability{
		Available:   len(claimed) == 0,
		Conflicting: tableStrings(claimed),
	}, nil
}

// ReservedTables returns the deduplicated tables held by active reservations in
// the slot. It runs the same claim query as Check.
func (a *AvailabilityChecker) ReservedTables(ctx context.Context, date, slotTime string) ([]string, error) {
	date, slotTime, err := canonicalSlot(date, slotTime)
	if err != nil {
		return nil, err
	}
	claimed, err := a.reservations.ClaimedTables(ctx, nil, date, slotTime, nil, "")
	if err != nil {
		return nil, storageErr("list reserved tables", err)
	}
	return tableStrings(claimed), nil
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type slotKey struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

// canonicalSlot validates a slot and rewrites it as YYYY-MM-DD / HH:MM so that
// "9:30" and "09:30" name the same slot.
func canonicalSlot(date, slotTime string) (string, string, error) {
	key := slotKey{Date: strings.TrimSpace(date), Time: strings.TrimSpace(slotTime)}
	if err := validateStruct(key); err != nil {
		return "", "", err
	}
	d, _ := time.Parse(dateLayout, key.Date)
	t, _ := time.Parse(timeLayout, key.Time)
	return d.Format(dateLayout), t.Format(timeLayout), nil
}
