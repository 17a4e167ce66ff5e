package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// maxOrderIDAttempts bounds the retries after an orderId collision.
const maxOrderIDAttempts = 3

type CreateReservationInput struct {
	UserID   string   `json:"userId"`
	FullName string   `json:"fullName" validate:"required"`
	Phone    string   `json:"phone" validate:"required,phone10"`
	Email    string   `json:"email" validate:"required,email"`
	Guests   int      `json:"guests" validate:"required,min=1,max=20"`
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string   `json:"time" validate:"required,datetime=15:04"`
	Tables   []string `json:"tables" validate:"required,min=1,dive,required,tablenumber"`
}

// UpdateReservationInput carries the fields to change; nil means unchanged.
type UpdateReservationInput struct {
	UserID   *string  `json:"userId"`
	FullName *string  `json:"fullName"`
	Phone    *string  `json:"phone"`
	Email    *string  `json:"email"`
	Guests   *int     `json:"guests"`
	Date     *string  `json:"date"`
	Time     *string  `json:"time"`
	Tables   []string `json:"tables"`
}

func (in UpdateReservationInput) empty() bool {
	return in.UserID == nil && in.FullName == nil && in.Phone == nil && in.Email == nil &&
		in.Guests == nil && in.Date == nil && in.Time == nil && in.Tables == nil
}

type ReservationService interface {
	Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, error)
	Cancel(ctx context.Context, orderID string) (*models.Reservation, error)
	Update(ctx context.Context, orderID string, changes UpdateReservationInput) (*models.Reservation, error)
	Complete(ctx context.Context, orderID string) (*models.Reservation, error)
	Get(ctx context.Context, orderID string) (*models.Reservation, error)
	List(ctx context.Context, userID string) ([]models.Reservation, error)
	ReservedTables(ctx context.Context, date, slotTime string) ([]string, error)
	CheckAvailability(ctx context.Context, date, slotTime string, tables []string, excludeOrderID string) (*Availability, error)
}

type ReservationOptions struct {
	// StrictTables rejects tables that do not exist or are under maintenance.
	StrictTables bool
	NewOrderID   OrderIDGenerator
	Notifiers    []Notifier
}

type reservationService struct {
	reservations repository.ReservationRepository
	tables       repository.TableRepository
	checker      *AvailabilityChecker
	strict       bool
	newOrderID   OrderIDGenerator
	notify       notifiers
}

func NewReservationService(reservations repository.ReservationRepository, tables repository.TableRepository, opts ReservationOptions) ReservationService {
	gen := opts.NewOrderID
	if gen == nil {
		gen = NewOrderID
	}
	return &reservationService{
		reservations: reservations,
		tables:       tables,
		checker:      NewAvailabilityChecker(reservations),
		strict:       opts.StrictTables,
		newOrderID:   gen,
		notify:       notifiers(opts.Notifiers),
	}
}

func (s *reservationService) Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	reservation, numbers, err := s.prepareCreate(input)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		reservation.OrderID = s.newOrderID()
		err = s.insert(ctx, reservation, numbers)
		if !errors.Is(err, ErrDuplicateOrderID) {
			break
		}
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": reservation.OrderID,
			"attempt":  attempt,
		}).Warn("order id collision, retrying")
		if attempt == maxOrderIDAttempts {
			return nil, &StorageError{Op: "create reservation", Err: err}
		}
		reservation.ID = 0
	}
	if err != nil {
		return nil, storageErr("create reservation", err)
	}

	s.claimTables(ctx, reservation.OrderID, numbers)

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": reservation.OrderID,
		"date":     reservation.Date,
		"time":     reservation.Time,
		"tables":   reservation.Tables,
	}).Info("reservation created")
	s.notify.emit(ctx, EventReservationCreated, reservation)

	return reservation, nil
}

func (s *reservationService) prepareCreate(input CreateReservationInput) (*models.Reservation, []int, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}

	date, slotTime, err := canonicalSlot(input.Date, input.Time)
	if err != nil {
		return nil, nil, err
	}
	tables, numbers, err := canonicalTables(input.Tables)
	if err != nil {
		return nil, nil, err
	}

	return &models.Reservation{
		UserID:   strings.TrimSpace(input.UserID),
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Guests:   input.Guests,
		Date:     date,
		Time:     slotTime,
		Tables:   tables,
		Status:   models.ReservationActive,
		Version:  1,
	}, numbers, nil
}

// insert runs the availability check, the reservation insert and the claim
// inserts in one transaction. A concurrent writer that slips past the check is
// stopped by the unique claim index.
func (s *reservationService) insert(ctx context.Context, reservation *models.Reservation, numbers []int) error {
	return s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		availability, err := s.checker.check(ctx, tx, reservation.Date, reservation.Time, numbers, "")
		if err != nil {
			return err
		}
		if !availability.Available {
			return errTablesTaken(availability.Conflicting)
		}

		if s.strict {
			if err := s.checkTablesUsable(ctx, tx, numbers); err != nil {
				return err
			}
		}

		if err := s.reservations.Create(ctx, tx, reservation); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrDuplicateOrderID
			}
			return err
		}

		if err := s.reservations.InsertClaims(ctx, tx, reservation.OrderID, reservation.Date, reservation.Time, numbers); err != nil {
			if repository.IsDuplicateKey(err) {
				return errTablesTaken(nil)
			}
			return err
		}
		return nil
	})
}

func (s *reservationService) checkTablesUsable(ctx context.Context, tx *gorm.DB, numbers []int) error {
	found, err := s.tables.FindByNumbers(ctx, tx, numbers)
	if err != nil {
		return err
	}

	byNumber := make(map[int]models.Table, len(found))
	for _, t := range found {
		byNumber[t.TableNumber] = t
	}

	var missing, blocked []int
	for _, n := range numbers {
		t, ok := byNumber[n]
		switch {
		case !ok:
			missing = append(missing, n)
		case t.Status == models.TableMaintenance:
			blocked = append(blocked, n)
		}
	}

	if len(missing) > 0 {
		return &NotFoundError{Resource: "table", Key: strings.Join(tableStrings(missing), ", ")}
	}
	if len(blocked) > 0 {
		return &ConflictError{Message: "tables under maintenance", Tables: tableStrings(blocked)}
	}
	return nil
}

func (s *reservationService) Cancel(ctx context.Context, orderID string) (*models.Reservation, error) {
	reservation, changed, err := s.finish(ctx, orderID, models.ReservationCancelled)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify.emit(ctx, EventReservationCancelled, reservation)
	}
	return reservation, nil
}

// Complete closes an active reservation after the guests have been served.
func (s *reservationService) Complete(ctx context.Context, orderID string) (*models.Reservation, error) {
	reservation, changed, err := s.finish(ctx, orderID, models.ReservationCompleted)
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify.emit(ctx, EventReservationCompleted, reservation)
	}
	return reservation, nil
}

// finish moves an active reservation to a terminal status, drops its claims and
// releases its tables. Repeating the same transition is a no-op; changed
// reports whether anything was written.
func (s *reservationService) finish(ctx context.Context, orderID string, target models.ReservationStatus) (*models.Reservation, bool, error) {
	orderID = strings.TrimSpace(orderID)
	var (
		result  *models.Reservation
		changed bool
	)

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.find(ctx, tx, orderID)
		if err != nil {
			return err
		}
		result = reservation

		if reservation.Status == target {
			return nil
		}
		if reservation.Status.Terminal() {
			return &ConflictError{Message: "cannot modify a " + string(reservation.Status) + " reservation"}
		}

		reservation.Status = target
		if err := s.reservations.UpdateVersioned(ctx, tx, reservation); err != nil {
			return versionErr(err)
		}
		if err := s.reservations.DeleteClaims(ctx, tx, orderID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, storageErr(string(target)+" reservation", err)
	}

	if changed {
		_, numbers, _ := canonicalTables(result.Tables)
		s.releaseTables(ctx, orderID, numbers)
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"status":   target,
		}).Info("reservation closed")
	}
	return result, changed, nil
}

func (s *reservationService) Update(ctx context.Context, orderID string, changes UpdateReservationInput) (*models.Reservation, error) {
	orderID = strings.TrimSpace(orderID)
	if changes.empty() {
		return nil, newValidationError("request", "has no fields to update")
	}

	var (
		result             *models.Reservation
		oldTables, newNums []int
	)

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.find(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if reservation.Status.Terminal() {
			return &ConflictError{Message: "cannot modify a " + string(reservation.Status) + " reservation"}
		}

		_, oldTables, _ = canonicalTables(reservation.Tables)

		merged := mergeChanges(reservation, changes)
		next, numbers, err := s.prepareCreate(merged)
		if err != nil {
			return err
		}
		newNums = numbers

		slotChanged := next.Date != reservation.Date || next.Time != reservation.Time
		tablesChanged := !equalInts(oldTables, numbers)

		if slotChanged || tablesChanged {
			availability, err := s.checker.check(ctx, tx, next.Date, next.Time, numbers, orderID)
			if err != nil {
				return err
			}
			if !availability.Available {
				return errTablesTaken(availability.Conflicting)
			}
			if s.strict {
				if err := s.checkTablesUsable(ctx, tx, numbers); err != nil {
					return err
				}
			}
		}

		reservation.UserID = next.UserID
		reservation.FullName = next.FullName
		reservation.Phone = next.Phone
		reservation.Email = next.Email
		reservation.Guests = next.Guests
		reservation.Date = next.Date
		reservation.Time = next.Time
		reservation.Tables = next.Tables

		if err := s.reservations.UpdateVersioned(ctx, tx, reservation); err != nil {
			return versionErr(err)
		}

		if slotChanged || tablesChanged {
			if err := s.reservations.DeleteClaims(ctx, tx, orderID); err != nil {
				return err
			}
			if err := s.reservations.InsertClaims(ctx, tx, orderID, next.Date, next.Time, numbers); err != nil {
				if repository.IsDuplicateKey(err) {
					return errTablesTaken(nil)
				}
				return err
			}
		}

		result = reservation
		return nil
	})
	if err != nil {
		return nil, storageErr("update reservation", err)
	}

	removed, added := diffInts(oldTables, newNums)
	s.releaseTables(ctx, orderID, removed)
	s.claimTables(ctx, orderID, added)

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"released": removed,
		"claimed":  added,
	}).Info("reservation updated")
	s.notify.emit(ctx, EventReservationUpdated, result)

	return result, nil
}

func mergeChanges(r *models.Reservation, c UpdateReservationInput) CreateReservationInput {
	in := CreateReservationInput{
		UserID:   r.UserID,
		FullName: r.FullName,
		Phone:    r.Phone,
		Email:    r.Email,
		Guests:   r.Guests,
		Date:     r.Date,
		Time:     r.Time,
		Tables:   r.Tables,
	}
	if c.UserID != nil {
		in.UserID = *c.UserID
	}
	if c.FullName != nil {
		in.FullName = *c.FullName
	}
	if c.Phone != nil {
		in.Phone = *c.Phone
	}
	if c.Email != nil {
		in.Email = *c.Email
	}
	if c.Guests != nil {
		in.Guests = *c.Guests
	}
	if c.Date != nil {
		in.Date = *c.Date
	}
	if c.Time != nil {
		in.Time = *c.Time
	}
	if c.Tables != nil {
		in.Tables = c.Tables
	}
	return in
}

func (s *reservationService) Get(ctx context.Context, orderID string) (*models.Reservation, error) {
	reservation, err := s.find(ctx, nil, strings.TrimSpace(orderID))
	if err != nil {
		return nil, storageErr("get reservation", err)
	}
	return reservation, nil
}

func (s *reservationService) List(ctx context.Context, userID string) ([]models.Reservation, error) {
	reservations, err := s.reservations.List(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, storageErr("list reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) ReservedTables(ctx context.Context, date, slotTime string) ([]string, error) {
	return s.checker.ReservedTables(ctx, date, slotTime)
}

func (s *reservationService) CheckAvailability(ctx context.Context, date, slotTime string, tables []string, excludeOrderID string) (*Availability, error) {
	return s.checker.Check(ctx, date, slotTime, tables, excludeOrderID)
}

func (s *reservationService) find(ctx context.Context, tx *gorm.DB, orderID string) (*models.Reservation, error) {
	if orderID == "" {
		return nil, newValidationError("orderId", "is required")
	}
	reservation, err := s.reservations.FindByOrderID(ctx, tx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "reservation", Key: orderID}
	}
	return reservation, err
}

// claimTables is the best-effort step after a commit. A failure leaves the
// table status behind the reservation store until the next reconcile.
func (s *reservationService) claimTables(ctx context.Context, orderID string, numbers []int) {
	if len(numbers) == 0 {
		return
	}
	if _, err := s.tables.Claim(ctx, numbers, orderID); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"tables":   numbers,
		}).Errorf("failed to mark tables reserved: %v", err)
		return
	}
	s.notify.emit(ctx, EventTableUpdated, map[string]interface{}{
		"tables":     tableStrings(numbers),
		"status":     models.TableReserved,
		"reservedBy": orderID,
	})
}

func (s *reservationService) releaseTables(ctx context.Context, orderID string, numbers []int) {
	if len(numbers) == 0 {
		return
	}
	if _, err := s.tables.Release(ctx, numbers, orderID); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"tables":   numbers,
		}).Errorf("failed to release tables: %v", err)
		return
	}
	s.notify.emit(ctx, EventTableUpdated, map[string]interface{}{
		"tables": tableStrings(numbers),
		"status": models.TableAvailable,
	})
}

func versionErr(err error) error {
	if errors.Is(err, repository.ErrStaleVersion) {
		return &ConflictError{Message: "reservation was modified concurrently, retry"}
	}
	return err
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// diffInts returns the values only in before and the values only in after.
func diffInts(before, after []int) (removed, added []int) {
	inAfter := make(map[int]struct{}, len(after))
	for _, n := range after {
		inAfter[n] = struct{}{}
	}
	inBefore := make(map[int]struct{}, len(before))
	for _, n := range before {
		inBefore[n] = struct{}{}
		if _, ok := inAfter[n]; !ok {
			removed = append(removed, n)
		}
	}
	for _, n := range after {
		if _, ok := inBefore[n]; !ok {
			added = append(added, n)
		}
	}
	return removed, added
}
