package repository

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Reservation, error)
	List(ctx context.Context, userID string) ([]models.Reservation, error)
	UpdateVersioned(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	InsertClaims(ctx context.Context, tx *gorm.DB, orderID, date, slotTime string, numbers []int) error
	DeleteClaims(ctx context.Context, tx *gorm.DB, orderID string) error
	ClaimedTables(ctx context.Context, tx *gorm.DB, date, slotTime string, numbers []int, excludeOrderID string) ([]int, error)
	AllClaimedTables(ctx context.Context) ([]int, error)
	CountByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return pick(r.db, tx).WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := pick(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// List returns reservations newest first, optionally only those of userID.
func (r *reservationRepository) List(ctx context.Context, userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// UpdateVersioned writes every mutable column of reservation if its stored
// version still equals reservation.Version, then bumps the version.
func (r *reservationRepository) UpdateVersioned(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	prev := reservation.Version
	reservation.Version = prev + 1
	reservation.UpdatedAt = time.Now()

	res := pick(r.db, tx).WithContext(ctx).
		Model(reservation).
		Where("version = ?", prev).
		Select("UserID", "FullName", "Phone", "Email", "Guests", "Date", "Time", "Tables", "Status", "Version", "UpdatedAt").
		Updates(reservation)
	if res.Error != nil {
		reservation.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		reservation.Version = prev
		return ErrStaleVersion
	}
	return nil
}

func (r *reservationRepository) InsertClaims(ctx context.Context, tx *gorm.DB, orderID, date, slotTime string, numbers []int) error {
	if len(numbers) == 0 {
		return nil
	}
	claims := make([]models.ReservationClaim, 0, len(numbers))
	for _, n := range numbers {
		claims = append(claims, models.ReservationClaim{
			OrderID:     orderID,
			Date:        date,
			Time:        slotTime,
			TableNumber: n,
		})
	}
	return pick(r.db, tx).WithContext(ctx).Create(&claims).Error
}

func (r *reservationRepository) DeleteClaims(ctx context.Context, tx *gorm.DB, orderID string) error {
	return pick(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.ReservationClaim{}).Error
}

// ClaimedTables returns the distinct table numbers held by active reservations in
// the slot. A nil numbers slice means every table; excludeOrderID, when set, skips
// that reservation's own claims.
func (r *reservationRepository) ClaimedTables(ctx context.Context, tx *gorm.DB, date, slotTime string, numbers []int, excludeOrderID string) ([]int, error) {
	q := pick(r.db, tx).WithContext(ctx).Model(&models.ReservationClaim{}).
		Where("slot_date = ? AND slot_time = ?", date, slotTime)
	if numbers != nil {
		if len(numbers) == 0 {
			return []int{}, nil
		}
		q = q.Where("table_number IN ?", numbers)
	}
	if excludeOrderID != "" {
		q = q.Where("order_id <> ?", excludeOrderID)
	}

	var claimed []int
	if err := q.Distinct().Order("table_number ASC").Pluck("table_number", &claimed).Error; err != nil {
		return nil, err
	}
	return claimed, nil
}

// AllClaimedTables returns every table number held by any active reservation, in any slot.
func (r *reservationRepository) AllClaimedTables(ctx context.Context) ([]int, error) {
	var claimed []int
	err := r.db.WithContext(ctx).Model(&models.ReservationClaim{}).
		Distinct().
		Order("table_number ASC").
		Pluck("table_number", &claimed).Error
	return claimed, err
}

func (r *reservationRepository) CountByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	var rows []struct {
		Status models.ReservationStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.ReservationStatus]int64{
		models.ReservationActive:    0,
		models.ReservationCancelled: 0,
		models.ReservationCompleted: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
