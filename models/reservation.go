package models

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

type Reservation struct {
	ID        uint              `gorm:"primaryKey" json:"-"`
	OrderID   string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"orderId"`
	UserID    string            `gorm:"type:varchar(64);index" json:"userId,omitempty"`
	FullName  string            `gorm:"type:varchar(255);not null" json:"fullName"`
	Phone     string            `gorm:"type:varchar(10);not null;index" json:"phone"`
	Email     string            `gorm:"type:varchar(255);not null;index" json:"email"`
	Guests    int               `gorm:"not null" json:"guests"`
	Date      string            `gorm:"column:slot_date;type:varchar(10);not null;index:idx_reservation_slot" json:"date"`
	Time      string            `gorm:"column:slot_time;type:varchar(5);not null;index:idx_reservation_slot" json:"time"`
	Tables    []string          `gorm:"type:text;not null;serializer:json" json:"tables"`
	Status    ReservationStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Version   int               `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"not null" json:"updatedAt"`
}

// ReservationClaim is one (slot, table) held by an active reservation.
// The unique index rejects a second active claim on the same table in the same slot.
type ReservationClaim struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     string `gorm:"type:varchar(64);not null;index"`
	Date        string `gorm:"column:slot_date;type:varchar(10);not null;uniqueIndex:idx_claim_slot_table,priority:1"`
	Time        string `gorm:"column:slot_time;type:varchar(5);not null;uniqueIndex:idx_claim_slot_table,priority:2"`
	TableNumber int    `gorm:"not null;uniqueIndex:idx_claim_slot_table,priority:3"`
}
