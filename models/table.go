package models

import "time"

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableReserved    TableStatus = "reserved"
	TableMaintenance TableStatus = "maintenance"
)

// Valid reports whether s is one of the known table statuses.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableReserved, TableMaintenance:
		return true
	}
	return false
}

// Position is the floor-plan coordinate used by the dashboard.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Table struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber int         `gorm:"uniqueIndex;not null" json:"tableNumber"`
	Capacity    int         `gorm:"not null" json:"capacity"`
	Status      TableStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	ReservedBy  *string     `gorm:"type:varchar(64);index" json:"reservedBy"`
	Position    Position    `gorm:"embedded;embeddedPrefix:position_" json:"position"`
	CreatedAt   time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updatedAt"`
}
