package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type CreateTableInput struct {
	TableNumber int                `json:"tableNumber" validate:"required,gt=0"`
	Capacity    int                `json:"capacity" validate:"required,oneof=2 3 4 5 6 8"`
	Status      models.TableStatus `json:"status" validate:"omitempty,oneof=available reserved maintenance"`
	Position    models.Position    `json:"position"`
}

type DashboardStats struct {
	Tables       map[models.TableStatus]int64       `json:"tables"`
	Reservations map[models.ReservationStatus]int64 `json:"reservations"`
	TotalTables  int64                              `json:"totalTables"`
}

type TableService interface {
	ListTables(ctx context.Context, statuses []models.TableStatus) ([]models.Table, error)
	CreateTable(ctx context.Context, input CreateTableInput) (*models.Table, error)
	UpdateTableStatus(ctx context.Context, tableNumber string, status models.TableStatus) (*models.Table, error)
	DeleteTable(ctx context.Context, tableNumber string) error
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type tableService struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	notify       notifiers
}

func NewTableService(tables repository.TableRepository, reservations repository.ReservationRepository, ns ...Notifier) TableService {
	return &tableService{
		tables:       tables,
		reservations: reservations,
		notify:       notifiers(ns),
	}
}

// ListTables returns tables ordered by number. An empty statuses slice means all.
func (s *tableService) ListTables(ctx context.Context, statuses []models.TableStatus) ([]models.Table, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, newValidationError("status", "must be one of available reserved maintenance")
		}
	}
	tables, err := s.tables.List(ctx, statuses)
	if err != nil {
		return nil, storageErr("list tables", err)
	}
	return tables, nil
}

func (s *tableService) CreateTable(ctx context.Context, input CreateTableInput) (*models.Table, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.TableAvailable
	}

	table := &models.Table{
		TableNumber: input.TableNumber,
		Capacity:    input.Capacity,
		Status:      input.Status,
		Position:    input.Position,
	}
	if err := s.tables.Create(ctx, table); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, &ConflictError{
				Message: "table number already exists",
				Tables:  []string{strconv.Itoa(input.TableNumber)},
			}
		}
		return nil, storageErr("create table", err)
	}

	utils.InfoLogger.Printf("New table created: %d (capacity=%d, status=%s)", table.TableNumber, table.Capacity, table.Status)
	s.notify.emit(ctx, EventTableCreated, table)
	return table, nil
}

// UpdateTableStatus is the operator override. Moving a table out of reserved
// drops its reservedBy; the next reconcile puts back any status that disagrees
// with active reservations.
func (s *tableService) UpdateTableStatus(ctx context.Context, tableNumber string, status models.TableStatus) (*models.Table, error) {
	n, err := parseTableNumber(tableNumber)
	if err != nil {
		return nil, newValidationError("tableNumber", "must be a positive integer")
	}
	if !status.Valid() {
		return nil, newValidationError("status", "must be one of available reserved maintenance")
	}

	table, err := s.tables.UpdateStatus(ctx, n, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "table", Key: strconv.Itoa(n)}
	}
	if err != nil {
		return nil, storageErr("update table status", err)
	}

	utils.InfoLogger.Printf("Table %d status changed to %s", table.TableNumber, table.Status)
	s.notify.emit(ctx, EventTableUpdated, table)
	return table, nil
}

func (s *tableService) DeleteTable(ctx context.Context, tableNumber string) error {
	n, err := parseTableNumber(tableNumber)
	if err != nil {
		return newValidationError("tableNumber", "must be a positive integer")
	}

	err = s.tables.Delete(ctx, n)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "table", Key: strconv.Itoa(n)}
	}
	if err != nil {
		return storageErr("delete table", err)
	}

	utils.InfoLogger.Printf("Table %d deleted", n)
	s.notify.emit(ctx, EventTableDeleted, map[string]interface{}{"tableNumber": n})
	return nil
}

func (s *tableService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	tables, err := s.tables.CountByStatus(ctx)
	if err != nil {
		return nil, storageErr("count tables", err)
	}
	reservations, err := s.reservations.CountByStatus(ctx)
	if err != nil {
		return nil, storageErr("count reservations", err)
	}

	var total int64
	for _, n := range tables {
		total += n
	}
	return &DashboardStats{
		Tables:       tables,
		Reservations: reservations,
		TotalTables:  total,
	}, nil
}

// ParseStatuses splits a comma separated status filter such as "available,reserved".
func ParseStatuses(raw string) []models.TableStatus {
	var out []models.TableStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, models.TableStatus(part))
		}
	}
	return out
}
