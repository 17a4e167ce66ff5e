package repository

import (
	"context"

	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

type TableRepository interface {
	List(ctx context.Context, statuses []models.TableStatus) ([]models.Table, error)
	FindByNumber(ctx context.Context, number int) (*models.Table, error)
	FindByNumbers(ctx context.Context, tx *gorm.DB, numbers []int) ([]models.Table, error)
	Create(ctx context.Context, table *models.Table) error
	UpdateStatus(ctx context.Context, number int, status models.TableStatus) (*models.Table, error)
	Delete(ctx context.Context, number int) error
	Claim(ctx context.Context, numbers []int, orderID string) (int64, error)
	Release(ctx context.Context, numbers []int, orderID string) (int64, error)
	MarkReserved(ctx context.Context, tx *gorm.DB, numbers []int) error
	ReleaseUnlisted(ctx context.Context, tx *gorm.DB, numbers []int) error
	CountByStatus(ctx context.Context) (map[models.TableStatus]int64, error)
	GetDB() *gorm.DB
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *tableRepository) List(ctx context.Context, statuses []models.TableStatus) ([]models.Table, error) {
	var tables []models.Table
	q := r.db.WithContext(ctx)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).Where("table_number = ?", number).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) FindByNumbers(ctx context.Context, tx *gorm.DB, numbers []int) ([]models.Table, error) {
	var tables []models.Table
	if len(numbers) == 0 {
		return tables, nil
	}
	err := pick(r.db, tx).WithContext(ctx).
		Where("table_number IN ?", numbers).
		Order("table_number ASC").
		Find(&tables).Error
	return tables, err
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

// UpdateStatus sets the status of one table. Leaving the reserved state clears reservedBy.
func (r *tableRepository) UpdateStatus(ctx context.Context, number int, status models.TableStatus) (*models.Table, error) {
	updates := map[string]interface{}{"status": status}
	if status != models.TableReserved {
		updates["reserved_by"] = nil
	}

	table, err := r.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(table).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByNumber(ctx, number)
}

func (r *tableRepository) Delete(ctx context.Context, number int) error {
	res := r.db.WithContext(ctx).Where("table_number = ?", number).Delete(&models.Table{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Claim marks the tables reserved by orderID. Tables under maintenance are skipped.
func (r *tableRepository) Claim(ctx context.Context, numbers []int, orderID string) (int64, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("table_number IN ? AND status <> ?", numbers, models.TableMaintenance).
		Updates(map[string]interface{}{
			"status":      models.TableReserved,
			"reserved_by": orderID,
		})
	return res.RowsAffected, res.Error
}

// Release frees the tables still owned by orderID; a table claimed since by
// another reservation does not match and is left alone.
func (r *tableRepository) Release(ctx context.Context, numbers []int, orderID string) (int64, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("table_number IN ? AND reserved_by = ?", numbers, orderID).
		Updates(map[string]interface{}{
			"status":      models.TableAvailable,
			"reserved_by": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *tableRepository) MarkReserved(ctx context.Context, tx *gorm.DB, numbers []int) error {
	if len(numbers) == 0 {
		return nil
	}
	return pick(r.db, tx).WithContext(ctx).Model(&models.Table{}).
		Where("table_number IN ? AND status <> ?", numbers, models.TableMaintenance).
		Update("status", models.TableReserved).Error
}

// ReleaseUnlisted frees every reserved table whose number is not in numbers.
func (r *tableRepository) ReleaseUnlisted(ctx context.Context, tx *gorm.DB, numbers []int) error {
	q := pick(r.db, tx).WithContext(ctx).Model(&models.Table{}).
		Where("status = ?", models.TableReserved)
	if len(numbers) > 0 {
		q = q.Where("table_number NOT IN ?", numbers)
	}
	return q.Updates(map[string]interface{}{
		"status":      models.TableAvailable,
		"reserved_by": nil,
	}).Error
}

func (r *tableRepository) CountByStatus(ctx context.Context) (map[models.TableStatus]int64, error) {
	var rows []struct {
		Status models.TableStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Table{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.TableStatus]int64{
		models.TableAvailable:   0,
		models.TableReserved:    0,
		models.TableMaintenance: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
