package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database per test with the
// default floor plan seeded.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.InitDB(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = database.SeedTables(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) Notify(_ context.Context, event string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fixture struct {
	db           *gorm.DB
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	service      ReservationService
	reconciler   *Reconciler
	events       *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{
		db:           db,
		tables:       repository.NewTableRepository(db),
		reservations: repository.NewReservationRepository(db),
		events:       &recordingNotifier{},
	}
	f.service = NewReservationService(f.reservations, f.tables, ReservationOptions{
		StrictTables: true,
		Notifiers:    []Notifier{f.events},
	})
	f.reconciler = NewReconciler(f.tables, f.reservations, f.events)
	return f
}

func (f *fixture) table(t *testing.T, number int) *models.Table {
	t.Helper()
	table, err := f.tables.FindByNumber(context.Background(), number)
	require.NoError(t, err)
	return table
}

func validInput(tables ...string) CreateReservationInput {
	return CreateReservationInput{
		FullName: "Ayu Lestari",
		Phone:    "0812345678",
		Email:    "ayu@example.com",
		Guests:   4,
		Date:     "2024-06-01",
		Time:     "19:00",
		Tables:   tables,
	}
}
