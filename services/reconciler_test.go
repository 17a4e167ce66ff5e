package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
)

func statusSnapshot(t *testing.T, f *fixture) map[int]models.TableStatus {
	t.Helper()
	tables, err := f.tables.List(context.Background(), nil)
	require.NoError(t, err)
	snap := make(map[int]models.TableStatus, len(tables))
	for _, table := range tables {
		snap[table.TableNumber] = table.Status
	}
	return snap
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tables.UpdateStatus(ctx, 2, models.TableReserved)
	require.NoError(t, err)
	_, err = f.tables.UpdateStatus(ctx, 3, models.TableMaintenance)
	require.NoError(t, err)

	result, err := f.reconciler.Reconcile(ctx, []int{5, 1, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "5"}, result.ReservedTables)
	first := statusSnapshot(t, f)

	_, err = f.reconciler.Reconcile(ctx, []int{5, 1, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, first, statusSnapshot(t, f))

	assert.Equal(t, models.TableReserved, first[1])
	assert.Equal(t, models.TableReserved, first[5])
	assert.Equal(t, models.TableAvailable, first[2])
	assert.Equal(t, models.TableMaintenance, first[3])
	assert.Contains(t, f.events.seen(), EventTablesSynced)
}

func TestReconcileEmptySetFreesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reconciler.Reconcile(ctx, []int{4, 6})
	require.NoError(t, err)

	_, err = f.reconciler.Reconcile(ctx, nil)
	require.NoError(t, err)

	for number, status := range statusSnapshot(t, f) {
		assert.Equal(t, models.TableAvailable, status, "table %d", number)
	}
}

func TestReconcileRejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Reconcile(context.Background(), []int{1, 0})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestReconcileFromReservationsRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.service.Create(ctx, validInput("5", "6"))
	require.NoError(t, err)

	// simulate a lost post-commit update and a stale reserved table
	_, err = f.tables.UpdateStatus(ctx, 6, models.TableAvailable)
	require.NoError(t, err)
	_, err = f.tables.UpdateStatus(ctx, 12, models.TableReserved)
	require.NoError(t, err)

	result, err := f.reconciler.ReconcileFromReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "6"}, result.ReservedTables)

	snap := statusSnapshot(t, f)
	assert.Equal(t, models.TableReserved, snap[5])
	assert.Equal(t, models.TableReserved, snap[6])
	assert.Equal(t, models.TableAvailable, snap[12])

	_, err = f.service.Cancel(ctx, r.OrderID)
	require.NoError(t, err)
	result, err = f.reconciler.ReconcileFromReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.ReservedTables)
}

func TestSyncMonitorRunsAndStops(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tables.UpdateStatus(ctx, 9, models.TableReserved)
	require.NoError(t, err)

	m := NewSyncMonitor(f.reconciler, 10*time.Millisecond)
	m.Start()

	assert.Eventually(t, func() bool {
		table, err := f.tables.FindByNumber(ctx, 9)
		return err == nil && table.Status == models.TableAvailable
	}, 2*time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()
}

func TestSyncMonitorDisabled(t *testing.T) {
	m := NewSyncMonitor(nil, 0)
	m.Start()
	m.Stop()
}
