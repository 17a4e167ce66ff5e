package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/repository"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// SyncResult is what a reconcile pass settled on.
type SyncResult struct {
	ReservedTables []string `json:"reservedTables"`
}

// Reconciler forces table statuses to agree with a set of reserved table numbers.
type Reconciler struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	notify       notifiers
}

func NewReconciler(tables repository.TableRepository, reservations repository.ReservationRepository, ns ...Notifier) *Reconciler {
	return &Reconciler{
		tables:       tables,
		reservations: reservations,
		notify:       notifiers(ns),
	}
}

// Reconcile marks the listed tables reserved and frees every other reserved
// table. Tables under maintenance keep their status. Running it twice with the
// same input leaves the same state.
func (r *Reconciler) Reconcile(ctx context.Context, reserved []int) (*SyncResult, error) {
	seen := make(map[int]struct{}, len(reserved))
	numbers := make([]int, 0, len(reserved))
	for _, n := range reserved {
		if n <= 0 {
			return nil, newValidationError("reservedTableNumbers", "must contain positive integers")
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}

	err := r.tables.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.tables.MarkReserved(ctx, tx, numbers); err != nil {
			return err
		}
		return r.tables.ReleaseUnlisted(ctx, tx, numbers)
	})
	if err != nil {
		return nil, storageErr("reconcile tables", err)
	}

	result := &SyncResult{ReservedTables: tableStrings(sortedInts(numbers))}
	utils.InfoLogger.WithFields(logrus.Fields{
		"reserved": len(numbers),
	}).Info("table statuses reconciled")
	r.notify.emit(ctx, EventTablesSynced, result)

	return result, nil
}

// ReconcileFromReservations derives the reserved set from the claims of active
// reservations across every slot.
func (r *Reconciler) ReconcileFromReservations(ctx context.Context) (*SyncResult, error) {
	claimed, err := r.reservations.AllClaimedTables(ctx)
	if err != nil {
		return nil, storageErr("load claimed tables", err)
	}
	return r.Reconcile(ctx, claimed)
}

const reconcileTimeout = 30 * time.Second

// SyncMonitor runs ReconcileFromReservations on a fixed interval.
type SyncMonitor struct {
	reconciler *Reconciler
	interval   time.Duration
	stopChan   chan struct{}
	done       chan struct{}
	once       sync.Once
}

func NewSyncMonitor(reconciler *Reconciler, interval time.Duration) *SyncMonitor {
	return &SyncMonitor{
		reconciler: reconciler,
		interval:   interval,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the loop. A non-positive interval disables it.
func (m *SyncMonitor) Start() {
	if m.interval <= 0 {
		close(m.done)
		return
	}

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.runOnce()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a pass in flight to finish.
func (m *SyncMonitor) Stop() {
	m.once.Do(func() {
		close(m.stopChan)
	})
	<-m.done
}

func (m *SyncMonitor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if _, err := m.reconciler.ReconcileFromReservations(ctx); err != nil {
		utils.ErrorLogger.Errorf("periodic reconcile failed: %v", err)
	}
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
