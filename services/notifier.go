package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
	EventTableUpdated         = "table.updated"
	EventTableCreated         = "table.created"
	EventTableDeleted         = "table.deleted"
	EventTablesSynced         = "tables.synced"
)

// Notifier receives domain events after they are committed. Delivery is best
// effort: a failing notifier is logged and never fails the operation.
type Notifier interface {
	Notify(ctx context.Context, event string, data interface{}) error
}

type notifiers []Notifier

func (ns notifiers) emit(ctx context.Context, event string, data interface{}) {
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event": event,
			}).Warnf("notify failed: %v", err)
		}
	}
}
