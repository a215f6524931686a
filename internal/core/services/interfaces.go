package services

import (
	"context"
	"time"
)

// Views bumped after mutations. Names match the route prefixes that render them.
const (
	ViewHome         = "/"
	ViewBooks        = "/books"
	ViewMembers      = "/members"
	ViewTransactions = "/transactions"
	ViewReports      = "/reports"
)

// ViewInvalidator marks rendered views as stale after a mutation
type ViewInvalidator interface {
	Invalidate(views ...string)
}

// ReminderLog remembers when a reminder was last sent for a transaction
type ReminderLog interface {
	Record(ctx context.Context, transactionID uint, at time.Time) error
	LastSent(ctx context.Context, transactionID uint) (time.Time, bool, error)
}

type noopViews struct{}

func (noopViews) Invalidate(...string) {}

func viewsOrNoop(v ViewInvalidator) ViewInvalidator {
	if v == nil {
		return noopViews{}
	}
	return v
}
