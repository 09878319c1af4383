package models

import (
	"fmt"
	"time"
)

// ExpectStatus fails with ErrInvalidTransition when o is no longer in
// status want. An empty want accepts any status.
func ExpectStatus(o Order, want OrderStatus) error {
	if want == "" || o.Status == want {
		return nil
	}
	return fmt.Errorf("%w: order is %s, no longer %s", ErrInvalidTransition, o.Status, want)
}

// ApplyTransition moves o to status to, appends the history entry and flips
// StockDeducted according to the returned effect. The caller must persist
// the order and the stock change together.
func ApplyTransition(o *Order, to OrderStatus, by string, now time.Time) (StockEffect, error) {
	from := o.Status
	if !from.CanTransition(to) {
		return StockNone, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	effect := StockEffectOf(from, to, o.StockDeducted)
	switch effect {
	case StockDeduct:
		o.StockDeducted = true
	case StockRestore:
		o.StockDeducted = false
	}

	o.Status = to
	o.UpdatedAt = now
	o.StatusHistory = append(o.StatusHistory, StatusChange{From: from, To: to, By: by, At: now})
	return effect, nil
}
