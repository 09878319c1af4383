package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	// ErrStale means the document changed since it was read.
	ErrStale = errors.New("modified concurrently")
)

// Shortage describes one line that could not be served from stock.
type Shortage struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError lists every short line; errors.Is matches ErrInsufficientStock.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: requested %d, only %d available", s.Name, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidInput wraps ErrInvalidInput with a reason shown to the caller.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
