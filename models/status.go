package models

import (
	"errors"
	"strings"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusInProcess OrderStatus = "In Process"
	StatusShipping  OrderStatus = "Shipping"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
	StatusRefunded  OrderStatus = "Refunded"
)

var ErrUnknownStatus = errors.New("unknown order status")

// AllStatuses is in workflow order.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusInProcess,
	StatusShipping,
	StatusCompleted,
	StatusCancelled,
	StatusRefunded,
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusInProcess, StatusCancelled},
	StatusInProcess: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusRefunded},
}

// ParseStatus accepts the display form ("In Process") as well as
// snake/kebab/lower variants ("in_process", "in-process").
func ParseStatus(s string) (OrderStatus, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if strings.ReplaceAll(strings.ToLower(string(st)), " ", "") == norm {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Next lists the statuses reachable from s in one step.
func (s OrderStatus) Next() []OrderStatus {
	return transitions[s]
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

type StockEffect int

const (
	StockNone StockEffect = iota
	StockDeduct
	StockRestore
)

// StockEffectOf tells what a transition does to product stock. Only orders
// accepted by the shop hold stock; deducted says whether this one already does.
func StockEffectOf(from, to OrderStatus, deducted bool) StockEffect {
	switch {
	case from == StatusPending && to == StatusInProcess && !deducted:
		return StockDeduct
	case deducted && (to == StatusCancelled || to == StatusRefunded):
		return StockRestore
	default:
		return StockNone
	}
}
