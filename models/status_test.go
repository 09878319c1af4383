package models

import "testing"

func TestParseStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"Pending":    StatusPending,
		"in process": StatusInProcess,
		"in_process": StatusInProcess,
		"IN-PROCESS": StatusInProcess,
		"shipping":   StatusShipping,
		" Completed": StatusCompleted,
		"cancelled":  StatusCancelled,
		"refunded":   StatusRefunded,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = (%q,%v), want %q", in, got, err, want)
		}
	}

	if _, err := ParseStatus("delivered"); err != ErrUnknownStatus {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]OrderStatus{
		{StatusPending, StatusInProcess},
		{StatusPending, StatusCancelled},
		{StatusInProcess, StatusShipping},
		{StatusInProcess, StatusCancelled},
		{StatusShipping, StatusCompleted},
		{StatusShipping, StatusCancelled},
		{StatusCompleted, StatusRefunded},
	}
	isAllowed := func(from, to OrderStatus) bool {
		for _, a := range allowed {
			if a[0] == from && a[1] == to {
				return true
			}
		}
		return false
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if got, want := from.CanTransition(to), isAllowed(from, to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}

	if !StatusCancelled.Terminal() || !StatusRefunded.Terminal() {
		t.Fatal("cancelled and refunded must be terminal")
	}
	if StatusCompleted.Terminal() {
		t.Fatal("completed can still be refunded")
	}
}

func TestStockEffectOf(t *testing.T) {
	tests := []struct {
		name     string
		from, to OrderStatus
		deducted bool
		want     StockEffect
	}{
		{"accept deducts", StatusPending, StatusInProcess, false, StockDeduct},
		{"cancel pending holds nothing", StatusPending, StatusCancelled, false, StockNone},
		{"cancel in process restores", StatusInProcess, StatusCancelled, true, StockRestore},
		{"cancel shipping restores", StatusShipping, StatusCancelled, true, StockRestore},
		{"refund restores", StatusCompleted, StatusRefunded, true, StockRestore},
		{"ship keeps", StatusInProcess, StatusShipping, true, StockNone},
		{"complete keeps", StatusShipping, StatusCompleted, true, StockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockEffectOf(tt.from, tt.to, tt.deducted); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
