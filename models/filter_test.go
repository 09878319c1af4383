package models

import (
	"math"
	"testing"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        Page
		wantPage  int
		wantLimit int
		wantSkip  int64
	}{
		{"zero value", Page{}, 1, DefaultPageLimit, 0},
		{"negative", Page{Page: -3, Limit: -1}, 1, DefaultPageLimit, 0},
		{"limit capped", Page{Page: 2, Limit: 1000}, 2, MaxPageLimit, MaxPageLimit},
		{"huge page", Page{Page: math.MaxInt, Limit: MaxPageLimit}, MaxPage, MaxPageLimit, int64(MaxPage-1) * MaxPageLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("Normalize() = %+v", got)
			}
			if skip := got.Skip(); skip != tc.wantSkip || skip < 0 {
				t.Fatalf("Skip() = %d, want %d", skip, tc.wantSkip)
			}
		})
	}
}
