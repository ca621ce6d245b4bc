package seqex

import (
	"errors"
	"testing"
)

func TestQuantifierResolve(t *testing.T) {
	tests := []struct {
		name     string
		min, max any
		length   int
		wantMin  int
		wantMax  int
		wantOK   bool
	}{
		{"literal", 2, 5, 10, 2, 5, true},
		{"literal max clamped to length", 0, 50, 10, 0, 10, true},
		{"literal min beyond length", 11, 20, 10, 0, 0, false},
		{"percent of length-1", "25%", "75%", 9, 2, 6, true},
		{"percent full range", 1, "100%", 9, 1, 8, true},
		{"percent floors", "33%", "66%", 10, 2, 5, true},
		{"negative from end", -3, -1, 10, 7, 9, true},
		{"negative min clamps to zero", -20, 5, 10, 0, 5, true},
		{"negative max below zero fails", 0, -20, 10, 0, 0, false},
		{"max below min fails", 5, 2, 10, 0, 0, false},
		{"zero length zero min", 0, 0, 0, 0, 0, true},
		{"zero length positive min", 1, 3, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := newQuantifier(tt.min, tt.max)
			if err != nil {
				t.Fatalf("newQuantifier(%v, %v) error: %v", tt.min, tt.max, err)
			}
			minSz, maxSz, ok := q.resolve(tt.length)
			if ok != tt.wantOK {
				t.Fatalf("resolve(%d) ok = %v, want %v", tt.length, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if minSz != tt.wantMin || maxSz != tt.wantMax {
				t.Errorf("resolve(%d) = (%d, %d), want (%d, %d)",
					tt.length, minSz, maxSz, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestParseBoundErrors(t *testing.T) {
	tests := []struct {
		name string
		spec any
	}{
		{"bare string", "50"},
		{"garbage percentage", "abc%"},
		{"negative percentage", "-10%"},
		{"float", 1.5},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBound(tt.spec)
			if err == nil {
				t.Fatalf("parseBound(%v) succeeded, want error", tt.spec)
			}
			if !errors.Is(err, ErrMalformedQuantifier) {
				t.Errorf("parseBound(%v) error = %v, want ErrMalformedQuantifier", tt.spec, err)
			}
		})
	}
}

func TestPositionResolve(t *testing.T) {
	tests := []struct {
		name   string
		pos    func() (*Position, error)
		length int
		hold   []int
		fail   []int
		wantOK bool
	}{
		{
			name:   "exact literal",
			pos:    func() (*Position, error) { return At(3) },
			length: 5,
			hold:   []int{3},
			fail:   []int{0, 2, 4, 5},
			wantOK: true,
		},
		{
			name:   "percent resolves against length not length-1",
			pos:    func() (*Position, error) { return At("100%") },
			length: 5,
			hold:   []int{5},
			fail:   []int{0, 4},
			wantOK: true,
		},
		{
			name:   "negative from end",
			pos:    func() (*Position, error) { return At(-2) },
			length: 10,
			hold:   []int{8},
			fail:   []int{7, 9},
			wantOK: true,
		},
		{
			name:   "range",
			pos:    func() (*Position, error) { return Between(2, "50%") },
			length: 10,
			hold:   []int{2, 3, 5},
			fail:   []int{1, 6},
			wantOK: true,
		},
		{
			name:   "exact beyond length is unmatchable",
			pos:    func() (*Position, error) { return At(7) },
			length: 5,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := tt.pos()
			if err != nil {
				t.Fatalf("position spec error: %v", err)
			}
			check, ok := pos.check(tt.length)
			if ok != tt.wantOK {
				t.Fatalf("check(%d) ok = %v, want %v", tt.length, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			for _, p := range tt.hold {
				if !check(p) {
					t.Errorf("position %d should hold", p)
				}
			}
			for _, p := range tt.fail {
				if check(p) {
					t.Errorf("position %d should not hold", p)
				}
			}
		})
	}
}

func TestNilPositionHoldsEverywhere(t *testing.T) {
	var pos *Position
	check, ok := pos.check(4)
	if !ok {
		t.Fatal("nil position spec should always resolve")
	}
	for p := 0; p <= 4; p++ {
		if !check(p) {
			t.Errorf("position %d should hold with nil spec", p)
		}
	}
}
