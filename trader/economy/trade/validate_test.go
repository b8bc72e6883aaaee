package trade

import (
	"math"
	"testing"

	"github.com/seoultrader/server/trader/gameerr"
)

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		qty    int
		wantOK bool
	}{
		{0, false},
		{-3, false},
		{1, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		err := validateQuantity(tt.qty)
		if (err == nil) != tt.wantOK {
			t.Errorf("validateQuantity(%d) err = %v, wantOK %v", tt.qty, err, tt.wantOK)
		}
		if err != nil && gameerr.KindOf(err) != gameerr.KindPrecondition {
			t.Errorf("validateQuantity(%d) kind = %v, want precondition", tt.qty, gameerr.KindOf(err))
		}
	}
}

func TestValidateLicense(t *testing.T) {
	if err := validateLicense(2, 3); err == nil {
		t.Error("lower license should be rejected")
	}
	if err := validateLicense(3, 3); err != nil {
		t.Errorf("equal license should pass, got %v", err)
	}
	if err := validateLicense(5, 1); err != nil {
		t.Errorf("higher license should pass, got %v", err)
	}
}

func TestValidateCapacity(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		adding int
		max    int
		wantOK bool
	}{
		{"room to spare", 10, 2, 50, true},
		{"exactly full", 48, 2, 50, true},
		{"one over", 49, 2, 50, false},
		{"already full", 50, 1, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCapacity(tt.rows, tt.adding, tt.max)
			if (err == nil) != tt.wantOK {
				t.Errorf("validateCapacity(%d,%d,%d) err = %v, wantOK %v", tt.rows, tt.adding, tt.max, err, tt.wantOK)
			}
		})
	}
}

func TestValidateFunds(t *testing.T) {
	if err := validateFunds(1000, 1000); err != nil {
		t.Errorf("exact funds should pass, got %v", err)
	}
	if err := validateFunds(999, 1000); err == nil {
		t.Error("short funds should fail")
	}
}

func TestValidateDistance(t *testing.T) {
	tests := []struct {
		name   string
		dist   float64
		wantOK bool
	}{
		{"adjacent", 0.01, true},
		{"exactly at range", 0.5, true},
		{"just past range", 0.5001, false},
		{"unknown location", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDistance(tt.dist)
			if (err == nil) != tt.wantOK {
				t.Errorf("validateDistance(%v) err = %v, wantOK %v", tt.dist, err, tt.wantOK)
			}
		})
	}
}

func TestLockKeys(t *testing.T) {
	if got, want := buyLockKey(1, 2, "청자"), "1:2:청자:buy"; got != want {
		t.Errorf("buyLockKey = %q, want %q", got, want)
	}
	if got, want := sellLockKey(1, 2, 77), "1:2:77:sell"; got != want {
		t.Errorf("sellLockKey = %q, want %q", got, want)
	}
	if buyLockKey(1, 2, "청자") == sellLockKey(1, 2, 77) {
		t.Error("buy and sell keys must never collide")
	}
}

func TestExpFormulas(t *testing.T) {
	tests := []struct {
		total    int64
		wantBuy  int64
		wantSell int64
	}{
		{0, 5, 8},
		{799, 5, 8},
		{800, 5, 9},
		{999, 5, 9},
		{1000, 6, 9},
		{7150, 12, 16},
	}
	for _, tt := range tests {
		if got := buyExp(tt.total); got != tt.wantBuy {
			t.Errorf("buyExp(%d) = %d, want %d", tt.total, got, tt.wantBuy)
		}
		if got := sellExp(tt.total); got != tt.wantSell {
			t.Errorf("sellExp(%d) = %d, want %d", tt.total, got, tt.wantSell)
		}
	}
}
