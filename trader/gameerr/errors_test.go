package gameerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("player %d not found", 7), KindNotFound},
		{"precondition", Precondition("insufficient funds"), KindPrecondition},
		{"conflict", Conflict("trade already in progress"), KindConflict},
		{"internal", Internal(errors.New("pq: connection reset")), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrapped", fmt.Errorf("buy: %w", Precondition("license too low")), KindPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReasonHidesInternalDetail(t *testing.T) {
	err := Internal(errors.New("pq: relation players does not exist"))
	if got := Reason(err); got != "internal error" {
		t.Errorf("Reason() = %q, want generic message", got)
	}
	if Expected(err) {
		t.Error("Internal errors must not be Expected")
	}

	pre := Precondition("need license tier 2")
	if got := Reason(pre); got != "need license tier 2" {
		t.Errorf("Reason() = %q", got)
	}
	if !Expected(pre) {
		t.Error("precondition failures are expected outcomes")
	}
}
