package model

import "testing"

func TestWithdrawalStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to WithdrawalStatus
		allowed  bool
	}{
		{WithdrawalStatusPending, WithdrawalStatusProcessing, true},
		{WithdrawalStatusPending, WithdrawalStatusCompleted, true},
		{WithdrawalStatusPending, WithdrawalStatusFailed, true},
		{WithdrawalStatusProcessing, WithdrawalStatusCompleted, true},
		{WithdrawalStatusProcessing, WithdrawalStatusFailed, true},
		// 同状态幂等
		{WithdrawalStatusPending, WithdrawalStatusPending, true},
		{WithdrawalStatusCompleted, WithdrawalStatusCompleted, true},
		{WithdrawalStatusFailed, WithdrawalStatusFailed, true},
		// 回退被拒
		{WithdrawalStatusProcessing, WithdrawalStatusPending, false},
		{WithdrawalStatusCompleted, WithdrawalStatusPending, false},
		// 终态冻结
		{WithdrawalStatusCompleted, WithdrawalStatusFailed, false},
		{WithdrawalStatusFailed, WithdrawalStatusPending, false},
		{WithdrawalStatusFailed, WithdrawalStatusCompleted, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestWithdrawalStatusValid(t *testing.T) {
	for _, s := range []WithdrawalStatus{
		WithdrawalStatusPending, WithdrawalStatusProcessing,
		WithdrawalStatusCompleted, WithdrawalStatusFailed,
	} {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}
	if WithdrawalStatus("CANCELLED").Valid() {
		t.Error("unknown status must be invalid")
	}
}

func TestWithdrawalStatusTerminal(t *testing.T) {
	if WithdrawalStatusPending.IsTerminal() || WithdrawalStatusProcessing.IsTerminal() {
		t.Error("PENDING/PROCESSING are not terminal")
	}
	if !WithdrawalStatusCompleted.IsTerminal() || !WithdrawalStatusFailed.IsTerminal() {
		t.Error("COMPLETED/FAILED are terminal")
	}
}
