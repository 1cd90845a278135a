package logic

import (
	"testing"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/model"
	"github.com/google/uuid"
)

// TestBalanceReportSinglePaid 单笔100.00已支付贡献，无提现
func TestBalanceReportSinglePaid(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "100.00")

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))
	report, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if report.GrossPaid.String() != "100" {
		t.Errorf("gross_paid: got %s, want 100", report.GrossPaid.String())
	}
	if report.PaidCount != 1 {
		t.Errorf("paid_count: got %d, want 1", report.PaidCount)
	}
	if report.FeeMaintenanceAmount.String() != "4.99" {
		t.Errorf("fee_maintenance_amount: got %s, want 4.99", report.FeeMaintenanceAmount.String())
	}
	if report.FeePerDonationTotal.String() != "0.49" {
		t.Errorf("fee_per_donation_total: got %s, want 0.49", report.FeePerDonationTotal.String())
	}
	if report.NetBeforeWithdrawals.String() != "94.52" {
		t.Errorf("net_before_withdrawals: got %s, want 94.52", report.NetBeforeWithdrawals.String())
	}
	if report.AvailableNetBeforeWithdrawFee.String() != "94.52" {
		t.Errorf("available: got %s, want 94.52", report.AvailableNetBeforeWithdrawFee.String())
	}
	// 再扣一笔4.50的提现固定费
	if report.MaxPayoutNowAfterWithdrawFee.String() != "90.02" {
		t.Errorf("max_payout_now: got %s, want 90.02", report.MaxPayoutNowAfterWithdrawFee.String())
	}
}

// TestBalanceReportIgnoresPendingAndFailed 未支付和失败的贡献不计入毛额
func TestBalanceReportIgnoresPendingAndFailed(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "100.00")
	seedPendingContribution(t, db, fundraiser.Id, "55.00", "pi_pending_1")

	failed := seedPendingContribution(t, db, fundraiser.Id, "70.00", "pi_failed_1")
	if err := db.Model(failed).Update("payment_status", model.PaymentStatusFailed).Error; err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))
	report, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.GrossPaid.String() != "100" || report.PaidCount != 1 {
		t.Errorf("gross/count: got %s/%d, want 100/1", report.GrossPaid.String(), report.PaidCount)
	}
}

// TestBalanceReportWithWithdrawals 非FAILED提现及其固定费都要扣减
func TestBalanceReportWithWithdrawals(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	statuses := []model.WithdrawalStatus{
		model.WithdrawalStatusPending,
		model.WithdrawalStatusCompleted,
		model.WithdrawalStatusFailed, // 不计
	}
	for _, s := range statuses {
		w := &model.Withdrawal{
			FundraiserId:  fundraiser.Id,
			BankAccountId: bankAccount.Id,
			Amount:        model.MustMoney("50.00"),
			Status:        s,
			RequestedAt:   time.Now(),
		}
		if err := db.Create(w).Error; err != nil {
			t.Fatalf("create withdrawal: %v", err)
		}
	}

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))
	report, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	// 500 - 24.95 - 0.49 = 474.56
	if report.NetBeforeWithdrawals.String() != "474.56" {
		t.Errorf("net_before_withdrawals: got %s, want 474.56", report.NetBeforeWithdrawals.String())
	}
	if report.WithdrawalsSumNonFailed.String() != "100" {
		t.Errorf("withdrawals_sum: got %s, want 100", report.WithdrawalsSumNonFailed.String())
	}
	if report.WithdrawalsCountNonFailed != 2 {
		t.Errorf("withdrawals_count: got %d, want 2", report.WithdrawalsCountNonFailed)
	}
	if report.WithdrawFeesTotalApplied.String() != "9" {
		t.Errorf("withdraw_fees_total: got %s, want 9", report.WithdrawFeesTotalApplied.String())
	}
	// 474.56 - 100 - 9 = 365.56
	if report.AvailableNetBeforeWithdrawFee.String() != "365.56" {
		t.Errorf("available: got %s, want 365.56", report.AvailableNetBeforeWithdrawFee.String())
	}
	if report.MaxPayoutNowAfterWithdrawFee.String() != "361.06" {
		t.Errorf("max_payout_now: got %s, want 361.06", report.MaxPayoutNowAfterWithdrawFee.String())
	}
}

// TestBalanceNeverNegative 费用超过毛额时余额归零而不是变负
func TestBalanceNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	// 0.50 的贡献：维护费0.02 + 固定费0.49 > 净额
	seedPaidContribution(t, db, fundraiser.Id, "0.50")

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))
	report, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !report.NetBeforeWithdrawals.Equal(model.Zero) {
		t.Errorf("net_before_withdrawals: got %s, want 0", report.NetBeforeWithdrawals.String())
	}
	if !report.AvailableNetBeforeWithdrawFee.Equal(model.Zero) {
		t.Errorf("available: got %s, want 0", report.AvailableNetBeforeWithdrawFee.String())
	}
	if !report.MaxPayoutNowAfterWithdrawFee.Equal(model.Zero) {
		t.Errorf("max_payout_now: got %s, want 0", report.MaxPayoutNowAfterWithdrawFee.String())
	}
}

// TestBalanceReportOwnership 报表仅所有者可见，其他人与不存在同样回答
func TestBalanceReportOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	stranger, _, _ := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "100.00")

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))

	report, err := balance.ReportForOwner(owner.Id, fundraiser.Id)
	if err != nil {
		t.Fatalf("ReportForOwner as owner: %v", err)
	}
	if report.GrossPaid.String() != "100" {
		t.Errorf("gross_paid: got %s, want 100", report.GrossPaid.String())
	}

	if _, err := balance.ReportForOwner(stranger.Id, fundraiser.Id); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("stranger: got %v, want not_found", err)
	}
	if _, err := balance.ReportForOwner(owner.Id, uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown fundraiser: got %v, want not_found", err)
	}
}

// TestBalanceEmptyFundraiser 没有任何贡献时全部为零
func TestBalanceEmptyFundraiser(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, _ := seedOwnerAndFundraiser(t, db)

	balance := NewBalanceLogic(db, NewFeePolicy(testFeeConfig))
	report, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !report.GrossPaid.Equal(model.Zero) || report.PaidCount != 0 {
		t.Errorf("expected zero report, got gross=%s count=%d", report.GrossPaid.String(), report.PaidCount)
	}
	if !report.MaxPayoutNowAfterWithdrawFee.Equal(model.Zero) {
		t.Errorf("max_payout_now: got %s, want 0", report.MaxPayoutNowAfterWithdrawFee.String())
	}
}
