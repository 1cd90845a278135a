package logic

import (
	"testing"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/model"
	"github.com/google/uuid"
)

// TestWithdrawalRejectedOverMaxPayout 净余额94.52、固定费4.50时，95.00被拒
func TestWithdrawalRejectedOverMaxPayout(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "100.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	_, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("95.00"),
	})
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient_funds, got %v", err)
	}

	// 错误上下文携带余额快照
	appErr := err.(*apperr.Error)
	if appErr.Context["max_payout_now_after_withdraw_fee"] != 90.02 {
		t.Errorf("snapshot max_payout: got %v, want 90.02", appErr.Context["max_payout_now_after_withdraw_fee"])
	}

	var count int64
	db.Model(&model.Withdrawal{}).Count(&count)
	if count != 0 {
		t.Errorf("no withdrawal should be created, got %d", count)
	}
}

// TestWithdrawalAdmittedAndMaxPayoutDrops 90.02以内被接受，接受后max_payout至少降amount+4.50
func TestWithdrawalAdmittedAndMaxPayoutDrops(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	balance := NewBalanceLogic(db, fee)
	wl := NewWithdrawalLogic(db, fee, balance, testWithdrawConfig, testTokenConfig)

	before, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("report before: %v", err)
	}

	result, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("100.00"),
		Description:   "first payout",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Withdrawal.Status != model.WithdrawalStatusPending {
		t.Errorf("status: got %s, want PENDING", result.Withdrawal.Status)
	}
	if result.PayoutToken == "" {
		t.Error("payout token plaintext must be returned on creation")
	}
	if result.Withdrawal.PayoutTokenHash == "" || result.Withdrawal.PayoutTokenMaxViews != testTokenConfig.PayoutMaxViews {
		t.Error("payout token fields not persisted")
	}

	after, err := balance.Report(nil, fundraiser.Id)
	if err != nil {
		t.Fatalf("report after: %v", err)
	}

	drop := before.MaxPayoutNowAfterWithdrawFee.Sub(after.MaxPayoutNowAfterWithdrawFee)
	// 至少下降 amount + 一笔提现固定费
	minDrop := model.MustMoney("104.50")
	if drop.LessThan(minDrop) {
		t.Errorf("max_payout drop: got %s, want >= %s", drop.String(), minDrop.String())
	}
}

// TestWithdrawalBelowMinimum 低于最低提现额直接拒绝
func TestWithdrawalBelowMinimum(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	_, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("49.99"),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("below minimum: got %v, want validation", err)
	}
}

// TestWithdrawalOwnershipChecks 别人的活动/账户一律不可用
func TestWithdrawalOwnershipChecks(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	other, _, otherAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	// 非所有者发起
	_, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   other.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: otherAccount.Id,
		Amount:        model.MustMoney("50.00"),
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("foreign fundraiser: got %v, want not_found", err)
	}

	// 所有者用别人的银行账户
	_, err = wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: otherAccount.Id,
		Amount:        model.MustMoney("50.00"),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("foreign bank account: got %v, want validation", err)
	}
}

// TestWithdrawalAdvanceLifecycle PENDING→PROCESSING→COMPLETED，回退被拒
func TestWithdrawalAdvanceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	created, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("100.00"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created.Withdrawal.Id

	w, err := wl.Advance(owner.Id, id, model.WithdrawalStatusProcessing, nil)
	if err != nil {
		t.Fatalf("to PROCESSING: %v", err)
	}
	if w.Status != model.WithdrawalStatusProcessing {
		t.Errorf("status: got %s", w.Status)
	}

	// 回退到PENDING被拒
	_, err = wl.Advance(owner.Id, id, model.WithdrawalStatusPending, nil)
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Errorf("regression: got %v, want state_conflict", err)
	}

	w, err = wl.Advance(owner.Id, id, model.WithdrawalStatusCompleted, nil)
	if err != nil {
		t.Fatalf("to COMPLETED: %v", err)
	}
	if w.ProcessedAt == nil {
		t.Error("processed_at must be set on COMPLETED")
	}

	// 终态后再迁移被拒
	_, err = wl.Advance(owner.Id, id, model.WithdrawalStatusFailed, nil)
	if !apperr.IsKind(err, apperr.KindStateConflict) {
		t.Errorf("out of terminal: got %v, want state_conflict", err)
	}
}

// TestWithdrawalCompletedExplicitProcessedAt 显式processed_at被采纳
func TestWithdrawalCompletedExplicitProcessedAt(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	created, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("100.00"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	explicit := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	w, err := wl.Advance(owner.Id, created.Withdrawal.Id, model.WithdrawalStatusCompleted, timePtr(explicit))
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if w.ProcessedAt == nil || !w.ProcessedAt.Equal(explicit) {
		t.Errorf("processed_at: got %v, want %v", w.ProcessedAt, explicit)
	}
}

// TestInvoiceExactlyOnce 重复COMPLETED只产生一张发票
func TestInvoiceExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	created, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId:   owner.Id,
		FundraiserId:  fundraiser.Id,
		BankAccountId: bankAccount.Id,
		Amount:        model.MustMoney("100.00"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created.Withdrawal.Id

	if _, err := wl.Advance(owner.Id, id, model.WithdrawalStatusCompleted, nil); err != nil {
		t.Fatalf("first COMPLETED: %v", err)
	}
	// 同状态重复提交是幂等成功（管理端重复点击）
	if _, err := wl.Advance(owner.Id, id, model.WithdrawalStatusCompleted, nil); err != nil {
		t.Fatalf("duplicate COMPLETED: %v", err)
	}

	var invoices []model.Invoice
	if err := db.Where("withdrawal_id = ?", id).Find(&invoices).Error; err != nil {
		t.Fatalf("load invoices: %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices: got %d, want exactly 1", len(invoices))
	}
	if invoices[0].Amount.String() != "100" {
		t.Errorf("invoice amount: got %s, want 100", invoices[0].Amount.String())
	}
	if invoices[0].TaxAmount.String() != "4.5" {
		t.Errorf("invoice tax: got %s, want 4.5", invoices[0].TaxAmount.String())
	}
}

// TestListWithdrawalsScopedToOwner 列表只含自己活动下的提现
func TestListWithdrawalsScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, bankAccount := seedOwnerAndFundraiser(t, db)
	other, otherFundraiser, otherAccount := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "500.00")
	seedPaidContribution(t, db, otherFundraiser.Id, "500.00")

	fee := NewFeePolicy(testFeeConfig)
	wl := NewWithdrawalLogic(db, fee, NewBalanceLogic(db, fee), testWithdrawConfig, testTokenConfig)

	if _, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId: owner.Id, FundraiserId: fundraiser.Id, BankAccountId: bankAccount.Id,
		Amount: model.MustMoney("60.00"),
	}); err != nil {
		t.Fatalf("create mine: %v", err)
	}
	if _, err := wl.Create(CreateWithdrawalInput{
		OwnerUserId: other.Id, FundraiserId: otherFundraiser.Id, BankAccountId: otherAccount.Id,
		Amount: model.MustMoney("70.00"),
	}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	mine, err := wl.List(owner.Id)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].FundraiserId != fundraiser.Id {
		t.Errorf("list: got %d items", len(mine))
	}

	// 陌生ID得到空列表
	none, err := wl.List(uuid.New())
	if err != nil {
		t.Fatalf("List unknown: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown owner list: got %d items, want 0", len(none))
	}
}
