package logic

import (
	"testing"
	"time"

	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// testFeeConfig 测试用费率，与生产默认一致
var testFeeConfig = config.FeeConfig{
	MaintenancePercent: 4.99,
	PerDonation:        0.49,
	WithdrawalFixed:    4.50,
}

var testWithdrawConfig = config.WithdrawConfig{
	MinAmount:             50.00,
	MinContributionAmount: 20.00,
}

var testTokenConfig = config.TokenConfig{
	AuditSecret:    "test-audit-secret",
	AuditTTLHours:  168,
	PayoutExpHours: 48,
	PayoutMaxViews: 3,
}

// setupTestDB 内存sqlite，每个测试独立一库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Fundraiser{},
		&model.Contribution{},
		&model.BankAccount{},
		&model.Withdrawal{},
		&model.Invoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedOwnerAndFundraiser 创建所有者、募捐活动和默认银行账户
func seedOwnerAndFundraiser(t *testing.T, db *gorm.DB) (*model.User, *model.Fundraiser, *model.BankAccount) {
	t.Helper()

	owner := &model.User{Name: "Owner", Email: uuid.NewString() + "@example.com"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	fundraiser := &model.Fundraiser{
		OwnerUserId:   owner.Id,
		Title:         "Test Fundraiser",
		GoalAmount:    model.MustMoney("10000.00"),
		CurrentAmount: model.Zero,
		Status:        model.FundraiserStatusActive,
		PublicSlug:    uuid.NewString(),
	}
	if err := db.Create(fundraiser).Error; err != nil {
		t.Fatalf("create fundraiser: %v", err)
	}

	bankAccount := &model.BankAccount{
		OwnerUserId:       owner.Id,
		BankCode:          "001",
		BankName:          "Banco Teste",
		Agency:            "1234",
		AccountNumber:     "56789-0",
		AccountType:       model.AccountTypeChecking,
		AccountHolderName: "Owner",
		DocumentNumber:    "123.456.789-00",
	}
	if err := db.Create(bankAccount).Error; err != nil {
		t.Fatalf("create bank account: %v", err)
	}

	return owner, fundraiser, bankAccount
}

// seedPaidContribution 直接落一笔已支付贡献并同步活动累计金额
func seedPaidContribution(t *testing.T, db *gorm.DB, fundraiserId uuid.UUID, amount string) *model.Contribution {
	t.Helper()

	c := &model.Contribution{
		FundraiserId:    fundraiserId,
		Amount:          model.MustMoney(amount),
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentIntentId: "pi_" + uuid.NewString(),
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create paid contribution: %v", err)
	}
	if err := db.Model(&model.Fundraiser{}).
		Where("id = ?", fundraiserId).
		Update("current_amount", gorm.Expr("current_amount + ?", c.Amount)).Error; err != nil {
		t.Fatalf("bump current_amount: %v", err)
	}
	return c
}

// seedPendingContribution 落一笔待支付贡献
func seedPendingContribution(t *testing.T, db *gorm.DB, fundraiserId uuid.UUID, amount, intentId string) *model.Contribution {
	t.Helper()

	c := &model.Contribution{
		FundraiserId:    fundraiserId,
		Amount:          model.MustMoney(amount),
		PaymentStatus:   model.PaymentStatusPending,
		PaymentIntentId: intentId,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create pending contribution: %v", err)
	}
	return c
}

// currentAmount 读活动当前累计金额
func currentAmount(t *testing.T, db *gorm.DB, fundraiserId uuid.UUID) model.Money {
	t.Helper()

	var f model.Fundraiser
	if err := db.First(&f, "id = ?", fundraiserId).Error; err != nil {
		t.Fatalf("load fundraiser: %v", err)
	}
	return f.CurrentAmount
}

// timePtr 便捷指针
func timePtr(ts time.Time) *time.Time {
	return &ts
}
