package logic

import (
	"testing"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/token"
	"github.com/google/uuid"
)

// TestAuditIssueAndResolve 所有者签发令牌后可换取完整台账
func TestAuditIssueAndResolve(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	seedPaidContribution(t, db, fundraiser.Id, "100.00")
	seedPaidContribution(t, db, fundraiser.Id, "50.00")
	seedPendingContribution(t, db, fundraiser.Id, "30.00", "pi_audit_pending")

	signer := token.NewAuditSigner(testTokenConfig.AuditSecret)
	al := NewAuditLogic(db, signer, testTokenConfig)

	issued, err := al.Issue(owner.Id, fundraiser.Id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Token == "" {
		t.Fatal("empty audit token")
	}

	view, err := al.ResolveView(issued.Token)
	if err != nil {
		t.Fatalf("ResolveView: %v", err)
	}
	if view.Fundraiser.Id != fundraiser.Id {
		t.Errorf("fundraiser: got %s, want %s", view.Fundraiser.Id, fundraiser.Id)
	}
	// 审计台账包含全部贡献，不分支付状态
	if len(view.Contributions) != 3 {
		t.Errorf("contributions: got %d, want 3", len(view.Contributions))
	}
}

// TestAuditIssueForeignFundraiser 非所有者得到与不存在相同的回答
func TestAuditIssueForeignFundraiser(t *testing.T) {
	db := setupTestDB(t)
	_, fundraiser, _ := seedOwnerAndFundraiser(t, db)
	other, _, _ := seedOwnerAndFundraiser(t, db)

	signer := token.NewAuditSigner(testTokenConfig.AuditSecret)
	al := NewAuditLogic(db, signer, testTokenConfig)

	if _, err := al.Issue(other.Id, fundraiser.Id); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("foreign issue: got %v, want not_found", err)
	}
	if _, err := al.Issue(uuid.New(), uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown fundraiser: got %v, want not_found", err)
	}
}

// TestAuditResolveTamperedToken 换个密钥签的令牌必须被拒
func TestAuditResolveTamperedToken(t *testing.T) {
	db := setupTestDB(t)
	owner, fundraiser, _ := seedOwnerAndFundraiser(t, db)

	forger := token.NewAuditSigner("some-other-secret")
	forged, _, err := forger.Issue(fundraiser.Id, 0)
	if err != nil {
		t.Fatalf("forge: %v", err)
	}

	signer := token.NewAuditSigner(testTokenConfig.AuditSecret)
	al := NewAuditLogic(db, signer, testTokenConfig)
	if _, err := al.Issue(owner.Id, fundraiser.Id); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := al.ResolveView(forged); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("forged token: got %v, want validation", err)
	}
	if _, err := al.ResolveView("not-a-token"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("garbage token: got %v, want validation", err)
	}
}
