package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupGiftCardServiceTest(t *testing.T) (*GiftCardService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_card_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.GiftCard{}, &models.GiftCardTransaction{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewGiftCardService(repository.NewGiftCardRepository(db)), db
}

func giftCardTrail(t *testing.T, db *gorm.DB, cardID uint) []models.GiftCardTransaction {
	t.Helper()
	var txns []models.GiftCardTransaction
	if err := db.Where("gift_card_id = ?", cardID).Order("id asc").Find(&txns).Error; err != nil {
		t.Fatalf("load trail failed: %v", err)
	}
	return txns
}

func TestIssueGiftCardWritesTrail(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)

	card, err := svc.IssueGiftCard(IssueGiftCardInput{
		TenantID:      1,
		Code:          "gc-test-01",
		InitialAmount: models.Cents(20000),
		IssuedBy:      3,
		Note:          "开卡",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if card.Code != "GC-TEST-01" {
		t.Fatalf("expected code upper-cased, got %s", card.Code)
	}
	if card.Balance != 20000 || card.InitialAmount != 20000 {
		t.Fatalf("unexpected balance %d / initial %d", card.Balance, card.InitialAmount)
	}
	if card.Status != constants.GiftCardStatusActive {
		t.Fatalf("expected active status, got %s", card.Status)
	}

	trail := giftCardTrail(t, db, card.ID)
	if len(trail) != 1 {
		t.Fatalf("expected 1 trail entry, got %d", len(trail))
	}
	entry := trail[0]
	if entry.Type != constants.GiftCardTxnTypeIssue || entry.Direction != constants.GiftCardTxnDirectionIn {
		t.Fatalf("unexpected trail entry: %+v", entry)
	}
	if entry.BalanceBefore != 0 || entry.BalanceAfter != 20000 {
		t.Fatalf("unexpected balances: before=%d after=%d", entry.BalanceBefore, entry.BalanceAfter)
	}

	// 卡号重复
	if _, err := svc.IssueGiftCard(IssueGiftCardInput{
		TenantID:      1,
		Code:          "GC-TEST-01",
		InitialAmount: models.Cents(100),
		IssuedBy:      3,
	}); !errors.Is(err, ErrGiftCardCodeExists) {
		t.Fatalf("expected ErrGiftCardCodeExists, got %v", err)
	}
}

func TestIssueGiftCardGeneratesCode(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 5000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if card.Code == "" {
		t.Fatal("expected auto-generated code")
	}
	if card.Currency != constants.DefaultCurrency {
		t.Fatalf("expected default currency, got %s", card.Currency)
	}
}

func TestTopupGiftCardIdempotentByReference(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 10000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	input := GiftCardMutationInput{
		TenantID:  1,
		CardID:    card.ID,
		Amount:    models.Cents(5000),
		Reference: "manual:topup:abc",
		StaffID:   2,
	}
	if _, err := svc.TopupGiftCard(input); err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	// 同一参考号重复提交不重复入账
	if _, err := svc.TopupGiftCard(input); err != nil {
		t.Fatalf("repeat topup failed: %v", err)
	}

	var reloaded models.GiftCard
	if err := db.First(&reloaded, card.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Balance != 15000 {
		t.Fatalf("expected balance 15000, got %d", reloaded.Balance)
	}
	trail := giftCardTrail(t, db, card.ID)
	if len(trail) != 2 {
		t.Fatalf("expected 2 trail entries (issue + topup), got %d", len(trail))
	}
}

func TestRedeemGiftCardDepletesAndRejectsOverdraft(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 8000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{
		TenantID: 1, CardID: card.ID, Amount: 9000, Reference: "r1", StaffID: 2,
	}); !errors.Is(err, ErrGiftCardInsufficient) {
		t.Fatalf("expected ErrGiftCardInsufficient, got %v", err)
	}

	redeemed, err := svc.RedeemGiftCard(GiftCardMutationInput{
		TenantID: 1, CardID: card.ID, Amount: 8000, Reference: "r2", StaffID: 2,
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if redeemed.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", redeemed.Balance)
	}
	if redeemed.Status != constants.GiftCardStatusDepleted {
		t.Fatalf("expected depleted status, got %s", redeemed.Status)
	}

	trail := giftCardTrail(t, db, card.ID)
	last := trail[len(trail)-1]
	if last.Type != constants.GiftCardTxnTypeRedeem || last.Direction != constants.GiftCardTxnDirectionOut {
		t.Fatalf("unexpected redeem trail entry: %+v", last)
	}
	if last.BalanceBefore != 8000 || last.BalanceAfter != 0 {
		t.Fatalf("unexpected balances: before=%d after=%d", last.BalanceBefore, last.BalanceAfter)
	}
}

func TestTopupReactivatesDepletedCard(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 1000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 1000, Reference: "use", StaffID: 2}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	topped, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 500, Reference: "refill", StaffID: 2})
	if err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	if topped.Status != constants.GiftCardStatusActive {
		t.Fatalf("expected card reactivated after topup, got %s", topped.Status)
	}
	if topped.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", topped.Balance)
	}
}

func TestGiftCardStatusTransitions(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 3000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	cancelled, err := svc.CancelGiftCard(1, card.ID, 2, "客户要求冻结")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.GiftCardStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// 已停用的卡不能消费、不能充值
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 100, Reference: "x", StaffID: 2}); !errors.Is(err, ErrGiftCardNotActive) {
		t.Fatalf("expected ErrGiftCardNotActive on redeem, got %v", err)
	}
	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 100, Reference: "y", StaffID: 2}); !errors.Is(err, ErrGiftCardNotActive) {
		t.Fatalf("expected ErrGiftCardNotActive on topup, got %v", err)
	}

	reactivated, err := svc.ReactivateGiftCard(1, card.ID, 2, "解除冻结")
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if reactivated.Status != constants.GiftCardStatusActive {
		t.Fatalf("expected active, got %s", reactivated.Status)
	}

	// 只有已停用的卡可以恢复
	if _, err := svc.ReactivateGiftCard(1, card.ID, 2, ""); !errors.Is(err, ErrGiftCardNotCancelled) {
		t.Fatalf("expected ErrGiftCardNotCancelled, got %v", err)
	}

	removed, err := svc.RemoveGiftCard(1, card.ID, 2, "误开卡")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if removed.Status != constants.GiftCardStatusRemoved {
		t.Fatalf("expected removed, got %s", removed.Status)
	}
	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 100, Reference: "z", StaffID: 2}); !errors.Is(err, ErrGiftCardRemoved) {
		t.Fatalf("expected ErrGiftCardRemoved, got %v", err)
	}

	// 状态流转全部留痕
	trail := giftCardTrail(t, db, card.ID)
	types := make([]string, 0, len(trail))
	for _, entry := range trail {
		types = append(types, entry.Type)
	}
	want := []string{
		constants.GiftCardTxnTypeIssue,
		constants.GiftCardTxnTypeCancel,
		constants.GiftCardTxnTypeReactivate,
		constants.GiftCardTxnTypeRemove,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d trail entries, got %d (%v)", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("trail mismatch at %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestGiftCardTenantScoped(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 3000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.GetGiftCard(2, card.ID); !errors.Is(err, ErrGiftCardNotFound) {
		t.Fatalf("expected cross-tenant get rejected, got %v", err)
	}
	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 2, CardID: card.ID, Amount: 100, Reference: "t", StaffID: 2}); !errors.Is(err, ErrGiftCardNotFound) {
		t.Fatalf("expected cross-tenant topup rejected, got %v", err)
	}
}

func TestRedeemRejectsExpiredCard(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	past := time.Now().Add(-time.Hour)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 3000, IssuedBy: 1, ExpiresAt: &past})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 100, Reference: "x", StaffID: 2}); !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired, got %v", err)
	}
}

func TestGiftCardRefundRestoresBalance(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 10000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 4000, Reference: "pay", StaffID: 2}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.RefundInTx(tx, 1, card.ID, 4000, "pay:refund", nil, 2, "作废退款")
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	var reloaded models.GiftCard
	if err := db.First(&reloaded, card.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Balance != 10000 {
		t.Fatalf("expected balance restored to 10000, got %d", reloaded.Balance)
	}
}

func TestIssueGiftCardRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	if _, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 0, IssuedBy: 1}); !errors.Is(err, ErrGiftCardInvalid) {
		t.Fatalf("expected ErrGiftCardInvalid for zero amount, got %v", err)
	}
	if _, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: -100, IssuedBy: 1}); !errors.Is(err, ErrGiftCardInvalid) {
		t.Fatalf("expected ErrGiftCardInvalid for negative amount, got %v", err)
	}
}

func TestTopupRejectsExpiredCardAndFlipsStatus(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	past := time.Now().Add(-24 * time.Hour)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 1000, IssuedBy: 1, ExpiresAt: &past})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 500, Reference: "top", StaffID: 2}); !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired on topup, got %v", err)
	}

	// 惰性翻转：被拒绝的同时状态落库为 expired
	got, err := svc.GetGiftCard(1, card.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.GiftCardStatusExpired {
		t.Fatalf("expected expired status, got %s", got.Status)
	}
	if got.Balance != 1000 {
		t.Fatalf("expired topup must not change balance, got %d", got.Balance)
	}

	// 已标记过期的卡再次充值仍被拒绝
	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 500, Reference: "top2", StaffID: 2}); !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired on second topup, got %v", err)
	}
}

func TestReactivateRejectsZeroBalanceCard(t *testing.T) {
	svc, _ := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 2000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 2000, Reference: "drain", StaffID: 2}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := svc.CancelGiftCard(1, card.ID, 2, "清零后冻结"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.ReactivateGiftCard(1, card.ID, 2, ""); !errors.Is(err, ErrGiftCardNoBalance) {
		t.Fatalf("expected ErrGiftCardNoBalance, got %v", err)
	}
	got, err := svc.GetGiftCard(1, card.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.GiftCardStatusCancelled {
		t.Fatalf("failed reactivate must keep cancelled status, got %s", got.Status)
	}
}

func TestExpireGiftCardTransition(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	past := time.Now().Add(-time.Hour)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 3000, IssuedBy: 1, ExpiresAt: &past})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	expired, err := svc.ExpireGiftCard(1, card.ID, "到期自动过期")
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired.Status != constants.GiftCardStatusExpired {
		t.Fatalf("expected expired, got %s", expired.Status)
	}
	if expired.Balance != 3000 {
		t.Fatalf("expire must keep balance, got %d", expired.Balance)
	}

	// 重复标记与充值均被拒绝
	if _, err := svc.ExpireGiftCard(1, card.ID, ""); !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired on repeat, got %v", err)
	}
	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 100, Reference: "t", StaffID: 2}); !errors.Is(err, ErrGiftCardExpired) {
		t.Fatalf("expected ErrGiftCardExpired on topup, got %v", err)
	}

	trail := giftCardTrail(t, db, card.ID)
	if len(trail) != 2 || trail[1].Type != constants.GiftCardTxnTypeExpire {
		t.Fatalf("expected expire trail entry, got %+v", trail)
	}
}

func TestGiftCardLedgerReplayReconciles(t *testing.T) {
	svc, db := setupGiftCardServiceTest(t)
	card, err := svc.IssueGiftCard(IssueGiftCardInput{TenantID: 1, InitialAmount: 10000, IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.TopupGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 3000, Reference: "r1", StaffID: 2}); err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 4000, Reference: "r2", StaffID: 2}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := svc.RedeemGiftCard(GiftCardMutationInput{TenantID: 1, CardID: card.ID, Amount: 2500, Reference: "r3", StaffID: 2}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.RefundInTx(tx, 1, card.ID, 1500, "r4", nil, 2, "作废退款")
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if _, err := svc.CancelGiftCard(1, card.ID, 2, "留痕但不动余额"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	got, err := svc.GetGiftCard(1, card.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// 从零重放全部流水必须复原当前余额，且前后余额首尾相接
	trail := giftCardTrail(t, db, card.ID)
	var replayed models.Cents
	for i, entry := range trail {
		if entry.BalanceBefore != replayed {
			t.Fatalf("trail %d: balance_before %d does not chain from %d", i, entry.BalanceBefore, replayed)
		}
		switch entry.Direction {
		case constants.GiftCardTxnDirectionIn:
			replayed += entry.Amount
		case constants.GiftCardTxnDirectionOut:
			replayed -= entry.Amount
		default:
			t.Fatalf("trail %d: unknown direction %s", i, entry.Direction)
		}
		if entry.BalanceAfter != replayed {
			t.Fatalf("trail %d: balance_after %d, replayed %d", i, entry.BalanceAfter, replayed)
		}
	}
	if replayed != got.Balance {
		t.Fatalf("replayed balance %d != current balance %d", replayed, got.Balance)
	}
	if got.Balance != 8000 {
		t.Fatalf("expected balance 8000, got %d", got.Balance)
	}
}
