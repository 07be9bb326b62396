package service

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type posTestEnv struct {
	db        *gorm.DB
	svc       *POSService
	voucher   *VoucherService
	giftCards *GiftCardService
	credits   *SessionCreditService
	tenant    *models.Tenant
	customer  *models.Customer
	haircut   *models.CatalogItem // 服务 38.00
	spa       *models.CatalogItem // 服务 128.00
	shampoo   *models.CatalogItem // 商品 45.90
	pkg       *models.CatalogItem // 10 次课时包 1080.00
}

func setupPOSServiceTest(t *testing.T) *posTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:pos_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Customer{},
		&models.CatalogItem{},
		&models.Voucher{},
		&models.VoucherUsage{},
		&models.GiftCard{},
		&models.GiftCardTransaction{},
		&models.SessionCredit{},
		&models.SessionCreditTransaction{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.ReceiptCounter{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	tenant := models.Tenant{Name: "Test Outlet", Slug: "test", ReceiptPrefix: "NP", Currency: "MYR", Status: "active"}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("create tenant failed: %v", err)
	}
	customer := models.Customer{TenantID: tenant.ID, Name: "Tan Wei Ming", Status: "active"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	items := []models.CatalogItem{
		{TenantID: tenant.ID, SKU: "SVC-CUT", Name: "理发服务", Type: constants.CatalogItemTypeService, UnitPrice: 3800, IsActive: true},
		{TenantID: tenant.ID, SKU: "SVC-SPA", Name: "全身按摩", Type: constants.CatalogItemTypeService, UnitPrice: 12800, IsActive: true},
		{TenantID: tenant.ID, SKU: "PRD-SHAMPOO", Name: "洗发水", Type: constants.CatalogItemTypeProduct, UnitPrice: 4590, IsActive: true},
		{TenantID: tenant.ID, SKU: "PKG-SPA-10", Name: "按摩 10 次卡", Type: constants.CatalogItemTypePackage, UnitPrice: 108000, SessionCount: 10, IsActive: true},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("create catalog item failed: %v", err)
		}
	}

	voucherSvc := NewVoucherService(repository.NewVoucherRepository(db))
	giftCardSvc := NewGiftCardService(repository.NewGiftCardRepository(db))
	creditSvc := NewSessionCreditService(
		repository.NewSessionCreditRepository(db),
		repository.NewCatalogRepository(db),
	)
	posSvc := NewPOSService(
		repository.NewPOSTransactionRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewTenantRepository(db),
		voucherSvc,
		giftCardSvc,
		creditSvc,
		nil,
		"POS",
	)

	return &posTestEnv{
		db:        db,
		svc:       posSvc,
		voucher:   voucherSvc,
		giftCards: giftCardSvc,
		credits:   creditSvc,
		tenant:    &tenant,
		customer:  &customer,
		haircut:   &items[0],
		spa:       &items[1],
		shampoo:   &items[2],
		pkg:       &items[3],
	}
}

func TestCreateTransactionCashWithChange(t *testing.T) {
	env := setupPOSServiceTest(t)

	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID: env.tenant.ID,
		StaffID:  1,
		Items: []CreateTransactionItemInput{
			{CatalogItemID: env.haircut.ID, Quantity: 1},
			{CatalogItemID: env.shampoo.ID, Quantity: 2},
		},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(15000),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	wantSubtotal := models.Cents(3800 + 2*4590)
	if txn.Subtotal != wantSubtotal {
		t.Fatalf("expected subtotal %d, got %d", wantSubtotal, txn.Subtotal)
	}
	if txn.Total != wantSubtotal {
		t.Fatalf("expected total %d, got %d", wantSubtotal, txn.Total)
	}
	if txn.Change != 15000-wantSubtotal {
		t.Fatalf("expected change %d, got %d", 15000-wantSubtotal, txn.Change)
	}
	if txn.Status != constants.TransactionStatusCompleted {
		t.Fatalf("expected completed status, got %s", txn.Status)
	}
	if txn.Currency != "MYR" {
		t.Fatalf("expected MYR currency, got %s", txn.Currency)
	}
	if len(txn.Items) != 2 {
		t.Fatalf("expected 2 item snapshots, got %d", len(txn.Items))
	}

	pattern := fmt.Sprintf(`^NP-%s-000001$`, time.Now().Format("20060102"))
	if !regexp.MustCompile(pattern).MatchString(txn.ReceiptNumber) {
		t.Fatalf("unexpected receipt number %s (want %s)", txn.ReceiptNumber, pattern)
	}

	// 序号按天递增
	second, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(3800),
	})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}
	wantSecond := fmt.Sprintf("NP-%s-000002", time.Now().Format("20060102"))
	if second.ReceiptNumber != wantSecond {
		t.Fatalf("expected receipt %s, got %s", wantSecond, second.ReceiptNumber)
	}

	byReceipt, err := env.svc.GetTransactionByReceipt(env.tenant.ID, second.ReceiptNumber)
	if err != nil {
		t.Fatalf("get by receipt failed: %v", err)
	}
	if byReceipt.ID != second.ID {
		t.Fatalf("receipt lookup mismatch: got %d, want %d", byReceipt.ID, second.ID)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	env := setupPOSServiceTest(t)

	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		PaymentMethod: constants.PaymentMethodCash,
	}); !errors.Is(err, ErrTransactionEmptyItems) {
		t.Fatalf("expected ErrTransactionEmptyItems, got %v", err)
	}

	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: "bitcoin",
	}); !errors.Is(err, ErrTransactionInvalid) {
		t.Fatalf("expected ErrTransactionInvalid for unknown payment method, got %v", err)
	}

	// 现金不足
	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(1000),
	}); !errors.Is(err, ErrTenderInsufficient) {
		t.Fatalf("expected ErrTenderInsufficient, got %v", err)
	}

	// 下架商品不能售卖
	env.haircut.IsActive = false
	if err := env.db.Save(env.haircut).Error; err != nil {
		t.Fatalf("deactivate item failed: %v", err)
	}
	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(5000),
	}); !errors.Is(err, ErrItemInactive) {
		t.Fatalf("expected ErrItemInactive, got %v", err)
	}
}

func TestCreateTransactionWithVoucherRedeemsAtomically(t *testing.T) {
	env := setupPOSServiceTest(t)
	voucher, err := env.voucher.CreateVoucher(CreateVoucherInput{
		TenantID:   env.tenant.ID,
		Code:       "SAVE10",
		Name:       "九折券",
		Type:       constants.VoucherTypePercentage,
		PercentOff: 10,
		UsageLimit: 1,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	customerID := env.customer.ID
	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		CustomerID:    &customerID,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.spa.ID, Quantity: 1}},
		VoucherCode:   "SAVE10",
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(12800),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if txn.DiscountAmount != 1280 {
		t.Fatalf("expected discount 1280, got %d", txn.DiscountAmount)
	}
	if txn.Total != 12800-1280 {
		t.Fatalf("expected total %d, got %d", 12800-1280, txn.Total)
	}
	if txn.VoucherCode != "SAVE10" || txn.VoucherID == nil {
		t.Fatalf("expected voucher snapshot on transaction: %+v", txn)
	}

	var reloaded models.Voucher
	if err := env.db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}

	// 用完即止
	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.spa.ID, Quantity: 1}},
		VoucherCode:   "SAVE10",
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(12800),
	}); !errors.Is(err, ErrVoucherUsageLimit) {
		t.Fatalf("expected ErrVoucherUsageLimit, got %v", err)
	}
}

func TestCreateTransactionGiftCardPaymentAndVoidRefund(t *testing.T) {
	env := setupPOSServiceTest(t)
	card, err := env.giftCards.IssueGiftCard(IssueGiftCardInput{
		TenantID:      env.tenant.ID,
		InitialAmount: models.Cents(20000),
		IssuedBy:      1,
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.spa.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodGiftCard,
		GiftCardID:    card.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if txn.GiftCardID == nil || *txn.GiftCardID != card.ID {
		t.Fatal("expected gift card bound to transaction")
	}

	var reloaded models.GiftCard
	if err := env.db.First(&reloaded, card.ID).Error; err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if reloaded.Balance != 20000-12800 {
		t.Fatalf("expected balance %d, got %d", 20000-12800, reloaded.Balance)
	}

	// 作废退回扣款
	voided, err := env.svc.VoidTransaction(VoidTransactionInput{
		TenantID:      env.tenant.ID,
		TransactionID: txn.ID,
		StaffID:       2,
		Reason:        "客户取消",
	})
	if err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if voided.Status != constants.TransactionStatusVoided {
		t.Fatalf("expected voided status, got %s", voided.Status)
	}
	if voided.VoidReason != "客户取消" || voided.VoidedAt == nil {
		t.Fatalf("expected void metadata recorded: %+v", voided)
	}

	if err := env.db.First(&reloaded, card.ID).Error; err != nil {
		t.Fatalf("reload card failed: %v", err)
	}
	if reloaded.Balance != 20000 {
		t.Fatalf("expected balance restored to 20000, got %d", reloaded.Balance)
	}

	// 余额不足直接失败
	if _, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.pkg.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodGiftCard,
		GiftCardID:    card.ID,
	}); !errors.Is(err, ErrGiftCardInsufficient) {
		t.Fatalf("expected ErrGiftCardInsufficient, got %v", err)
	}
}

func TestCreateTransactionSessionCreditPaymentAndVoidReturn(t *testing.T) {
	env := setupPOSServiceTest(t)
	credit, err := env.credits.AssignSessionCredit(AssignSessionCreditInput{
		TenantID:      env.tenant.ID,
		CustomerID:    env.customer.ID,
		CatalogItemID: env.pkg.ID,
		StaffID:       1,
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	customerID := env.customer.ID
	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:        env.tenant.ID,
		StaffID:         1,
		CustomerID:      &customerID,
		Items:           []CreateTransactionItemInput{{CatalogItemID: env.spa.ID, Quantity: 2}},
		PaymentMethod:   constants.PaymentMethodCredit,
		SessionCreditID: credit.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var reloaded models.SessionCredit
	if err := env.db.First(&reloaded, credit.ID).Error; err != nil {
		t.Fatalf("reload credit failed: %v", err)
	}
	if reloaded.UsedSessions != 2 {
		t.Fatalf("expected 2 sessions consumed, got %d", reloaded.UsedSessions)
	}
	for _, item := range txn.Items {
		if item.ItemType == constants.CatalogItemTypeService {
			if item.SessionCreditID == nil || *item.SessionCreditID != credit.ID {
				t.Fatalf("expected service item linked to credit: %+v", item)
			}
		}
	}

	// 作废退还已核销课时
	if _, err := env.svc.VoidTransaction(VoidTransactionInput{
		TenantID:      env.tenant.ID,
		TransactionID: txn.ID,
		StaffID:       2,
		Reason:        "记错卡",
	}); err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if err := env.db.First(&reloaded, credit.ID).Error; err != nil {
		t.Fatalf("reload credit failed: %v", err)
	}
	if reloaded.UsedSessions != 0 {
		t.Fatalf("expected sessions returned, got used=%d", reloaded.UsedSessions)
	}
}

func TestCreateTransactionPackagePurchaseAssignsCredits(t *testing.T) {
	env := setupPOSServiceTest(t)

	customerID := env.customer.ID
	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		CustomerID:    &customerID,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.pkg.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(108000),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var credits []models.SessionCredit
	if err := env.db.Where("customer_id = ?", customerID).Find(&credits).Error; err != nil {
		t.Fatalf("load credits failed: %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("expected 1 credit assigned, got %d", len(credits))
	}
	if credits[0].TotalSessions != 10 {
		t.Fatalf("expected 10 sessions, got %d", credits[0].TotalSessions)
	}
	if credits[0].PackageName != env.pkg.Name {
		t.Fatalf("expected package name snapshot, got %s", credits[0].PackageName)
	}

	found := false
	for _, item := range txn.Items {
		if item.ItemType == constants.CatalogItemTypePackage && item.SessionCreditID != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("expected package item linked to assigned credit")
	}
}

func TestVoidAndRemoveTransactionStateMachine(t *testing.T) {
	env := setupPOSServiceTest(t)
	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(3800),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 未作废不能移除
	if err := env.svc.RemoveTransaction(env.tenant.ID, txn.ID, 2); !errors.Is(err, ErrTransactionNotVoided) {
		t.Fatalf("expected ErrTransactionNotVoided, got %v", err)
	}

	if _, err := env.svc.VoidTransaction(VoidTransactionInput{
		TenantID: env.tenant.ID, TransactionID: txn.ID, StaffID: 2, Reason: "测试",
	}); err != nil {
		t.Fatalf("void failed: %v", err)
	}

	// 不能重复作废
	if _, err := env.svc.VoidTransaction(VoidTransactionInput{
		TenantID: env.tenant.ID, TransactionID: txn.ID, StaffID: 2, Reason: "再来一次",
	}); !errors.Is(err, ErrTransactionAlreadyVoided) {
		t.Fatalf("expected ErrTransactionAlreadyVoided, got %v", err)
	}

	if err := env.svc.RemoveTransaction(env.tenant.ID, txn.ID, 2); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	removed, err := env.svc.GetTransaction(env.tenant.ID, txn.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if removed.Status != constants.TransactionStatusRemoved {
		t.Fatalf("expected removed status, got %s", removed.Status)
	}

	// 已移除不能再移除
	if err := env.svc.RemoveTransaction(env.tenant.ID, txn.ID, 2); !errors.Is(err, ErrTransactionRemoved) {
		t.Fatalf("expected ErrTransactionRemoved, got %v", err)
	}
}

func TestTransactionTenantScoped(t *testing.T) {
	env := setupPOSServiceTest(t)
	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCash,
		Tendered:      models.Cents(3800),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := env.svc.GetTransaction(env.tenant.ID+1, txn.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected cross-tenant get rejected, got %v", err)
	}
	if _, err := env.svc.VoidTransaction(VoidTransactionInput{
		TenantID: env.tenant.ID + 1, TransactionID: txn.ID, StaffID: 2, Reason: "x",
	}); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected cross-tenant void rejected, got %v", err)
	}
}

func TestPreviewVoucherDoesNotConsumeUsage(t *testing.T) {
	env := setupPOSServiceTest(t)
	voucher, err := env.voucher.CreateVoucher(CreateVoucherInput{
		TenantID:   env.tenant.ID,
		Code:       "TRY10",
		Name:       "试算券",
		Type:       constants.VoucherTypePercentage,
		PercentOff: 10,
		UsageLimit: 1,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	preview, err := env.svc.PreviewVoucher(env.tenant.ID, 0, "TRY10",
		[]CreateTransactionItemInput{{CatalogItemID: env.spa.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.Subtotal != 12800 || preview.Discount != 1280 || preview.Total != 12800-1280 {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	var reloaded models.Voucher
	if err := env.db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("preview must not consume usage, got used count %d", reloaded.UsedCount)
	}
}

func TestCreateTransactionElectronicPaymentMethods(t *testing.T) {
	env := setupPOSServiceTest(t)

	// 电子支付不收现金，不产生找零
	for _, method := range []string{
		constants.PaymentMethodCard,
		constants.PaymentMethodQRPay,
		constants.PaymentMethodBankTransfer,
		constants.PaymentMethodEwallet,
	} {
		txn, err := env.svc.CreateTransaction(CreateTransactionInput{
			TenantID:      env.tenant.ID,
			StaffID:       1,
			Items:         []CreateTransactionItemInput{{CatalogItemID: env.haircut.ID, Quantity: 1}},
			PaymentMethod: method,
		})
		if err != nil {
			t.Fatalf("%s: create failed: %v", method, err)
		}
		if txn.Status != constants.TransactionStatusCompleted {
			t.Fatalf("%s: expected completed, got %s", method, txn.Status)
		}
		if txn.Tendered != 0 || txn.Change != 0 {
			t.Fatalf("%s: expected no tendered/change, got %d/%d", method, txn.Tendered, txn.Change)
		}
		if txn.PaymentMethod != method {
			t.Fatalf("expected payment method %s, got %s", method, txn.PaymentMethod)
		}
	}
}

func TestCreateTransactionSellsMembershipItem(t *testing.T) {
	env := setupPOSServiceTest(t)

	membership := models.CatalogItem{
		TenantID:  env.tenant.ID,
		SKU:       "MBR-GOLD",
		Name:      "金卡会员",
		Type:      constants.CatalogItemTypeMembership,
		UnitPrice: 19900,
		IsActive:  true,
	}
	if err := env.db.Create(&membership).Error; err != nil {
		t.Fatalf("create membership item failed: %v", err)
	}

	txn, err := env.svc.CreateTransaction(CreateTransactionInput{
		TenantID:      env.tenant.ID,
		StaffID:       1,
		CustomerID:    &env.customer.ID,
		Items:         []CreateTransactionItemInput{{CatalogItemID: membership.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodQRPay,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if txn.Total != 19900 {
		t.Fatalf("expected total 19900, got %d", txn.Total)
	}
	if len(txn.Items) != 1 || txn.Items[0].ItemType != constants.CatalogItemTypeMembership {
		t.Fatalf("expected membership item snapshot, got %+v", txn.Items)
	}
}
