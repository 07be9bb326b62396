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

func setupVoucherServiceTest(t *testing.T) (*VoucherService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:voucher_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Voucher{}, &models.VoucherUsage{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewVoucherService(repository.NewVoucherRepository(db)), db
}

func serviceItems(prices ...models.Cents) []models.POSTransactionItem {
	items := make([]models.POSTransactionItem, 0, len(prices))
	for _, p := range prices {
		items = append(items, models.POSTransactionItem{
			ItemType:  constants.CatalogItemTypeService,
			UnitPrice: p,
			Quantity:  1,
			LineTotal: p,
		})
	}
	return items
}

func TestApplyVoucherPercentageWithCap(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:    1,
		Code:        "SAVE15",
		Name:        "限时八五折",
		Type:        constants.VoucherTypePercentage,
		PercentOff:  15,
		MaxDiscount: models.Cents(1000),
		IsActive:    true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	// 15% of 50.00 = 7.50，未触顶
	discount, got, err := svc.ApplyVoucher(1, 5000, "SAVE15", 0, nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if discount != 750 {
		t.Fatalf("expected discount 750, got %d", discount)
	}
	if got == nil || got.ID != voucher.ID {
		t.Fatal("expected voucher returned")
	}

	// 15% of 200.00 = 30.00，被封顶到 10.00
	discount, _, err = svc.ApplyVoucher(1, 20000, "SAVE15", 0, nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if discount != 1000 {
		t.Fatalf("expected capped discount 1000, got %d", discount)
	}
}

func TestApplyVoucherFixedMinSubtotal(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:    1,
		Code:        "RM20",
		Name:        "满 100 减 20",
		Type:        constants.VoucherTypeFixed,
		AmountOff:   models.Cents(2000),
		MinSubtotal: models.Cents(10000),
		IsActive:    true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	if _, _, err := svc.ApplyVoucher(1, 9999, "RM20", 0, nil); !errors.Is(err, ErrVoucherMinSubtotal) {
		t.Fatalf("expected ErrVoucherMinSubtotal, got %v", err)
	}

	discount, _, err := svc.ApplyVoucher(1, 10000, "RM20", 0, nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if discount != 2000 {
		t.Fatalf("expected discount 2000, got %d", discount)
	}
}

func TestApplyVoucherFixedNeverExceedsSubtotal(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:  1,
		Code:      "BIG",
		Name:      "大额立减",
		Type:      constants.VoucherTypeFixed,
		AmountOff: models.Cents(5000),
		IsActive:  true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	discount, _, err := svc.ApplyVoucher(1, 3000, "BIG", 0, nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if discount != 3000 {
		t.Fatalf("expected discount clamped to subtotal 3000, got %d", discount)
	}
}

func TestApplyVoucherFreeSessionPicksMostExpensiveService(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID: 1,
		Code:     "FREECLASS",
		Name:     "免费体验课",
		Type:     constants.VoucherTypeFreeSession,
		IsActive: true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	items := serviceItems(3800, 12800)
	items = append(items, models.POSTransactionItem{
		ItemType:  constants.CatalogItemTypeProduct,
		UnitPrice: 99900,
		Quantity:  1,
		LineTotal: 99900,
	})
	discount, _, err := svc.ApplyVoucher(1, 116500, "FREECLASS", 0, items)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if discount != 12800 {
		t.Fatalf("expected discount 12800 (most expensive service), got %d", discount)
	}

	// 没有服务项目时不可用
	productOnly := []models.POSTransactionItem{{
		ItemType:  constants.CatalogItemTypeProduct,
		UnitPrice: 4590,
		Quantity:  1,
		LineTotal: 4590,
	}}
	if _, _, err := svc.ApplyVoucher(1, 4590, "FREECLASS", 0, productOnly); !errors.Is(err, ErrVoucherNoSession) {
		t.Fatalf("expected ErrVoucherNoSession, got %v", err)
	}
}

func TestApplyVoucherLifecycleChecks(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	vouchers := []models.Voucher{
		{TenantID: 1, Code: "OFF", Name: "未启用", Type: constants.VoucherTypeFixed, AmountOff: 100, IsActive: false},
		{TenantID: 1, Code: "SOON", Name: "未生效", Type: constants.VoucherTypeFixed, AmountOff: 100, IsActive: true, StartsAt: &future},
		{TenantID: 1, Code: "GONE", Name: "已过期", Type: constants.VoucherTypeFixed, AmountOff: 100, IsActive: true, EndsAt: &past},
		{TenantID: 1, Code: "FULL", Name: "用完", Type: constants.VoucherTypeFixed, AmountOff: 100, IsActive: true, UsageLimit: 3, UsedCount: 3},
	}
	for i := range vouchers {
		if err := db.Create(&vouchers[i]).Error; err != nil {
			t.Fatalf("create voucher failed: %v", err)
		}
	}

	cases := []struct {
		code string
		want error
	}{
		{"OFF", ErrVoucherNotFound},
		{"SOON", ErrVoucherNotStarted},
		{"GONE", ErrVoucherExpired},
		{"FULL", ErrVoucherUsageLimit},
		{"NOPE", ErrVoucherNotFound},
	}
	for _, tc := range cases {
		if _, _, err := svc.ApplyVoucher(1, 10000, tc.code, 0, nil); !errors.Is(err, tc.want) {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}
}

func TestApplyVoucherTenantScoped(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:  2,
		Code:      "OTHER",
		Name:      "别家的券",
		Type:      constants.VoucherTypeFixed,
		AmountOff: 100,
		IsActive:  true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	if _, _, err := svc.ApplyVoucher(1, 10000, "OTHER", 0, nil); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound across tenants, got %v", err)
	}
}

func TestRedeemAndReleaseVoucher(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:   1,
		Code:       "ONCE",
		Name:       "仅一次",
		Type:       constants.VoucherTypeFixed,
		AmountOff:  500,
		UsageLimit: 1,
		IsActive:   true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RedeemInTx(tx, &voucher, 7, 100, 500)
	})
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	var reloaded models.Voucher
	if err := db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}

	var usageCount int64
	if err := db.Model(&models.VoucherUsage{}).Where("voucher_id = ?", voucher.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected 1 usage record, got %d", usageCount)
	}

	// 上限已满，再次核销必须失败
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.RedeemInTx(tx, &reloaded, 8, 101, 500)
	})
	if !errors.Is(err, ErrVoucherUsageLimit) {
		t.Fatalf("expected ErrVoucherUsageLimit, got %v", err)
	}

	// 作废回退后可再次核销
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.ReleaseInTx(tx, voucher.ID)
	})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload voucher failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("expected used count back to 0, got %d", reloaded.UsedCount)
	}
}

func TestApplyVoucherPerCustomerLimit(t *testing.T) {
	svc, db := setupVoucherServiceTest(t)
	voucher := models.Voucher{
		TenantID:         1,
		Code:             "EACH1",
		Name:             "每人一次",
		Type:             constants.VoucherTypeFixed,
		AmountOff:        500,
		PerCustomerLimit: 1,
		IsActive:         true,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("create voucher failed: %v", err)
	}
	usage := models.VoucherUsage{
		TenantID:      1,
		VoucherID:     voucher.ID,
		CustomerID:    42,
		TransactionID: 1,
		Discount:      500,
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, _, err := svc.ApplyVoucher(1, 10000, "EACH1", 42, nil); !errors.Is(err, ErrVoucherPerCustomer) {
		t.Fatalf("expected ErrVoucherPerCustomer, got %v", err)
	}
	// 其他客户不受影响
	if _, _, err := svc.ApplyVoucher(1, 10000, "EACH1", 43, nil); err != nil {
		t.Fatalf("apply for another customer failed: %v", err)
	}
}

func TestCreateVoucherValidation(t *testing.T) {
	svc, _ := setupVoucherServiceTest(t)

	if _, err := svc.CreateVoucher(CreateVoucherInput{TenantID: 1, Code: "X", Name: "坏类型", Type: "bogus"}); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for unknown type, got %v", err)
	}
	if _, err := svc.CreateVoucher(CreateVoucherInput{TenantID: 1, Code: "X", Name: "超范围", Type: constants.VoucherTypePercentage, PercentOff: 120}); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for percent > 100, got %v", err)
	}

	created, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "welcome10",
		Name:       "新客九折",
		Type:       constants.VoucherTypePercentage,
		PercentOff: 10,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Code != "WELCOME10" {
		t.Fatalf("expected code normalized to upper case, got %s", created.Code)
	}

	if _, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "WELCOME10",
		Name:       "重复",
		Type:       constants.VoucherTypePercentage,
		PercentOff: 10,
	}); !errors.Is(err, ErrVoucherCodeExists) {
		t.Fatalf("expected ErrVoucherCodeExists, got %v", err)
	}
}

func TestVoucherTenantScopedAccess(t *testing.T) {
	svc, _ := setupVoucherServiceTest(t)
	created, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "MINE",
		Name:       "本店券",
		Type:       constants.VoucherTypeFixed,
		AmountOff:  100,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetVoucher(2, created.ID); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected cross-tenant get rejected, got %v", err)
	}
	if err := svc.DeleteVoucher(2, created.ID); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected cross-tenant delete rejected, got %v", err)
	}
	if _, err := svc.GetVoucher(1, created.ID); err != nil {
		t.Fatalf("same-tenant get failed: %v", err)
	}
}

func TestCreateVoucherSource(t *testing.T) {
	svc, _ := setupVoucherServiceTest(t)

	// 缺省来源是 internal
	defaulted, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "HOUSE10",
		Name:       "内部九折",
		Type:       constants.VoucherTypePercentage,
		PercentOff: 10,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if defaulted.Source != constants.VoucherSourceInternal {
		t.Fatalf("expected internal source, got %s", defaulted.Source)
	}

	partner, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "GRAB20",
		Name:       "渠道券",
		Type:       constants.VoucherTypeFixed,
		AmountOff:  2000,
		Source:     constants.VoucherSourcePartner,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if partner.Source != constants.VoucherSourcePartner {
		t.Fatalf("expected partner source, got %s", partner.Source)
	}

	if _, err := svc.CreateVoucher(CreateVoucherInput{
		TenantID:   1,
		Code:       "BAD",
		Name:       "坏来源",
		Type:       constants.VoucherTypeFixed,
		AmountOff:  500,
		Source:     "affiliate",
	}); !errors.Is(err, ErrVoucherInvalid) {
		t.Fatalf("expected ErrVoucherInvalid for unknown source, got %v", err)
	}
}
