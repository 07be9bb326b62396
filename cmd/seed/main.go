package main

import (
	"fmt"
	"time"

	"github.com/niaga-pos/internal/config"
	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认租户 + 店主账号
	tenant, err := models.InitDefaultTenant()
	if err != nil {
		stdLog.Fatalf("Failed to init default tenant: %v", err)
	}
	if err := models.InitDefaultOwner("", ""); err != nil {
		stdLog.Fatalf("Failed to init default owner: %v", err)
	}

	// 演示员工（店长 + 收银员），默认密码仅供本地调试
	staffSeeds := []struct {
		Username    string
		DisplayName string
		Role        string
		Password    string
	}{
		{Username: "manager", DisplayName: "Ah Hock", Role: constants.StaffRoleManager, Password: "manager123"},
		{Username: "cashier", DisplayName: "Mei Ling", Role: constants.StaffRoleCashier, Password: "cashier123"},
	}
	for _, seed := range staffSeeds {
		var existing models.Staff
		if err := models.DB.Where("username = ?", seed.Username).First(&existing).Error; err == nil {
			stdLog.Printf("Staff already exists: %s", seed.Username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password for %s: %v", seed.Username, err)
		}
		staff := models.Staff{
			TenantID:     tenant.ID,
			Username:     seed.Username,
			PasswordHash: string(hash),
			DisplayName:  seed.DisplayName,
			Role:         seed.Role,
			Status:       constants.StaffStatusActive,
		}
		if err := models.DB.Create(&staff).Error; err != nil {
			stdLog.Fatalf("Failed to create staff %s: %v", seed.Username, err)
		}
		stdLog.Printf("Created staff: %s (%s)", seed.Username, seed.Role)
	}

	var owner models.Staff
	if err := models.DB.Where("tenant_id = ? AND role = ?", tenant.ID, constants.StaffRoleOwner).
		First(&owner).Error; err != nil {
		stdLog.Fatalf("Failed to load owner staff: %v", err)
	}

	// 商品目录（服务 / 实物商品 / 课时包）
	catalogItems := []models.CatalogItem{
		{
			SKU:       "SVC-CUT",
			Name:      "理发服务",
			Type:      constants.CatalogItemTypeService,
			UnitPrice: models.NewCentsFromDecimal(decimal.NewFromFloat(38.00)),
			Tags:      models.StringArray{"service", "hair"},
		},
		{
			SKU:       "SVC-SPA-60",
			Name:      "全身按摩 60 分钟",
			Type:      constants.CatalogItemTypeService,
			UnitPrice: models.NewCentsFromDecimal(decimal.NewFromFloat(128.00)),
			Tags:      models.StringArray{"service", "spa"},
		},
		{
			SKU:       "PRD-SHAMPOO",
			Name:      "洗发水 500ml",
			Type:      constants.CatalogItemTypeProduct,
			UnitPrice: models.NewCentsFromDecimal(decimal.NewFromFloat(45.90)),
			Tags:      models.StringArray{"retail"},
		},
		{
			SKU:       "PRD-OIL",
			Name:      "精油 30ml",
			Type:      constants.CatalogItemTypeProduct,
			UnitPrice: models.NewCentsFromDecimal(decimal.NewFromFloat(69.90)),
			Tags:      models.StringArray{"retail"},
		},
		{
			SKU:          "PKG-SPA-10",
			Name:         "按摩 10 次卡",
			Type:         constants.CatalogItemTypePackage,
			UnitPrice:    models.NewCentsFromDecimal(decimal.NewFromFloat(1080.00)),
			SessionCount: 10,
			Tags:         models.StringArray{"package", "spa"},
		},
	}
	for i := range catalogItems {
		item := &catalogItems[i]
		item.TenantID = tenant.ID
		item.IsActive = true
		var existing models.CatalogItem
		if err := models.DB.Where("tenant_id = ? AND sku = ?", tenant.ID, item.SKU).
			First(&existing).Error; err == nil {
			catalogItems[i] = existing
			stdLog.Printf("Catalog item already exists: %s", item.SKU)
			continue
		}
		if err := models.DB.Create(item).Error; err != nil {
			stdLog.Fatalf("Failed to create catalog item %s: %v", item.SKU, err)
		}
		stdLog.Printf("Created catalog item: %s %s", item.SKU, item.Name)
	}

	// 演示客户
	customers := []models.Customer{
		{Name: "Tan Wei Ming", Phone: "0123456789", Email: "weiming@example.com"},
		{Name: "Siti Nurhaliza", Phone: "0198765432"},
		{Name: "Lim Jia Hui", Email: "jiahui@example.com", Notes: "老客户，偏好精油按摩"},
	}
	for i := range customers {
		cust := &customers[i]
		cust.TenantID = tenant.ID
		cust.Status = "active"
		var existing models.Customer
		if err := models.DB.Where("tenant_id = ? AND name = ?", tenant.ID, cust.Name).
			First(&existing).Error; err == nil {
			customers[i] = existing
			stdLog.Printf("Customer already exists: %s", cust.Name)
			continue
		}
		if err := models.DB.Create(cust).Error; err != nil {
			stdLog.Fatalf("Failed to create customer %s: %v", cust.Name, err)
		}
		stdLog.Printf("Created customer: %s", cust.Name)
	}

	// 演示优惠券
	endsAt := time.Now().AddDate(0, 3, 0)
	vouchers := []models.Voucher{
		{
			Code:        "WELCOME10",
			Name:        "新客九折",
			Type:        constants.VoucherTypePercentage,
			PercentOff:  10,
			MaxDiscount: models.NewCentsFromDecimal(decimal.NewFromFloat(50.00)),
			UsageLimit:  200,
			EndsAt:      &endsAt,
		},
		{
			Code:             "RM20OFF",
			Name:             "满 100 减 20",
			Type:             constants.VoucherTypeFixed,
			AmountOff:        models.NewCentsFromDecimal(decimal.NewFromFloat(20.00)),
			MinSubtotal:      models.NewCentsFromDecimal(decimal.NewFromFloat(100.00)),
			PerCustomerLimit: 1,
		},
	}
	for i := range vouchers {
		voucher := &vouchers[i]
		voucher.TenantID = tenant.ID
		voucher.IsActive = true
		var existing models.Voucher
		if err := models.DB.Where("tenant_id = ? AND code = ?", tenant.ID, voucher.Code).
			First(&existing).Error; err == nil {
			stdLog.Printf("Voucher already exists: %s", voucher.Code)
			continue
		}
		if err := models.DB.Create(voucher).Error; err != nil {
			stdLog.Fatalf("Failed to create voucher %s: %v", voucher.Code, err)
		}
		stdLog.Printf("Created voucher: %s", voucher.Code)
	}

	// 演示礼品卡（含开卡流水）
	giftCardCode := "GC-DEMO-0001"
	var existingCard models.GiftCard
	if err := models.DB.Where("tenant_id = ? AND code = ?", tenant.ID, giftCardCode).
		First(&existingCard).Error; err == nil {
		stdLog.Printf("Gift card already exists: %s", giftCardCode)
	} else {
		amount := models.NewCentsFromDecimal(decimal.NewFromFloat(200.00))
		card := models.GiftCard{
			TenantID:      tenant.ID,
			Code:          giftCardCode,
			CustomerID:    &customers[0].ID,
			InitialAmount: amount,
			Balance:       amount,
			Currency:      tenant.Currency,
			Status:        constants.GiftCardStatusActive,
			IssuedBy:      owner.ID,
		}
		err := models.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&card).Error; err != nil {
				return err
			}
			trail := models.GiftCardTransaction{
				TenantID:      tenant.ID,
				GiftCardID:    card.ID,
				Type:          constants.GiftCardTxnTypeIssue,
				Direction:     constants.GiftCardTxnDirectionIn,
				Amount:        amount,
				BalanceBefore: 0,
				BalanceAfter:  amount,
				Reference:     fmt.Sprintf("seed:gift_card:%s", giftCardCode),
				StaffID:       owner.ID,
				Note:          "演示数据",
			}
			return tx.Create(&trail).Error
		})
		if err != nil {
			stdLog.Fatalf("Failed to create gift card %s: %v", giftCardCode, err)
		}
		stdLog.Printf("Created gift card: %s balance=%s", giftCardCode, amount.String())
	}

	// 演示课时余额（含发放流水）
	var pkg models.CatalogItem
	if err := models.DB.Where("tenant_id = ? AND sku = ?", tenant.ID, "PKG-SPA-10").
		First(&pkg).Error; err != nil {
		stdLog.Fatalf("Failed to load package item: %v", err)
	}
	var existingCredit models.SessionCredit
	if err := models.DB.Where("tenant_id = ? AND customer_id = ? AND catalog_item_id = ?",
		tenant.ID, customers[2].ID, pkg.ID).First(&existingCredit).Error; err == nil {
		stdLog.Printf("Session credit already exists: customer=%d package=%s", customers[2].ID, pkg.SKU)
	} else {
		credit := models.SessionCredit{
			TenantID:      tenant.ID,
			CustomerID:    customers[2].ID,
			CatalogItemID: pkg.ID,
			PackageName:   pkg.Name,
			TotalSessions: pkg.SessionCount,
			Status:        constants.SessionCreditStatusActive,
		}
		err := models.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&credit).Error; err != nil {
				return err
			}
			trail := models.SessionCreditTransaction{
				TenantID:        tenant.ID,
				SessionCreditID: credit.ID,
				Type:            constants.CreditTxnTypeAssign,
				Delta:           credit.TotalSessions,
				UsedBefore:      0,
				UsedAfter:       0,
				Reference:       fmt.Sprintf("seed:session_credit:%d:%d", customers[2].ID, pkg.ID),
				StaffID:         owner.ID,
				Note:            "演示数据",
			}
			return tx.Create(&trail).Error
		})
		if err != nil {
			stdLog.Fatalf("Failed to create session credit: %v", err)
		}
		stdLog.Printf("Created session credit: customer=%d package=%s sessions=%d",
			customers[2].ID, pkg.SKU, credit.TotalSessions)
	}

	stdLog.Println("Seed data created successfully!")
}
