//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.POSTransactionItem{},
		&models.POSTransaction{},
		&models.ReceiptCounter{},
		&models.CatalogItem{},
		&models.Customer{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.CatalogItem{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.ReceiptCounter{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCaseInsensitiveCatalogSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	catalogRepo := NewCatalogRepository(db)
	item := &models.CatalogItem{
		TenantID:  1,
		SKU:       "PG-YOGA-01",
		Name:      "Yoga Mat Premium",
		Type:      constants.CatalogItemTypeProduct,
		UnitPrice: 8900,
		IsActive:  true,
	}
	if err := catalogRepo.Create(item); err != nil {
		t.Fatalf("create catalog item failed: %v", err)
	}

	rows, total, err := catalogRepo.List(CatalogItemListFilter{
		Page:     1,
		PageSize: 10,
		TenantID: 1,
		Search:   "yoga mat",
	})
	if err != nil {
		t.Fatalf("catalog list search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("catalog ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresDailyRevenueDayExpr(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	txnRepo := NewPOSTransactionRepository(db)
	txn := &models.POSTransaction{
		TenantID:      1,
		ReceiptNumber: "POS-20260901-000001",
		StaffID:       1,
		Status:        constants.TransactionStatusCompleted,
		Currency:      "MYR",
		Subtotal:      10000,
		Total:         10000,
		PaymentMethod: constants.PaymentMethodCash,
	}
	if err := txnRepo.Create(txn); err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}

	stmtRepo := NewStatementRepository(db)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	rows, err := stmtRepo.GetDailyRevenue(1, start, end)
	if err != nil {
		t.Fatalf("daily revenue failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Revenue != 10000 {
		t.Fatalf("daily revenue want single row of 10000 got %+v", rows)
	}
}

func TestPostgresReceiptSeqMonotonic(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	txnRepo := NewPOSTransactionRepository(db)
	day := time.Now().Format("20060102")

	var first, second int64
	if err := txnRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		first, err = txnRepo.WithTx(tx).NextReceiptSeq(1, day)
		return err
	}); err != nil {
		t.Fatalf("first seq failed: %v", err)
	}
	if err := txnRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		second, err = txnRepo.WithTx(tx).NextReceiptSeq(1, day)
		return err
	}); err != nil {
		t.Fatalf("second seq failed: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("receipt seq want 1,2 got %d,%d", first, second)
	}
}
