package repository

import (
	"fmt"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"

	"gorm.io/gorm"
)

// StatementRepository 报表聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type StatementRepository interface {
	GetTotals(tenantID uint, startAt, endAt time.Time) (StatementTotalsRow, error)
	GetPaymentMethodBreakdown(tenantID uint, startAt, endAt time.Time) ([]StatementPaymentMethodRow, error)
	GetTopItems(tenantID uint, startAt, endAt time.Time, limit int) ([]StatementTopItemRow, error)
	GetItemTypeBreakdown(tenantID uint, startAt, endAt time.Time) ([]StatementItemTypeRow, error)
	ListTransactions(tenantID uint, startAt, endAt time.Time) ([]models.POSTransaction, error)
	GetDailyRevenue(tenantID uint, startAt, endAt time.Time) ([]StatementDailyRevenueRow, error)
	GetGiftCardFlows(tenantID uint, startAt, endAt time.Time) (StatementGiftCardFlowRow, error)
	GetSessionUsage(tenantID uint, startAt, endAt time.Time) (StatementSessionUsageRow, error)
}

// StatementTotalsRow 区间总览原始统计结果
type StatementTotalsRow struct {
	TransactionsTotal  int64
	TransactionsVoided int64
	Revenue            int64
	Discounts          int64
	VoidedTotal        int64
	Currency           string
}

// StatementPaymentMethodRow 支付方式细分
type StatementPaymentMethodRow struct {
	Method string
	Count  int64
	Amount int64
}

// StatementTopItemRow 商品销售排行原始行
type StatementTopItemRow struct {
	ItemName string
	SKU      string
	Quantity int64
	Amount   int64
}

// StatementItemTypeRow 按商品类型归集的销售统计
type StatementItemTypeRow struct {
	ItemType string
	Quantity int64
	Amount   int64
}

// StatementDailyRevenueRow 按天营收统计
type StatementDailyRevenueRow struct {
	Day          string
	Transactions int64
	Revenue      int64
	Discounts    int64
}

// StatementGiftCardFlowRow 礼品卡资金流向统计
type StatementGiftCardFlowRow struct {
	IssuedAmount   int64
	ToppedUpAmount int64
	RedeemedAmount int64
}

// StatementSessionUsageRow 课时消耗统计
type StatementSessionUsageRow struct {
	Assigned int64
	Consumed int64
}

// GormStatementRepository GORM 报表聚合实现
type GormStatementRepository struct {
	db *gorm.DB
}

// NewStatementRepository 创建报表仓库
func NewStatementRepository(db *gorm.DB) *GormStatementRepository {
	return &GormStatementRepository{db: db}
}

func (r *GormStatementRepository) txnBase(tenantID uint, startAt, endAt time.Time) *gorm.DB {
	return r.db.Model(&models.POSTransaction{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, startAt, endAt)
}

// GetTotals 获取区间总览统计
// 营收与优惠仅统计 completed 交易，已作废与已移除交易不计入
func (r *GormStatementRepository) GetTotals(tenantID uint, startAt, endAt time.Time) (StatementTotalsRow, error) {
	result := StatementTotalsRow{}

	if err := r.txnBase(tenantID, startAt, endAt).Count(&result.TransactionsTotal).Error; err != nil {
		return result, err
	}
	if err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusVoided).
		Count(&result.TransactionsVoided).Error; err != nil {
		return result, err
	}
	if err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusCompleted).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.Revenue).Error; err != nil {
		return result, err
	}
	if err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusCompleted).
		Select("COALESCE(SUM(discount_amount), 0)").
		Scan(&result.Discounts).Error; err != nil {
		return result, err
	}
	if err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusVoided).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.VoidedTotal).Error; err != nil {
		return result, err
	}

	_ = r.txnBase(tenantID, startAt, endAt).
		Where("currency <> ''").
		Order("id DESC").
		Limit(1).
		Pluck("currency", &result.Currency).Error

	return result, nil
}

// GetPaymentMethodBreakdown 获取支付方式细分
func (r *GormStatementRepository) GetPaymentMethodBreakdown(tenantID uint, startAt, endAt time.Time) ([]StatementPaymentMethodRow, error) {
	rows := make([]StatementPaymentMethodRow, 0)
	err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusCompleted).
		Select("payment_method as method, COUNT(*) as count, COALESCE(SUM(total), 0) as amount").
		Group("payment_method").
		Order("amount desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopItems 获取商品销售排行
func (r *GormStatementRepository) GetTopItems(tenantID uint, startAt, endAt time.Time, limit int) ([]StatementTopItemRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := make([]StatementTopItemRow, 0)
	err := r.db.Model(&models.POSTransactionItem{}).
		Joins("JOIN pos_transactions ON pos_transactions.id = pos_transaction_items.transaction_id").
		Where("pos_transactions.tenant_id = ? AND pos_transactions.created_at >= ? AND pos_transactions.created_at < ?", tenantID, startAt, endAt).
		Where("pos_transactions.status = ?", constants.TransactionStatusCompleted).
		Where("pos_transactions.deleted_at IS NULL").
		Select("pos_transaction_items.item_name as item_name, pos_transaction_items.sku as sku, SUM(pos_transaction_items.quantity) as quantity, COALESCE(SUM(pos_transaction_items.line_total), 0) as amount").
		Group("pos_transaction_items.item_name, pos_transaction_items.sku").
		Order("amount desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetItemTypeBreakdown 按商品类型归集 completed 交易的数量与金额
func (r *GormStatementRepository) GetItemTypeBreakdown(tenantID uint, startAt, endAt time.Time) ([]StatementItemTypeRow, error) {
	rows := make([]StatementItemTypeRow, 0)
	err := r.db.Model(&models.POSTransactionItem{}).
		Joins("JOIN pos_transactions ON pos_transactions.id = pos_transaction_items.transaction_id").
		Where("pos_transactions.tenant_id = ? AND pos_transactions.created_at >= ? AND pos_transactions.created_at < ?", tenantID, startAt, endAt).
		Where("pos_transactions.status = ?", constants.TransactionStatusCompleted).
		Where("pos_transactions.deleted_at IS NULL").
		Select("pos_transaction_items.item_type as item_type, SUM(pos_transaction_items.quantity) as quantity, COALESCE(SUM(pos_transaction_items.line_total), 0) as amount").
		Group("pos_transaction_items.item_type").
		Order("amount desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTransactions 列出区间内全部交易，供月度对账单明细使用
func (r *GormStatementRepository) ListTransactions(tenantID uint, startAt, endAt time.Time) ([]models.POSTransaction, error) {
	txns := make([]models.POSTransaction, 0)
	err := r.txnBase(tenantID, startAt, endAt).
		Order("created_at asc, id asc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// GetDailyRevenue 获取按天营收统计
func (r *GormStatementRepository) GetDailyRevenue(tenantID uint, startAt, endAt time.Time) ([]StatementDailyRevenueRow, error) {
	dayExpr := dayTextExpr(r.db, "created_at")
	rows := make([]StatementDailyRevenueRow, 0)
	err := r.txnBase(tenantID, startAt, endAt).
		Where("status = ?", constants.TransactionStatusCompleted).
		Select(fmt.Sprintf("%s as day, COUNT(*) as transactions, COALESCE(SUM(total), 0) as revenue, COALESCE(SUM(discount_amount), 0) as discounts", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetGiftCardFlows 获取礼品卡资金流向
func (r *GormStatementRepository) GetGiftCardFlows(tenantID uint, startAt, endAt time.Time) (StatementGiftCardFlowRow, error) {
	result := StatementGiftCardFlowRow{}

	base := func(txnType string) *gorm.DB {
		return r.db.Model(&models.GiftCardTransaction{}).
			Where("tenant_id = ? AND created_at >= ? AND created_at < ? AND type = ?", tenantID, startAt, endAt, txnType).
			Select("COALESCE(SUM(amount), 0)")
	}

	if err := base(constants.GiftCardTxnTypeIssue).Scan(&result.IssuedAmount).Error; err != nil {
		return result, err
	}
	if err := base(constants.GiftCardTxnTypeTopup).Scan(&result.ToppedUpAmount).Error; err != nil {
		return result, err
	}
	if err := base(constants.GiftCardTxnTypeRedeem).Scan(&result.RedeemedAmount).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetSessionUsage 获取课时分配与消耗统计
func (r *GormStatementRepository) GetSessionUsage(tenantID uint, startAt, endAt time.Time) (StatementSessionUsageRow, error) {
	result := StatementSessionUsageRow{}

	if err := r.db.Model(&models.SessionCreditTransaction{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ? AND type = ?", tenantID, startAt, endAt, constants.CreditTxnTypeAssign).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&result.Assigned).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.SessionCreditTransaction{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ? AND type = ?", tenantID, startAt, endAt, constants.CreditTxnTypeConsume).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&result.Consumed).Error; err != nil {
		return result, err
	}
	return result, nil
}
