package service

import (
	"context"
	"fmt"
	"time"

	"github.com/niaga-pos/internal/cache"
	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
)

// StatementService 报表聚合服务
// 汇总只统计已完成的交易，作废单计入作废笔数但不计入营收
type StatementService struct {
	statementRepo repository.StatementRepository
	cacheTTL      time.Duration
}

// NewStatementService 创建报表聚合服务
func NewStatementService(statementRepo repository.StatementRepository, cacheTTLSeconds int) *StatementService {
	ttl := time.Duration(cacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatementService{statementRepo: statementRepo, cacheTTL: ttl}
}

// PaymentMethodSummary 支付方式汇总
type PaymentMethodSummary struct {
	Method string       `json:"method"`
	Count  int64        `json:"count"`
	Amount models.Cents `json:"amount"`
}

// ItemTypeSummary 按商品类型归集的销售汇总
type ItemTypeSummary struct {
	ItemType string       `json:"item_type"`
	Quantity int64        `json:"quantity"`
	Amount   models.Cents `json:"amount"`
}

// TopItemSummary 商品销售排行
type TopItemSummary struct {
	ItemName string       `json:"item_name"`
	SKU      string       `json:"sku"`
	Quantity int64        `json:"quantity"`
	Amount   models.Cents `json:"amount"`
}

// DailySummary 单日汇总
type DailySummary struct {
	TenantID           uint                   `json:"tenant_id"`
	Day                string                 `json:"day"` // YYYY-MM-DD
	Currency           string                 `json:"currency"`
	TransactionsTotal  int64                  `json:"transactions_total"`
	TransactionsVoided int64                  `json:"transactions_voided"`
	VoidedTotal        models.Cents           `json:"voided_total"`
	GrossRevenue       models.Cents           `json:"gross_revenue"`
	Discounts          models.Cents           `json:"discounts"`
	PaymentMethods     []PaymentMethodSummary `json:"payment_methods"`
	ItemTypes          []ItemTypeSummary      `json:"item_types"`
	TopItems           []TopItemSummary       `json:"top_items"`
	GiftCardIssued     models.Cents           `json:"gift_card_issued"`
	GiftCardToppedUp   models.Cents           `json:"gift_card_topped_up"`
	GiftCardRedeemed   models.Cents           `json:"gift_card_redeemed"`
	SessionsAssigned   int64                  `json:"sessions_assigned"`
	SessionsConsumed   int64                  `json:"sessions_consumed"`
	GeneratedAt        time.Time              `json:"generated_at"`
}

// DailyRevenueLine 月报中的按天营收行
type DailyRevenueLine struct {
	Day          string       `json:"day"`
	Transactions int64        `json:"transactions"`
	Revenue      models.Cents `json:"revenue"`
	Discounts    models.Cents `json:"discounts"`
}

// MonthlyStatement 月度对账单
type MonthlyStatement struct {
	TenantID           uint                    `json:"tenant_id"`
	Month              string                  `json:"month"` // YYYY-MM
	Currency           string                  `json:"currency"`
	TransactionsTotal  int64                   `json:"transactions_total"`
	TransactionsVoided int64                   `json:"transactions_voided"`
	VoidedTotal        models.Cents            `json:"voided_total"`
	GrossRevenue       models.Cents            `json:"gross_revenue"`
	Discounts          models.Cents            `json:"discounts"`
	DailyRevenue       []DailyRevenueLine      `json:"daily_revenue"`
	PaymentMethods     []PaymentMethodSummary  `json:"payment_methods"`
	ItemTypes          []ItemTypeSummary       `json:"item_types"`
	TopItems           []TopItemSummary        `json:"top_items"`
	Transactions       []models.POSTransaction `json:"transactions"`
	GiftCardIssued     models.Cents            `json:"gift_card_issued"`
	GiftCardToppedUp   models.Cents            `json:"gift_card_topped_up"`
	GiftCardRedeemed   models.Cents            `json:"gift_card_redeemed"`
	SessionsAssigned   int64                   `json:"sessions_assigned"`
	SessionsConsumed   int64                   `json:"sessions_consumed"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

const statementTopItemLimit = 10

// GetDailySummary 获取某天汇总，带缓存
func (s *StatementService) GetDailySummary(ctx context.Context, tenantID uint, day string) (*DailySummary, error) {
	dayTime, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil || tenantID == 0 {
		return nil, ErrStatementInvalidRange
	}

	cacheKey := fmt.Sprintf("statement:daily:%d:%s", tenantID, day)
	if cache.Enabled() {
		var cached DailySummary
		if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	startAt := dayTime
	endAt := dayTime.AddDate(0, 0, 1)

	summary, err := s.buildDailySummary(tenantID, day, startAt, endAt)
	if err != nil {
		return nil, err
	}

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			logger.Warnw("日报缓存写入失败", "tenant_id", tenantID, "day", day, "error", err)
		}
	}
	return summary, nil
}

// RefreshDailySummary 重算某天汇总并覆盖缓存
func (s *StatementService) RefreshDailySummary(ctx context.Context, tenantID uint, day string) error {
	dayTime, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil || tenantID == 0 {
		return ErrStatementInvalidRange
	}
	summary, err := s.buildDailySummary(tenantID, day, dayTime, dayTime.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	if cache.Enabled() {
		cacheKey := fmt.Sprintf("statement:daily:%d:%s", tenantID, day)
		return cache.SetJSON(ctx, cacheKey, summary, s.cacheTTL)
	}
	return nil
}

func (s *StatementService) buildDailySummary(tenantID uint, day string, startAt, endAt time.Time) (*DailySummary, error) {
	totals, err := s.statementRepo.GetTotals(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	methods, err := s.statementRepo.GetPaymentMethodBreakdown(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	topItems, err := s.statementRepo.GetTopItems(tenantID, startAt, endAt, statementTopItemLimit)
	if err != nil {
		return nil, err
	}
	itemTypes, err := s.statementRepo.GetItemTypeBreakdown(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	giftCardFlows, err := s.statementRepo.GetGiftCardFlows(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	sessionUsage, err := s.statementRepo.GetSessionUsage(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}

	currency := totals.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &DailySummary{
		TenantID:           tenantID,
		Day:                day,
		Currency:           currency,
		TransactionsTotal:  totals.TransactionsTotal,
		TransactionsVoided: totals.TransactionsVoided,
		VoidedTotal:        models.Cents(totals.VoidedTotal),
		GrossRevenue:       models.Cents(totals.Revenue),
		Discounts:          models.Cents(totals.Discounts),
		PaymentMethods:     convertPaymentMethods(methods),
		ItemTypes:          convertItemTypes(itemTypes),
		TopItems:           convertTopItems(topItems),
		GiftCardIssued:     models.Cents(giftCardFlows.IssuedAmount),
		GiftCardToppedUp:   models.Cents(giftCardFlows.ToppedUpAmount),
		GiftCardRedeemed:   models.Cents(giftCardFlows.RedeemedAmount),
		SessionsAssigned:   sessionUsage.Assigned,
		SessionsConsumed:   sessionUsage.Consumed,
		GeneratedAt:        time.Now(),
	}, nil
}

// GetMonthlyStatement 获取月度对账单，带缓存
func (s *StatementService) GetMonthlyStatement(ctx context.Context, tenantID uint, month string) (*MonthlyStatement, error) {
	monthTime, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil || tenantID == 0 {
		return nil, ErrStatementInvalidRange
	}

	cacheKey := fmt.Sprintf("statement:monthly:%d:%s", tenantID, month)
	if cache.Enabled() {
		var cached MonthlyStatement
		if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	startAt := monthTime
	endAt := monthTime.AddDate(0, 1, 0)

	totals, err := s.statementRepo.GetTotals(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	daily, err := s.statementRepo.GetDailyRevenue(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	methods, err := s.statementRepo.GetPaymentMethodBreakdown(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	topItems, err := s.statementRepo.GetTopItems(tenantID, startAt, endAt, statementTopItemLimit)
	if err != nil {
		return nil, err
	}
	itemTypes, err := s.statementRepo.GetItemTypeBreakdown(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	transactions, err := s.statementRepo.ListTransactions(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	giftCardFlows, err := s.statementRepo.GetGiftCardFlows(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	sessionUsage, err := s.statementRepo.GetSessionUsage(tenantID, startAt, endAt)
	if err != nil {
		return nil, err
	}

	lines := make([]DailyRevenueLine, 0, len(daily))
	for _, row := range daily {
		lines = append(lines, DailyRevenueLine{
			Day:          row.Day,
			Transactions: row.Transactions,
			Revenue:      models.Cents(row.Revenue),
			Discounts:    models.Cents(row.Discounts),
		})
	}

	currency := totals.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	statement := &MonthlyStatement{
		TenantID:           tenantID,
		Month:              month,
		Currency:           currency,
		TransactionsTotal:  totals.TransactionsTotal,
		TransactionsVoided: totals.TransactionsVoided,
		VoidedTotal:        models.Cents(totals.VoidedTotal),
		GrossRevenue:       models.Cents(totals.Revenue),
		Discounts:          models.Cents(totals.Discounts),
		DailyRevenue:       lines,
		PaymentMethods:     convertPaymentMethods(methods),
		ItemTypes:          convertItemTypes(itemTypes),
		TopItems:           convertTopItems(topItems),
		Transactions:       transactions,
		GiftCardIssued:     models.Cents(giftCardFlows.IssuedAmount),
		GiftCardToppedUp:   models.Cents(giftCardFlows.ToppedUpAmount),
		GiftCardRedeemed:   models.Cents(giftCardFlows.RedeemedAmount),
		SessionsAssigned:   sessionUsage.Assigned,
		SessionsConsumed:   sessionUsage.Consumed,
		GeneratedAt:        time.Now(),
	}

	if cache.Enabled() {
		if err := cache.SetJSON(ctx, cacheKey, statement, s.cacheTTL); err != nil {
			logger.Warnw("月报缓存写入失败", "tenant_id", tenantID, "month", month, "error", err)
		}
	}
	return statement, nil
}

func convertPaymentMethods(rows []repository.StatementPaymentMethodRow) []PaymentMethodSummary {
	out := make([]PaymentMethodSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, PaymentMethodSummary{
			Method: row.Method,
			Count:  row.Count,
			Amount: models.Cents(row.Amount),
		})
	}
	return out
}

func convertItemTypes(rows []repository.StatementItemTypeRow) []ItemTypeSummary {
	out := make([]ItemTypeSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ItemTypeSummary{
			ItemType: row.ItemType,
			Quantity: row.Quantity,
			Amount:   models.Cents(row.Amount),
		})
	}
	return out
}

func convertTopItems(rows []repository.StatementTopItemRow) []TopItemSummary {
	out := make([]TopItemSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopItemSummary{
			ItemName: row.ItemName,
			SKU:      row.SKU,
			Quantity: row.Quantity,
			Amount:   models.Cents(row.Amount),
		})
	}
	return out
}
