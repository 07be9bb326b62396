package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/provider"
	"github.com/niaga-pos/internal/queue"
	"github.com/niaga-pos/internal/repository"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReceiptNotify, c.handleReceiptNotify)
	mux.HandleFunc(queue.TaskStatementRefresh, c.handleStatementRefresh)
	mux.HandleFunc(queue.TaskGiftCardExpire, c.handleGiftCardExpire)
}

func (c *Consumer) handleReceiptNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReceiptNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransactionID == 0 {
		logger.Debugw("worker_receipt_notify_skip_invalid_payload", "transaction_id", payload.TransactionID)
		return nil
	}
	txn, err := c.POSRepo.GetByID(payload.TransactionID)
	if err != nil {
		logger.Warnw("worker_receipt_notify_fetch_failed", "transaction_id", payload.TransactionID, "error", err)
		return err
	}
	if txn == nil {
		logger.Debugw("worker_receipt_notify_skip_not_found", "transaction_id", payload.TransactionID)
		return nil
	}

	// 小票输出到结构化日志，对接打印/推送渠道时在此扩展
	logger.Infow("worker_receipt_notify_rendered",
		"transaction_id", txn.ID,
		"receipt_number", txn.ReceiptNumber,
		"receipt", buildReceiptText(txn),
	)
	return nil
}

func (c *Consumer) handleStatementRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_statement_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatementRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_statement_refresh_unmarshal_failed", "error", err)
		return err
	}
	if payload.TenantID == 0 || payload.Day == "" {
		logger.Debugw("worker_statement_refresh_skip_invalid_payload", "tenant_id", payload.TenantID, "day", payload.Day)
		return nil
	}
	if err := c.StatementService.RefreshDailySummary(ctx, payload.TenantID, payload.Day); err != nil {
		logger.Warnw("worker_statement_refresh_failed", "tenant_id", payload.TenantID, "day", payload.Day, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleGiftCardExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_expire_unmarshal_failed", "error", err)
		return err
	}

	now := time.Now()
	expired := 0
	for {
		// 标记过期后不再命中 active 过滤，每轮都扫第一页
		cards, _, err := c.GiftCardRepo.List(repository.GiftCardListFilter{
			Page:          1,
			PageSize:      constants.MaxPageSize,
			TenantID:      payload.TenantID,
			Status:        constants.GiftCardStatusActive,
			ExpiresBefore: &now,
		})
		if err != nil {
			logger.Warnw("worker_gift_card_expire_list_failed", "tenant_id", payload.TenantID, "error", err)
			return err
		}
		if len(cards) == 0 {
			break
		}
		marked := 0
		for _, card := range cards {
			if _, err := c.GiftCardService.ExpireGiftCard(card.TenantID, card.ID, "到期自动过期"); err != nil {
				logger.Warnw("worker_gift_card_expire_mark_failed", "gift_card_id", card.ID, "error", err)
				continue
			}
			marked++
		}
		expired += marked
		if marked == 0 {
			break
		}
	}

	if expired > 0 {
		logger.Infow("worker_gift_card_expire_done", "tenant_id", payload.TenantID, "expired", expired)
	}
	return nil
}

// buildReceiptText 渲染小票文本
func buildReceiptText(txn *models.POSTransaction) string {
	if txn == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", txn.ReceiptNumber)
	for _, item := range txn.Items {
		fmt.Fprintf(&b, "%s x%d %s\n", item.ItemName, item.Quantity, item.LineTotal.String())
	}
	fmt.Fprintf(&b, "小计 %s\n", txn.Subtotal.String())
	if txn.DiscountAmount > 0 {
		fmt.Fprintf(&b, "折扣 -%s", txn.DiscountAmount.String())
		if txn.VoucherCode != "" {
			fmt.Fprintf(&b, " (%s)", txn.VoucherCode)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "合计 %s %s\n", txn.Currency, txn.Total.String())
	fmt.Fprintf(&b, "支付方式 %s", txn.PaymentMethod)
	if txn.PaymentMethod == constants.PaymentMethodCash && txn.Tendered > 0 {
		fmt.Fprintf(&b, " 实收 %s 找零 %s", txn.Tendered.String(), txn.Change.String())
	}
	b.WriteString("\n")
	return strings.TrimRight(b.String(), "\n")
}
