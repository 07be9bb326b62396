package queue

import (
	"encoding/json"

	"github.com/niaga-pos/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReceiptNotify 小票通知任务
	TaskReceiptNotify = constants.TaskTypeReceiptNotify
	// TaskStatementRefresh 报表缓存刷新任务
	TaskStatementRefresh = constants.TaskTypeStatementRefresh
	// TaskGiftCardExpire 礼品卡过期扫描任务
	TaskGiftCardExpire = constants.TaskTypeGiftCardExpire
)

// ReceiptNotifyPayload 小票通知任务载荷
type ReceiptNotifyPayload struct {
	TransactionID uint   `json:"transaction_id"`
	TenantID      uint   `json:"tenant_id"`
	ReceiptNumber string `json:"receipt_number"`
}

// StatementRefreshPayload 报表缓存刷新任务载荷
type StatementRefreshPayload struct {
	TenantID uint   `json:"tenant_id"`
	Day      string `json:"day"` // YYYY-MM-DD
}

// GiftCardExpirePayload 礼品卡过期扫描任务载荷
type GiftCardExpirePayload struct {
	TenantID uint `json:"tenant_id"` // 0 表示全部租户
}

// NewReceiptNotifyTask 创建小票通知任务
func NewReceiptNotifyTask(payload ReceiptNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptNotify, body), nil
}

// NewStatementRefreshTask 创建报表缓存刷新任务
func NewStatementRefreshTask(payload StatementRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatementRefresh, body), nil
}

// NewGiftCardExpireTask 创建礼品卡过期扫描任务
func NewGiftCardExpireTask(payload GiftCardExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardExpire, body), nil
}
