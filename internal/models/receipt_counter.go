package models

import "time"

// ReceiptCounter 小票单号计数器（按租户按天递增）
type ReceiptCounter struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                 // 主键
	TenantID  uint      `gorm:"uniqueIndex:idx_receipt_counters_tenant_day;not null" json:"tenant_id"` // 租户ID
	Day       string    `gorm:"type:varchar(8);uniqueIndex:idx_receipt_counters_tenant_day;not null" json:"day"` // 日期（YYYYMMDD）
	Seq       int64     `gorm:"not null;default:0" json:"seq"`                                        // 当日序号
	UpdatedAt time.Time `json:"updated_at"`                                                           // 更新时间
}

// TableName 指定表名
func (ReceiptCounter) TableName() string {
	return "receipt_counters"
}
