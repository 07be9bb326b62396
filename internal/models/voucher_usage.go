package models

import (
	"time"

	"gorm.io/gorm"
)

// VoucherUsage 优惠券使用记录
type VoucherUsage struct {
	ID            uint           `gorm:"primarykey" json:"id"`                     // 主键
	TenantID      uint           `gorm:"index;not null" json:"tenant_id"`          // 租户ID
	VoucherID     uint           `gorm:"index;not null" json:"voucher_id"`         // 优惠券ID
	CustomerID    uint           `gorm:"index;not null" json:"customer_id"`        // 客户ID（散客为 0）
	TransactionID uint           `gorm:"index;not null" json:"transaction_id"`     // 交易ID
	Discount      Cents          `gorm:"not null;default:0" json:"discount"`       // 实际优惠金额（分）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (VoucherUsage) TableName() string {
	return "voucher_usages"
}
