package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher 优惠券表
type Voucher struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                            // 主键
	TenantID         uint           `gorm:"uniqueIndex:idx_vouchers_tenant_code;not null" json:"tenant_id"`  // 租户ID
	Code             string         `gorm:"type:varchar(80);uniqueIndex:idx_vouchers_tenant_code;not null" json:"code"` // 优惠码
	Name             string         `gorm:"type:varchar(120);not null" json:"name"`                          // 名称
	Type             string         `gorm:"type:varchar(24);not null" json:"type"`                           // 类型（percentage/fixed/free_session）
	Source           string         `gorm:"type:varchar(24);not null;default:'internal'" json:"source"`      // 来源（internal/partner/public）
	PercentOff       int            `gorm:"not null;default:0" json:"percent_off"`                           // 折扣百分比（percentage 类型，1-100）
	AmountOff        Cents          `gorm:"not null;default:0" json:"amount_off"`                            // 固定优惠金额（fixed 类型，分）
	MinSubtotal      Cents          `gorm:"not null;default:0" json:"min_subtotal"`                          // 使用门槛（分，0 表示不限制）
	MaxDiscount      Cents          `gorm:"not null;default:0" json:"max_discount"`                          // 最大优惠金额（分，0 表示不限制）
	UsageLimit       int            `gorm:"not null;default:0" json:"usage_limit"`                           // 总使用上限（0 表示不限制）
	UsedCount        int            `gorm:"not null;default:0" json:"used_count"`                            // 已使用次数
	PerCustomerLimit int            `gorm:"not null;default:0" json:"per_customer_limit"`                    // 每客户使用上限（0 表示不限制）
	StartsAt         *time.Time     `gorm:"index" json:"starts_at"`                                          // 生效时间
	EndsAt           *time.Time     `gorm:"index" json:"ends_at"`                                            // 失效时间
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`                          // 是否启用
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}
