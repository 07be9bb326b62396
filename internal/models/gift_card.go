package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftCard 礼品卡
type GiftCard struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                            // 主键
	TenantID      uint           `gorm:"uniqueIndex:idx_gift_cards_tenant_code;not null" json:"tenant_id"` // 租户ID
	Code          string         `gorm:"type:varchar(80);uniqueIndex:idx_gift_cards_tenant_code;not null" json:"code"` // 卡号
	CustomerID    *uint          `gorm:"index" json:"customer_id,omitempty"`                              // 持卡客户ID
	InitialAmount Cents          `gorm:"not null;default:0" json:"initial_amount"`                        // 初始面额（分）
	Balance       Cents          `gorm:"not null;default:0" json:"balance"`                               // 当前余额（分）
	Currency      string         `gorm:"type:varchar(16);not null;default:'MYR'" json:"currency"`         // 币种
	Status        string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`  // 状态
	ExpiresAt     *time.Time     `gorm:"index" json:"expires_at"`                                         // 过期时间
	IssuedBy      uint           `gorm:"index;not null" json:"issued_by"`                                 // 发卡员工ID
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}
