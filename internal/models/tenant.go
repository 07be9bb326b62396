package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant 租户（门店）表
type Tenant struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`                  // 门店名称
	Slug          string         `gorm:"type:varchar(60);uniqueIndex;not null" json:"slug"`       // 唯一标识
	ReceiptPrefix string         `gorm:"type:varchar(12);not null;default:'POS'" json:"receipt_prefix"` // 小票单号前缀
	Currency      string         `gorm:"type:varchar(16);not null;default:'MYR'" json:"currency"` // 币种
	Status        string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"` // 状态
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}
