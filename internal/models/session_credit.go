package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionCredit 课时余额表
// 不变量：0 <= UsedSessions <= TotalSessions
type SessionCredit struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                           // 主键
	TenantID      uint           `gorm:"index;not null" json:"tenant_id"`                                // 租户ID
	CustomerID    uint           `gorm:"index;not null" json:"customer_id"`                              // 客户ID
	CatalogItemID uint           `gorm:"index;not null" json:"catalog_item_id"`                          // 课时包商品ID
	PackageName   string         `gorm:"type:varchar(160);not null" json:"package_name"`                 // 课时包名称快照
	TotalSessions int            `gorm:"not null;default:0" json:"total_sessions"`                       // 总课时数
	UsedSessions  int            `gorm:"not null;default:0" json:"used_sessions"`                        // 已用课时数
	Status        string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"` // 状态
	ExpiresAt     *time.Time     `gorm:"index" json:"expires_at"`                                        // 过期时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (SessionCredit) TableName() string {
	return "session_credits"
}

// Remaining 返回剩余课时数
func (c SessionCredit) Remaining() int {
	remaining := c.TotalSessions - c.UsedSessions
	if remaining < 0 {
		return 0
	}
	return remaining
}
