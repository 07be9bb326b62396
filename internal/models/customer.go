package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                           // 主键
	TenantID  uint           `gorm:"index;not null" json:"tenant_id"`                                // 租户ID
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`                         // 客户姓名
	Phone     string         `gorm:"type:varchar(32);index" json:"phone,omitempty"`                  // 手机号
	Email     string         `gorm:"type:varchar(160);index" json:"email,omitempty"`                 // 邮箱
	Status    string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"` // 状态
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`                               // 备注
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
