package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff 员工表
type Staff struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                             // 主键
	TenantID           uint           `gorm:"index;not null" json:"tenant_id"`                                  // 租户ID
	Username           string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`           // 登录账号
	PasswordHash       string         `gorm:"not null" json:"-"`                                                // 密码哈希（不返回给前端）
	DisplayName        string         `gorm:"type:varchar(120)" json:"display_name"`                            // 显示名称
	Role               string         `gorm:"type:varchar(24);index;not null;default:'cashier'" json:"role"`    // 角色（owner/manager/cashier）
	Status             string         `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`   // 状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                                      // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                                   // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                                    // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staffs"
}
