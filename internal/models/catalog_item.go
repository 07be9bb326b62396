package models

import (
	"time"

	"gorm.io/gorm"
)

// CatalogItem 商品目录表（商品/服务/课时包）
type CatalogItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                             // 主键
	TenantID     uint           `gorm:"uniqueIndex:idx_catalog_tenant_sku;not null" json:"tenant_id"`     // 租户ID
	SKU          string         `gorm:"type:varchar(80);uniqueIndex:idx_catalog_tenant_sku;not null" json:"sku"` // 货号
	Name         string         `gorm:"type:varchar(160);not null" json:"name"`                           // 名称
	Type         string         `gorm:"type:varchar(24);index;not null;default:'product'" json:"type"`    // 类型（product/service/package/membership）
	UnitPrice    Cents          `gorm:"not null;default:0" json:"unit_price"`                             // 单价（分）
	SessionCount int            `gorm:"not null;default:0" json:"session_count"`                          // 课时数（仅 package 类型）
	Tags         StringArray    `gorm:"type:json" json:"tags,omitempty"`                                  // 标签
	IsActive     bool           `gorm:"not null;default:true;index" json:"is_active"`                     // 是否上架
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间
}

// TableName 指定表名
func (CatalogItem) TableName() string {
	return "catalog_items"
}
