package models

import (
	"time"

	"gorm.io/gorm"
)

// POSTransactionItem 交易明细表
// 商品信息为下单时快照，目录后续变更不影响历史交易
type POSTransactionItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                            // 主键
	TransactionID   uint           `gorm:"index;not null" json:"transaction_id"`            // 交易ID
	CatalogItemID   *uint          `gorm:"index" json:"catalog_item_id,omitempty"`          // 商品ID（商品删除后保留快照）
	ItemName        string         `gorm:"type:varchar(160);not null" json:"item_name"`     // 名称快照
	SKU             string         `gorm:"type:varchar(80)" json:"sku,omitempty"`           // 货号快照
	ItemType        string         `gorm:"type:varchar(24);not null" json:"item_type"`      // 类型快照
	UnitPrice       Cents          `gorm:"not null;default:0" json:"unit_price"`            // 单价快照（分）
	Quantity        int            `gorm:"not null" json:"quantity"`                        // 数量
	LineTotal       Cents          `gorm:"not null;default:0" json:"line_total"`            // 小计（分）
	SessionCreditID *uint          `gorm:"index" json:"session_credit_id,omitempty"`        // 以课时支付时的课时余额ID
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (POSTransactionItem) TableName() string {
	return "pos_transaction_items"
}
