package models

import (
	"time"

	"gorm.io/gorm"
)

// POSTransaction 销售交易表
type POSTransaction struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                              // 主键
	TenantID       uint           `gorm:"index;not null" json:"tenant_id"`                                   // 租户ID
	ReceiptNumber  string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"receipt_number"`       // 小票单号
	CustomerID     *uint          `gorm:"index" json:"customer_id,omitempty"`                                // 客户ID（散客为空）
	StaffID        uint           `gorm:"index;not null" json:"staff_id"`                                    // 收银员工ID
	Status         string         `gorm:"type:varchar(24);index;not null;default:'completed'" json:"status"` // 状态
	Currency       string         `gorm:"type:varchar(16);not null;default:'MYR'" json:"currency"`           // 币种
	Subtotal       Cents          `gorm:"not null;default:0" json:"subtotal"`                                // 商品小计（分）
	DiscountAmount Cents          `gorm:"not null;default:0" json:"discount_amount"`                         // 优惠金额（分）
	Total          Cents          `gorm:"not null;default:0" json:"total"`                                   // 实收金额（分）
	VoucherID      *uint          `gorm:"index" json:"voucher_id,omitempty"`                                 // 优惠券ID
	VoucherCode    string         `gorm:"type:varchar(80)" json:"voucher_code,omitempty"`                    // 优惠码快照
	PaymentMethod  string         `gorm:"type:varchar(24);index;not null" json:"payment_method"`             // 支付方式
	GiftCardID     *uint          `gorm:"index" json:"gift_card_id,omitempty"`                               // 支付用礼品卡ID
	Tendered       Cents          `gorm:"not null;default:0" json:"tendered"`                                // 实付金额（现金支付时，分）
	Change         Cents          `gorm:"not null;default:0" json:"change"`                                  // 找零金额（分）
	Note           string         `gorm:"type:varchar(255)" json:"note,omitempty"`                           // 备注
	VoidReason     string         `gorm:"type:varchar(255)" json:"void_reason,omitempty"`                    // 作废原因
	VoidedAt       *time.Time     `gorm:"index" json:"voided_at,omitempty"`                                  // 作废时间
	VoidedBy       *uint          `gorm:"index" json:"voided_by,omitempty"`                                  // 作废员工ID
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间

	Items []POSTransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"` // 交易明细
}

// TableName 指定表名
func (POSTransaction) TableName() string {
	return "pos_transactions"
}
