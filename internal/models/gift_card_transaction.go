package models

import "time"

// GiftCardTransaction 礼品卡流水表（仅追加，不更新不删除）
type GiftCardTransaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                      // 主键
	TenantID         uint      `gorm:"index;not null" json:"tenant_id"`                           // 租户ID
	GiftCardID       uint      `gorm:"index;not null" json:"gift_card_id"`                        // 礼品卡ID
	Type             string    `gorm:"type:varchar(24);index;not null" json:"type"`               // 类型（issue/topup/redeem/cancel/reactivate/remove）
	Direction        string    `gorm:"type:varchar(8);not null" json:"direction"`                 // 方向（in/out）
	Amount           Cents     `gorm:"not null;default:0" json:"amount"`                          // 变动金额（分，非负）
	BalanceBefore    Cents     `gorm:"not null;default:0" json:"balance_before"`                  // 变动前余额（分）
	BalanceAfter     Cents     `gorm:"not null;default:0" json:"balance_after"`                   // 变动后余额（分）
	Reference        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"reference"`   // 业务引用（幂等键）
	POSTransactionID *uint     `gorm:"index" json:"pos_transaction_id,omitempty"`                 // 关联交易ID
	StaffID          uint      `gorm:"index;not null" json:"staff_id"`                            // 操作员工ID
	Note             string    `gorm:"type:varchar(255)" json:"note,omitempty"`                   // 备注
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
}

// TableName 指定表名
func (GiftCardTransaction) TableName() string {
	return "gift_card_transactions"
}
