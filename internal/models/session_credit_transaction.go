package models

import "time"

// SessionCreditTransaction 课时流水表（仅追加，不更新不删除）
type SessionCreditTransaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                    // 主键
	TenantID         uint      `gorm:"index;not null" json:"tenant_id"`                         // 租户ID
	SessionCreditID  uint      `gorm:"index;not null" json:"session_credit_id"`                 // 课时余额ID
	Type             string    `gorm:"type:varchar(24);index;not null" json:"type"`             // 类型（assign/consume/adjust）
	Delta            int       `gorm:"not null" json:"delta"`                                   // 课时变动（assign 为发放数，consume 为正消耗，adjust 调整已用可正可负）
	UsedBefore       int       `gorm:"not null;default:0" json:"used_before"`                   // 变动前已用课时
	UsedAfter        int       `gorm:"not null;default:0" json:"used_after"`                    // 变动后已用课时
	Reference        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"reference"` // 业务引用（幂等键）
	POSTransactionID *uint     `gorm:"index" json:"pos_transaction_id,omitempty"`               // 关联交易ID
	StaffID          uint      `gorm:"index;not null" json:"staff_id"`                          // 操作员工ID
	Note             string    `gorm:"type:varchar(255)" json:"note,omitempty"`                 // 备注
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (SessionCreditTransaction) TableName() string {
	return "session_credit_transactions"
}
