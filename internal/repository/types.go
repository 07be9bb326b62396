package repository

import "time"

// StaffListFilter 查询员工列表的过滤条件
type StaffListFilter struct {
	Page     int
	PageSize int
	TenantID uint
	Role     string
	Status   string
	Search   string
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	TenantID uint
	Status   string
	Search   string
}

// CatalogItemListFilter 查询商品目录的过滤条件
type CatalogItemListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	Type       string
	Search     string
	OnlyActive bool
}

// VoucherListFilter 查询优惠券列表的过滤条件
type VoucherListFilter struct {
	Page     int
	PageSize int
	TenantID uint
	Code     string
	Type     string
	IsActive *bool
}

// GiftCardListFilter 查询礼品卡列表的过滤条件
type GiftCardListFilter struct {
	Page          int
	PageSize      int
	TenantID      uint
	Code          string
	Status        string
	CustomerID    uint
	ExpiresBefore *time.Time
}

// GiftCardTxnListFilter 查询礼品卡流水的过滤条件
type GiftCardTxnListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	GiftCardID  uint
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SessionCreditListFilter 查询课时余额的过滤条件
type SessionCreditListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	CustomerID uint
	Status     string
}

// SessionCreditTxnListFilter 查询课时流水的过滤条件
type SessionCreditTxnListFilter struct {
	Page            int
	PageSize        int
	TenantID        uint
	SessionCreditID uint
	Type            string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// POSTransactionListFilter 查询交易列表的过滤条件
type POSTransactionListFilter struct {
	Page          int
	PageSize      int
	TenantID      uint
	ReceiptNumber string
	CustomerID    uint
	StaffID       uint
	Status        string
	PaymentMethod string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorStaffID uint
	TargetStaffID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
