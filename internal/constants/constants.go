package constants

// 交易状态常量
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusVoided    = "voided"
	TransactionStatusRemoved   = "removed"
)

// 交易支付方式常量
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodQRPay        = "qr_pay"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodEwallet      = "ewallet"
	PaymentMethodGiftCard     = "gift_card"
	PaymentMethodCredit       = "session_credit"
)

// 优惠券类型常量
const (
	VoucherTypePercentage  = "percentage"
	VoucherTypeFixed       = "fixed"
	VoucherTypeFreeSession = "free_session"
)

// 优惠券状态常量
const (
	VoucherStatusActive   = "active"
	VoucherStatusInactive = "inactive"
)

// 礼品卡状态常量
const (
	GiftCardStatusActive    = "active"
	GiftCardStatusCancelled = "cancelled"
	GiftCardStatusDepleted  = "depleted"
	GiftCardStatusExpired   = "expired"
	GiftCardStatusRemoved   = "removed"
)

// 礼品卡流水类型常量
const (
	GiftCardTxnTypeIssue      = "issue"
	GiftCardTxnTypeTopup      = "topup"
	GiftCardTxnTypeRedeem     = "redeem"
	GiftCardTxnTypeCancel     = "cancel"
	GiftCardTxnTypeReactivate = "reactivate"
	GiftCardTxnTypeExpire     = "expire"
	GiftCardTxnTypeRemove     = "remove"
)

// 礼品卡流水方向常量
const (
	GiftCardTxnDirectionIn  = "in"
	GiftCardTxnDirectionOut = "out"
)

// 课时流水类型常量
const (
	CreditTxnTypeAssign  = "assign"
	CreditTxnTypeConsume = "consume"
	CreditTxnTypeAdjust  = "adjust"
)

// 课时状态常量
const (
	SessionCreditStatusActive   = "active"
	SessionCreditStatusDepleted = "depleted"
	SessionCreditStatusExpired  = "expired"
)

// 商品类型常量
const (
	CatalogItemTypeProduct    = "product"
	CatalogItemTypeService    = "service"
	CatalogItemTypePackage    = "package"
	CatalogItemTypeMembership = "membership"
)

// 优惠券来源常量
const (
	VoucherSourceInternal = "internal"
	VoucherSourcePartner  = "partner"
	VoucherSourcePublic   = "public"
)

// 门店状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusDisabled = "disabled"
)

// 员工角色常量
const (
	StaffRoleOwner   = "owner"
	StaffRoleManager = "manager"
	StaffRoleCashier = "cashier"
)

// 员工状态常量
const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

// 客户状态常量
const (
	CustomerStatusActive   = "active"
	CustomerStatusArchived = "archived"
)

// 队列任务类型常量
const (
	TaskTypeReceiptNotify    = "receipt:notify"
	TaskTypeStatementRefresh = "statement:refresh"
	TaskTypeGiftCardExpire   = "gift_card:expire_scan"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
	QueueLow      = "low"
)

// 默认值常量
const (
	DefaultCurrency      = "MYR"
	DefaultReceiptPrefix = "POS"
	DefaultPageSize      = 20
	MaxPageSize          = 100
)
