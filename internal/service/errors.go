package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrStaffDisabled      = errors.New("员工账号已停用")
	ErrPermissionDenied   = errors.New("没有操作权限")
	ErrTenantMismatch     = errors.New("无权访问该租户数据")
	ErrTenantInvalid      = errors.New("门店参数无效")
	ErrTenantSlugExists   = errors.New("门店标识已存在")
)

// 优惠券错误
var (
	ErrVoucherInvalid      = errors.New("优惠券参数无效")
	ErrVoucherNotFound     = errors.New("优惠券不存在")
	ErrVoucherNotStarted   = errors.New("优惠券未到生效时间")
	ErrVoucherExpired      = errors.New("优惠券已过期")
	ErrVoucherUsageLimit   = errors.New("优惠券已达使用上限")
	ErrVoucherPerCustomer  = errors.New("已达该客户使用上限")
	ErrVoucherMinSubtotal  = errors.New("未达到优惠券使用门槛")
	ErrVoucherNoSession    = errors.New("交易中没有可抵扣的服务项目")
	ErrVoucherCodeExists   = errors.New("优惠码已存在")
	ErrVoucherRedeemFailed = errors.New("优惠券核销失败")
)

// 礼品卡错误
var (
	ErrGiftCardInvalid      = errors.New("礼品卡参数无效")
	ErrGiftCardNotFound     = errors.New("礼品卡不存在")
	ErrGiftCardNotActive    = errors.New("礼品卡不可用")
	ErrGiftCardExpired      = errors.New("礼品卡已过期")
	ErrGiftCardRemoved      = errors.New("礼品卡已移除")
	ErrGiftCardNotCancelled = errors.New("仅已停用的礼品卡可以恢复")
	ErrGiftCardNoBalance    = errors.New("礼品卡余额为零，无法恢复")
	ErrGiftCardInsufficient = errors.New("礼品卡余额不足")
	ErrGiftCardCodeExists   = errors.New("礼品卡卡号已存在")
	ErrGiftCardCreateFailed = errors.New("礼品卡创建失败")
	ErrGiftCardUpdateFailed = errors.New("礼品卡更新失败")
	ErrGiftCardTxnFailed    = errors.New("礼品卡流水写入失败")
	ErrGiftCardFetchFailed  = errors.New("礼品卡查询失败")
)

// 课时错误
var (
	ErrSessionCreditInvalid      = errors.New("课时参数无效")
	ErrSessionCreditNotFound     = errors.New("课时记录不存在")
	ErrSessionCreditNotActive    = errors.New("课时不可用")
	ErrSessionCreditExpired      = errors.New("课时已过期")
	ErrSessionCreditInsufficient = errors.New("剩余课时不足")
	ErrSessionCreditOutOfRange   = errors.New("课时调整越界")
	ErrSessionCreditTxnFailed    = errors.New("课时流水写入失败")
	ErrSessionCreditNotPackage   = errors.New("该商品不是课时包")
)

// 交易错误
var (
	ErrTransactionInvalid       = errors.New("交易参数无效")
	ErrTransactionNotFound      = errors.New("交易不存在")
	ErrTransactionEmptyItems    = errors.New("交易至少需要一个商品")
	ErrTransactionNotCompleted  = errors.New("仅已完成的交易可以作废")
	ErrTransactionAlreadyVoided = errors.New("交易已作废")
	ErrTransactionRemoved       = errors.New("交易已移除")
	ErrTransactionNotVoided     = errors.New("仅已作废的交易可移除")
	ErrTransactionCreateFailed  = errors.New("交易创建失败")
	ErrTransactionUpdateFailed  = errors.New("交易更新失败")
	ErrTenderInsufficient       = errors.New("实付金额不足")
	ErrItemNotFound             = errors.New("商品不存在")
	ErrItemInactive             = errors.New("商品已下架")
	ErrReceiptNumberFailed      = errors.New("小票单号生成失败")
)

// 客户与目录错误
var (
	ErrCustomerInvalid  = errors.New("客户参数无效")
	ErrCustomerNotFound = errors.New("客户不存在")
	ErrCatalogInvalid   = errors.New("商品参数无效")
	ErrCatalogNotFound  = errors.New("商品不存在")
	ErrCatalogSKUExists = errors.New("货号已存在")
)

// 员工错误
var (
	ErrStaffInvalid        = errors.New("员工参数无效")
	ErrStaffUsernameExists = errors.New("员工账号已存在")
	ErrStaffSelfDelete     = errors.New("不能删除自己的账号")
)

// 报表错误
var (
	ErrStatementInvalidRange = errors.New("报表时间范围无效")
)
