package service

import (
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"gorm.io/gorm"
)

// VoucherService 优惠券服务
type VoucherService struct {
	voucherRepo repository.VoucherRepository
}

// NewVoucherService 创建优惠券服务
func NewVoucherService(voucherRepo repository.VoucherRepository) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo}
}

// ApplyVoucher 校验优惠券并计算折扣金额
// 只读校验，不修改使用次数；核销在交易事务内通过 RedeemInTx 完成
func (s *VoucherService) ApplyVoucher(tenantID uint, subtotal models.Cents, code string, customerID uint, items []models.POSTransactionItem) (models.Cents, *models.Voucher, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return 0, nil, ErrVoucherInvalid
	}

	voucher, err := s.voucherRepo.GetByCode(tenantID, trimmed)
	if err != nil {
		return 0, nil, err
	}
	// 未启用的券对收银台表现为不存在，避免暴露优惠码
	if voucher == nil || !voucher.IsActive {
		return 0, nil, ErrVoucherNotFound
	}

	now := time.Now()
	if voucher.StartsAt != nil && now.Before(*voucher.StartsAt) {
		return 0, voucher, ErrVoucherNotStarted
	}
	if voucher.EndsAt != nil && now.After(*voucher.EndsAt) {
		return 0, voucher, ErrVoucherExpired
	}

	if voucher.UsageLimit > 0 && voucher.UsedCount >= voucher.UsageLimit {
		return 0, voucher, ErrVoucherUsageLimit
	}

	if voucher.PerCustomerLimit > 0 && customerID != 0 {
		count, err := s.voucherRepo.CountUsageByCustomer(voucher.ID, customerID)
		if err != nil {
			return 0, voucher, err
		}
		if int(count) >= voucher.PerCustomerLimit {
			return 0, voucher, ErrVoucherPerCustomer
		}
	}

	if voucher.MinSubtotal > 0 && subtotal < voucher.MinSubtotal {
		return 0, voucher, ErrVoucherMinSubtotal
	}

	discount, err := s.calculateDiscount(voucher, subtotal, items)
	if err != nil {
		return 0, voucher, err
	}

	if voucher.MaxDiscount > 0 && discount > voucher.MaxDiscount {
		discount = voucher.MaxDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	return discount, voucher, nil
}

// calculateDiscount 按类型计算折扣
func (s *VoucherService) calculateDiscount(voucher *models.Voucher, subtotal models.Cents, items []models.POSTransactionItem) (models.Cents, error) {
	switch voucher.Type {
	case constants.VoucherTypePercentage:
		if voucher.PercentOff <= 0 || voucher.PercentOff > 100 {
			return 0, ErrVoucherInvalid
		}
		return subtotal.PercentOf(voucher.PercentOff), nil
	case constants.VoucherTypeFixed:
		if voucher.AmountOff <= 0 {
			return 0, ErrVoucherInvalid
		}
		return voucher.AmountOff, nil
	case constants.VoucherTypeFreeSession:
		// 免费课抵扣交易中最贵的一单位服务项目
		var best models.Cents
		for _, item := range items {
			if item.ItemType != constants.CatalogItemTypeService {
				continue
			}
			if item.UnitPrice > best {
				best = item.UnitPrice
			}
		}
		if best <= 0 {
			return 0, ErrVoucherNoSession
		}
		return best, nil
	default:
		return 0, ErrVoucherInvalid
	}
}

// RedeemInTx 在交易事务内核销优惠券
// 带上限的原子自增防止并发超发，并写入使用记录
func (s *VoucherService) RedeemInTx(tx *gorm.DB, voucher *models.Voucher, customerID, transactionID uint, discount models.Cents) error {
	if tx == nil || voucher == nil {
		return ErrVoucherRedeemFailed
	}
	repo := s.voucherRepo.WithTx(tx)

	ok, err := repo.IncrementUsedCount(voucher.ID, voucher.UsageLimit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVoucherUsageLimit
	}

	usage := &models.VoucherUsage{
		TenantID:      voucher.TenantID,
		VoucherID:     voucher.ID,
		CustomerID:    customerID,
		TransactionID: transactionID,
		Discount:      discount,
		CreatedAt:     time.Now(),
	}
	if err := repo.CreateUsage(usage); err != nil {
		return ErrVoucherRedeemFailed
	}
	return nil
}

// ReleaseInTx 在作废事务内回退优惠券使用次数
func (s *VoucherService) ReleaseInTx(tx *gorm.DB, voucherID uint) error {
	if tx == nil || voucherID == 0 {
		return nil
	}
	return s.voucherRepo.WithTx(tx).DecrementUsedCount(voucherID)
}

// CreateVoucherInput 创建优惠券输入
type CreateVoucherInput struct {
	TenantID         uint
	Code             string
	Name             string
	Type             string
	Source           string
	PercentOff       int
	AmountOff        models.Cents
	MinSubtotal      models.Cents
	MaxDiscount      models.Cents
	UsageLimit       int
	PerCustomerLimit int
	StartsAt         *time.Time
	EndsAt           *time.Time
	IsActive         bool
}

// UpdateVoucherInput 更新优惠券输入
type UpdateVoucherInput struct {
	Name             *string
	MinSubtotal      *models.Cents
	MaxDiscount      *models.Cents
	UsageLimit       *int
	PerCustomerLimit *int
	StartsAt         *time.Time
	EndsAt           *time.Time
	ClearStartsAt    bool
	ClearEndsAt      bool
	IsActive         *bool
}

// CreateVoucher 创建优惠券
func (s *VoucherService) CreateVoucher(input CreateVoucherInput) (*models.Voucher, error) {
	code := strings.TrimSpace(strings.ToUpper(input.Code))
	name := strings.TrimSpace(input.Name)
	if input.TenantID == 0 || code == "" || name == "" {
		return nil, ErrVoucherInvalid
	}

	switch input.Type {
	case constants.VoucherTypePercentage:
		if input.PercentOff <= 0 || input.PercentOff > 100 {
			return nil, ErrVoucherInvalid
		}
	case constants.VoucherTypeFixed:
		if input.AmountOff <= 0 {
			return nil, ErrVoucherInvalid
		}
	case constants.VoucherTypeFreeSession:
		// 免费课类型无金额参数
	default:
		return nil, ErrVoucherInvalid
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = constants.VoucherSourceInternal
	}
	switch source {
	case constants.VoucherSourceInternal, constants.VoucherSourcePartner, constants.VoucherSourcePublic:
	default:
		return nil, ErrVoucherInvalid
	}
	if input.MinSubtotal < 0 || input.MaxDiscount < 0 || input.UsageLimit < 0 || input.PerCustomerLimit < 0 {
		return nil, ErrVoucherInvalid
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, ErrVoucherInvalid
	}

	existing, err := s.voucherRepo.GetByCode(input.TenantID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrVoucherCodeExists
	}

	now := time.Now()
	voucher := &models.Voucher{
		TenantID:         input.TenantID,
		Code:             code,
		Name:             name,
		Type:             input.Type,
		Source:           source,
		PercentOff:       input.PercentOff,
		AmountOff:        input.AmountOff,
		MinSubtotal:      input.MinSubtotal,
		MaxDiscount:      input.MaxDiscount,
		UsageLimit:       input.UsageLimit,
		PerCustomerLimit: input.PerCustomerLimit,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		IsActive:         input.IsActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.voucherRepo.Create(voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// UpdateVoucher 更新优惠券
// 类型与金额创建后不可变，避免已核销记录语义漂移
func (s *VoucherService) UpdateVoucher(tenantID, id uint, input UpdateVoucherInput) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.TenantID != tenantID {
		return nil, ErrVoucherNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrVoucherInvalid
		}
		voucher.Name = name
	}
	if input.MinSubtotal != nil {
		if *input.MinSubtotal < 0 {
			return nil, ErrVoucherInvalid
		}
		voucher.MinSubtotal = *input.MinSubtotal
	}
	if input.MaxDiscount != nil {
		if *input.MaxDiscount < 0 {
			return nil, ErrVoucherInvalid
		}
		voucher.MaxDiscount = *input.MaxDiscount
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < 0 {
			return nil, ErrVoucherInvalid
		}
		voucher.UsageLimit = *input.UsageLimit
	}
	if input.PerCustomerLimit != nil {
		if *input.PerCustomerLimit < 0 {
			return nil, ErrVoucherInvalid
		}
		voucher.PerCustomerLimit = *input.PerCustomerLimit
	}
	if input.ClearStartsAt {
		voucher.StartsAt = nil
	} else if input.StartsAt != nil {
		voucher.StartsAt = input.StartsAt
	}
	if input.ClearEndsAt {
		voucher.EndsAt = nil
	} else if input.EndsAt != nil {
		voucher.EndsAt = input.EndsAt
	}
	if voucher.StartsAt != nil && voucher.EndsAt != nil && voucher.EndsAt.Before(*voucher.StartsAt) {
		return nil, ErrVoucherInvalid
	}
	if input.IsActive != nil {
		voucher.IsActive = *input.IsActive
	}

	voucher.UpdatedAt = time.Now()
	if err := s.voucherRepo.Update(voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// GetVoucher 获取优惠券
func (s *VoucherService) GetVoucher(tenantID, id uint) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.TenantID != tenantID {
		return nil, ErrVoucherNotFound
	}
	return voucher, nil
}

// ListVouchers 获取优惠券列表
func (s *VoucherService) ListVouchers(filter repository.VoucherListFilter) ([]models.Voucher, int64, error) {
	return s.voucherRepo.List(filter)
}

// DeleteVoucher 删除优惠券（软删除）
func (s *VoucherService) DeleteVoucher(tenantID, id uint) error {
	voucher, err := s.voucherRepo.GetByID(id)
	if err != nil {
		return err
	}
	if voucher == nil || voucher.TenantID != tenantID {
		return ErrVoucherNotFound
	}
	return s.voucherRepo.Delete(id)
}
