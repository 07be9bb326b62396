package repository

import (
	"errors"
	"strings"

	"github.com/niaga-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoucherRepository 优惠券数据访问接口
type VoucherRepository interface {
	GetByID(id uint) (*models.Voucher, error)
	GetByCode(tenantID uint, code string) (*models.Voucher, error)
	GetByCodeForUpdate(tenantID uint, code string) (*models.Voucher, error)
	List(filter VoucherListFilter) ([]models.Voucher, int64, error)
	Create(voucher *models.Voucher) error
	Update(voucher *models.Voucher) error
	Delete(id uint) error
	IncrementUsedCount(id uint, limit int) (bool, error)
	DecrementUsedCount(id uint) error
	CreateUsage(usage *models.VoucherUsage) error
	CountUsageByCustomer(voucherID, customerID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormVoucherRepository
}

// GormVoucherRepository GORM 实现
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建优惠券仓库
func NewVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVoucherRepository) WithTx(tx *gorm.DB) *GormVoucherRepository {
	if tx == nil {
		return r
	}
	return &GormVoucherRepository{db: tx}
}

// Transaction 包装数据库事务
func (r *GormVoucherRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取优惠券
func (r *GormVoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	if id == 0 {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.First(&voucher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCode 根据优惠码获取优惠券
func (r *GormVoucherRepository) GetByCode(tenantID uint, code string) (*models.Voucher, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if tenantID == 0 || code == "" {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.Where("tenant_id = ? AND code = ?", tenantID, code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetByCodeForUpdate 根据优惠码加锁获取优惠券
func (r *GormVoucherRepository) GetByCodeForUpdate(tenantID uint, code string) (*models.Voucher, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if tenantID == 0 || code == "" {
		return nil, nil
	}
	var voucher models.Voucher
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// List 获取优惠券列表
func (r *GormVoucherRepository) List(filter VoucherListFilter) ([]models.Voucher, int64, error) {
	query := r.db.Model(&models.Voucher{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", strings.ToUpper(filter.Code))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	vouchers := make([]models.Voucher, 0)
	if err := query.Order("id desc").Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}
	return vouchers, total, nil
}

// Create 创建优惠券
func (r *GormVoucherRepository) Create(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// Update 更新优惠券
func (r *GormVoucherRepository) Update(voucher *models.Voucher) error {
	return r.db.Save(voucher).Error
}

// Delete 删除优惠券（软删除）
func (r *GormVoucherRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Voucher{}, id).Error
}

// IncrementUsedCount 增加使用次数
// limit 大于 0 时带上限校验，返回是否更新成功
func (r *GormVoucherRepository) IncrementUsedCount(id uint, limit int) (bool, error) {
	query := r.db.Model(&models.Voucher{}).Where("id = ?", id)
	if limit > 0 {
		query = query.Where("used_count < ?", limit)
	}
	result := query.UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementUsedCount 减少使用次数（交易作废回退）
func (r *GormVoucherRepository) DecrementUsedCount(id uint) error {
	return r.db.Model(&models.Voucher{}).
		Where("id = ?", id).
		Where("used_count >= ?", 1).
		UpdateColumn("used_count", gorm.Expr("used_count - ?", 1)).Error
}

// CreateUsage 创建使用记录
func (r *GormVoucherRepository) CreateUsage(usage *models.VoucherUsage) error {
	return r.db.Create(usage).Error
}

// CountUsageByCustomer 统计某客户对某券的使用次数
func (r *GormVoucherRepository) CountUsageByCustomer(voucherID, customerID uint) (int64, error) {
	if voucherID == 0 || customerID == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND customer_id = ?", voucherID, customerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
