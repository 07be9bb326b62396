package repository

import (
	"errors"
	"strings"

	"github.com/niaga-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// POSTransactionRepository 销售交易数据访问接口
type POSTransactionRepository interface {
	GetByID(id uint) (*models.POSTransaction, error)
	GetByIDForUpdate(id uint) (*models.POSTransaction, error)
	GetByReceiptNumber(tenantID uint, receiptNumber string) (*models.POSTransaction, error)
	List(filter POSTransactionListFilter) ([]models.POSTransaction, int64, error)
	Create(txn *models.POSTransaction) error
	Update(txn *models.POSTransaction) error
	NextReceiptSeq(tenantID uint, day string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPOSTransactionRepository
}

// GormPOSTransactionRepository GORM 交易仓储实现
type GormPOSTransactionRepository struct {
	db *gorm.DB
}

// NewPOSTransactionRepository 创建交易仓库
func NewPOSTransactionRepository(db *gorm.DB) *GormPOSTransactionRepository {
	return &GormPOSTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPOSTransactionRepository) WithTx(tx *gorm.DB) *GormPOSTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormPOSTransactionRepository{db: tx}
}

// Transaction 包装数据库事务
func (r *GormPOSTransactionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取交易（含明细）
func (r *GormPOSTransactionRepository) GetByID(id uint) (*models.POSTransaction, error) {
	if id == 0 {
		return nil, nil
	}
	var txn models.POSTransaction
	if err := r.db.Preload("Items").First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByIDForUpdate 根据 ID 加锁获取交易
func (r *GormPOSTransactionRepository) GetByIDForUpdate(id uint) (*models.POSTransaction, error) {
	if id == 0 {
		return nil, nil
	}
	var txn models.POSTransaction
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByReceiptNumber 根据小票单号获取交易（含明细）
func (r *GormPOSTransactionRepository) GetByReceiptNumber(tenantID uint, receiptNumber string) (*models.POSTransaction, error) {
	receiptNumber = strings.TrimSpace(receiptNumber)
	if tenantID == 0 || receiptNumber == "" {
		return nil, nil
	}
	var txn models.POSTransaction
	if err := r.db.Preload("Items").
		Where("tenant_id = ? AND receipt_number = ?", tenantID, receiptNumber).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// List 分页查询交易
func (r *GormPOSTransactionRepository) List(filter POSTransactionListFilter) ([]models.POSTransaction, int64, error) {
	query := r.db.Model(&models.POSTransaction{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.ReceiptNumber != "" {
		query = query.Where("receipt_number = ?", filter.ReceiptNumber)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.StaffID != 0 {
		query = query.Where("staff_id = ?", filter.StaffID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	txns := make([]models.POSTransaction, 0)
	if err := query.Preload("Items").Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// Create 创建交易（级联写入明细）
func (r *GormPOSTransactionRepository) Create(txn *models.POSTransaction) error {
	return r.db.Create(txn).Error
}

// Update 更新交易
func (r *GormPOSTransactionRepository) Update(txn *models.POSTransaction) error {
	return r.db.Save(txn).Error
}

// NextReceiptSeq 取出某租户某天的下一个小票序号
// 计数器行不存在时先创建，再加锁递增，需在事务内调用
func (r *GormPOSTransactionRepository) NextReceiptSeq(tenantID uint, day string) (int64, error) {
	if tenantID == 0 || day == "" {
		return 0, errors.New("invalid receipt counter key")
	}

	var counter models.ReceiptCounter
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND day = ?", tenantID, day).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.ReceiptCounter{TenantID: tenantID, Day: day, Seq: 0}
		if createErr := r.db.Create(&counter).Error; createErr != nil {
			// 并发创建冲突时重新加锁读取
			if lockErr := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tenant_id = ? AND day = ?", tenantID, day).
				First(&counter).Error; lockErr != nil {
				return 0, lockErr
			}
		}
	} else if err != nil {
		return 0, err
	}

	counter.Seq++
	if err := r.db.Model(&models.ReceiptCounter{}).
		Where("id = ?", counter.ID).
		UpdateColumn("seq", counter.Seq).Error; err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
