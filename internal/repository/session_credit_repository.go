package repository

import (
	"errors"
	"strings"

	"github.com/niaga-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionCreditRepository 课时余额数据访问接口
type SessionCreditRepository interface {
	GetByID(id uint) (*models.SessionCredit, error)
	GetByIDForUpdate(id uint) (*models.SessionCredit, error)
	List(filter SessionCreditListFilter) ([]models.SessionCredit, int64, error)
	Create(credit *models.SessionCredit) error
	Update(credit *models.SessionCredit) error
	AddUsedSessions(id uint, delta int) (bool, error)
	CreateTransaction(txn *models.SessionCreditTransaction) error
	GetTransactionByReference(reference string) (*models.SessionCreditTransaction, error)
	ListTransactions(filter SessionCreditTxnListFilter) ([]models.SessionCreditTransaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormSessionCreditRepository
}

// GormSessionCreditRepository GORM 课时余额仓储实现
type GormSessionCreditRepository struct {
	db *gorm.DB
}

// NewSessionCreditRepository 创建课时余额仓库
func NewSessionCreditRepository(db *gorm.DB) *GormSessionCreditRepository {
	return &GormSessionCreditRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSessionCreditRepository) WithTx(tx *gorm.DB) *GormSessionCreditRepository {
	if tx == nil {
		return r
	}
	return &GormSessionCreditRepository{db: tx}
}

// Transaction 包装数据库事务
func (r *GormSessionCreditRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取课时余额
func (r *GormSessionCreditRepository) GetByID(id uint) (*models.SessionCredit, error) {
	if id == 0 {
		return nil, nil
	}
	var credit models.SessionCredit
	if err := r.db.First(&credit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

// GetByIDForUpdate 根据 ID 加锁获取课时余额
func (r *GormSessionCreditRepository) GetByIDForUpdate(id uint) (*models.SessionCredit, error) {
	if id == 0 {
		return nil, nil
	}
	var credit models.SessionCredit
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&credit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

// List 分页查询课时余额
func (r *GormSessionCreditRepository) List(filter SessionCreditListFilter) ([]models.SessionCredit, int64, error) {
	query := r.db.Model(&models.SessionCredit{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	credits := make([]models.SessionCredit, 0)
	if err := query.Order("id desc").Find(&credits).Error; err != nil {
		return nil, 0, err
	}
	return credits, total, nil
}

// Create 创建课时余额
func (r *GormSessionCreditRepository) Create(credit *models.SessionCredit) error {
	return r.db.Create(credit).Error
}

// Update 更新课时余额
func (r *GormSessionCreditRepository) Update(credit *models.SessionCredit) error {
	return r.db.Save(credit).Error
}

// AddUsedSessions 原子调整已用课时，保证 0 <= used <= total
// 返回是否更新成功（false 表示余额不足或回退越界）
func (r *GormSessionCreditRepository) AddUsedSessions(id uint, delta int) (bool, error) {
	if id == 0 || delta == 0 {
		return false, nil
	}
	query := r.db.Model(&models.SessionCredit{}).Where("id = ?", id)
	if delta > 0 {
		query = query.Where("used_sessions + ? <= total_sessions", delta)
	} else {
		query = query.Where("used_sessions >= ?", -delta)
	}
	result := query.UpdateColumn("used_sessions", gorm.Expr("used_sessions + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateTransaction 创建课时流水
func (r *GormSessionCreditRepository) CreateTransaction(txn *models.SessionCreditTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按参考号获取流水
func (r *GormSessionCreditRepository) GetTransactionByReference(reference string) (*models.SessionCreditTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.SessionCreditTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询课时流水
func (r *GormSessionCreditRepository) ListTransactions(filter SessionCreditTxnListFilter) ([]models.SessionCreditTransaction, int64, error) {
	query := r.db.Model(&models.SessionCreditTransaction{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.SessionCreditID != 0 {
		query = query.Where("session_credit_id = ?", filter.SessionCreditID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
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

	txns := make([]models.SessionCreditTransaction, 0)
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
