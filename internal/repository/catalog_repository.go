package repository

import (
	"errors"
	"strings"

	"github.com/niaga-pos/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 商品目录数据访问接口
type CatalogRepository interface {
	GetByID(id uint) (*models.CatalogItem, error)
	GetBySKU(tenantID uint, sku string) (*models.CatalogItem, error)
	ListByIDs(ids []uint) ([]models.CatalogItem, error)
	List(filter CatalogItemListFilter) ([]models.CatalogItem, int64, error)
	Create(item *models.CatalogItem) error
	Update(item *models.CatalogItem) error
	Delete(id uint) error
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建商品目录仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// GetByID 根据 ID 获取目录项
func (r *GormCatalogRepository) GetByID(id uint) (*models.CatalogItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.CatalogItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetBySKU 根据货号获取目录项
func (r *GormCatalogRepository) GetBySKU(tenantID uint, sku string) (*models.CatalogItem, error) {
	sku = strings.TrimSpace(sku)
	if tenantID == 0 || sku == "" {
		return nil, nil
	}
	var item models.CatalogItem
	if err := r.db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs 批量获取目录项
func (r *GormCatalogRepository) ListByIDs(ids []uint) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}
	var items []models.CatalogItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 获取目录列表
func (r *GormCatalogRepository) List(filter CatalogItemListFilter) ([]models.CatalogItem, int64, error) {
	query := r.db.Model(&models.CatalogItem{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		condition, argCount := buildSearchLikeCondition(r.db, []string{"name", "sku"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	items := make([]models.CatalogItem, 0)
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建目录项
func (r *GormCatalogRepository) Create(item *models.CatalogItem) error {
	return r.db.Create(item).Error
}

// Update 更新目录项
func (r *GormCatalogRepository) Update(item *models.CatalogItem) error {
	return r.db.Save(item).Error
}

// Delete 删除目录项（软删除）
func (r *GormCatalogRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.CatalogItem{}, id).Error
}
