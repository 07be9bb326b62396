package service

import (
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
)

// CatalogService 商品目录服务
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// CreateCatalogItemInput 创建目录项输入
type CreateCatalogItemInput struct {
	TenantID     uint
	SKU          string
	Name         string
	Type         string
	UnitPrice    models.Cents
	SessionCount int
	Tags         []string
	IsActive     bool
}

// UpdateCatalogItemInput 更新目录项输入
type UpdateCatalogItemInput struct {
	Name         *string
	UnitPrice    *models.Cents
	SessionCount *int
	Tags         *[]string
	IsActive     *bool
}

// CreateCatalogItem 创建目录项
func (s *CatalogService) CreateCatalogItem(input CreateCatalogItemInput) (*models.CatalogItem, error) {
	sku := strings.TrimSpace(strings.ToUpper(input.SKU))
	name := strings.TrimSpace(input.Name)
	if input.TenantID == 0 || sku == "" || name == "" || input.UnitPrice < 0 {
		return nil, ErrCatalogInvalid
	}
	if !validCatalogItemType(input.Type) {
		return nil, ErrCatalogInvalid
	}
	// 套餐必须带课时数，非套餐不允许
	if input.Type == constants.CatalogItemTypePackage {
		if input.SessionCount <= 0 {
			return nil, ErrCatalogInvalid
		}
	} else if input.SessionCount != 0 {
		return nil, ErrCatalogInvalid
	}

	existing, err := s.catalogRepo.GetBySKU(input.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCatalogSKUExists
	}

	now := time.Now()
	item := &models.CatalogItem{
		TenantID:     input.TenantID,
		SKU:          sku,
		Name:         name,
		Type:         input.Type,
		UnitPrice:    input.UnitPrice,
		SessionCount: input.SessionCount,
		Tags:         models.StringArray(input.Tags),
		IsActive:     input.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.catalogRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateCatalogItem 更新目录项
// SKU 与类型创建后不可变，已售明细依赖其快照语义
func (s *CatalogService) UpdateCatalogItem(tenantID, id uint, input UpdateCatalogItemInput) (*models.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.TenantID != tenantID {
		return nil, ErrCatalogNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCatalogInvalid
		}
		item.Name = name
	}
	if input.UnitPrice != nil {
		if *input.UnitPrice < 0 {
			return nil, ErrCatalogInvalid
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.SessionCount != nil {
		if item.Type != constants.CatalogItemTypePackage || *input.SessionCount <= 0 {
			return nil, ErrCatalogInvalid
		}
		item.SessionCount = *input.SessionCount
	}
	if input.Tags != nil {
		item.Tags = models.StringArray(*input.Tags)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	item.UpdatedAt = time.Now()
	if err := s.catalogRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetCatalogItem 获取目录项
func (s *CatalogService) GetCatalogItem(tenantID, id uint) (*models.CatalogItem, error) {
	item, err := s.catalogRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.TenantID != tenantID {
		return nil, ErrCatalogNotFound
	}
	return item, nil
}

// ListCatalogItems 获取目录项列表
func (s *CatalogService) ListCatalogItems(filter repository.CatalogItemListFilter) ([]models.CatalogItem, int64, error) {
	return s.catalogRepo.List(filter)
}

// DeleteCatalogItem 删除目录项（软删除）
func (s *CatalogService) DeleteCatalogItem(tenantID, id uint) error {
	item, err := s.catalogRepo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil || item.TenantID != tenantID {
		return ErrCatalogNotFound
	}
	return s.catalogRepo.Delete(id)
}

func validCatalogItemType(t string) bool {
	switch t {
	case constants.CatalogItemTypeProduct,
		constants.CatalogItemTypeService,
		constants.CatalogItemTypePackage,
		constants.CatalogItemTypeMembership:
		return true
	}
	return false
}
