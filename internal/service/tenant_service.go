package service

import (
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
)

// TenantService 门店管理服务
type TenantService struct {
	tenantRepo repository.TenantRepository
}

// NewTenantService 创建门店管理服务
func NewTenantService(tenantRepo repository.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// CreateTenantInput 创建门店输入
type CreateTenantInput struct {
	Name          string
	Slug          string
	ReceiptPrefix string
	Currency      string
}

// UpdateTenantInput 更新门店输入
type UpdateTenantInput struct {
	Name          *string
	ReceiptPrefix *string
	Currency      *string
	Status        *string
}

// CreateTenant 创建门店
func (s *TenantService) CreateTenant(input CreateTenantInput) (*models.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if name == "" || slug == "" {
		return nil, ErrTenantInvalid
	}

	existing, err := s.tenantRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTenantSlugExists
	}

	prefix := strings.TrimSpace(strings.ToUpper(input.ReceiptPrefix))
	if prefix == "" {
		prefix = constants.DefaultReceiptPrefix
	}
	currency := strings.TrimSpace(strings.ToUpper(input.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	now := time.Now()
	tenant := &models.Tenant{
		Name:          name,
		Slug:          slug,
		ReceiptPrefix: prefix,
		Currency:      currency,
		Status:        constants.TenantStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tenantRepo.Create(tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// UpdateTenant 更新门店
func (s *TenantService) UpdateTenant(id uint, input UpdateTenantInput) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTenantInvalid
		}
		tenant.Name = name
	}
	if input.ReceiptPrefix != nil {
		prefix := strings.TrimSpace(strings.ToUpper(*input.ReceiptPrefix))
		if prefix == "" {
			return nil, ErrTenantInvalid
		}
		tenant.ReceiptPrefix = prefix
	}
	if input.Currency != nil {
		currency := strings.TrimSpace(strings.ToUpper(*input.Currency))
		if currency == "" {
			return nil, ErrTenantInvalid
		}
		tenant.Currency = currency
	}
	if input.Status != nil {
		if *input.Status != constants.TenantStatusActive && *input.Status != constants.TenantStatusDisabled {
			return nil, ErrTenantInvalid
		}
		tenant.Status = *input.Status
	}

	tenant.UpdatedAt = time.Now()
	if err := s.tenantRepo.Update(tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant 获取门店
func (s *TenantService) GetTenant(id uint) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrNotFound
	}
	return tenant, nil
}

// GetTenantBySlug 根据标识获取门店
func (s *TenantService) GetTenantBySlug(slug string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrNotFound
	}
	return tenant, nil
}

// ListTenants 获取门店列表
func (s *TenantService) ListTenants() ([]models.Tenant, error) {
	return s.tenantRepo.List()
}
