package service

import (
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
)

// CustomerService 会员管理服务
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService 创建会员管理服务
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput 创建会员输入
type CreateCustomerInput struct {
	TenantID uint
	Name     string
	Phone    string
	Email    string
	Notes    string
}

// UpdateCustomerInput 更新会员输入
type UpdateCustomerInput struct {
	Name   *string
	Phone  *string
	Email  *string
	Notes  *string
	Status *string
}

// CreateCustomer 创建会员
func (s *CustomerService) CreateCustomer(input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if input.TenantID == 0 || name == "" {
		return nil, ErrCustomerInvalid
	}

	now := time.Now()
	customer := &models.Customer{
		TenantID:  input.TenantID,
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Status:    constants.CustomerStatusActive,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer 更新会员
func (s *CustomerService) UpdateCustomer(tenantID, id uint, input UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, ErrCustomerNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCustomerInvalid
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		customer.Email = strings.TrimSpace(*input.Email)
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.Status != nil {
		if *input.Status != constants.CustomerStatusActive && *input.Status != constants.CustomerStatusArchived {
			return nil, ErrCustomerInvalid
		}
		customer.Status = *input.Status
	}

	customer.UpdatedAt = time.Now()
	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer 获取会员
func (s *CustomerService) GetCustomer(tenantID, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// ListCustomers 获取会员列表
func (s *CustomerService) ListCustomers(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}

// DeleteCustomer 删除会员（软删除）
func (s *CustomerService) DeleteCustomer(tenantID, id uint) error {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil || customer.TenantID != tenantID {
		return ErrCustomerNotFound
	}
	return s.customerRepo.Delete(id)
}
