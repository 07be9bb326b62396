package service

import (
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
)

// StaffService 员工管理服务
type StaffService struct {
	staffRepo repository.StaffRepository
	authSvc   *AuthService
}

// NewStaffService 创建员工管理服务
func NewStaffService(staffRepo repository.StaffRepository, authSvc *AuthService) *StaffService {
	return &StaffService{staffRepo: staffRepo, authSvc: authSvc}
}

// CreateStaffInput 创建员工输入
type CreateStaffInput struct {
	TenantID    uint
	Username    string
	Password    string
	DisplayName string
	Role        string
}

// UpdateStaffInput 更新员工输入
type UpdateStaffInput struct {
	DisplayName *string
	Role        *string
	Status      *string
}

// CreateStaff 创建员工
func (s *StaffService) CreateStaff(input CreateStaffInput) (*models.Staff, error) {
	username := strings.TrimSpace(input.Username)
	if input.TenantID == 0 || username == "" {
		return nil, ErrStaffInvalid
	}
	if !validStaffRole(input.Role) {
		return nil, ErrStaffInvalid
	}
	if err := s.authSvc.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.staffRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrStaffUsernameExists
	}

	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	now := time.Now()
	staff := &models.Staff{
		TenantID:     input.TenantID,
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         input.Role,
		Status:       constants.StaffStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.staffRepo.Create(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// UpdateStaff 更新员工
// 禁用或改角色时刷新令牌版本，令已签发令牌立即失效
func (s *StaffService) UpdateStaff(tenantID, id uint, input UpdateStaffInput) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if staff == nil || staff.TenantID != tenantID {
		return nil, ErrNotFound
	}

	revoke := false
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, ErrStaffInvalid
		}
		staff.DisplayName = name
	}
	if input.Role != nil && *input.Role != staff.Role {
		if !validStaffRole(*input.Role) {
			return nil, ErrStaffInvalid
		}
		staff.Role = *input.Role
		revoke = true
	}
	if input.Status != nil && *input.Status != staff.Status {
		if *input.Status != constants.StaffStatusActive && *input.Status != constants.StaffStatusDisabled {
			return nil, ErrStaffInvalid
		}
		staff.Status = *input.Status
		if staff.Status == constants.StaffStatusDisabled {
			revoke = true
		}
	}

	if revoke {
		now := time.Now()
		staff.TokenVersion++
		staff.TokenInvalidBefore = &now
	}

	staff.UpdatedAt = time.Now()
	if err := s.staffRepo.Update(staff); err != nil {
		return nil, err
	}
	s.authSvc.RefreshAuthState(staff)
	return staff, nil
}

// ResetStaffPassword 重置员工密码
func (s *StaffService) ResetStaffPassword(tenantID, id uint, newPassword string) error {
	staff, err := s.staffRepo.GetByID(id)
	if err != nil {
		return err
	}
	if staff == nil || staff.TenantID != tenantID {
		return ErrNotFound
	}
	if err := s.authSvc.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	staff.PasswordHash = hash
	staff.TokenVersion++
	staff.TokenInvalidBefore = &now
	staff.UpdatedAt = now
	if err := s.staffRepo.Update(staff); err != nil {
		return err
	}
	s.authSvc.RefreshAuthState(staff)
	return nil
}

// GetStaff 获取员工
func (s *StaffService) GetStaff(tenantID, id uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if staff == nil || staff.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return staff, nil
}

// ListStaff 获取员工列表
func (s *StaffService) ListStaff(filter repository.StaffListFilter) ([]models.Staff, int64, error) {
	return s.staffRepo.List(filter)
}

// DeleteStaff 删除员工（软删除），不允许删除自己
func (s *StaffService) DeleteStaff(tenantID, id, operatorID uint) error {
	if id == operatorID {
		return ErrStaffSelfDelete
	}
	staff, err := s.staffRepo.GetByID(id)
	if err != nil {
		return err
	}
	if staff == nil || staff.TenantID != tenantID {
		return ErrNotFound
	}
	return s.staffRepo.Delete(id)
}

func validStaffRole(role string) bool {
	switch role {
	case constants.StaffRoleOwner, constants.StaffRoleManager, constants.StaffRoleCashier:
		return true
	}
	return false
}
