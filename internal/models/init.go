package models

import (
	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultTenant 初始化默认租户（门店）
func InitDefaultTenant() (*Tenant, error) {
	var tenant Tenant
	err := DB.Where("slug = ?", "default").First(&tenant).Error
	if err == nil {
		return &tenant, nil
	}

	tenant = Tenant{
		Name:          "Default Outlet",
		Slug:          "default",
		ReceiptPrefix: constants.DefaultReceiptPrefix,
		Currency:      constants.DefaultCurrency,
		Status:        "active",
	}
	if err := DB.Create(&tenant).Error; err != nil {
		return nil, err
	}
	logger.Infow("default_tenant_created", "slug", tenant.Slug)
	return &tenant, nil
}

// InitDefaultOwner 初始化默认店主账号
func InitDefaultOwner(username, password string) error {
	tenant, err := InitDefaultTenant()
	if err != nil {
		return err
	}

	var count int64
	DB.Model(&Staff{}).Count(&count)

	// 如果已有员工，确保默认账号仍是店主角色
	if count > 0 {
		if err := DB.Model(&Staff{}).Where("username = ?", "owner").
			Update("role", constants.StaffRoleOwner).Error; err != nil {
			logger.Warnw("ensure_default_owner_role_failed", "error", err)
		}
		return nil
	}

	if username == "" {
		username = "owner"
	}
	if password == "" {
		password = "owner123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := Staff{
		TenantID:     tenant.ID,
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         constants.StaffRoleOwner,
		Status:       constants.StaffStatusActive,
	}

	if err := DB.Create(&staff).Error; err != nil {
		return err
	}

	if password == "owner123" {
		logger.Warnw("default_owner_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_owner_password_change_required", "username", username)
	} else {
		logger.Warnw("default_owner_created", "username", username, "password_hidden", true)
	}

	return nil
}
