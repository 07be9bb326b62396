package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/niaga-pos/internal/config"
	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Staff{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-auth-service"
	cfg.JWT.ExpireHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true}
	return NewAuthService(cfg, repository.NewStaffRepository(db)), db
}

func createTestStaff(t *testing.T, db *gorm.DB, username, password, status string) *models.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	staff := models.Staff{
		TenantID:     1,
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         constants.StaffRoleCashier,
		Status:       status,
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	return &staff
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestStaff(t, db, "cashier", "secret123", constants.StaffStatusActive)

	staff, token, expiresAt, err := svc.Login("cashier", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expected future expiry")
	}
	if staff.LastLoginAt == nil {
		t.Fatal("expected last login recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.StaffID != staff.ID || claims.TenantID != staff.TenantID || claims.Username != "cashier" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != constants.StaffRoleCashier {
		t.Fatalf("expected cashier role in claims, got %s", claims.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestStaff(t, db, "cashier", "secret123", constants.StaffStatusActive)

	if _, _, _, err := svc.Login("cashier", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginRejectsDisabledStaff(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestStaff(t, db, "gone", "secret123", constants.StaffStatusDisabled)

	if _, _, _, err := svc.Login("gone", "secret123"); !errors.Is(err, ErrStaffDisabled) {
		t.Fatalf("expected ErrStaffDisabled, got %v", err)
	}
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	staff := createTestStaff(t, db, "cashier", "secret123", constants.StaffStatusActive)

	if err := svc.ChangePassword(staff.ID, "wrong", "newpass123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	// 新密码不符合策略
	if err := svc.ChangePassword(staff.ID, "secret123", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if err := svc.ChangePassword(staff.ID, "secret123", "newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var reloaded models.Staff
	if err := db.First(&reloaded, staff.ID).Error; err != nil {
		t.Fatalf("reload staff failed: %v", err)
	}
	if reloaded.TokenVersion != staff.TokenVersion+1 {
		t.Fatalf("expected token version bumped, got %d", reloaded.TokenVersion)
	}
	if reloaded.TokenInvalidBefore == nil {
		t.Fatal("expected token invalid-before timestamp set")
	}

	// 旧密码失效，新密码可登录
	if _, _, _, err := svc.Login("cashier", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, _, _, err := svc.Login("cashier", "newpass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	cases := []struct {
		password string
		ok       bool
	}{
		{"longenough1", true},
		{"short1", false},      // 长度不足
		{"nodigitshere", false}, // 缺少数字
	}
	for _, tc := range cases {
		err := svc.ValidatePassword(tc.password)
		if tc.ok && err != nil {
			t.Fatalf("password %q should pass, got %v", tc.password, err)
		}
		if !tc.ok && !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q should fail with ErrWeakPassword, got %v", tc.password, err)
		}
	}
}

func TestParseJWTRejectsTamperedToken(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestStaff(t, db, "cashier", "secret123", constants.StaffStatusActive)

	_, token, _, err := svc.Login("cashier", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatal("expected tampered token rejected")
	}
}
