package admin

import (
	"errors"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	Staff     map[string]interface{} `json:"staff"`
	ExpiresAt string                 `json:"expires_at"`
}

// StaffLogin 员工登录
func (h *Handler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	staff, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
		case errors.Is(err, service.ErrStaffDisabled):
			respondError(c, response.CodeUnauthorized, "员工账号已停用", nil)
		default:
			respondError(c, response.CodeInternal, "登录失败", err)
		}
		return
	}

	response.Success(c, LoginResponse{
		Token: token,
		Staff: map[string]interface{}{
			"id":           staff.ID,
			"tenant_id":    staff.TenantID,
			"username":     staff.Username,
			"display_name": staff.DisplayName,
			"role":         staff.Role,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetStaffMe 获取当前登录员工信息
func (h *Handler) GetStaffMe(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	staff, err := h.StaffRepo.GetByID(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "员工信息查询失败", err)
		return
	}
	if staff == nil {
		respondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "员工信息查询失败", err)
		return
	}

	response.Success(c, gin.H{
		"id":            staff.ID,
		"tenant_id":     staff.TenantID,
		"username":      staff.Username,
		"display_name":  staff.DisplayName,
		"role":          staff.Role,
		"status":        staff.Status,
		"last_login_at": staff.LastLoginAt,
		"roles":         roles,
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeStaffPassword 修改当前员工密码
func (h *Handler) ChangeStaffPassword(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	if err := h.AuthService.ChangePassword(staffID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "原密码错误", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "新密码强度不足", nil)
		default:
			respondError(c, response.CodeInternal, "密码修改失败", err)
		}
		return
	}

	response.Success(c, nil)
}
