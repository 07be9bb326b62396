package admin

import (
	"errors"
	"strconv"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type createStaffRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required"`
}

type updateStaffRequest struct {
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}

type resetStaffPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// CreateStaff 创建员工账号
func (h *Handler) CreateStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	staff, err := h.StaffService.CreateStaff(service.CreateStaffInput{
		TenantID:    tenantID,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffInvalid):
			respondError(c, response.CodeBadRequest, "员工参数无效", nil)
		case errors.Is(err, service.ErrStaffUsernameExists):
			respondError(c, response.CodeBadRequest, "员工账号已存在", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "密码强度不足", nil)
		default:
			respondError(c, response.CodeInternal, "员工创建失败", err)
		}
		return
	}

	response.Success(c, staff)
}

// UpdateStaff 更新员工账号
func (h *Handler) UpdateStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	var req updateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	staff, err := h.StaffService.UpdateStaff(tenantID, id, service.UpdateStaffInput{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "员工不存在", nil)
		case errors.Is(err, service.ErrStaffInvalid):
			respondError(c, response.CodeBadRequest, "员工参数无效", nil)
		default:
			respondError(c, response.CodeInternal, "员工更新失败", err)
		}
		return
	}

	response.Success(c, staff)
}

// ResetStaffPassword 重置员工密码
func (h *Handler) ResetStaffPassword(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	var req resetStaffPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	if err := h.StaffService.ResetStaffPassword(tenantID, id, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "员工不存在", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "密码强度不足", nil)
		default:
			respondError(c, response.CodeInternal, "密码重置失败", err)
		}
		return
	}

	response.Success(c, nil)
}

// GetStaff 获取员工详情
func (h *Handler) GetStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	staff, err := h.StaffService.GetStaff(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "员工不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "员工信息查询失败", err)
		return
	}

	response.Success(c, staff)
}

// ListStaff 获取员工列表
func (h *Handler) ListStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	staffList, total, err := h.StaffService.ListStaff(repository.StaffListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "员工列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, staffList, pagination)
}

// DeleteStaff 删除员工账号
func (h *Handler) DeleteStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	operatorID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	if err := h.StaffService.DeleteStaff(tenantID, id, operatorID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "员工不存在", nil)
		case errors.Is(err, service.ErrStaffSelfDelete):
			respondError(c, response.CodeBadRequest, "不能删除自己的账号", nil)
		default:
			respondError(c, response.CodeInternal, "员工删除失败", err)
		}
		return
	}

	response.Success(c, nil)
}
