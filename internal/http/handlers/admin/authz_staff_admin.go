package admin

import (
	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuthzStaff 获取员工及其角色列表
func (h *Handler) ListAuthzStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	staffList, _, err := h.StaffService.ListStaff(repository.StaffListFilter{
		Page:     1,
		PageSize: constants.MaxPageSize,
		TenantID: tenantID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "员工列表查询失败", err)
		return
	}

	items := make([]gin.H, 0, len(staffList))
	for _, staff := range staffList {
		roles, roleErr := h.AuthzService.GetStaffRoles(staff.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "员工角色查询失败", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":            staff.ID,
			"username":      staff.Username,
			"display_name":  staff.DisplayName,
			"role":          staff.Role,
			"status":        staff.Status,
			"last_login_at": staff.LastLoginAt,
			"created_at":    staff.CreatedAt,
			"roles":         roles,
		})
	}

	response.Success(c, items)
}

// GetAuthzStaffRoles 获取员工角色
func (h *Handler) GetAuthzStaffRoles(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}
	if _, err := h.StaffService.GetStaff(tenantID, staffID); err != nil {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "员工角色查询失败", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzStaffRoles 设置员工角色
func (h *Handler) SetAuthzStaffRoles(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}
	staff, err := h.StaffService.GetStaff(tenantID, staffID)
	if err != nil {
		respondError(c, response.CodeBadRequest, "员工ID无效", nil)
		return
	}

	var req authzSetStaffRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	if err := h.AuthzService.SetStaffRoles(staffID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "员工角色设置失败", err)
		return
	}

	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		OperatorStaffID:  currentStaffID(c),
		OperatorUsername: currentUsername(c),
		TargetStaffID:    &staffID,
		TargetUsername:   staff.Username,
		Action:           "staff_roles_update",
		RequestID:        currentRequestID(c),
		Detail: models.JSON{
			"target_staff_id": staffID,
			"target_username": staff.Username,
			"roles":           req.Roles,
		},
	})

	logger.Infow("staff_authz_roles_updated",
		"operator_staff_id", currentStaffID(c),
		"target_staff_id", staffID,
		"roles", req.Roles,
	)

	response.Success(c, nil)
}
