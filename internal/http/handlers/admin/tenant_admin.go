package admin

import (
	"errors"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type updateTenantRequest struct {
	Name          *string `json:"name"`
	ReceiptPrefix *string `json:"receipt_prefix"`
	Currency      *string `json:"currency"`
	Status        *string `json:"status"`
}

// GetTenantProfile 获取当前门店信息
func (h *Handler) GetTenantProfile(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	tenant, err := h.TenantService.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "门店不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "门店信息查询失败", err)
		return
	}

	response.Success(c, tenant)
}

// UpdateTenantProfile 更新当前门店信息
func (h *Handler) UpdateTenantProfile(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	tenant, err := h.TenantService.UpdateTenant(tenantID, service.UpdateTenantInput{
		Name:          req.Name,
		ReceiptPrefix: req.ReceiptPrefix,
		Currency:      req.Currency,
		Status:        req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "门店不存在", nil)
		case errors.Is(err, service.ErrTenantInvalid):
			respondError(c, response.CodeBadRequest, "门店参数无效", nil)
		default:
			respondError(c, response.CodeInternal, "门店更新失败", err)
		}
		return
	}

	response.Success(c, tenant)
}
