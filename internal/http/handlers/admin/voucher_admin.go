package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type createVoucherRequest struct {
	Code             string       `json:"code" binding:"required"`
	Name             string       `json:"name" binding:"required"`
	Type             string       `json:"type" binding:"required"`
	Source           string       `json:"source"`
	PercentOff       int          `json:"percent_off"`
	AmountOff        models.Cents `json:"amount_off"`
	MinSubtotal      models.Cents `json:"min_subtotal"`
	MaxDiscount      models.Cents `json:"max_discount"`
	UsageLimit       int          `json:"usage_limit"`
	PerCustomerLimit int          `json:"per_customer_limit"`
	StartsAt         *time.Time   `json:"starts_at"`
	EndsAt           *time.Time   `json:"ends_at"`
	IsActive         bool         `json:"is_active"`
}

type updateVoucherRequest struct {
	Name             *string       `json:"name"`
	MinSubtotal      *models.Cents `json:"min_subtotal"`
	MaxDiscount      *models.Cents `json:"max_discount"`
	UsageLimit       *int          `json:"usage_limit"`
	PerCustomerLimit *int          `json:"per_customer_limit"`
	StartsAt         *time.Time    `json:"starts_at"`
	EndsAt           *time.Time    `json:"ends_at"`
	ClearStartsAt    bool          `json:"clear_starts_at"`
	ClearEndsAt      bool          `json:"clear_ends_at"`
	IsActive         *bool         `json:"is_active"`
}

// CreateVoucher 创建优惠券
func (h *Handler) CreateVoucher(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req createVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	voucher, err := h.VoucherService.CreateVoucher(service.CreateVoucherInput{
		TenantID:         tenantID,
		Code:             req.Code,
		Name:             req.Name,
		Type:             req.Type,
		Source:           req.Source,
		PercentOff:       req.PercentOff,
		AmountOff:        req.AmountOff,
		MinSubtotal:      req.MinSubtotal,
		MaxDiscount:      req.MaxDiscount,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: req.PerCustomerLimit,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		IsActive:         req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherInvalid):
			respondError(c, response.CodeBadRequest, "优惠券参数无效", nil)
		case errors.Is(err, service.ErrVoucherCodeExists):
			respondError(c, response.CodeBadRequest, "优惠码已存在", nil)
		default:
			respondError(c, response.CodeInternal, "优惠券创建失败", err)
		}
		return
	}

	response.Success(c, voucher)
}

// UpdateVoucher 更新优惠券
func (h *Handler) UpdateVoucher(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "优惠券ID无效", nil)
		return
	}

	var req updateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	voucher, err := h.VoucherService.UpdateVoucher(tenantID, id, service.UpdateVoucherInput{
		Name:             req.Name,
		MinSubtotal:      req.MinSubtotal,
		MaxDiscount:      req.MaxDiscount,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: req.PerCustomerLimit,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		ClearStartsAt:    req.ClearStartsAt,
		ClearEndsAt:      req.ClearEndsAt,
		IsActive:         req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			respondError(c, response.CodeNotFound, "优惠券不存在", nil)
		case errors.Is(err, service.ErrVoucherInvalid):
			respondError(c, response.CodeBadRequest, "优惠券参数无效", nil)
		default:
			respondError(c, response.CodeInternal, "优惠券更新失败", err)
		}
		return
	}

	response.Success(c, voucher)
}

// GetVoucher 获取优惠券详情
func (h *Handler) GetVoucher(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "优惠券ID无效", nil)
		return
	}

	voucher, err := h.VoucherService.GetVoucher(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			respondError(c, response.CodeNotFound, "优惠券不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "优惠券查询失败", err)
		return
	}

	response.Success(c, voucher)
}

// ListVouchers 获取优惠券列表
func (h *Handler) ListVouchers(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		flag := raw == "true"
		isActive = &flag
	}

	vouchers, total, err := h.VoucherService.ListVouchers(repository.VoucherListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Code:     c.Query("code"),
		Type:     c.Query("type"),
		IsActive: isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "优惠券列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, vouchers, pagination)
}

// DeleteVoucher 删除优惠券
func (h *Handler) DeleteVoucher(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "优惠券ID无效", nil)
		return
	}

	if err := h.VoucherService.DeleteVoucher(tenantID, id); err != nil {
		if errors.Is(err, service.ErrVoucherNotFound) {
			respondError(c, response.CodeNotFound, "优惠券不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "优惠券删除失败", err)
		return
	}

	response.Success(c, nil)
}
