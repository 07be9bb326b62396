package admin

import (
	"errors"
	"strconv"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type updateCustomerRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Notes  *string `json:"notes"`
	Status *string `json:"status"`
}

// CreateCustomer 创建会员
func (h *Handler) CreateCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	customer, err := h.CustomerService.CreateCustomer(service.CreateCustomerInput{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrCustomerInvalid) {
			respondError(c, response.CodeBadRequest, "会员参数无效", nil)
			return
		}
		respondError(c, response.CodeInternal, "会员创建失败", err)
		return
	}

	response.Success(c, customer)
}

// UpdateCustomer 更新会员资料
func (h *Handler) UpdateCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "会员ID无效", nil)
		return
	}

	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	customer, err := h.CustomerService.UpdateCustomer(tenantID, id, service.UpdateCustomerInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Notes:  req.Notes,
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			respondError(c, response.CodeNotFound, "会员不存在", nil)
		case errors.Is(err, service.ErrCustomerInvalid):
			respondError(c, response.CodeBadRequest, "会员参数无效", nil)
		default:
			respondError(c, response.CodeInternal, "会员更新失败", err)
		}
		return
	}

	response.Success(c, customer)
}

// GetCustomer 获取会员详情
func (h *Handler) GetCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "会员ID无效", nil)
		return
	}

	customer, err := h.CustomerService.GetCustomer(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "会员不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "会员信息查询失败", err)
		return
	}

	response.Success(c, customer)
}

// ListCustomers 获取会员列表
func (h *Handler) ListCustomers(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	customers, total, err := h.CustomerService.ListCustomers(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "会员列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, customers, pagination)
}

// DeleteCustomer 删除会员
func (h *Handler) DeleteCustomer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "会员ID无效", nil)
		return
	}

	if err := h.CustomerService.DeleteCustomer(tenantID, id); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "会员不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "会员删除失败", err)
		return
	}

	response.Success(c, nil)
}
