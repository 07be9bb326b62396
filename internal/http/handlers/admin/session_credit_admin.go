package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type assignSessionCreditRequest struct {
	CustomerID    uint       `json:"customer_id" binding:"required"`
	CatalogItemID uint       `json:"catalog_item_id" binding:"required"`
	ExpiresAt     *time.Time `json:"expires_at"`
	Reference     string     `json:"reference"`
	Note          string     `json:"note"`
}

type consumeSessionCreditRequest struct {
	Sessions  int    `json:"sessions" binding:"required"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type adjustSessionCreditRequest struct {
	Delta         int    `json:"delta"`
	TotalSessions *int   `json:"total_sessions"`
	UsedSessions  *int   `json:"used_sessions"`
	Reference     string `json:"reference"`
	Note          string `json:"note"`
}

func respondSessionCreditError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSessionCreditNotFound):
		respondError(c, response.CodeNotFound, "课时记录不存在", nil)
	case errors.Is(err, service.ErrSessionCreditInvalid):
		respondError(c, response.CodeBadRequest, "课时参数无效", nil)
	case errors.Is(err, service.ErrSessionCreditNotActive):
		respondError(c, response.CodeBadRequest, "课时不可用", nil)
	case errors.Is(err, service.ErrSessionCreditExpired):
		respondError(c, response.CodeBadRequest, "课时已过期", nil)
	case errors.Is(err, service.ErrSessionCreditInsufficient):
		respondError(c, response.CodeBadRequest, "剩余课时不足", nil)
	case errors.Is(err, service.ErrSessionCreditOutOfRange):
		respondError(c, response.CodeBadRequest, "课时调整越界", nil)
	case errors.Is(err, service.ErrSessionCreditNotPackage):
		respondError(c, response.CodeBadRequest, "该商品不是课时包", nil)
	case errors.Is(err, service.ErrCustomerNotFound):
		respondError(c, response.CodeNotFound, "会员不存在", nil)
	case errors.Is(err, service.ErrCatalogNotFound):
		respondError(c, response.CodeNotFound, "商品不存在", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// AssignSessionCredit 手工开卡（发放课时）
func (h *Handler) AssignSessionCredit(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req assignSessionCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	credit, err := h.SessionCreditService.AssignSessionCredit(service.AssignSessionCreditInput{
		TenantID:      tenantID,
		CustomerID:    req.CustomerID,
		CatalogItemID: req.CatalogItemID,
		ExpiresAt:     req.ExpiresAt,
		StaffID:       staffID,
		Reference:     req.Reference,
		Note:          req.Note,
	})
	if err != nil {
		respondSessionCreditError(c, err, "课时发放失败")
		return
	}

	response.Success(c, credit)
}

// ConsumeSessionCredit 核销课时
func (h *Handler) ConsumeSessionCredit(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "课时ID无效", nil)
		return
	}

	var req consumeSessionCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	credit, err := h.SessionCreditService.ConsumeSessionCredit(service.ConsumeSessionCreditInput{
		TenantID:  tenantID,
		CreditID:  id,
		Sessions:  req.Sessions,
		Reference: req.Reference,
		StaffID:   staffID,
		Note:      req.Note,
	})
	if err != nil {
		respondSessionCreditError(c, err, "课时核销失败")
		return
	}

	response.Success(c, credit)
}

// AdjustSessionCredit 手工调整课时
func (h *Handler) AdjustSessionCredit(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "课时ID无效", nil)
		return
	}

	var req adjustSessionCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	credit, err := h.SessionCreditService.AdjustSessionCredit(service.AdjustSessionCreditInput{
		TenantID:      tenantID,
		CreditID:      id,
		Delta:         req.Delta,
		TotalSessions: req.TotalSessions,
		UsedSessions:  req.UsedSessions,
		Reference:     req.Reference,
		StaffID:       staffID,
		Note:          req.Note,
	})
	if err != nil {
		respondSessionCreditError(c, err, "课时调整失败")
		return
	}

	response.Success(c, credit)
}

// GetSessionCredit 获取课时详情
func (h *Handler) GetSessionCredit(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "课时ID无效", nil)
		return
	}

	credit, err := h.SessionCreditService.GetSessionCredit(tenantID, id)
	if err != nil {
		respondSessionCreditError(c, err, "课时查询失败")
		return
	}

	response.Success(c, credit)
}

// ListSessionCredits 获取课时列表
func (h *Handler) ListSessionCredits(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var customerID uint
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "请求参数无效", err)
			return
		}
		customerID = uint(parsed)
	}

	credits, total, err := h.SessionCreditService.ListSessionCredits(repository.SessionCreditListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "课时列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, credits, pagination)
}

// ListSessionCreditTransactions 获取课时流水
func (h *Handler) ListSessionCreditTransactions(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "课时ID无效", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	txns, total, err := h.SessionCreditService.ListSessionCreditTransactions(repository.SessionCreditTxnListFilter{
		Page:            page,
		PageSize:        pageSize,
		TenantID:        tenantID,
		SessionCreditID: id,
		Type:            c.Query("type"),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "课时流水查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, txns, pagination)
}
