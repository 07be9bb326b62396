package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type issueGiftCardRequest struct {
	Code          string       `json:"code"`
	CustomerID    *uint        `json:"customer_id"`
	InitialAmount models.Cents `json:"initial_amount"`
	Currency      string       `json:"currency"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	Note          string       `json:"note"`
}

type giftCardMutationRequest struct {
	Amount    models.Cents `json:"amount" binding:"required"`
	Reference string       `json:"reference"`
	Note      string       `json:"note"`
}

type giftCardNoteRequest struct {
	Note string `json:"note"`
}

func respondGiftCardError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrGiftCardNotFound):
		respondError(c, response.CodeNotFound, "礼品卡不存在", nil)
	case errors.Is(err, service.ErrGiftCardInvalid):
		respondError(c, response.CodeBadRequest, "礼品卡参数无效", nil)
	case errors.Is(err, service.ErrGiftCardNotActive):
		respondError(c, response.CodeBadRequest, "礼品卡不可用", nil)
	case errors.Is(err, service.ErrGiftCardExpired):
		respondError(c, response.CodeBadRequest, "礼品卡已过期", nil)
	case errors.Is(err, service.ErrGiftCardRemoved):
		respondError(c, response.CodeBadRequest, "礼品卡已移除", nil)
	case errors.Is(err, service.ErrGiftCardNotCancelled):
		respondError(c, response.CodeBadRequest, "仅已停用的礼品卡可以恢复", nil)
	case errors.Is(err, service.ErrGiftCardNoBalance):
		respondError(c, response.CodeBadRequest, "礼品卡余额为零，无法恢复", nil)
	case errors.Is(err, service.ErrGiftCardInsufficient):
		respondError(c, response.CodeBadRequest, "礼品卡余额不足", nil)
	case errors.Is(err, service.ErrGiftCardCodeExists):
		respondError(c, response.CodeBadRequest, "礼品卡卡号已存在", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// IssueGiftCard 发行礼品卡
func (h *Handler) IssueGiftCard(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req issueGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	card, err := h.GiftCardService.IssueGiftCard(service.IssueGiftCardInput{
		TenantID:      tenantID,
		Code:          req.Code,
		CustomerID:    req.CustomerID,
		InitialAmount: req.InitialAmount,
		Currency:      req.Currency,
		ExpiresAt:     req.ExpiresAt,
		IssuedBy:      staffID,
		Note:          req.Note,
	})
	if err != nil {
		respondGiftCardError(c, err, "礼品卡发行失败")
		return
	}

	response.Success(c, card)
}

// TopupGiftCard 礼品卡充值
func (h *Handler) TopupGiftCard(c *gin.Context) {
	h.mutateGiftCard(c, "礼品卡充值失败", h.GiftCardService.TopupGiftCard)
}

// RedeemGiftCard 礼品卡扣款
func (h *Handler) RedeemGiftCard(c *gin.Context) {
	h.mutateGiftCard(c, "礼品卡扣款失败", h.GiftCardService.RedeemGiftCard)
}

func (h *Handler) mutateGiftCard(c *gin.Context, fallback string, mutate func(service.GiftCardMutationInput) (*models.GiftCard, error)) {
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
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
		return
	}

	var req giftCardMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	card, err := mutate(service.GiftCardMutationInput{
		TenantID:  tenantID,
		CardID:    id,
		Amount:    req.Amount,
		Reference: req.Reference,
		StaffID:   staffID,
		Note:      req.Note,
	})
	if err != nil {
		respondGiftCardError(c, err, fallback)
		return
	}

	response.Success(c, card)
}

// CancelGiftCard 停用礼品卡
func (h *Handler) CancelGiftCard(c *gin.Context) {
	h.transitionGiftCard(c, "礼品卡停用失败", h.GiftCardService.CancelGiftCard)
}

// ReactivateGiftCard 恢复礼品卡
func (h *Handler) ReactivateGiftCard(c *gin.Context) {
	h.transitionGiftCard(c, "礼品卡恢复失败", h.GiftCardService.ReactivateGiftCard)
}

// RemoveGiftCard 移除礼品卡
func (h *Handler) RemoveGiftCard(c *gin.Context) {
	h.transitionGiftCard(c, "礼品卡移除失败", h.GiftCardService.RemoveGiftCard)
}

func (h *Handler) transitionGiftCard(c *gin.Context, fallback string, transition func(tenantID, cardID, staffID uint, note string) (*models.GiftCard, error)) {
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
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
		return
	}

	// 备注请求体可省略
	var req giftCardNoteRequest
	_ = c.ShouldBindJSON(&req)

	card, err := transition(tenantID, id, staffID, req.Note)
	if err != nil {
		respondGiftCardError(c, err, fallback)
		return
	}

	response.Success(c, card)
}

// GetGiftCard 获取礼品卡详情
func (h *Handler) GetGiftCard(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
		return
	}

	card, err := h.GiftCardService.GetGiftCard(tenantID, id)
	if err != nil {
		respondGiftCardError(c, err, "礼品卡查询失败")
		return
	}

	response.Success(c, card)
}

// GetGiftCardByCode 根据卡号查询礼品卡
func (h *Handler) GetGiftCardByCode(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "礼品卡卡号无效", nil)
		return
	}

	card, err := h.GiftCardService.GetGiftCardByCode(tenantID, code)
	if err != nil {
		respondGiftCardError(c, err, "礼品卡查询失败")
		return
	}

	response.Success(c, card)
}

// ListGiftCards 获取礼品卡列表
func (h *Handler) ListGiftCards(c *gin.Context) {
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

	cards, total, err := h.GiftCardService.ListGiftCards(repository.GiftCardListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   tenantID,
		Code:       c.Query("code"),
		Status:     c.Query("status"),
		CustomerID: customerID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "礼品卡列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, cards, pagination)
}

// ListGiftCardTransactions 获取礼品卡流水
func (h *Handler) ListGiftCardTransactions(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
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

	txns, total, err := h.GiftCardService.ListGiftCardTransactions(repository.GiftCardTxnListFilter{
		Page:        page,
		PageSize:    pageSize,
		TenantID:    tenantID,
		GiftCardID:  id,
		Type:        c.Query("type"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "礼品卡流水查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, txns, pagination)
}
