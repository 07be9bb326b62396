package pos

import (
	"errors"
	"strconv"
	"strings"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type createTransactionItemRequest struct {
	CatalogItemID uint `json:"catalog_item_id" binding:"required"`
	Quantity      int  `json:"quantity" binding:"required"`
}

type createTransactionRequest struct {
	CustomerID      *uint                          `json:"customer_id"`
	Items           []createTransactionItemRequest `json:"items" binding:"required"`
	VoucherCode     string                         `json:"voucher_code"`
	PaymentMethod   string                         `json:"payment_method" binding:"required"`
	GiftCardID      uint                           `json:"gift_card_id"`
	SessionCreditID uint                           `json:"session_credit_id"`
	Tendered        models.Cents                   `json:"tendered"`
	Note            string                         `json:"note"`
}

type voidTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func respondTransactionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		respondError(c, response.CodeNotFound, "交易不存在", nil)
	case errors.Is(err, service.ErrTransactionInvalid):
		respondError(c, response.CodeBadRequest, "交易参数无效", nil)
	case errors.Is(err, service.ErrTransactionEmptyItems):
		respondError(c, response.CodeBadRequest, "交易至少需要一个商品", nil)
	case errors.Is(err, service.ErrTransactionAlreadyVoided):
		respondError(c, response.CodeBadRequest, "交易已作废", nil)
	case errors.Is(err, service.ErrTransactionNotCompleted):
		respondError(c, response.CodeBadRequest, "仅已完成的交易可以作废", nil)
	case errors.Is(err, service.ErrTransactionNotVoided):
		respondError(c, response.CodeBadRequest, "仅已作废的交易可移除", nil)
	case errors.Is(err, service.ErrTransactionRemoved):
		respondError(c, response.CodeBadRequest, "交易已移除", nil)
	case errors.Is(err, service.ErrTenderInsufficient):
		respondError(c, response.CodeBadRequest, "实付金额不足", nil)
	case errors.Is(err, service.ErrItemNotFound):
		respondError(c, response.CodeBadRequest, "商品不存在", nil)
	case errors.Is(err, service.ErrItemInactive):
		respondError(c, response.CodeBadRequest, "商品已下架", nil)
	case errors.Is(err, service.ErrCustomerNotFound):
		respondError(c, response.CodeBadRequest, "会员不存在", nil)
	case errors.Is(err, service.ErrVoucherNotFound),
		errors.Is(err, service.ErrVoucherInvalid),
		errors.Is(err, service.ErrVoucherNotStarted),
		errors.Is(err, service.ErrVoucherExpired),
		errors.Is(err, service.ErrVoucherUsageLimit),
		errors.Is(err, service.ErrVoucherPerCustomer),
		errors.Is(err, service.ErrVoucherMinSubtotal),
		errors.Is(err, service.ErrVoucherNoSession):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrGiftCardNotFound),
		errors.Is(err, service.ErrGiftCardNotActive),
		errors.Is(err, service.ErrGiftCardExpired),
		errors.Is(err, service.ErrGiftCardInsufficient):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrSessionCreditNotFound),
		errors.Is(err, service.ErrSessionCreditNotActive),
		errors.Is(err, service.ErrSessionCreditExpired),
		errors.Is(err, service.ErrSessionCreditInsufficient):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// CreateTransaction 收银台结账
func (h *Handler) CreateTransaction(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	items := make([]service.CreateTransactionItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateTransactionItemInput{
			CatalogItemID: item.CatalogItemID,
			Quantity:      item.Quantity,
		})
	}

	txn, err := h.POSService.CreateTransaction(service.CreateTransactionInput{
		TenantID:        tenantID,
		StaffID:         staffID,
		CustomerID:      req.CustomerID,
		Items:           items,
		VoucherCode:     req.VoucherCode,
		PaymentMethod:   req.PaymentMethod,
		GiftCardID:      req.GiftCardID,
		SessionCreditID: req.SessionCreditID,
		Tendered:        req.Tendered,
		Note:            req.Note,
	})
	if err != nil {
		respondTransactionError(c, err, "交易创建失败")
		return
	}

	requestLog(c).Infow("pos_transaction_created",
		"tenant_id", tenantID,
		"staff_id", staffID,
		"transaction_id", txn.ID,
		"receipt_number", txn.ReceiptNumber,
		"total", txn.Total,
	)

	response.Success(c, txn)
}

// VoidTransaction 作废交易
func (h *Handler) VoidTransaction(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易ID无效", nil)
		return
	}

	var req voidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	txn, err := h.POSService.VoidTransaction(service.VoidTransactionInput{
		TenantID:      tenantID,
		TransactionID: uint(id),
		StaffID:       staffID,
		Reason:        req.Reason,
	})
	if err != nil {
		respondTransactionError(c, err, "交易作废失败")
		return
	}

	requestLog(c).Infow("pos_transaction_voided",
		"tenant_id", tenantID,
		"staff_id", staffID,
		"transaction_id", txn.ID,
		"reason", req.Reason,
	)

	response.Success(c, txn)
}

// RemoveTransaction 移除已作废交易
func (h *Handler) RemoveTransaction(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易ID无效", nil)
		return
	}

	if err := h.POSService.RemoveTransaction(tenantID, uint(id), staffID); err != nil {
		respondTransactionError(c, err, "交易移除失败")
		return
	}

	response.Success(c, nil)
}

// GetTransaction 获取交易详情
func (h *Handler) GetTransaction(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "交易ID无效", nil)
		return
	}

	txn, err := h.POSService.GetTransaction(tenantID, uint(id))
	if err != nil {
		respondTransactionError(c, err, "交易查询失败")
		return
	}

	response.Success(c, txn)
}

// GetTransactionByReceipt 根据小票单号查询交易
func (h *Handler) GetTransactionByReceipt(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	receiptNumber := strings.TrimSpace(c.Param("receipt_number"))
	if receiptNumber == "" {
		respondError(c, response.CodeBadRequest, "小票单号无效", nil)
		return
	}

	txn, err := h.POSService.GetTransactionByReceipt(tenantID, receiptNumber)
	if err != nil {
		respondTransactionError(c, err, "交易查询失败")
		return
	}

	response.Success(c, txn)
}

// ListTransactions 获取交易列表
func (h *Handler) ListTransactions(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var customerID uint
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		parsed, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			respondError(c, response.CodeBadRequest, "请求参数无效", parseErr)
			return
		}
		customerID = uint(parsed)
	}

	txns, total, err := h.POSService.ListTransactions(repository.POSTransactionListFilter{
		Page:          page,
		PageSize:      pageSize,
		TenantID:      tenantID,
		ReceiptNumber: c.Query("receipt_number"),
		CustomerID:    customerID,
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "交易列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, txns, pagination)
}
