package pos

import (
	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type previewVoucherRequest struct {
	CustomerID  uint                           `json:"customer_id"`
	VoucherCode string                         `json:"voucher_code" binding:"required"`
	Items       []createTransactionItemRequest `json:"items" binding:"required"`
}

// PreviewVoucher 结账前试算优惠金额
func (h *Handler) PreviewVoucher(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req previewVoucherRequest
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

	preview, err := h.POSService.PreviewVoucher(tenantID, req.CustomerID, req.VoucherCode, items)
	if err != nil {
		respondTransactionError(c, err, "优惠试算失败")
		return
	}

	response.Success(c, preview)
}
