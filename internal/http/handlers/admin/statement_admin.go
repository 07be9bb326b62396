package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDailyStatement 获取日报
// 不带 day 参数时默认当天
func (h *Handler) GetDailyStatement(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	day := strings.TrimSpace(c.Query("day"))
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}

	summary, err := h.StatementService.GetDailySummary(c.Request.Context(), tenantID, day)
	if err != nil {
		if errors.Is(err, service.ErrStatementInvalidRange) {
			respondError(c, response.CodeBadRequest, "报表时间范围无效", nil)
			return
		}
		respondError(c, response.CodeInternal, "日报生成失败", err)
		return
	}

	response.Success(c, summary)
}

// GetMonthlyStatement 获取月报
// 不带 month 参数时默认当月
func (h *Handler) GetMonthlyStatement(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	statement, err := h.StatementService.GetMonthlyStatement(c.Request.Context(), tenantID, month)
	if err != nil {
		if errors.Is(err, service.ErrStatementInvalidRange) {
			respondError(c, response.CodeBadRequest, "报表时间范围无效", nil)
			return
		}
		respondError(c, response.CodeInternal, "月报生成失败", err)
		return
	}

	response.Success(c, statement)
}
