package admin

import (
	"errors"
	"strconv"

	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"

	"github.com/gin-gonic/gin"
)

type createCatalogItemRequest struct {
	SKU          string       `json:"sku" binding:"required"`
	Name         string       `json:"name" binding:"required"`
	Type         string       `json:"type" binding:"required"`
	UnitPrice    models.Cents `json:"unit_price"`
	SessionCount int          `json:"session_count"`
	Tags         []string     `json:"tags"`
	IsActive     bool         `json:"is_active"`
}

type updateCatalogItemRequest struct {
	Name         *string       `json:"name"`
	UnitPrice    *models.Cents `json:"unit_price"`
	SessionCount *int          `json:"session_count"`
	Tags         *[]string     `json:"tags"`
	IsActive     *bool         `json:"is_active"`
}

// CreateCatalogItem 创建目录项
func (h *Handler) CreateCatalogItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	var req createCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	item, err := h.CatalogService.CreateCatalogItem(service.CreateCatalogItemInput{
		TenantID:     tenantID,
		SKU:          req.SKU,
		Name:         req.Name,
		Type:         req.Type,
		UnitPrice:    req.UnitPrice,
		SessionCount: req.SessionCount,
		Tags:         req.Tags,
		IsActive:     req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCatalogInvalid):
			respondError(c, response.CodeBadRequest, "商品参数无效", nil)
		case errors.Is(err, service.ErrCatalogSKUExists):
			respondError(c, response.CodeBadRequest, "货号已存在", nil)
		default:
			respondError(c, response.CodeInternal, "商品创建失败", err)
		}
		return
	}

	response.Success(c, item)
}

// UpdateCatalogItem 更新目录项
func (h *Handler) UpdateCatalogItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "商品ID无效", nil)
		return
	}

	var req updateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	item, err := h.CatalogService.UpdateCatalogItem(tenantID, id, service.UpdateCatalogItemInput{
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		SessionCount: req.SessionCount,
		Tags:         req.Tags,
		IsActive:     req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCatalogNotFound):
			respondError(c, response.CodeNotFound, "商品不存在", nil)
		case errors.Is(err, service.ErrCatalogInvalid):
			respondError(c, response.CodeBadRequest, "商品参数无效", nil)
		default:
			respondError(c, response.CodeInternal, "商品更新失败", err)
		}
		return
	}

	response.Success(c, item)
}

// GetCatalogItem 获取目录项详情
func (h *Handler) GetCatalogItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "商品ID无效", nil)
		return
	}

	item, err := h.CatalogService.GetCatalogItem(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrCatalogNotFound) {
			respondError(c, response.CodeNotFound, "商品不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "商品查询失败", err)
		return
	}

	response.Success(c, item)
}

// ListCatalogItems 获取目录项列表
func (h *Handler) ListCatalogItems(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	items, total, err := h.CatalogService.ListCatalogItems(repository.CatalogItemListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   tenantID,
		Type:       c.Query("type"),
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "商品列表查询失败", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, items, pagination)
}

// DeleteCatalogItem 删除目录项
func (h *Handler) DeleteCatalogItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "商品ID无效", nil)
		return
	}

	if err := h.CatalogService.DeleteCatalogItem(tenantID, id); err != nil {
		if errors.Is(err, service.ErrCatalogNotFound) {
			respondError(c, response.CodeNotFound, "商品不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "商品删除失败", err)
		return
	}

	response.Success(c, nil)
}
