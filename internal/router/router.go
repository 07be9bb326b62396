package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/niaga-pos/internal/authz"
	"github.com/niaga-pos/internal/cache"
	"github.com/niaga-pos/internal/config"
	adminhandlers "github.com/niaga-pos/internal/http/handlers/admin"
	poshandlers "github.com/niaga-pos/internal/http/handlers/pos"
	"github.com/niaga-pos/internal/http/response"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按收银台/管理端分组）
	posHandler := poshandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "np"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:staff_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录过于频繁，请 %d 秒后重试",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 收银台接口（员工鉴权 + RBAC）
		posGroup := apiV1.Group("/pos")
		posGroup.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo), StaffRBACMiddleware(c.AuthzService))
		{
			posGroup.POST("/transactions", posHandler.CreateTransaction)
			posGroup.GET("/transactions", posHandler.ListTransactions)
			posGroup.GET("/transactions/:id", posHandler.GetTransaction)
			posGroup.POST("/transactions/:id/void", posHandler.VoidTransaction)
			posGroup.DELETE("/transactions/:id", posHandler.RemoveTransaction)
			posGroup.GET("/receipts/:receipt_number", posHandler.GetTransactionByReceipt)
			posGroup.POST("/vouchers/preview", posHandler.PreviewVoucher)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.StaffLogin)

			// 需要鉴权的接口
			authorized := admin.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo), StaffRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetStaffMe)
				authorized.PUT("/password", adminHandler.ChangeStaffPassword)

				// 门店信息
				authorized.GET("/tenant", adminHandler.GetTenantProfile)
				authorized.PUT("/tenant", adminHandler.UpdateTenantProfile)

				// 员工管理
				authorized.GET("/staff", adminHandler.ListStaff)
				authorized.GET("/staff/:id", adminHandler.GetStaff)
				authorized.POST("/staff", adminHandler.CreateStaff)
				authorized.PUT("/staff/:id", adminHandler.UpdateStaff)
				authorized.PUT("/staff/:id/password", adminHandler.ResetStaffPassword)
				authorized.DELETE("/staff/:id", adminHandler.DeleteStaff)

				// 会员管理
				authorized.GET("/customers", adminHandler.ListCustomers)
				authorized.GET("/customers/:id", adminHandler.GetCustomer)
				authorized.POST("/customers", adminHandler.CreateCustomer)
				authorized.PUT("/customers/:id", adminHandler.UpdateCustomer)
				authorized.DELETE("/customers/:id", adminHandler.DeleteCustomer)

				// 商品目录管理
				authorized.GET("/catalog-items", adminHandler.ListCatalogItems)
				authorized.GET("/catalog-items/:id", adminHandler.GetCatalogItem)
				authorized.POST("/catalog-items", adminHandler.CreateCatalogItem)
				authorized.PUT("/catalog-items/:id", adminHandler.UpdateCatalogItem)
				authorized.DELETE("/catalog-items/:id", adminHandler.DeleteCatalogItem)

				// 优惠券管理
				authorized.GET("/vouchers", adminHandler.ListVouchers)
				authorized.GET("/vouchers/:id", adminHandler.GetVoucher)
				authorized.POST("/vouchers", adminHandler.CreateVoucher)
				authorized.PUT("/vouchers/:id", adminHandler.UpdateVoucher)
				authorized.DELETE("/vouchers/:id", adminHandler.DeleteVoucher)

				// 礼品卡管理
				authorized.GET("/gift-cards", adminHandler.ListGiftCards)
				authorized.GET("/gift-cards/:id", adminHandler.GetGiftCard)
				authorized.GET("/gift-cards/by-code/:code", adminHandler.GetGiftCardByCode)
				authorized.POST("/gift-cards", adminHandler.IssueGiftCard)
				authorized.POST("/gift-cards/:id/topup", adminHandler.TopupGiftCard)
				authorized.POST("/gift-cards/:id/redeem", adminHandler.RedeemGiftCard)
				authorized.POST("/gift-cards/:id/cancel", adminHandler.CancelGiftCard)
				authorized.POST("/gift-cards/:id/reactivate", adminHandler.ReactivateGiftCard)
				authorized.DELETE("/gift-cards/:id", adminHandler.RemoveGiftCard)
				authorized.GET("/gift-cards/:id/transactions", adminHandler.ListGiftCardTransactions)

				// 课时管理
				authorized.GET("/session-credits", adminHandler.ListSessionCredits)
				authorized.GET("/session-credits/:id", adminHandler.GetSessionCredit)
				authorized.POST("/session-credits", adminHandler.AssignSessionCredit)
				authorized.POST("/session-credits/:id/consume", adminHandler.ConsumeSessionCredit)
				authorized.POST("/session-credits/:id/adjust", adminHandler.AdjustSessionCredit)
				authorized.GET("/session-credits/:id/transactions", adminHandler.ListSessionCreditTransactions)

				// 报表
				authorized.GET("/statements/daily", adminHandler.GetDailyStatement)
				authorized.GET("/statements/monthly", adminHandler.GetMonthlyStatement)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/staff", adminHandler.ListAuthzStaff)
				authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/staff/:id/roles", adminHandler.GetAuthzStaffRoles)
				authorized.PUT("/authz/staff/:id/roles", adminHandler.SetAuthzStaffRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") && !strings.HasPrefix(item.Path, "/api/v1/pos/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" && segments[0] != "pos" {
		return segments[0]
	}
	if len(segments) > 1 && segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
