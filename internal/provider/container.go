package provider

import (
	"github.com/niaga-pos/internal/authz"
	"github.com/niaga-pos/internal/cache"
	"github.com/niaga-pos/internal/config"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/queue"
	"github.com/niaga-pos/internal/repository"
	"github.com/niaga-pos/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	TenantRepo        repository.TenantRepository
	StaffRepo         repository.StaffRepository
	CustomerRepo      repository.CustomerRepository
	CatalogRepo       repository.CatalogRepository
	VoucherRepo       repository.VoucherRepository
	GiftCardRepo      repository.GiftCardRepository
	SessionCreditRepo repository.SessionCreditRepository
	POSRepo           repository.POSTransactionRepository
	StatementRepo     repository.StatementRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	StaffService         *service.StaffService
	TenantService        *service.TenantService
	CustomerService      *service.CustomerService
	CatalogService       *service.CatalogService
	VoucherService       *service.VoucherService
	GiftCardService      *service.GiftCardService
	SessionCreditService *service.SessionCreditService
	POSService           *service.POSService
	StatementService     *service.StatementService
	AuthzAuditService    *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.TenantRepo = repository.NewTenantRepository(db)
	c.StaffRepo = repository.NewStaffRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
	c.VoucherRepo = repository.NewVoucherRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.SessionCreditRepo = repository.NewSessionCreditRepository(db)
	c.POSRepo = repository.NewPOSTransactionRepository(db)
	c.StatementRepo = repository.NewStatementRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.StaffRepo)
	c.StaffService = service.NewStaffService(c.StaffRepo, c.AuthService)
	c.TenantService = service.NewTenantService(c.TenantRepo)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo)
	c.CatalogService = service.NewCatalogService(c.CatalogRepo)
	c.VoucherService = service.NewVoucherService(c.VoucherRepo)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo)
	c.SessionCreditService = service.NewSessionCreditService(c.SessionCreditRepo, c.CatalogRepo)
	c.POSService = service.NewPOSService(
		c.POSRepo,
		c.CatalogRepo,
		c.CustomerRepo,
		c.TenantRepo,
		c.VoucherService,
		c.GiftCardService,
		c.SessionCreditService,
		c.QueueClient,
		c.Config.Receipt.Prefix,
	)
	c.StatementService = service.NewStatementService(c.StatementRepo, c.Config.Statement.CacheTTLSeconds)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
