package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// idempotencyTTL is how long a posting key stays claimed
const idempotencyTTL = 24 * time.Hour

// Handlers bundles every handler the router mounts
type Handlers struct {
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
	Sale     *handler.SaleHandler
	Credit   *handler.CreditHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	Purchase *handler.PurchaseHandler
	Stock    *handler.StockHandler
	Report   *handler.ReportHandler
	Settings *handler.SettingsHandler
	User     *handler.UserHandler
}

// New builds the gin engine with all middleware and routes mounted
func New(cfg *config.Config, log *zap.Logger, tokens *auth.TokenManager, idem cache.IdempotencyStore, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.RegisterValidators()

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.GET("/health", h.System.Health)

	api := engine.Group("/api/v1")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(tokens))

	pos := authed.Group("/sales", middleware.RequireCapability(identity.CapPOSOperate))
	{
		pos.POST("", middleware.Idempotency(idem, idempotencyTTL), h.Sale.Create)
		pos.PUT("/:id", h.Sale.Update)
		pos.GET("", h.Sale.List)
		pos.GET("/:id", h.Sale.GetByID)
	}

	credit := authed.Group("/credit")
	{
		credit.POST("/payments", middleware.RequireCapability(identity.CapCreditReceive), h.Credit.ReceivePayment)
		credit.POST("/charges", middleware.RequireCapability(identity.CapCreditCharge), h.Credit.PostCharge)

		view := credit.Group("", middleware.RequireCapability(identity.CapCreditView))
		view.GET("/customers/:id/balance", h.Credit.Balance)
		view.GET("/customers/:id/statement", h.Credit.Statement)
	}

	catalog := authed.Group("/catalog", middleware.RequireCapability(identity.CapPOSOperate))
	{
		catalog.POST("/products", h.Product.Create)
		catalog.PUT("/products/:id", h.Product.Update)
		catalog.GET("/products/:id", h.Product.GetByID)
		catalog.GET("/products", h.Product.List)
		catalog.GET("/products/lookup", h.Product.LookupByBarcode)
		catalog.POST("/products/:id/deactivate", h.Product.Deactivate)
		catalog.GET("/products/export", h.Product.ExportCSV)
		catalog.POST("/products/import", h.Product.ImportCSV)

		catalog.POST("/categories", h.Category.Create)
		catalog.GET("/categories", h.Category.List)
		catalog.DELETE("/categories/:id", h.Category.Delete)
	}

	partners := authed.Group("/partners", middleware.RequireCapability(identity.CapPOSOperate))
	{
		partners.POST("/customers", h.Customer.Create)
		partners.PUT("/customers/:id", h.Customer.Update)
		partners.GET("/customers/:id", h.Customer.GetByID)
		partners.GET("/customers", h.Customer.List)

		partners.POST("/suppliers", h.Supplier.Create)
		partners.PUT("/suppliers/:id", h.Supplier.Update)
		partners.GET("/suppliers", h.Supplier.List)
		partners.DELETE("/suppliers/:id", h.Supplier.Delete)
	}

	purchases := authed.Group("/purchases", middleware.RequireCapability(identity.CapPurchasesManage))
	{
		purchases.POST("", middleware.Idempotency(idem, idempotencyTTL), h.Purchase.Create)
		purchases.GET("/:id", h.Purchase.GetByID)
		purchases.GET("", h.Purchase.List)
	}

	stock := authed.Group("/stock")
	{
		stock.GET("/levels", middleware.RequireCapability(identity.CapPOSOperate), h.Stock.Levels)

		adjust := stock.Group("", middleware.RequireCapability(identity.CapStockAdjust))
		adjust.POST("/adjustments", h.Stock.Adjust)
		adjust.POST("/adjustments/bulk", h.Stock.BulkAdjust)
	}

	reports := authed.Group("/reports", middleware.RequireCapability(identity.CapReportsView))
	{
		reports.GET("/sales", h.Report.SalesSummary)
		reports.GET("/sales/export", h.Report.ExportSales)
		reports.GET("/stock", h.Report.StockReport)
		reports.GET("/credit-outstanding", h.Report.CreditOutstanding)
		reports.GET("/customers/:id/statement/export", h.Report.ExportStatement)
	}

	settings := authed.Group("/settings", middleware.RequireCapability(identity.CapSettingsManage))
	{
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
	}

	users := authed.Group("/users", middleware.RequireCapability(identity.CapUsersManage))
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.POST("/:id/role", h.User.AssignRole)
		users.POST("/:id/password", h.User.ResetPassword)
		users.POST("/:id/active", h.User.SetActive)
		users.GET("/roles", h.User.ListRoles)
	}

	return engine
}
