package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	creditapp "github.com/retailpos/backend/internal/application/credit"
	identityapp "github.com/retailpos/backend/internal/application/identity"
	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	partnerapp "github.com/retailpos/backend/internal/application/partner"
	posapp "github.com/retailpos/backend/internal/application/pos"
	reportapp "github.com/retailpos/backend/internal/application/report"
	settingsapp "github.com/retailpos/backend/internal/application/settings"
	tradeapp "github.com/retailpos/backend/internal/application/trade"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/notify"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting retailpos backend",
		zap.String("version", version),
		zap.String("environment", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
	)

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		// Postgres deployments run cmd/migrate instead
		if err := persistence.AutoMigrate(db); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	supplierRepo := persistence.NewGormSupplierRepository(db)
	ledgerRepo := persistence.NewGormLedgerRepository(db)
	settingsRepo := persistence.NewGormSettingsRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	roleRepo := persistence.NewGormRoleRepository(db)

	scope := persistence.NewGormTransactionScope(db)
	notifier := notify.NewSMSNotifier(cfg.Notify, log)
	tokens := auth.NewTokenManager(cfg.JWT)
	idempotency := cache.New(cfg.Redis)

	if err := bootstrapAdmin(userRepo, roleRepo, log); err != nil {
		log.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	// Application services
	saleService := posapp.NewSaleService(scope, notifier, log)
	creditService := creditapp.NewService(scope, notifier, log)
	adjustmentService := inventoryapp.NewAdjustmentService(scope, log)
	purchaseService := tradeapp.NewPurchaseService(scope, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	customerService := partnerapp.NewCustomerService(customerRepo, ledgerRepo, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	reportService := reportapp.NewService(scope, log)
	settingsService := settingsapp.NewService(settingsRepo)
	authService := identityapp.NewAuthService(userRepo, tokens, log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)

	engine := router.New(cfg, log, tokens, idempotency, router.Handlers{
		System:   handler.NewSystemHandler(version),
		Auth:     handler.NewAuthHandler(authService),
		Sale:     handler.NewSaleHandler(saleService),
		Credit:   handler.NewCreditHandler(creditService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Customer: handler.NewCustomerHandler(customerService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Purchase: handler.NewPurchaseHandler(purchaseService),
		Stock:    handler.NewStockHandler(adjustmentService),
		Report:   handler.NewReportHandler(reportService),
		Settings: handler.NewSettingsHandler(settingsService),
		User:     handler.NewUserHandler(userService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("stopped")
}

// bootstrapAdmin creates the admin role and account on a fresh database.
// The password comes from POS_ADMIN_PASSWORD; without it an empty user
// table is left alone and only a warning is logged.
func bootstrapAdmin(users identity.UserRepository, roles identity.RoleRepository, log *zap.Logger) error {
	ctx := context.Background()

	existing, err := users.FindByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	password := os.Getenv("POS_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("no admin account and POS_ADMIN_PASSWORD not set, skipping bootstrap")
		return nil
	}

	role, err := roles.FindByName(ctx, "admin")
	if err != nil {
		return err
	}
	if role == nil {
		role, err = identity.NewRole("admin", identity.AllCapabilities())
		if err != nil {
			return err
		}
		if err := roles.Save(ctx, role); err != nil {
			return err
		}
	}

	user, err := identity.NewUser("admin", password, "Administrator")
	if err != nil {
		return err
	}
	user.RoleID = &role.ID
	if err := users.Save(ctx, user); err != nil {
		return err
	}
	log.Info("created admin account")
	return nil
}
