package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gstbill/internal/analytics"
	"gstbill/internal/caching"
	"gstbill/internal/common"
	"gstbill/internal/config"
	"gstbill/internal/handlers"
	"gstbill/internal/jobs"
	"gstbill/internal/middleware"
	"gstbill/internal/repositories"
	"gstbill/internal/services"
	"gstbill/pkg/database"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const apiVersion = "v1"

// build is set with -ldflags "-X main.build=...".
var build = "dev"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	redisClient := caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	storage, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize object storage")
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		// PDF links fail until the bucket exists; everything else still works.
		logger.WithError(err).Warn("could not ensure invoice bucket")
	}

	// Repositories
	businessRepo := repositories.NewBusinessRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	planRepo := repositories.NewSubscriptionPlanRepo(pool)
	transactionRepo := repositories.NewTransactionRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	queryRepo := repositories.NewQueryRepo(pool)

	// Services
	authSvc := services.NewAuthService(businessRepo, cacheSvc, cfg.JWTSecret, cfg.JWTTTL, logger)
	businessSvc := services.NewBusinessService(businessRepo, logger)
	customerSvc := services.NewCustomerService(customerRepo)
	itemSvc := services.NewItemService(itemRepo, cacheSvc, logger)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, customerRepo, itemSvc, logger)
	pdfSvc := services.NewPDFService(invoiceSvc, businessSvc, storage, logger)
	exportSvc := services.NewExportService(invoiceSvc)
	notificationSvc := services.NewNotificationService(notificationRepo, cacheSvc, logger)
	querySvc := services.NewQueryService(queryRepo, notificationSvc, logger)
	gateway := services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	subscriptionSvc := services.NewSubscriptionService(planRepo, transactionRepo, businessRepo, gateway, notificationSvc, logger)
	analyticsSvc := analytics.NewService(invoiceRepo, cacheSvc, logger)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(map[string]handlers.Pinger{
		"database": pool,
		"redis":    cacheSvc,
	})
	authHandlers := handlers.NewAuthHandlers(authSvc, businessSvc)
	itemHandlers := handlers.NewItemHandlers(itemSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, pdfSvc, exportSvc)
	businessHandlers := handlers.NewBusinessHandlers(businessSvc)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc)
	webhookHandlers := handlers.NewWebhookHandlers(subscriptionSvc)
	notificationHandlers := handlers.NewNotificationHandlers(notificationSvc, authSvc)
	queryHandlers := handlers.NewQueryHandlers(querySvc)
	reportHandlers := handlers.NewReportHandlers(analyticsSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(middleware.APIVersion(apiVersion, build))

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/" + apiVersion)

	// Public
	v1.POST("/auth/signup", authHandlers.Signup)
	v1.POST("/auth/login", authHandlers.Login)
	v1.GET("/plans", subscriptionHandlers.ListActivePlans)
	v1.POST("/webhooks/razorpay", webhookHandlers.RazorpayWebhook)
	v1.GET("/notifications/stream", notificationHandlers.Stream)

	// Authenticated business routes
	api := v1.Group("", middleware.JWTMiddleware(cfg.JWTSecret))

	api.GET("/me", authHandlers.Me)
	api.PUT("/me", authHandlers.UpdateMe)

	api.POST("/items", itemHandlers.CreateItem)
	api.GET("/items", itemHandlers.ListItems)
	api.GET("/items/:id", itemHandlers.GetItem)
	api.PUT("/items/:id", itemHandlers.UpdateItem)
	api.DELETE("/items/:id", itemHandlers.DeleteItem)

	api.GET("/customers", customerHandlers.ListCustomers)
	api.GET("/customers/:id", customerHandlers.GetCustomer)
	api.PUT("/customers/:id", customerHandlers.UpdateCustomer)

	api.POST("/invoices", invoiceHandlers.CreateInvoice)
	api.POST("/invoices/preview", invoiceHandlers.PreviewInvoice)
	api.GET("/invoices", invoiceHandlers.ListInvoices)
	api.GET("/invoices/export", invoiceHandlers.ExportInvoices)
	api.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	api.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	api.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)
	api.GET("/invoices/:id/pdf", invoiceHandlers.InvoicePDF)

	api.GET("/reports/sales", reportHandlers.SalesReport)

	api.POST("/subscriptions/order", subscriptionHandlers.CreateOrder)
	api.POST("/subscriptions/verify", subscriptionHandlers.VerifyPayment)
	api.GET("/subscriptions/transactions", subscriptionHandlers.ListMyTransactions)

	api.GET("/notifications", notificationHandlers.ListNotifications)
	api.POST("/notifications/:id/read", notificationHandlers.MarkRead)

	api.POST("/queries", queryHandlers.CreateQuery)
	api.GET("/queries", queryHandlers.ListMyQueries)

	// Super-admin
	admin := api.Group("/admin", middleware.RequireRole(common.RoleSuperAdmin))

	admin.GET("/businesses", businessHandlers.ListBusinesses)
	admin.GET("/businesses/:id", businessHandlers.GetBusiness)
	admin.POST("/businesses/:id/activate", businessHandlers.ActivateBusiness)
	admin.POST("/businesses/:id/deactivate", businessHandlers.DeactivateBusiness)

	admin.GET("/plans", subscriptionHandlers.ListAllPlans)
	admin.POST("/plans", subscriptionHandlers.CreatePlan)
	admin.PUT("/plans/:id", subscriptionHandlers.UpdatePlan)
	admin.DELETE("/plans/:id", subscriptionHandlers.DeletePlan)

	admin.GET("/transactions", subscriptionHandlers.ListTransactions)

	admin.POST("/notifications", notificationHandlers.SendNotification)
	admin.GET("/notifications", notificationHandlers.ListAllNotifications)

	admin.GET("/queries", queryHandlers.ListAllQueries)
	admin.POST("/queries/:id/reply", queryHandlers.ReplyQuery)

	scheduler, err := jobs.NewScheduler(subscriptionSvc, cfg.SubscriptionSweepInterval, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create scheduler")
	}
	scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithFields(logrus.Fields{"addr": addr, "build": build}).Info("gstbill server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		logger.WithError(err).Error("scheduler shutdown failed")
	}
}
