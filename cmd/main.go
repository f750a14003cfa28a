package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"billcraft/internal/caching"
	"billcraft/internal/handlers"
	"billcraft/internal/jobs"
	"billcraft/internal/middleware"
	"billcraft/internal/repositories"
	"billcraft/internal/services"
	"billcraft/pkg/database"
)

const pdfBucket = "invoices"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), pdfBucket); err != nil {
		log.Printf("warning: could not ensure PDF bucket exists: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	invoicePaymentRepo := repositories.NewInvoicePaymentRepo(pool)
	planPaymentRepo := repositories.NewPlanPaymentRepo(pool)
	profileRepo := repositories.NewBusinessProfileRepo(pool)

	// Services
	authSvc := services.NewAuthService(jwtSecret, 24*time.Hour)
	razorpaySvc := services.NewRazorpayService(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	planSvc := services.NewPlanService(planPaymentRepo, userRepo, razorpaySvc)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, cacheSvc)
	dashboardSvc := services.NewDashboardService(invoiceRepo, customerRepo, productRepo, cacheSvc)
	pdfSvc := services.NewPDFService()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, cacheSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerRepo)
	productHandlers := handlers.NewProductHandlers(productRepo)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, customerRepo, invoicePaymentRepo, profileRepo, pdfSvc, minioSvc)
	profileHandlers := handlers.NewBusinessProfileHandlers(profileRepo)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc)
	paymentHandlers := handlers.NewPaymentHandlers(planSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc)

	// Background jobs
	scheduler, err := jobs.NewScheduler(invoiceRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints, no auth required
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.Ready)
	e.GET("/health/live", healthHandlers.Live)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)

	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware(authSvc))

	protected.GET("/auth/me", authHandlers.Me)

	protected.GET("/customers", customerHandlers.ListCustomers)
	protected.POST("/customers", customerHandlers.CreateCustomer)
	protected.GET("/customers/:id", customerHandlers.GetCustomer)
	protected.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	protected.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	protected.GET("/products", productHandlers.ListProducts)
	protected.POST("/products", productHandlers.CreateProduct)
	protected.GET("/products/:id", productHandlers.GetProduct)
	protected.PUT("/products/:id", productHandlers.UpdateProduct)
	protected.DELETE("/products/:id", productHandlers.DeleteProduct)

	protected.GET("/invoices", invoiceHandlers.ListInvoices)
	protected.POST("/invoices", invoiceHandlers.CreateInvoice)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	protected.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	protected.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)
	protected.PUT("/invoices/:id/status", invoiceHandlers.UpdateInvoiceStatus)
	protected.GET("/invoices/:id/pdf", invoiceHandlers.RenderInvoicePDF)
	protected.POST("/invoices/:id/pdf/archive", invoiceHandlers.ArchiveInvoicePDF)
	protected.GET("/invoices/:id/payments", invoiceHandlers.ListPayments)
	protected.POST("/invoices/:id/payments", invoiceHandlers.RecordPayment)

	protected.GET("/business", profileHandlers.GetProfile)
	protected.POST("/business", profileHandlers.UpsertProfile)

	protected.GET("/dashboard/stats", dashboardHandlers.GetStats)

	protected.GET("/payments/plans", paymentHandlers.ListPlans)
	protected.POST("/payments/create-order", paymentHandlers.CreateOrder)
	protected.POST("/payments/verify", paymentHandlers.VerifyPayment)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
