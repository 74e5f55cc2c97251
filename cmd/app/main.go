package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"github.com/wichananm65/boutique-backend/internal/address"
	"github.com/wichananm65/boutique-backend/internal/cart"
	"github.com/wichananm65/boutique-backend/internal/category"
	"github.com/wichananm65/boutique-backend/internal/config"
	"github.com/wichananm65/boutique-backend/internal/contact"
	"github.com/wichananm65/boutique-backend/internal/database"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/mailer"
	"github.com/wichananm65/boutique-backend/internal/middleware"
	"github.com/wichananm65/boutique-backend/internal/order"
	"github.com/wichananm65/boutique-backend/internal/payment"
	"github.com/wichananm65/boutique-backend/internal/product"
	"github.com/wichananm65/boutique-backend/internal/upload"
	"github.com/wichananm65/boutique-backend/internal/user"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Sync()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	app := fiber.New()
	app.Use(recover.New())
	setupCORS(app, cfg.CORSOrigins)
	app.Use(logger.RequestLogger())

	// sensitive public endpoints get their own bucket per IP
	app.Use("/api/v1/sign-in", middleware.RateLimit(middleware.Share(cfg.RateLimitPerMinute, 10), 5))
	app.Use("/api/v1/password/forgot", middleware.RateLimit(middleware.Share(cfg.RateLimitPerMinute, 20), 3))
	app.Use("/api/v1/contact", middleware.RateLimit(middleware.Share(cfg.RateLimitPerMinute, 20), 3))
	app.Use("/api/v1/payments/kkiapay/webhook", middleware.RateLimit(cfg.RateLimitPerMinute, 20))

	mail := mailer.New(cfg.SMTP)

	userService := user.NewService(user.NewPostgresRepository(db),
		user.WithMailer(mail, cfg.AppURL),
		user.WithResetTTL(cfg.ResetTokenTTL),
	)
	userHandler := user.NewHandler(userService, cfg.JWTSecret)

	productHandler := product.NewHandler(product.NewService(product.NewPostgresRepository(db)))
	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)))
	addressHandler := address.NewHandler(address.NewService(address.NewPostgresRepository(db)))
	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db)))
	orderHandler := order.NewHandler(order.NewService(order.NewPostgresRepository(db)))
	contactHandler := contact.NewHandler(contact.NewService(mail, cfg.ContactEmail))
	uploadHandler := upload.NewHandler(cfg.UploadDir)

	paymentHandler := payment.NewHandler(
		payment.NewKkiapayClient(cfg.Kkiapay),
		payment.NewReconciler(payment.NewPostgresStore(db)),
		payment.NewSignatureVerifier(cfg.WebhookSecret),
		cfg.AppURL,
	)

	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	contactHandler.RegisterPublicRoutes(app)
	paymentHandler.RegisterPublicRoutes(app)
	uploadHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/v1/admin", middleware.RequireAdmin)
	userHandler.RegisterAdminRoutes(admin)
	categoryHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	uploadHandler.RegisterAdminRoutes(admin)

	logger.Log.Info("server starting", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + payment.SignatureHeader,
	}))
}
