package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dimasprayoga/storefront-backend/internal/admin"
	"github.com/dimasprayoga/storefront-backend/internal/cart"
	"github.com/dimasprayoga/storefront-backend/internal/config"
	"github.com/dimasprayoga/storefront-backend/internal/invoice"
	"github.com/dimasprayoga/storefront-backend/internal/logging"
	"github.com/dimasprayoga/storefront-backend/internal/notify"
	"github.com/dimasprayoga/storefront-backend/internal/order"
	"github.com/dimasprayoga/storefront-backend/internal/product"
	"github.com/dimasprayoga/storefront-backend/internal/redisx"
	"github.com/dimasprayoga/storefront-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New()
	defer logger.Sync()

	app := fiber.New()
	setupCORS(app)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	if err := bootstrapSchema(db); err != nil {
		logger.Fatal("schema bootstrap failed", zap.Error(err))
	}

	// the processed-webhook log is optional; without Redis the conditional
	// status transition still blocks duplicate paid side effects
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	processed := redisx.NewProcessedLog(rdb)

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)

	cartService := cart.NewService(cart.NewPostgresRepository(db))
	cartHandler := cart.NewHandler(cartService)

	issuer := invoice.NewClient(cfg.InvoiceAPIURL, cfg.InvoiceSecretKey)
	sender := notify.NewClient(cfg.NotifyAPIURL, cfg.NotifyAPIKey)

	orderService := order.NewService(order.NewPostgresRepository(db), userService, productService,
		cartService, issuer, sender, processed, logger)
	orderHandler := order.NewHandler(orderService, cfg.PublicBaseURL, cfg.InvoiceWebhookToken)

	adminHandler := admin.NewHandler(orderService)

	// public routes go in before the JWT middleware so they skip it; the
	// webhook authenticates with the issuer's shared-secret header instead
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterWebhookRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	adminHandler.RegisterProtectedRoutes(app)

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, x-callback-token",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func bootstrapSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price INT NOT NULL DEFAULT 0,
			imgurl TEXT,
			stock INT NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			user_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			external_id TEXT UNIQUE NOT NULL,
			invoice_id TEXT,
			invoice_url TEXT,
			user_id INT NOT NULL,
			user_email TEXT,
			user_phone TEXT,
			items jsonb NOT NULL DEFAULT '[]',
			subtotal INT NOT NULL DEFAULT 0,
			tax INT NOT NULL DEFAULT 0,
			total INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at TEXT,
			updated_at TEXT,
			paid_at TEXT,
			notification_sent BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS orders_invoice_id_idx ON orders (invoice_id) WHERE invoice_id IS NOT NULL AND invoice_id <> ''`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
