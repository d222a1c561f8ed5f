package integration

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RegistrationBonus is the coin balance every user created through the test server starts with.
const RegistrationBonus = 1000

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 20}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts the test catalogue.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	repo := repository.NewProductRepository(pool, zerolog.Nop())
	products := []model.Product{
		{ID: "P001", Name: "TV", Price: decimal.NewFromInt(30000), Image: "tv.png", Category: "electronics"},
		{ID: "P002", Name: "Cable", Price: decimal.NewFromInt(500), Image: "cable.png", Category: "accessories"},
		{ID: "P003", Name: "Phone", Price: decimal.NewFromInt(15000), Image: "phone.png", Category: "electronics"},
	}
	for i := range products {
		products[i].CreatedAt = time.Now().UTC()
	}

	if err := repo.UpsertBatch(context.Background(), products); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_items, orders, cart_items, addresses, users, products")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// NewTestServer wires the full application against testDB and starts it.
func NewTestServer(t *testing.T, testDB *TestDB) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	sessionCfg := config.SessionConfig{
		Secret:     "integration-secret",
		TTL:        time.Hour,
		CookieName: "storefront_session",
		Issuer:     "storefront-integration",
	}

	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	addressRepo := repository.NewAddressRepository(testDB.Pool, logger)
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	engine := pricing.NewEngine(pricing.DefaultPolicy())
	sessions := session.NewManager(sessionCfg)

	authService := service.NewAuthService(userRepo, addressRepo, RegistrationBonus, logger)
	cartService := service.NewCartService(cartRepo, productRepo, userRepo, engine, false, logger)
	checkoutService := service.NewCheckoutService(authService, userRepo, cartRepo, orderRepo, engine, events.NopPublisher{}, logger)

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Auth:     handler.NewAuthHandler(authService, sessions, nil, sessionCfg, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Address:  handler.NewAddressHandler(service.NewAddressService(addressRepo, logger), logger),
	}, router.Options{
		Sessions:       sessions,
		Gate:           authService,
		CookieName:     sessionCfg.CookieName,
		AllowedOrigins: []string{"*"},
	}, logger)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewClient returns a client with its own cookie jar that does not follow redirects.
func NewClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
