package app

import (
	"context"
	"database/sql"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "smartcashpower/backend/libs/redis"
	"smartcashpower/backend/services/vending-service/internal/clients"
	"smartcashpower/backend/services/vending-service/internal/config"
	"smartcashpower/backend/services/vending-service/internal/db"
	"smartcashpower/backend/services/vending-service/internal/events"
	httpserver "smartcashpower/backend/services/vending-service/internal/http"
	"smartcashpower/backend/services/vending-service/internal/http/handlers"
	"smartcashpower/backend/services/vending-service/internal/http/middleware"
	"smartcashpower/backend/services/vending-service/internal/lock"
	"smartcashpower/backend/services/vending-service/internal/repository"
	"smartcashpower/backend/services/vending-service/internal/service"
)

// App wires vending service dependencies.
type App struct {
	server *httpserver.Server
	hub    *events.Hub
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	meterRepo := repository.NewMeterRepository(sqlDB)
	txRepo := repository.NewTransactionRepository(sqlDB)
	paymentRepo := repository.NewPaymentRepository(sqlDB)

	// The per-meter lock is distributed when redis is configured, falling
	// back to an in-process mutex for single-instance deployments.
	var (
		redisClient *goredis.Client
		locker      service.MeterLocker
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		locker = lock.NewRedisLock(redisClient)
	} else {
		locker = lock.NewKeyedMutex()
	}

	hub := events.NewHub(logger)
	publisher := events.Fanout{events.NewLogPublisher(logger), hub}

	momoClient := clients.NewMoMoClient(cfg.Gateways.MoMoBaseURL, cfg.Gateways.Timeout, logger)
	regClient := clients.NewREGClient(cfg.Gateways.REGBaseURL, cfg.Gateways.Timeout, logger)

	purchaseService := service.NewPurchaseService(service.PurchaseDeps{
		Users:        userRepo,
		Meters:       meterRepo,
		Transactions: txRepo,
		Payments:     paymentRepo,
		MoMo:         momoClient,
		REG:          regClient,
		Locker:       locker,
		Publisher:    publisher,
	}, cfg.Gateways.Timeout, logger)

	meterService := service.NewMeterService(meterRepo, userRepo, logger)
	adminService := service.NewAdminService(userRepo, meterRepo, txRepo, paymentRepo, publisher.AdminAction, logger)

	adminHandlers := handlers.NewAdminHandlers(adminService, logger)

	routes := httpserver.Routes{
		Purchase:    handlers.NewPurchaseHandler(purchaseService, logger),
		History:     handlers.NewHistoryHandler(purchaseService, logger),
		AttachMeter: handlers.NewAttachMeterHandler(meterService, logger),
		MyMeters:    handlers.NewMyMetersHandler(meterService, logger),

		AdminUsers:        adminHandlers.Users,
		AdminMeters:       adminHandlers.Meters,
		AdminTransactions: adminHandlers.Transactions,
		AdminTxPayment:    adminHandlers.TransactionPayment,
		AdminBlockUser:    adminHandlers.BlockUser,
		AdminDeleteUser:   adminHandlers.DeleteUser,
		AdminDeleteMeter:  adminHandlers.DeleteMeter,
		AdminPurgeTx:      adminHandlers.PurgeTransaction,

		Events: hub.HandleWS,
		Health: handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, httpserver.Middleware{
		CORS:  middleware.CORS(cfg.AllowedOrigins()),
		Auth:  middleware.Auth(cfg.Auth.JWTSecret),
		Admin: middleware.RequireRole(middleware.AdminRole),
	})
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		hub:    hub,
		db:     sqlDB,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Run starts the HTTP server and the event hub keepalive loop.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
