package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/infrastructure/auth"
	"github.com/orris-inc/zlpay/internal/infrastructure/cache"
	"github.com/orris-inc/zlpay/internal/infrastructure/config"
	"github.com/orris-inc/zlpay/internal/infrastructure/email"
	"github.com/orris-inc/zlpay/internal/infrastructure/scheduler"
	"github.com/orris-inc/zlpay/internal/infrastructure/zalopay"
	"github.com/orris-inc/zlpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/zlpay/internal/shared/db"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases and
// handlers. It is built once at startup; nothing in it is replaced afterwards.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	txManager        *db.TransactionManager
	gateway          paymentgateway.Gateway
	locker           paymentUsecases.OrderLocker
	notifier         paymentUsecases.PaymentNotifier
	schedulerManager *scheduler.SchedulerManager
	jwtSvc           *auth.JWTService

	adminAuth           *middleware.AdminAuthMiddleware
	checkoutRateLimiter *middleware.RateLimiter
}

// Option overrides a container dependency. Used by tests.
type Option func(*Container)

// WithGateway replaces the ZaloPay client.
func WithGateway(gateway paymentgateway.Gateway) Option {
	return func(c *Container) { c.gateway = gateway }
}

// WithRedis supplies an existing Redis client instead of dialing one from config.
func WithRedis(client *redis.Client) Option {
	return func(c *Container) { c.redis = client }
}

// NewContainer wires every component from the loaded configuration.
func NewContainer(gdb *gorm.DB, cfg *config.Config, log logger.Interface, opts ...Option) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     gdb,
		cfg:    cfg,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initUseCases()
	c.initHandlers()
	c.SetupRoutes()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg

	if c.redis == nil && cfg.Redis.Enabled {
		client, err := initRedis(cfg)
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.repos = newRepositories(c.db)
	c.txManager = db.NewTransactionManager(c.db)

	if c.gateway == nil {
		c.gateway = zalopay.NewClient(cfg.ZaloPay, c.log.Named("zalopay"))
	}

	if c.redis != nil {
		c.locker = cache.NewRedisOrderLocker(c.redis, cfg.Reconcile.LockTTL, cfg.Reconcile.LockWait, c.log)
		c.log.Infow("using redis order lock")
	} else {
		c.locker = cache.NewMemoryOrderLocker(cfg.Reconcile.LockWait)
		c.log.Warnw("redis disabled, order lock is local to this instance")
	}

	if cfg.Email.Enabled() {
		c.notifier = email.NewSMTPPaymentNotifier(cfg.Email)
	}

	schedulerManager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	c.schedulerManager = schedulerManager

	c.jwtSvc = auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenLifetime)
	c.adminAuth = middleware.NewAdminAuthMiddleware(c.jwtSvc, c.log)
	c.checkoutRateLimiter = middleware.NewRateLimiter(c.redis, "checkout", cfg.Server.CheckoutRateLimit, time.Minute)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Start restores status polls for orders still awaiting confirmation and
// starts the scheduler.
func (c *Container) Start(ctx context.Context) error {
	if err := c.schedulerManager.RegisterRecoveryJob(c.ucs.restorePollsUC, c.cfg.Reconcile.RecoveryInterval); err != nil {
		return fmt.Errorf("failed to register poll recovery job: %w", err)
	}
	c.schedulerManager.Start()
	return nil
}

// Shutdown stops background work and releases connections.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if err := c.schedulerManager.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
