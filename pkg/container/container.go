package container

import (
	"context"
	"fmt"

	"researchequals-backend/internal/config"
	collectionRepo "researchequals-backend/internal/domains/collection/repository"
	collectionService "researchequals-backend/internal/domains/collection/service"
	moduleHandler "researchequals-backend/internal/domains/module/handler"
	moduleRepo "researchequals-backend/internal/domains/module/repository"
	paymentHandler "researchequals-backend/internal/domains/payment/handler"
	"researchequals-backend/internal/domains/payment/gateway/stripe"
	paymentService "researchequals-backend/internal/domains/payment/service"
	"researchequals-backend/internal/domains/publication/crossref"
	publicationService "researchequals-backend/internal/domains/publication/service"
	userHandler "researchequals-backend/internal/domains/user/handler"
	userRepo "researchequals-backend/internal/domains/user/repository"
	userService "researchequals-backend/internal/domains/user/service"
	infraCache "researchequals-backend/internal/infrastructure/cache"
	"researchequals-backend/internal/infrastructure/database"
	"researchequals-backend/internal/infrastructure/queue"
	"researchequals-backend/internal/infrastructure/search"
	"researchequals-backend/pkg/cache"
	"researchequals-backend/pkg/jwt"
	"researchequals-backend/pkg/logger"
)

// PlatformTag marks records that originate on this platform. It is the
// publishedWhere value written on publication and the discriminator the
// citation normalizer branches on.
const PlatformTag = "ResearchEquals"

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton living for the whole process.
type Container struct {
	// Infrastructure
	Config       *config.Config
	DB           *database.PostgresDB
	Cache        cache.Cache
	JWTManager   *jwt.Manager
	SearchClient *search.Client
	Enqueuer     *queue.Enqueuer

	// Repositories
	ModuleRepo     moduleRepo.ModuleRepository
	CollectionRepo collectionRepo.CollectionRepository
	UserRepo       userRepo.UserRepository

	// Services
	PublishService    *publicationService.PublishService
	WebhookService    *paymentService.WebhookService
	CheckoutService   *paymentService.CheckoutService
	CollectionService *collectionService.CollectionService
	UserService       *userService.UserService

	// Handlers
	WebhookHandler  *paymentHandler.WebhookHandler
	CheckoutHandler *paymentHandler.CheckoutHandler
	ModuleHandler   *moduleHandler.ModuleHandler
	AuthHandler     *userHandler.AuthHandler
}

// NewContainer initializes the full dependency graph, in order: config,
// infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	db := database.NewPostgresDB(&cfg.Database)
	if err := db.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(interface{ Connect(context.Context) error }); ok {
		if err := rc.Connect(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	c.SearchClient = search.NewClient(cfg.Algolia.AppID, cfg.Algolia.AdminKey)
	c.Enqueuer = queue.NewEnqueuer(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.ModuleRepo = moduleRepo.NewPostgresModuleRepository(db.Pool)
	c.CollectionRepo = collectionRepo.NewPostgresCollectionRepository(db.Pool)
	c.UserRepo = userRepo.NewPostgresUserRepository(db.Pool)

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	assembler := publicationService.NewMetadataAssembler(cfg.App.Origin, PlatformTag)
	encoder := crossref.NewEncoder(
		cfg.CrossRef.DepositorName,
		cfg.CrossRef.DepositorMail,
		cfg.CrossRef.DepositorName,
		PlatformTag,
	)
	submitter := crossref.NewClient(&cfg.CrossRef)
	indexer := publicationService.NewModuleIndexer(c.SearchClient, cfg.Algolia.IndexPrefix, cfg.DOI.Prefix)

	c.PublishService = publicationService.NewPublishService(
		c.ModuleRepo, assembler, encoder, submitter, indexer, c.Enqueuer,
		PlatformTag, cfg.DOI.Prefix,
	)
	c.CollectionService = collectionService.NewCollectionService(c.CollectionRepo)
	c.WebhookService = paymentService.NewWebhookService(
		cfg.Stripe.WebhookSecret, c.Cache, c.PublishService, c.CollectionService,
	)

	stripeClient := stripe.NewClient(&cfg.Stripe)
	c.CheckoutService = paymentService.NewCheckoutService(
		c.ModuleRepo, stripeClient, cfg.App.Origin, cfg.DOI.Prefix,
	)
	c.UserService = userService.NewUserService(
		c.UserRepo, c.JWTManager, c.SearchClient, cfg.Algolia.IndexPrefix,
	)

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.WebhookHandler = paymentHandler.NewWebhookHandler(c.WebhookService)
	c.CheckoutHandler = paymentHandler.NewCheckoutHandler(c.CheckoutService)
	c.ModuleHandler = moduleHandler.NewModuleHandler(c.ModuleRepo)
	c.AuthHandler = userHandler.NewAuthHandler(c.UserService)

	logger.Info("Dependency container initialized", nil)
	return c, nil
}

// Close releases every held connection.
func (c *Container) Close() {
	if c.Enqueuer != nil {
		if err := c.Enqueuer.Close(); err != nil {
			logger.Error("Failed to close task enqueuer", err)
		}
	}
	if c.Cache != nil {
		if closer, ok := c.Cache.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close cache connection", err)
			}
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
