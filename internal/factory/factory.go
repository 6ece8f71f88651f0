package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/alexpolo1/dwroller-sub001/internal/dependencies/clock"
	"github.com/alexpolo1/dwroller-sub001/internal/services/auth"
	"github.com/alexpolo1/dwroller-sub001/internal/services/player"
	"github.com/alexpolo1/dwroller-sub001/internal/services/requisition"
	"github.com/alexpolo1/dwroller-sub001/internal/services/shop"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
	"github.com/alexpolo1/dwroller-sub001/internal/storage/memory"
	redisstorage "github.com/alexpolo1/dwroller-sub001/internal/storage/redis"
	sqlitestorage "github.com/alexpolo1/dwroller-sub001/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSqlite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	PlayerService      *player.Service
	ShopService        *shop.Service
	RequisitionService *requisition.Service
	AuthService        *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SqlitePath is the database file path (required if StorageType is "sqlite")
	SqlitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSqlite:
		if cfg.SqlitePath == "" {
			return nil, errors.New("SqlitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(cfg.SqlitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, authCfg auth.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &App{
		Storage:            store,
		Clock:              clk,
		PlayerService:      player.New(store, logger),
		ShopService:        shop.New(store, logger),
		RequisitionService: requisition.New(store, clk, logger),
		AuthService:        auth.New(store, clk, authCfg),
	}
}
