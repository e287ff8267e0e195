// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"database/sql"
	"log"
	"time"

	"astromart/internal/config"
	"astromart/internal/models"
	"astromart/internal/repositories/cache"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the shared database handle used across the application.
var DB *gorm.DB

// CacheService is the shared redis-backed cache.
var CacheService *cache.CacheService

// DBConfig holds database connection pool configuration
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var dbConfig = DBConfig{
	MaxIdleConns:    10,
	MaxOpenConns:    100,
	ConnMaxLifetime: time.Hour,
	ConnMaxIdleTime: time.Minute * 30,
}

// InitDB initializes the database and cache connections, sets up the
// connection pool and runs migrations.
func InitDB() error {
	if err := initPostgres(); err != nil {
		return err
	}

	redisCfg := &cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
	redisClient := cache.NewRedisClient(redisCfg)
	CacheService = cache.NewCacheService(redisClient, 24*time.Hour)

	return DB.AutoMigrate(
		&models.User{},
		&models.Astrologer{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.Session{},
		&models.Product{},
		&models.Order{},
	)
}

func initPostgres() error {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "astromart") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	// Open through lib/pq so ledger retry logic can classify pq error
	// codes (serialization failures, deadlocks) on the raw driver.
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return err
	}

	DB = db
	log.Println("connected to postgres")
	return nil
}

// EnsurePlatformWallet resolves the singleton platform wallet, creating
// it on first boot. Call once at startup; the returned wallet id is
// passed through configuration to services that need it.
func EnsurePlatformWallet(ownerID uint) (*models.Wallet, error) {
	repo := NewWalletRepository(DB)
	wallet, err := repo.GetByOwner(models.OwnerTypePlatform, ownerID)
	if err == nil {
		return wallet, nil
	}
	if err != ErrWalletNotFound {
		return nil, err
	}
	wallet = &models.Wallet{OwnerID: ownerID, OwnerType: models.OwnerTypePlatform}
	if err := repo.Create(wallet); err != nil {
		return nil, err
	}
	log.Printf("created platform wallet id=%d owner=%d", wallet.ID, ownerID)
	return wallet, nil
}
