package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/infrastructure/database/postgres/models"
	"product-catalog/internal/logger"

	"github.com/bwmarrin/snowflake"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// DB wraps the gorm handle together with the id generator of this node.
type DB struct {
	*gorm.DB
	ids *snowflake.Node
}

func NewDB(cfg *config.Config) (*DB, error) {
	gormLogLevel := gormLogger.Info
	if cfg.Server.IsProduction() {
		gormLogLevel = gormLogger.Warn
	}

	db, err := Open(postgres.Open(cfg.Database.DSN()), cfg.Database.NodeID, gormLogLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
		zap.Int("max_open_connections", maxOpenConns),
		zap.Int("max_idle_connections", maxIdleConns),
		zap.Int64("node_id", cfg.Database.NodeID),
	)

	return db, nil
}

// Open builds a DB on an arbitrary dialector.
func Open(dialector gorm.Dialector, nodeID int64, level gormLogger.LogLevel) (*DB, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid snowflake node %d: %w", nodeID, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	return &DB{DB: db, ids: node}, nil
}

// OpenConn builds a DB over an already opened connection pool.
func OpenConn(conn *sql.DB, nodeID int64) (*DB, error) {
	return Open(postgres.New(postgres.Config{Conn: conn}), nodeID, gormLogger.Silent)
}

// NextID returns a fresh time-ordered row id.
func (d *DB) NextID() int64 {
	return d.ids.Generate().Int64()
}

// SQLX exposes the underlying pool for hand-written queries.
func (d *DB) SQLX() (*sqlx.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "pgx"), nil
}

func (d *DB) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&models.UserModel{}, &models.ProductModel{}, &models.PasswordResetModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("Database schema migrated")
	return nil
}

func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Health() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
