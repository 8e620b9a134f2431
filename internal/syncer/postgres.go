package syncer

import (
	"context"
	"fmt"

	"github.com/finanzas/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PostgresGateway is the production Gateway, a second gorm connection
// to the shared Postgres store.
type PostgresGateway struct {
	db *gorm.DB
}

// NewPostgresGateway connects to the remote store and makes sure its
// schema is current.
func NewPostgresGateway(dsn string) (*PostgresGateway, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote database: %w", err)
	}

	err = db.AutoMigrate(models.Category{}, models.Budget{}, models.Transaction{})
	if err != nil {
		return nil, fmt.Errorf("error during remote DB migration: %w", err)
	}

	log.Debug().Msg("connected to remote database")

	return &PostgresGateway{db: db}, nil
}

func (g *PostgresGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (g *PostgresGateway) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := g.db.WithContext(ctx).Find(&categories).Error
	return categories, err
}

func (g *PostgresGateway) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := g.db.WithContext(ctx).Find(&transactions).Error
	return transactions, err
}

func (g *PostgresGateway) Budgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	err := g.db.WithContext(ctx).Find(&budgets).Error
	return budgets, err
}

func (g *PostgresGateway) UpsertCategories(ctx context.Context, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&categories).Error
}

// UpsertTransactions inserts transactions the remote store does not
// have yet. Transactions are immutable once synced, so a conflicting
// id means the record is already there and is left alone.
func (g *PostgresGateway) UpsertTransactions(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&transactions).Error
}

func (g *PostgresGateway) UpsertBudgets(ctx context.Context, budgets []models.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&budgets).Error
}
