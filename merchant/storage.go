package merchant

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alovak/brcode-playground/merchant/models"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Storage persists the merchant profile and the payment history.
type Storage interface {
	// GetProfile returns ErrNotFound until a profile is saved.
	GetProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	// AddTransaction returns ErrConflict when the id is taken.
	AddTransaction(ctx context.Context, transaction *models.Transaction) error
	// ListTransactions returns newest first; limit <= 0 means no limit.
	ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Storage = (*Repository)(nil)
	_ Storage = (*MongoRepository)(nil)
	_ Storage = (*RedisRepository)(nil)
)

// OpenStorage connects to the backend named in cfg and prepares it for use.
func OpenStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "mem", "":
		return NewRepository(), nil
	case "postgres", "pg":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage.dsn is required for postgres backend")
		}
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		return openSQL(ctx, db, Postgres)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
		return openSQL(ctx, db, SQLite)
	case "mongo", "mongodb":
		client, err := ConnectMongo(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		database := cfg.Database
		if database == "" {
			database = "brcode"
		}
		return NewMongoRepository(client, database), nil
	case "redis":
		client, err := ConnectRedis(ctx, cfg.DSN, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisRepository(client), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

func openSQL(ctx context.Context, db *sql.DB, dialect Dialect) (Storage, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	repo := NewSQLRepository(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
