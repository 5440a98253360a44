package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mdflamingo/paydesk/internal/models"
)

var ErrConflict = errors.New("conflict: duplicate entry")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBStorage keeps the dashboard's own records: which submissions went out and
// which admin actions were taken. Balances and statuses stay upstream.
type DBStorage struct {
	pool *pgxpool.Pool
}

func NewDBStorage(dsn string) (*DBStorage, error) {
	ctx := context.Background()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DBStorage{pool: pool}, nil
}

func (d *DBStorage) Close() error {
	d.pool.Close()
	return nil
}

func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (d *DBStorage) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DBStorage) SaveSubmission(ctx context.Context, s models.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := d.pool.Exec(ctx,
		`INSERT INTO submissions (id, user_id, kind, idempotency_key, amount, upstream_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::numeric, NULLIF($6, ''))`,
		s.ID, s.UserID, s.Kind, s.IdempotencyKey, s.Amount, s.UpstreamID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

func (d *DBStorage) SaveAdminAction(ctx context.Context, a models.AdminAction) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := d.pool.Exec(ctx,
		`INSERT INTO admin_actions (id, withdrawal_id, action, reason, admin_id, outcome)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		a.ID, a.WithdrawalID, a.Action, a.Reason, a.AdminID, a.Outcome)
	if err != nil {
		return fmt.Errorf("failed to save admin action: %w", err)
	}

	return nil
}

func (d *DBStorage) ListAdminActions(ctx context.Context, limit int) ([]models.AdminAction, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := d.pool.Query(ctx,
		`SELECT id::text, withdrawal_id, action, COALESCE(reason, ''), admin_id, outcome, created_at
		 FROM admin_actions
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin actions: %w", err)
	}
	defer rows.Close()

	actions := make([]models.AdminAction, 0, limit)
	for rows.Next() {
		var a models.AdminAction
		if err := rows.Scan(&a.ID, &a.WithdrawalID, &a.Action, &a.Reason, &a.AdminID, &a.Outcome, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin action: %w", err)
		}
		actions = append(actions, a)
	}

	return actions, rows.Err()
}
