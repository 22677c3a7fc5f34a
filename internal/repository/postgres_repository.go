package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/fjod/storefront/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.PingContext(ctx); e2 != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) SaveDesign(ctx context.Context, d *domain.SavedDesign) error {
	designJSON, err := json.Marshal(d.Design)
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"design_id":  d.ID,
		"owner":      d.Owner,
		"name":       d.Name,
		"base_model": d.Design.BaseModel,
		"price":      d.Price,
		"created_at": d.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal design event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO designs (id, owner, name, design, price, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Owner, d.Name, designJSON, d.Price, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert design: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
		d.ID, EventDesignSaved, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) GetDesign(ctx context.Context, id, owner string) (*domain.SavedDesign, error) {
	query := `SELECT id, owner, name, design, price, created_at FROM designs WHERE id = $1 AND owner = $2`

	d, err := scanDesign(r.db.QueryRowContext(ctx, query, id, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query design by id: %w", err)
	}
	return d, nil
}

func (r *Repository) ListDesigns(ctx context.Context, owner string) ([]*domain.SavedDesign, error) {
	query := `SELECT id, owner, name, design, price, created_at
	          FROM designs WHERE owner = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query designs by owner: %w", err)
	}
	defer rows.Close()

	designs := make([]*domain.SavedDesign, 0)
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan design row: %w", err)
		}
		designs = append(designs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return designs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDesign(s scanner) (*domain.SavedDesign, error) {
	var d domain.SavedDesign
	var designJSON []byte
	if err := s.Scan(&d.ID, &d.Owner, &d.Name, &designJSON, &d.Price, &d.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(designJSON, &d.Design); err != nil {
		return nil, fmt.Errorf("unmarshal design: %w", err)
	}
	return &d, nil
}

func (r *Repository) InsertEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
		aggregateID, eventType, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark event processed: no event with id %d", id)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
