package history

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const query = `
	INSERT INTO prescription_history (id, visitor_id, mood, input, region, books, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	input, err := json.Marshal(e.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	books, err := json.Marshal(e.Books)
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.db.Exec(timeoutCtx, query,
		e.ID,
		e.VisitorID,
		e.Input.Mood,
		input,
		e.Region,
		books,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, visitorID string, limit int) ([]Entry, error) {
	const query = `
	SELECT id, visitor_id, input, region, books, created_at
	FROM prescription_history
	WHERE visitor_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, visitorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e     Entry
			input []byte
			books []byte
		)
		if err := rows.Scan(&e.ID, &e.VisitorID, &input, &e.Region, &books, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(input, &e.Input); err != nil {
			return nil, fmt.Errorf("decode input of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal(books, &e.Books); err != nil {
			return nil, fmt.Errorf("decode books of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Clear(ctx context.Context, visitorID string) (int64, error) {
	const query = `DELETE FROM prescription_history WHERE visitor_id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, visitorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
