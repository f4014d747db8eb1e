package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/premiumcars/listingsheet/internal/model"
)

// ErrRecordNotFound is returned when no record matches the given ID.
var ErrRecordNotFound = errors.New("record not found")

const recordColumns = `id, owner_id, title, description, content, created_at, updated_at`

// CreateRecord inserts a new record. The owner must exist.
func (r *Repository) CreateRecord(ctx context.Context, rec *model.Record) error {
	content, err := json.Marshal(rec.Content.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode record content: %w", err)
	}

	query := `
		INSERT INTO records (id, owner_id, title, description, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.Title,
		rec.Description,
		content,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create record: %w", err)
	}

	return nil
}

// GetRecordByID retrieves a record by its ID regardless of owner.
// Ownership is checked by the caller.
func (r *Repository) GetRecordByID(ctx context.Context, id string) (*model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record by ID: %w", err)
	}

	return rec, nil
}

// ListRecordsByOwner returns every record of ownerID, newest first.
func (r *Repository) ListRecordsByOwner(ctx context.Context, ownerID string) ([]*model.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]*model.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// UpdateRecord overwrites title, description and content and sets updated_at
// from rec.UpdatedAt. The owner filter makes a concurrent ownership change
// surface as ErrRecordNotFound instead of a foreign write.
func (r *Repository) UpdateRecord(ctx context.Context, rec *model.Record) error {
	content, err := json.Marshal(rec.Content.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode record content: %w", err)
	}

	query := `
		UPDATE records
		SET title = $3, description = $4, content = $5, updated_at = $6
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.Title,
		rec.Description,
		content,
		rec.UpdatedAt,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("failed to update record: %w", err)
	}

	return nil
}

// DeleteRecord permanently removes a record owned by ownerID.
func (r *Repository) DeleteRecord(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM records WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// scanRecord scans a row into a Record. Content is decoded from JSONB.
func scanRecord(row pgx.Row) (*model.Record, error) {
	var (
		rec     model.Record
		content []byte
	)

	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Title,
		&rec.Description,
		&content,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(content) > 0 {
		if err := json.Unmarshal(content, &rec.Content); err != nil {
			return nil, fmt.Errorf("decode content of record %s: %w", rec.ID, err)
		}
	}
	rec.Content = rec.Content.Normalize()

	return &rec, nil
}

// isUniqueViolation checks for PostgreSQL error 23505.
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

// isForeignKeyViolation checks for PostgreSQL error 23503.
func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
