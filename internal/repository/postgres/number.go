package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtroode/numbook-server/internal/model"
)

var _ model.NumberStore = (*NumberRepository)(nil)

type NumberRepository struct {
	db DBTX
}

func NewNumberRepository(db DBTX) *NumberRepository {
	return &NumberRepository{
		db: db,
	}
}

// List returns every number, newest first.
func (r *NumberRepository) List(ctx context.Context) ([]model.Number, error) {
	query := `
		SELECT id, number, note, created_at
		FROM numbers
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query numbers: %w", err)
	}
	defer rows.Close()

	numbers := []model.Number{}
	for rows.Next() {
		n, err := scanNumber(rows)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate numbers: %w", err)
	}

	return numbers, nil
}

func (r *NumberRepository) Create(ctx context.Context, number model.Number) (model.Number, error) {
	query := `
		INSERT INTO numbers (number, note)
		VALUES ($1, $2)
		RETURNING id, number, note, created_at`

	var note sql.NullString
	if number.Note != nil {
		note = sql.NullString{String: *number.Note, Valid: true}
	}

	created, err := scanNumber(r.db.QueryRowContext(ctx, query, number.Number, note))
	if err != nil {
		return model.Number{}, err
	}

	return created, nil
}

func (r *NumberRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM numbers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete number: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNumber(s scanner) (model.Number, error) {
	var (
		n    model.Number
		note sql.NullString
	)
	if err := s.Scan(&n.ID, &n.Number, &note, &n.CreatedAt); err != nil {
		return model.Number{}, fmt.Errorf("failed to scan number: %w", err)
	}
	if note.Valid {
		n.Note = &note.String
	}
	return n, nil
}
