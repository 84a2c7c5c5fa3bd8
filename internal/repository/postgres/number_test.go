package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/numbook-server/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func TestNumberRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNumberRepository(db)

	newer := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, number, note, created_at FROM numbers ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "note", "created_at"}).
			AddRow(int64(2), "+44 20 7946 0000", "london", newer).
			AddRow(int64(1), "112", nil, older))

	numbers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, numbers, 2)

	assert.Equal(t, int64(2), numbers[0].ID)
	require.NotNil(t, numbers[0].Note)
	assert.Equal(t, "london", *numbers[0].Note)
	assert.Equal(t, newer, numbers[0].CreatedAt)

	assert.Equal(t, "112", numbers[1].Number)
	assert.Nil(t, numbers[1].Note)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberRepository_List_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNumberRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM numbers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "note", "created_at"}))

	numbers, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, numbers)
	assert.Empty(t, numbers)
}

func TestNumberRepository_List_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNumberRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM numbers`).WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query numbers")
}

func TestNumberRepository_Create(t *testing.T) {
	now := time.Date(2025, 3, 3, 3, 3, 3, 0, time.UTC)
	note := "front desk"

	tests := []struct {
		name    string
		input   model.Number
		argNote any
		rowNote any
	}{
		{name: "with note", input: model.Number{Number: "555-0101", Note: &note}, argNote: "front desk", rowNote: "front desk"},
		{name: "without note", input: model.Number{Number: "555-0101"}, argNote: nil, rowNote: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewNumberRepository(db)

			mock.ExpectQuery(`INSERT INTO numbers \(number, note\) VALUES \(\$1, \$2\) RETURNING id, number, note, created_at`).
				WithArgs("555-0101", tt.argNote).
				WillReturnRows(sqlmock.NewRows([]string{"id", "number", "note", "created_at"}).
					AddRow(int64(5), "555-0101", tt.rowNote, now))

			created, err := repo.Create(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, int64(5), created.ID)
			assert.Equal(t, tt.input.Note, created.Note)
			assert.Equal(t, now, created.CreatedAt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNumberRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM numbers WHERE id = \$1`).
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM numbers WHERE id = \$1`).
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			err := NewNumberRepository(db).Delete(context.Background(), 3)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMigrate(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	t.Run("applies embedded migrations", func(t *testing.T) {
		var gotDir string
		gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}

		require.NoError(t, Migrate(context.Background(), db))
		assert.Equal(t, ".", gotDir)
	})

	t.Run("error", func(t *testing.T) {
		gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
			return errors.New("boom")
		}

		err := Migrate(context.Background(), db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to apply migrations")
	})
}
