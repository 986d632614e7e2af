package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
)

var _ port.DraftStorage = (*PostgresStorage)(nil)

// draftRowID is the only row of registration_drafts, one draft per installation.
const draftRowID = 1

// PostgresStorage keeps the draft document in a single jsonb row.
type PostgresStorage struct {
	sqldb sqldb
}

func NewPostgresStorage(sqldb sqldb) PostgresStorage {
	return PostgresStorage{sqldb}
}

func (s PostgresStorage) Read(ctx context.Context) ([]byte, error) {
	const op = "PostgresStorage.Read"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT document FROM registration_drafts WHERE id = $1;`

	var doc []byte
	err := s.sqldb.QueryRowContext(ctx, query, draftRowID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDraftNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

func (s PostgresStorage) Write(ctx context.Context, data []byte) error {
	const op = "PostgresStorage.Write"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO registration_drafts (id, document, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at;`

	_, err := s.sqldb.ExecContext(ctx, query, draftRowID, string(data))
	if err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}

func (s PostgresStorage) Delete(ctx context.Context) error {
	const op = "PostgresStorage.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `DELETE FROM registration_drafts WHERE id = $1;`

	res, err := s.sqldb.ExecContext(ctx, query, draftRowID)
	if err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrDraftNotFound)
	}
	return nil
}
