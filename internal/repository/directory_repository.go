package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// DirectoryRepository stores the module to assignee mapping.
type DirectoryRepository interface {
	List(ctx context.Context) ([]domain.ModuleAssignment, error)
	Get(ctx context.Context, module string) (*domain.ModuleAssignment, error)
	Upsert(ctx context.Context, assignment domain.ModuleAssignment) error
	// SeedIfEmpty loads entries only when no assignment exists yet and returns how many were written.
	SeedIfEmpty(ctx context.Context, entries []domain.ModuleAssignment) (int, error)
}

type directoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository returns a Postgres-backed implementation.
func NewDirectoryRepository(pool *pgxpool.Pool) DirectoryRepository {
	return &directoryRepository{pool: pool}
}

const upsertAssignment = `
        INSERT INTO module_assignments (module, support_engineer, developer, developer_email)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (module) DO UPDATE
        SET support_engineer=EXCLUDED.support_engineer, developer=EXCLUDED.developer,
            developer_email=EXCLUDED.developer_email, updated_at=NOW()`

func (r *directoryRepository) List(ctx context.Context) ([]domain.ModuleAssignment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT module, support_engineer, developer, developer_email
        FROM module_assignments ORDER BY module`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ModuleAssignment
	for rows.Next() {
		var a domain.ModuleAssignment
		if err := rows.Scan(&a.Module, &a.SupportEngineer, &a.Developer, &a.DeveloperEmail); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *directoryRepository) Get(ctx context.Context, module string) (*domain.ModuleAssignment, error) {
	var a domain.ModuleAssignment
	err := r.pool.QueryRow(ctx, `
        SELECT module, support_engineer, developer, developer_email
        FROM module_assignments WHERE module=$1`, module).
		Scan(&a.Module, &a.SupportEngineer, &a.Developer, &a.DeveloperEmail)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &a, nil
}

func (r *directoryRepository) Upsert(ctx context.Context, a domain.ModuleAssignment) error {
	_, err := r.pool.Exec(ctx, upsertAssignment, a.Module, a.SupportEngineer, a.Developer, a.DeveloperEmail)
	return err
}

func (r *directoryRepository) SeedIfEmpty(ctx context.Context, entries []domain.ModuleAssignment) (int, error) {
	written := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE module_assignments IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var count int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM module_assignments`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, a := range entries {
			batch.Queue(upsertAssignment, a.Module, a.SupportEngineer, a.Developer, a.DeveloperEmail)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		written = len(entries)
		return nil
	})
	return written, err
}
