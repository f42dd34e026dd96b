package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// UserGuard inspects every account under the same lock as a write. A non-nil
// error aborts the write.
type UserGuard func(users []domain.User) error

// RoleAssigner picks the role of a self-registered user given how many users already exist.
type RoleAssigner func(existingUsers int64) domain.Role

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	// Register counts existing users and inserts the new one atomically, so the
	// first-user bootstrap cannot race.
	Register(ctx context.Context, user *domain.User, assign RoleAssigner) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, username string, mutate func(*domain.User) error) (*domain.User, error)
	// UpdateGuarded is Update with guard evaluated first against the locked account set.
	UpdateGuarded(ctx context.Context, username string, guard UserGuard, mutate func(*domain.User) error) (*domain.User, error)
	// Delete removes username. A nil guard deletes unconditionally.
	Delete(ctx context.Context, username string, guard UserGuard) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `username, password_hash, full_name, role, created_at, created_by`

const insertUser = `
        INSERT INTO users (username, password_hash, full_name, role, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

func (r *userRepository) Register(ctx context.Context, user *domain.User, assign RoleAssigner) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var count int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return err
		}
		user.Role = assign(count)
		return tx.QueryRow(ctx, insertUser,
			user.Username,
			user.PasswordHash,
			user.FullName,
			user.Role,
			user.CreatedBy,
		).Scan(&user.CreatedAt)
	})
	return mapPgError(err)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.pool.QueryRow(ctx, insertUser,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.CreatedBy,
	).Scan(&user.CreatedAt)
	return mapPgError(err)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, username string, mutate func(*domain.User) error) (*domain.User, error) {
	return r.UpdateGuarded(ctx, username, nil, mutate)
}

func (r *userRepository) UpdateGuarded(ctx context.Context, username string, guard UserGuard, mutate func(*domain.User) error) (*domain.User, error) {
	var updated *domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := checkGuard(ctx, tx, guard); err != nil {
			return err
		}
		user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1 FOR UPDATE`, username))
		if err != nil {
			return err
		}
		if err := mutate(user); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET password_hash=$1, full_name=$2, role=$3 WHERE username=$4`,
			user.PasswordHash, user.FullName, user.Role, username,
		); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return updated, nil
}

func (r *userRepository) Delete(ctx context.Context, username string, guard UserGuard) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := checkGuard(ctx, tx, guard); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM users WHERE username=$1`, username)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgError(err)
}

// checkGuard locks every user row so concurrent guarded writes serialize and
// each guard sees the result of the previous one.
func checkGuard(ctx context.Context, tx pgx.Tx, guard UserGuard) error {
	if guard == nil {
		return nil
	}
	rows, err := tx.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username FOR UPDATE`)
	if err != nil {
		return err
	}
	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return err
		}
		users = append(users, *user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	return guard(users)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.CreatedAt,
		&user.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
