package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/dbx"
	"github.com/dmitrijs2005/journal/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, email, display_name, photo_key, email_verified, salt, verifier, github_id, created_at, last_sign_in_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, display_name, email_verified, salt, verifier, github_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.DisplayName, user.EmailVerified, user.Salt, user.Verifier, nullGitHubID(user.GitHubID),
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByGitHubID(ctx context.Context, githubID int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE github_id = $1`, githubID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user     models.User
		githubID sql.NullInt64
		lastSeen sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.PhotoKey, &user.EmailVerified,
		&user.Salt, &user.Verifier, &githubID, &user.CreatedAt, &lastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.GitHubID = githubID.Int64
	user.LastSignInAt = lastSeen.Time

	return &user, nil
}

func (r *PostgresRepository) TouchLastSignIn(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_sign_in_at = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, at)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName, photoKey string) error {
	query := `UPDATE users SET display_name = $2, photo_key = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, displayName, photoKey)
}

func (r *PostgresRepository) UpdateCredentials(ctx context.Context, id string, salt, verifier []byte) error {
	query := `UPDATE users SET salt = $2, verifier = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, salt, verifier)
}

func (r *PostgresRepository) LinkGitHub(ctx context.Context, id string, githubID int64) error {
	query := `UPDATE users SET github_id = $2, email_verified = TRUE WHERE id = $1`
	return r.execOne(ctx, query, id, githubID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	return r.execOne(ctx, query, id)
}

// execOne runs a statement that must touch exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
