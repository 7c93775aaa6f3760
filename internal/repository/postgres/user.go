package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digichit/digichit-server/internal/domain"
)

// UserRepository implements repository.UserRepository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query, user.UserID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrEmailTaken
		}
		return err
	}

	return nil
}

// GetByID fetches a user by id
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, created_at
		FROM users
		WHERE user_id = $1
	`

	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

// GetByEmail fetches a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`

	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// UpdateProfile updates the name and/or email, keeping stored values for empty inputs
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    email = COALESCE(NULLIF($2, ''), email),
		    updated_at = NOW()
		WHERE user_id = $3
		RETURNING user_id, name, email, password_hash, created_at
	`

	user, err := r.scanOne(r.db.QueryRow(ctx, query, name, email, userID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// Search returns up to limit users matching query by name or email, excluding the caller
func (r *UserRepository) Search(ctx context.Context, query, excludeUserID string, limit int) ([]*domain.User, error) {
	sql := `
		SELECT user_id, name, email, password_hash, created_at
		FROM users
		WHERE (name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		  AND user_id != $2
		ORDER BY name
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, sql, query, excludeUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
