package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/user/model"
)

// UserRepository persists accounts and their workspace bindings.
type UserRepository interface {
	// CreateWithWorkspace inserts the user, their workspace and the
	// OWNER membership in one transaction.
	CreateWithWorkspace(ctx context.Context, user *model.User, workspace *modmodel.Workspace) error

	// GetByEmail loads an account for login.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetOwnedWorkspace loads the workspace a user owns.
	GetOwnedWorkspace(ctx context.Context, userID int64) (*modmodel.Workspace, error)
}

type postgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) CreateWithWorkspace(ctx context.Context, user *model.User, workspace *modmodel.Workspace) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password, role, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, false, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		user.Email, user.HashedPassword, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (handle, first_name, last_name, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		workspace.Handle, workspace.FirstName, workspace.LastName, workspace.Avatar,
	).Scan(&workspace.ID)
	if err != nil {
		if isUniqueViolation(err, "workspaces_handle_key") {
			return model.ErrHandleTaken
		}
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO memberships (user_id, workspace_id, role)
		VALUES ($1, $2, $3)`,
		user.ID, workspace.ID, model.MembershipOwner,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password, role, email_verified, created_at, updated_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *postgresUserRepository) GetOwnedWorkspace(ctx context.Context, userID int64) (*modmodel.Workspace, error) {
	var w modmodel.Workspace
	err := r.db.QueryRow(ctx, `
		SELECT w.id, w.handle, w.name, w.first_name, w.last_name, w.orcid, w.avatar, w.pronouns
		FROM workspaces w
		JOIN memberships m ON m.workspace_id = w.id
		WHERE m.user_id = $1 AND m.role = $2`,
		userID, model.MembershipOwner,
	).Scan(&w.ID, &w.Handle, &w.Name, &w.FirstName, &w.LastName, &w.ORCID, &w.Avatar, &w.Pronouns)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owned workspace: %w", err)
	}
	return &w, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}
