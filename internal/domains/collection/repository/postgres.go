package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"researchequals-backend/internal/domains/collection/model"
)

// CollectionRepository persists collections and their editor bindings.
type CollectionRepository interface {
	// Create inserts the collection and its OWNER editor in one
	// transaction.
	Create(ctx context.Context, collection *model.Collection, ownerWorkspaceID int64) error

	// UpgradeTier moves the collection to a new type and marks it
	// upgraded.
	UpgradeTier(ctx context.Context, collectionID, collectionTypeID int64) error
}

type postgresCollectionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCollectionRepository(db *pgxpool.Pool) CollectionRepository {
	return &postgresCollectionRepository{db: db}
}

func (r *postgresCollectionRepository) Create(ctx context.Context, collection *model.Collection, ownerWorkspaceID int64) error {
	icon, err := json.Marshal(collection.Icon)
	if err != nil {
		return fmt.Errorf("failed to marshal collection icon: %w", err)
	}
	header, err := json.Marshal(collection.Header)
	if err != nil {
		return fmt.Errorf("failed to marshal collection header: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO collections (suffix, collection_type_id, icon, header, upgraded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, NOW(), NOW())
		RETURNING id`,
		collection.Suffix, collection.CollectionTypeID, icon, header,
	).Scan(&collection.ID)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO collection_editors (collection_id, workspace_id, role)
		VALUES ($1, $2, $3)`,
		collection.ID, ownerWorkspaceID, model.RoleOwner,
	)
	if err != nil {
		return fmt.Errorf("failed to create collection owner: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *postgresCollectionRepository) UpgradeTier(ctx context.Context, collectionID, collectionTypeID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE collections
		SET collection_type_id = $2, upgraded = true, updated_at = NOW()
		WHERE id = $1`,
		collectionID, collectionTypeID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCollectionNotFound
		}
		return fmt.Errorf("failed to upgrade collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCollectionNotFound
	}
	return nil
}
