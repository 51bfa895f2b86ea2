package service

import (
	"context"

	"researchequals-backend/internal/domains/collection/model"
	"researchequals-backend/internal/domains/collection/repository"
	"researchequals-backend/pkg/logger"
)

// CollectionService applies the collection side effects of confirmed
// payments.
type CollectionService struct {
	repo repository.CollectionRepository
}

func NewCollectionService(repo repository.CollectionRepository) *CollectionService {
	return &CollectionService{repo: repo}
}

// CreateFromPurchase creates a collection of the purchased type with
// default artwork and the buyer's workspace as OWNER.
func (s *CollectionService) CreateFromPurchase(ctx context.Context, suffix string, collectionTypeID, workspaceID int64) (*model.Collection, error) {
	collection := &model.Collection{
		Suffix:           suffix,
		CollectionTypeID: collectionTypeID,
		Icon:             model.DefaultIcon,
		Header:           model.DefaultHeader,
	}

	if err := s.repo.Create(ctx, collection, workspaceID); err != nil {
		return nil, err
	}

	logger.Info("Collection created from purchase", map[string]interface{}{
		"collection_id": collection.ID,
		"suffix":        suffix,
		"workspace_id":  workspaceID,
	})
	return collection, nil
}

// Upgrade moves an existing collection to the purchased tier.
func (s *CollectionService) Upgrade(ctx context.Context, collectionID, collectionTypeID int64) error {
	if err := s.repo.UpgradeTier(ctx, collectionID, collectionTypeID); err != nil {
		return err
	}

	logger.Info("Collection upgraded", map[string]interface{}{
		"collection_id":      collectionID,
		"collection_type_id": collectionTypeID,
	})
	return nil
}
