package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	modmodel "researchequals-backend/internal/domains/module/model"
	modrepo "researchequals-backend/internal/domains/module/repository"
	"researchequals-backend/internal/domains/publication/model"
	"researchequals-backend/pkg/logger"
)

// =====================================================
// CAPABILITY INTERFACES
// =====================================================

// DocumentEncoder serializes canonical metadata into the deposit format.
type DocumentEncoder interface {
	Encode(md *model.ModuleMetadata) ([]byte, error)
}

// Submitter transmits an encoded deposit to the registration authority.
type Submitter interface {
	Submit(ctx context.Context, document []byte, filename string) error
}

// Indexer upserts a published module's search projection.
type Indexer interface {
	Upsert(ctx context.Context, m *modmodel.PublishedModule) error
}

// ResyncEnqueuer schedules a deferred index write after a failed sync.
type ResyncEnqueuer interface {
	EnqueueIndexResync(moduleID int64) error
}

// =====================================================
// PUBLISH SERVICE
// =====================================================

// PublishService drives a module from draft to published in response to
// a confirmed license payment. Steps run strictly in order: metadata
// assembly, deposit submission, the publish write, index sync. The
// publish write happens only after the authority accepted the deposit,
// so a module is never marked published without a confirmed
// registration. Index failures never undo a completed publication.
type PublishService struct {
	moduleRepo  modrepo.ModuleRepository
	assembler   *MetadataAssembler
	encoder     DocumentEncoder
	submitter   Submitter
	indexer     Indexer
	enqueuer    ResyncEnqueuer
	platformTag string
	doiPrefix   string
}

func NewPublishService(
	moduleRepo modrepo.ModuleRepository,
	assembler *MetadataAssembler,
	encoder DocumentEncoder,
	submitter Submitter,
	indexer Indexer,
	enqueuer ResyncEnqueuer,
	platformTag string,
	doiPrefix string,
) *PublishService {
	return &PublishService{
		moduleRepo:  moduleRepo,
		assembler:   assembler,
		encoder:     encoder,
		submitter:   submitter,
		indexer:     indexer,
		enqueuer:    enqueuer,
		platformTag: platformTag,
		doiPrefix:   doiPrefix,
	}
}

// Publish runs the full pipeline for one module. The batch id is derived
// from the triggering event id so a redelivered event reproduces the
// same deposit document, which the authority treats as an update.
func (s *PublishService) Publish(ctx context.Context, moduleID int64, eventID string) (*modmodel.PublishedModule, error) {
	submittedAt := time.Now().UTC()

	// Step 1: assemble metadata from the eagerly loaded graph
	s.logState(moduleID, model.StateAssemblingMetadata, eventID)

	mod, err := s.moduleRepo.GetForPublication(ctx, moduleID)
	if err != nil {
		if errors.Is(err, modmodel.ErrModuleNotFound) {
			return nil, model.NewValidationError(
				fmt.Sprintf("module %d not found", moduleID), err)
		}
		return nil, model.NewValidationError("failed to load module graph", err)
	}

	batchID := fmt.Sprintf("%s_%d", eventID, moduleID)
	md, err := s.assembler.Assemble(mod, batchID, submittedAt)
	if err != nil {
		return nil, err
	}

	// Step 2: encode and submit the deposit
	s.logState(moduleID, model.StateSubmittingRegistration, eventID)

	document, err := s.encoder.Encode(md)
	if err != nil {
		return nil, err
	}
	if err := s.submitter.Submit(ctx, document, mod.Suffix+".xml"); err != nil {
		return nil, err
	}

	// Step 3: persist the published state. The write is conditional on
	// published=false; a duplicate delivery that lost the race resolves
	// as an already-complete publication, not an error — the deposit it
	// just resubmitted was an idempotent update.
	s.logState(moduleID, model.StatePersisting, eventID)

	resolveURL := fmt.Sprintf("https://doi.org/%s/%s", s.doiPrefix, mod.Suffix)
	published, err := s.moduleRepo.MarkPublished(ctx, moduleID, submittedAt, s.platformTag, resolveURL)
	if err != nil {
		if errors.Is(err, modmodel.ErrAlreadyPublished) {
			logger.Info("Module already published, treating redelivery as complete", map[string]interface{}{
				"module_id": moduleID,
				"event_id":  eventID,
			})
			return s.moduleRepo.GetPublished(ctx, moduleID)
		}
		return nil, model.NewPersistError("failed to persist published state", err)
	}

	// Step 4: index sync. Staleness here is correctable later; the
	// publication stands regardless.
	s.logState(moduleID, model.StateIndexSyncing, eventID)

	if err := s.indexer.Upsert(ctx, published); err != nil {
		logger.Error("Index sync failed after publication, scheduling resync", err)
		if s.enqueuer != nil {
			if enqErr := s.enqueuer.EnqueueIndexResync(moduleID); enqErr != nil {
				logger.Error("Failed to enqueue index resync", enqErr)
			}
		}
	}

	s.logState(moduleID, model.StatePublished, eventID)
	logger.Info("Publication complete", map[string]interface{}{
		"module_id": moduleID,
		"event_id":  eventID,
		"doi":       published.DOI(),
		"url":       published.URL,
	})
	return published, nil
}

// ResyncIndex re-pushes a published module's projection. Used by the
// deferred worker after a failed index sync.
func (s *PublishService) ResyncIndex(ctx context.Context, moduleID int64) error {
	published, err := s.moduleRepo.GetPublished(ctx, moduleID)
	if err != nil {
		return err
	}
	if err := s.indexer.Upsert(ctx, published); err != nil {
		return model.NewIndexError(
			fmt.Sprintf("failed to resync index for module %d", moduleID), err)
	}
	return nil
}

// ReconcileIndex re-pushes projections for modules published inside the
// window. Runs on a schedule to repair index drift.
func (s *PublishService) ReconcileIndex(ctx context.Context, window time.Duration, limit int) error {
	since := time.Now().UTC().Add(-window)
	modules, err := s.moduleRepo.ListPublishedSince(ctx, since, limit)
	if err != nil {
		return err
	}

	var failed int
	for i := range modules {
		if err := s.indexer.Upsert(ctx, &modules[i]); err != nil {
			failed++
			logger.Error("Index reconcile write failed", err)
		}
	}

	logger.Info("Index reconcile sweep finished", map[string]interface{}{
		"scanned": len(modules),
		"failed":  failed,
	})
	if failed > 0 {
		return model.NewIndexError(fmt.Sprintf("%d of %d reconcile writes failed", failed, len(modules)), nil)
	}
	return nil
}

func (s *PublishService) logState(moduleID int64, state model.State, eventID string) {
	logger.Info("Publication state transition", map[string]interface{}{
		"module_id": moduleID,
		"state":     string(state),
		"event_id":  eventID,
	})
}
