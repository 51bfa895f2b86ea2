package service

import (
	"context"
	"fmt"
	"time"

	collectionservice "researchequals-backend/internal/domains/collection/service"
	"researchequals-backend/internal/domains/payment/gateway/stripe"
	publicationservice "researchequals-backend/internal/domains/publication/service"
	"researchequals-backend/pkg/cache"
	"researchequals-backend/pkg/logger"
)

// Webhook deliveries are at-least-once; the guard keeps a processed
// event from running the pipeline twice. Long enough to outlive the
// provider's retry schedule.
const processedEventTTL = 72 * time.Hour

// WebhookService verifies inbound payment notifications and dispatches
// them by product.
type WebhookService struct {
	webhookSecret  string
	tolerance      time.Duration
	cache          cache.Cache
	publishService *publicationservice.PublishService
	collections    *collectionservice.CollectionService
}

func NewWebhookService(
	webhookSecret string,
	cache cache.Cache,
	publishService *publicationservice.PublishService,
	collections *collectionservice.CollectionService,
) *WebhookService {
	return &WebhookService{
		webhookSecret:  webhookSecret,
		tolerance:      stripe.DefaultTolerance,
		cache:          cache,
		publishService: publishService,
		collections:    collections,
	}
}

// VerifyAndParse checks the signature over the raw body and decodes the
// event. Verification failure means the request never reaches dispatch.
func (s *WebhookService) VerifyAndParse(payload []byte, signatureHeader string) (*stripe.Event, error) {
	if err := stripe.VerifySignature(payload, signatureHeader, s.webhookSecret, s.tolerance, time.Now()); err != nil {
		return nil, err
	}
	return stripe.ParseEvent(payload)
}

// ProcessEvent runs the side effects for one verified event. Unknown
// event types are logged and dropped; the provider only retries on
// transport failure, so recognizing a type is not a delivery contract.
func (s *WebhookService) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	if event.Type != stripe.EventPaymentIntentSucceeded {
		logger.Info("Ignoring unhandled webhook event type", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
		return nil
	}

	// Step 1: at-most-once guard keyed by event id. A duplicate delivery
	// that arrives while (or after) the original is processed stops here.
	guardKey := "processed:stripe:" + event.ID
	acquired, err := s.cache.SetNX(ctx, guardKey, time.Now().UTC(), processedEventTTL)
	if err != nil {
		// Degraded cache: proceed anyway, the conditional publish write
		// and upsert-by-key index write stay safe under duplicates.
		logger.Error("Idempotency guard unavailable, continuing unguarded", err)
	} else if !acquired {
		logger.Info("Duplicate webhook delivery suppressed", map[string]interface{}{
			"event_id": event.ID,
		})
		return nil
	}

	// Step 2: validate metadata for the product, then dispatch
	meta := event.Data.Object.Metadata
	if err := meta.Validate(); err != nil {
		logger.Warn("Webhook metadata failed validation", map[string]interface{}{
			"event_id": event.ID,
			"product":  meta.Product,
			"error":    err.Error(),
		})
		// Nothing to retry: redelivery carries the same bad metadata.
		return nil
	}

	if err := s.dispatch(ctx, event); err != nil {
		// Release the guard so the provider's redelivery can retry.
		if acquired {
			if delErr := s.cache.Delete(ctx, guardKey); delErr != nil {
				logger.Error("Failed to release idempotency guard", delErr)
			}
		}
		return err
	}
	return nil
}

func (s *WebhookService) dispatch(ctx context.Context, event *stripe.Event) error {
	meta := event.Data.Object.Metadata

	switch meta.Product {
	case stripe.ProductModuleLicense:
		moduleID, err := meta.ModuleIDInt64()
		if err != nil {
			return fmt.Errorf("invalid module id %q: %w", meta.ModuleID, err)
		}
		_, err = s.publishService.Publish(ctx, moduleID, event.ID)
		return err

	case stripe.ProductCollectionType:
		typeID, err := meta.CollectionIDInt64()
		if err != nil {
			return fmt.Errorf("invalid collection type id %q: %w", meta.CollectionID, err)
		}
		workspaceID, err := meta.WorkspaceIDInt64()
		if err != nil {
			return fmt.Errorf("invalid workspace id %q: %w", meta.WorkspaceID, err)
		}
		_, err = s.collections.CreateFromPurchase(ctx, meta.Suffix, typeID, workspaceID)
		return err

	case stripe.ProductCollectionUpgrade:
		collectionID, err := meta.CollectionIDInt64()
		if err != nil {
			return fmt.Errorf("invalid collection id %q: %w", meta.CollectionID, err)
		}
		tierID, err := meta.TierIDInt64()
		if err != nil {
			return fmt.Errorf("invalid tier id %q: %w", meta.ID, err)
		}
		return s.collections.Upgrade(ctx, collectionID, tierID)

	default:
		logger.Info("Ignoring unhandled webhook product", map[string]interface{}{
			"event_id": event.ID,
			"product":  meta.Product,
		})
		return nil
	}
}
