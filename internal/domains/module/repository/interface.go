package repository

import (
	"context"
	"time"

	"researchequals-backend/internal/domains/module/model"
)

// ModuleRepository exposes the persistence operations the publication
// pipeline and read endpoints need.
type ModuleRepository interface {
	// GetForPublication loads the full graph needed to assemble
	// registration metadata: module, license, type, authors (ordered by
	// authorship rank) and references with their authors.
	GetForPublication(ctx context.Context, id int64) (*model.Module, error)

	// MarkPublished flips the module to published with the given
	// timestamp and resolution URL. The write is conditional on the
	// module still being unpublished; a lost race returns
	// model.ErrAlreadyPublished. The returned projection carries the
	// re-fetched license URL and type name.
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time, publishedWhere, url string) (*model.PublishedModule, error)

	// GetPublished loads the index projection of an already published
	// module. Used by the index resync worker.
	GetPublished(ctx context.Context, id int64) (*model.PublishedModule, error)

	// GetBySuffix resolves a published module by its identifier suffix.
	GetBySuffix(ctx context.Context, suffix string) (*model.Module, error)

	// ListPublishedSince returns modules published after the cutoff,
	// oldest first, capped at limit. Used by the scheduled index
	// reconcile sweep.
	ListPublishedSince(ctx context.Context, since time.Time, limit int) ([]model.PublishedModule, error)

	// GetLicenseByPriceID resolves a license from its payment-provider
	// price reference.
	GetLicenseByPriceID(ctx context.Context, priceID string) (*model.License, error)
}
