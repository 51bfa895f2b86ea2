package service

import (
	"context"
	"strconv"
	"time"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/infrastructure/search"
)

// moduleProjection is the denormalized record pushed to the search
// index. The title is indexed under "name" because the index ranks
// that field higher than "title".
type moduleProjection struct {
	ObjectID     string    `json:"objectID"`
	DOI          string    `json:"doi"`
	Suffix       string    `json:"suffix"`
	License      string    `json:"license"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"publishedAt"`
	DisplayColor string    `json:"displayColor"`
	Language     string    `json:"language"`
}

// ModuleIndexer writes published-module projections to the search index.
// Upserts are keyed by module id, so repeating a write is harmless.
type ModuleIndexer struct {
	client    *search.Client
	indexName string
	doiPrefix string
}

func NewModuleIndexer(client *search.Client, indexPrefix, doiPrefix string) *ModuleIndexer {
	return &ModuleIndexer{
		client:    client,
		indexName: indexPrefix + "_modules",
		doiPrefix: doiPrefix,
	}
}

func (i *ModuleIndexer) Upsert(ctx context.Context, m *modmodel.PublishedModule) error {
	objectID := strconv.FormatInt(m.ID, 10)
	return i.client.SaveObject(ctx, i.indexName, objectID, moduleProjection{
		ObjectID:     objectID,
		DOI:          i.doiPrefix + "/" + m.Suffix,
		Suffix:       m.Suffix,
		License:      m.LicenseURL,
		Type:         m.TypeName,
		Name:         m.Title,
		Description:  m.Description,
		PublishedAt:  m.PublishedAt,
		DisplayColor: m.DisplayColor,
		Language:     m.Language,
	})
}
