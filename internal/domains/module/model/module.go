package model

import (
	"time"
)

// =====================================================
// MODULE ENTITY
// =====================================================

// Module is a unit of publishable content. It is created in draft state
// and transitions to published exactly once, via the publication pipeline.
type Module struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Language    string `json:"language" db:"language"`

	// Display metadata
	DisplayColor string   `json:"display_color" db:"display_color"`
	Keywords     []string `json:"keywords,omitempty" db:"keywords"`

	// Persistent identifier parts. The DOI is prefix/suffix.
	Prefix string `json:"prefix" db:"prefix"`
	Suffix string `json:"suffix" db:"suffix"`

	// Main content. Publication is rejected when absent.
	Main *string `json:"main,omitempty" db:"main"`

	// Publication state. Written only by the publication pipeline.
	Published      bool       `json:"published" db:"published"`
	PublishedAt    *time.Time `json:"published_at,omitempty" db:"published_at"`
	PublishedWhere *string    `json:"published_where,omitempty" db:"published_where"`
	URL            *string    `json:"url,omitempty" db:"url"`

	LicenseID *int64 `json:"license_id,omitempty" db:"license_id"`
	TypeID    int64  `json:"type_id" db:"type_id"`

	// Eager-loaded associations
	License    *License        `json:"license,omitempty"`
	Type       *ModuleType     `json:"type,omitempty"`
	Authors    []ModuleAuthor  `json:"authors,omitempty"`
	References []Reference     `json:"references,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// License is a controlled catalog entry with a canonical URL and a
// payment-provider price reference.
type License struct {
	ID      int64   `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	URL     string  `json:"url" db:"url"`
	PriceID *string `json:"price_id,omitempty" db:"price_id"`
	Price   int64   `json:"price" db:"price"` // cents
}

// ModuleType categorizes a module (e.g. "Theory", "Data").
type ModuleType struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Workspace is the public author profile entity.
type Workspace struct {
	ID        int64   `json:"id" db:"id"`
	Handle    string  `json:"handle" db:"handle"`
	Name      *string `json:"name,omitempty" db:"name"`
	FirstName string  `json:"first_name" db:"first_name"`
	LastName  string  `json:"last_name" db:"last_name"`
	ORCID     *string `json:"orcid,omitempty" db:"orcid"`
	Avatar    string  `json:"avatar" db:"avatar"`
	Pronouns  *string `json:"pronouns,omitempty" db:"pronouns"`
}

// ModuleAuthor binds a workspace to a module (or to a reference's source
// module) at an explicit authorship rank. Immutable once published.
type ModuleAuthor struct {
	ID            int64 `json:"id" db:"id"`
	WorkspaceID   int64 `json:"workspace_id" db:"workspace_id"`
	AuthorshipRank int  `json:"authorship_rank" db:"authorship_rank"`

	Workspace *Workspace `json:"workspace,omitempty"`
}

// =====================================================
// REFERENCES
// =====================================================

// Reference is a citation from a module to another work: either a module
// native to the platform (structured authors via workspaces) or an
// external work carrying a raw author payload.
type Reference struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	PublishedWhere *string    `json:"published_where,omitempty" db:"published_where"`
	PublishedAt    *time.Time `json:"published_at,omitempty" db:"published_at"`
	Prefix         *string    `json:"prefix,omitempty" db:"prefix"`
	Suffix         *string    `json:"suffix,omitempty" db:"suffix"`

	// Structured authors, populated for platform-native references.
	Authors []ModuleAuthor `json:"authors,omitempty"`

	// Raw authors, populated for externally sourced references.
	AuthorsRaw *RawAuthorList `json:"authors_raw,omitempty" db:"authors_raw"`
}

// RawAuthorList mirrors the JSON payload imported for external
// references: {"object": [{"given": ..., "family": ..., "name": ...}]}.
type RawAuthorList struct {
	Object []RawAuthor `json:"object"`
}

// RawAuthor is one entry of an unstructured author list. Either
// Given+Family or Name is expected; Given+Family wins when both are set.
type RawAuthor struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
	Name   string `json:"name,omitempty"`
}

// =====================================================
// PUBLISHED PROJECTION
// =====================================================

// PublishedModule carries the fields needed after the publish write:
// the search-index projection source, re-fetched with license and type.
type PublishedModule struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Language     string    `json:"language"`
	DisplayColor string    `json:"display_color"`
	Keywords     []string  `json:"keywords,omitempty"`
	Prefix       string    `json:"prefix"`
	Suffix       string    `json:"suffix"`
	PublishedAt  time.Time `json:"published_at"`
	URL          string    `json:"url"`
	LicenseURL   string    `json:"license_url"`
	TypeName     string    `json:"type_name"`
}

// DOI returns the registered identifier, prefix/suffix.
func (m *PublishedModule) DOI() string {
	return m.Prefix + "/" + m.Suffix
}
