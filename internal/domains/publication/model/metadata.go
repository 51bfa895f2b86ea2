package model

import "time"

// =====================================================
// PUBLICATION STATES
// =====================================================

// State names the phases a module passes through while being published.
// Transitions run strictly forward; any phase may fall to StateFailed.
type State string

const (
	StateDraft                  State = "DRAFT"
	StateAssemblingMetadata     State = "ASSEMBLING_METADATA"
	StateSubmittingRegistration State = "SUBMITTING_REGISTRATION"
	StatePersisting             State = "PERSISTING"
	StateIndexSyncing           State = "INDEX_SYNCING"
	StatePublished              State = "PUBLISHED"
	StateFailed                 State = "FAILED"
)

// =====================================================
// CANONICAL METADATA
// =====================================================

// ModuleMetadata is the assembled, validated registration record: the
// single source the deposit encoder and the index projection read from.
type ModuleMetadata struct {
	Schema         string
	BatchID        string
	Timestamp      int64
	WorkType       string
	Title          string
	Description    string
	Language       string
	AcceptanceDate time.Time
	DOI            string
	ResolveURL     string
	LicenseURL     string
	Contributors   []Contributor
	Citations      []Citation
}

// Contributor is one author of the module being registered, in rank
// order. Sequence is "first" for the lead author, "additional" after.
type Contributor struct {
	FirstName string
	LastName  string
	ORCID     string // full https://orcid.org/... URL, empty when absent
	Sequence  string
}

// Citation is one normalized reference in the deposit.
type Citation struct {
	Key            string
	Title          string
	DOI            string // empty for works without an identifier
	PublishedWhere string
	PublishedAt    *time.Time
	Authors        []CitationAuthor
}

// CitationAuthor is the flattened author form used inside citations.
// Identifier is nil when the author has no resolvable identity URL.
type CitationAuthor struct {
	Name       string
	Identifier *string
}
