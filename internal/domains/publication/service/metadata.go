package service

import (
	"fmt"
	"net/url"
	"time"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/publication/model"
)

// MetadataAssembler builds the registration-ready record from a fully
// loaded module graph.
type MetadataAssembler struct {
	origin      string // public application origin
	platformTag string
	normalizer  *CitationNormalizer
}

func NewMetadataAssembler(origin, platformTag string) *MetadataAssembler {
	return &MetadataAssembler{
		origin:      origin,
		platformTag: platformTag,
		normalizer:  NewCitationNormalizer(platformTag),
	}
}

// Assemble validates the module graph and maps it to canonical metadata.
// BatchID and submission time are inputs so the resulting document is
// reproducible for a given delivery.
func (a *MetadataAssembler) Assemble(m *modmodel.Module, batchID string, submittedAt time.Time) (*model.ModuleMetadata, error) {
	// Step 1: preconditions
	if m.Main == nil || *m.Main == "" {
		return nil, model.NewValidationError("empty main content", model.ErrMissingMainFile)
	}
	if m.License == nil {
		return nil, model.NewValidationError("module has no license", model.ErrMissingLicense)
	}
	if !isURI(m.License.URL) {
		return nil, model.NewValidationError("invalid license URI", model.ErrInvalidLicense)
	}

	resolveURL := fmt.Sprintf("%s/modules/%s", a.origin, m.Suffix)
	if !isURI(resolveURL) {
		return nil, model.NewValidationError("invalid resolve URI", model.ErrInvalidResolve)
	}

	// Step 2: contributors in stored rank order
	contributors := make([]model.Contributor, 0, len(m.Authors))
	for i, author := range m.Authors {
		w := author.Workspace
		if w == nil {
			return nil, model.NewValidationError(
				fmt.Sprintf("author %d has no workspace", author.ID), nil)
		}
		c := model.Contributor{
			FirstName: w.FirstName,
			LastName:  w.LastName,
			Sequence:  "additional",
		}
		if i == 0 {
			c.Sequence = "first"
		}
		if w.ORCID != nil && *w.ORCID != "" {
			c.ORCID = "https://orcid.org/" + *w.ORCID
		}
		contributors = append(contributors, c)
	}

	// Step 3: citations. An empty reference list is an empty citation
	// list, never an error.
	citations := make([]model.Citation, 0, len(m.References))
	for i := range m.References {
		cite, err := a.normalizer.Normalize(&m.References[i], i)
		if err != nil {
			return nil, err
		}
		citations = append(citations, cite)
	}

	return &model.ModuleMetadata{
		Schema:         "5.3.1",
		BatchID:        batchID,
		Timestamp:      submittedAt.UTC().UnixMilli(),
		WorkType:       m.Type.Name,
		Title:          m.Title,
		Description:    m.Description,
		Language:       m.Language,
		AcceptanceDate: submittedAt.UTC(),
		DOI:            m.Prefix + "/" + m.Suffix,
		ResolveURL:     resolveURL,
		LicenseURL:     m.License.URL,
		Contributors:   contributors,
		Citations:      citations,
	}, nil
}

// isURI reports whether s parses as an absolute http(s) URL.
func isURI(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
