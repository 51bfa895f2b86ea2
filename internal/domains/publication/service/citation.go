package service

import (
	"fmt"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/publication/model"
)

// CitationNormalizer reconciles the two stored citation shapes into one
// canonical form: references to platform-native modules carry structured
// authors through the workspace graph, external references carry a raw
// author payload.
type CitationNormalizer struct {
	platformTag string
}

func NewCitationNormalizer(platformTag string) *CitationNormalizer {
	return &CitationNormalizer{platformTag: platformTag}
}

// Normalize maps one stored reference to a canonical citation. Author
// order is preserved as stored. A citation that cannot produce a title
// and at least one nameable author is a hard failure, never skipped.
func (n *CitationNormalizer) Normalize(ref *modmodel.Reference, index int) (model.Citation, error) {
	cite := model.Citation{
		Key:         fmt.Sprintf("ref%d", index+1),
		Title:       ref.Title,
		PublishedAt: ref.PublishedAt,
	}
	if ref.PublishedWhere != nil {
		cite.PublishedWhere = *ref.PublishedWhere
	}
	if ref.Prefix != nil && ref.Suffix != nil {
		cite.DOI = *ref.Prefix + "/" + *ref.Suffix
	}

	if cite.Title == "" {
		return model.Citation{}, model.NewValidationError(
			fmt.Sprintf("reference %d has no title", ref.ID), nil)
	}

	var (
		authors []model.CitationAuthor
		err     error
	)
	if cite.PublishedWhere == n.platformTag {
		authors = normalizePlatformAuthors(ref.Authors)
	} else {
		authors, err = normalizeRawAuthors(ref)
		if err != nil {
			return model.Citation{}, err
		}
	}

	if len(authors) == 0 {
		return model.Citation{}, model.NewValidationError(
			fmt.Sprintf("reference %d has no authors", ref.ID), nil)
	}

	cite.Authors = authors
	return cite, nil
}

// normalizePlatformAuthors flattens the workspace graph. The identifier
// is included only when the workspace actually carries an ORCID;
// appending the prefix to an empty value would produce a dangling URL.
func normalizePlatformAuthors(authors []modmodel.ModuleAuthor) []model.CitationAuthor {
	out := make([]model.CitationAuthor, 0, len(authors))
	for _, a := range authors {
		w := a.Workspace
		if w == nil {
			continue
		}
		ca := model.CitationAuthor{
			Name: w.FirstName + " " + w.LastName,
		}
		if w.ORCID != nil && *w.ORCID != "" {
			id := "https://orcid.org/" + *w.ORCID
			ca.Identifier = &id
		}
		out = append(out, ca)
	}
	return out
}

// normalizeRawAuthors maps the unstructured payload. Given+family wins
// over a bare display name when both are present; an entry with neither
// shape fails the whole citation.
func normalizeRawAuthors(ref *modmodel.Reference) ([]model.CitationAuthor, error) {
	if ref.AuthorsRaw == nil {
		return nil, nil
	}
	out := make([]model.CitationAuthor, 0, len(ref.AuthorsRaw.Object))
	for i, raw := range ref.AuthorsRaw.Object {
		switch {
		case raw.Given != "" && raw.Family != "":
			out = append(out, model.CitationAuthor{Name: raw.Given + " " + raw.Family})
		case raw.Name != "":
			out = append(out, model.CitationAuthor{Name: raw.Name})
		default:
			return nil, model.NewValidationError(
				fmt.Sprintf("reference %d author %d has neither name parts nor a display name", ref.ID, i),
				model.ErrUnnameableAuthor)
		}
	}
	return out, nil
}
