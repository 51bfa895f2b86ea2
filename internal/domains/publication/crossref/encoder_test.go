package crossref

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchequals-backend/internal/domains/publication/model"
)

func testEncoder() *Encoder {
	return NewEncoder("ResearchEquals", "info@libscie.org", "Liberate Science GmbH", "ResearchEquals")
}

func testMetadata() *model.ModuleMetadata {
	published := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	return &model.ModuleMetadata{
		Schema:         "5.3.1",
		BatchID:        "evt_1_42",
		Timestamp:      1647340200000,
		WorkType:       "Theory",
		Title:          "On Computable Numbers",
		Description:    "A study of computability.",
		Language:       "en",
		AcceptanceDate: time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC),
		DOI:            "10.53962/abcd",
		ResolveURL:     "https://www.researchequals.com/modules/abcd",
		LicenseURL:     "https://creativecommons.org/licenses/by/4.0/",
		Contributors: []model.Contributor{
			{FirstName: "Ada", LastName: "Lovelace", ORCID: "https://orcid.org/0000-0000-0000-0001", Sequence: "first"},
			{FirstName: "Charles", LastName: "Babbage", Sequence: "additional"},
		},
		Citations: []model.Citation{
			{
				Key:            "ref1",
				Title:          "A prior module",
				DOI:            "10.53962/xyz1",
				PublishedWhere: "ResearchEquals",
				Authors:        []model.CitationAuthor{{Name: "Grace Hopper"}},
			},
			{
				Key:            "ref2",
				Title:          "An external paper",
				DOI:            "10.1038/nature1",
				PublishedWhere: "Nature",
				PublishedAt:    &published,
				Authors:        []model.CitationAuthor{{Name: "Marie Curie"}},
			},
		},
	}
}

func TestEncode(t *testing.T) {
	e := testEncoder()

	t.Run("produces a complete deposit", func(t *testing.T) {
		out, err := e.Encode(testMetadata())
		require.NoError(t, err)

		doc := string(out)
		assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
		assert.Contains(t, doc, `<doi_batch xmlns="http://www.crossref.org/schema/5.3.1" version="5.3.1"`)
		assert.Contains(t, doc, "<doi_batch_id>evt_1_42</doi_batch_id>")
		assert.Contains(t, doc, "<timestamp>1647340200000</timestamp>")
		assert.Contains(t, doc, "<depositor_name>ResearchEquals</depositor_name>")
		assert.Contains(t, doc, `<posted_content type="other" language="en">`)
		assert.Contains(t, doc, "<title>On Computable Numbers</title>")
		assert.Contains(t, doc, "<jats:p>A study of computability.</jats:p>")
		assert.Contains(t, doc, `<license_ref applies_to="vor">https://creativecommons.org/licenses/by/4.0/</license_ref>`)
		assert.Contains(t, doc, "<doi>10.53962/abcd</doi>")
		assert.Contains(t, doc, "<resource>https://www.researchequals.com/modules/abcd</resource>")
	})

	t.Run("contributors keep rank order", func(t *testing.T) {
		out, err := e.Encode(testMetadata())
		require.NoError(t, err)

		doc := string(out)
		first := strings.Index(doc, "<surname>Lovelace</surname>")
		second := strings.Index(doc, "<surname>Babbage</surname>")
		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, second)
		assert.Less(t, first, second)

		assert.Contains(t, doc, "<ORCID>https://orcid.org/0000-0000-0000-0001</ORCID>")
		// Babbage has no ORCID; exactly one ORCID element in the contributor list.
		assert.Equal(t, 1, strings.Count(doc, "<ORCID>"))
	})

	t.Run("platform citation carries a structured doi", func(t *testing.T) {
		out, err := e.Encode(testMetadata())
		require.NoError(t, err)

		doc := string(out)
		assert.Contains(t, doc, `<citation key="ref1">`)
		assert.Contains(t, doc, "<doi>10.53962/xyz1</doi>")
	})

	t.Run("external citation is unstructured", func(t *testing.T) {
		out, err := e.Encode(testMetadata())
		require.NoError(t, err)

		doc := string(out)
		assert.Contains(t, doc, `<citation key="ref2">`)
		assert.Contains(t, doc,
			"<unstructured_citation>Marie Curie. (2021). An external paper. https://doi.org/10.1038/nature1</unstructured_citation>")
	})

	t.Run("deterministic output", func(t *testing.T) {
		a, err := e.Encode(testMetadata())
		require.NoError(t, err)
		b, err := e.Encode(testMetadata())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("empty citation list omits the element", func(t *testing.T) {
		md := testMetadata()
		md.Citations = nil
		out, err := e.Encode(md)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "<citation_list>")
	})

	t.Run("missing required fields", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*model.ModuleMetadata)
		}{
			{"no title", func(md *model.ModuleMetadata) { md.Title = "" }},
			{"no abstract", func(md *model.ModuleMetadata) { md.Description = "" }},
			{"no authors", func(md *model.ModuleMetadata) { md.Contributors = nil }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				md := testMetadata()
				tt.mutate(md)
				_, err := e.Encode(md)
				require.Error(t, err)

				var pubErr *model.PublicationError
				require.ErrorAs(t, err, &pubErr)
				assert.Equal(t, model.ErrCodeEncoding, pubErr.Code)
			})
		}
	})
}

func TestRenderUnstructured(t *testing.T) {
	published := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cite model.Citation
		want string
	}{
		{
			name: "full citation",
			cite: model.Citation{
				Title:       "Some Paper",
				DOI:         "10.1000/1",
				PublishedAt: &published,
				Authors:     []model.CitationAuthor{{Name: "A One"}, {Name: "B Two"}},
			},
			want: "A One & B Two. (2019). Some Paper. https://doi.org/10.1000/1",
		},
		{
			name: "no doi",
			cite: model.Citation{
				Title:   "Some Paper",
				Authors: []model.CitationAuthor{{Name: "A One"}},
			},
			want: "A One. Some Paper.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderUnstructured(tt.cite))
		})
	}
}
