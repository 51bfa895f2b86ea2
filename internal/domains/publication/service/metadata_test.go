package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/publication/model"
)

func validModule() *modmodel.Module {
	return &modmodel.Module{
		ID:          42,
		Title:       "On Computable Numbers",
		Description: "A study of computability.",
		Language:    "en",
		Prefix:      "10.53962",
		Suffix:      "abcd",
		Main:        strPtr("main.pdf"),
		License: &modmodel.License{
			ID:  1,
			URL: "https://creativecommons.org/licenses/by/4.0/",
		},
		Type: &modmodel.ModuleType{ID: 1, Name: "Theory"},
		Authors: []modmodel.ModuleAuthor{
			{
				AuthorshipRank: 0,
				Workspace: &modmodel.Workspace{
					FirstName: "Ada",
					LastName:  "Lovelace",
					ORCID:     strPtr("0000-0000-0000-0001"),
				},
			},
			{
				AuthorshipRank: 1,
				Workspace: &modmodel.Workspace{
					FirstName: "Charles",
					LastName:  "Babbage",
				},
			},
		},
	}
}

func assertValidationCode(t *testing.T, err error) {
	t.Helper()
	var pubErr *model.PublicationError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, model.ErrCodeValidation, pubErr.Code)
}

func TestAssemble(t *testing.T) {
	a := NewMetadataAssembler("https://www.researchequals.com", testPlatformTag)
	submittedAt := time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("valid module", func(t *testing.T) {
		md, err := a.Assemble(validModule(), "evt_1_42", submittedAt)
		require.NoError(t, err)

		assert.Equal(t, "5.3.1", md.Schema)
		assert.Equal(t, "evt_1_42", md.BatchID)
		assert.Equal(t, submittedAt.UnixMilli(), md.Timestamp)
		assert.Equal(t, "Theory", md.WorkType)
		assert.Equal(t, "10.53962/abcd", md.DOI)
		assert.Equal(t, "https://www.researchequals.com/modules/abcd", md.ResolveURL)

		require.Len(t, md.Contributors, 2)
		assert.Equal(t, "first", md.Contributors[0].Sequence)
		assert.Equal(t, "https://orcid.org/0000-0000-0000-0001", md.Contributors[0].ORCID)
		assert.Equal(t, "additional", md.Contributors[1].Sequence)
		assert.Empty(t, md.Contributors[1].ORCID)

		assert.Empty(t, md.Citations)
	})

	t.Run("empty main content", func(t *testing.T) {
		m := validModule()
		m.Main = nil
		_, err := a.Assemble(m, "b", submittedAt)
		assertValidationCode(t, err)
		assert.ErrorIs(t, err, model.ErrMissingMainFile)
	})

	t.Run("missing license", func(t *testing.T) {
		m := validModule()
		m.License = nil
		_, err := a.Assemble(m, "b", submittedAt)
		assertValidationCode(t, err)
	})

	t.Run("invalid license URI", func(t *testing.T) {
		m := validModule()
		m.License.URL = "not a url"
		_, err := a.Assemble(m, "b", submittedAt)
		assertValidationCode(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidLicense)
	})

	t.Run("references map to citations", func(t *testing.T) {
		m := validModule()
		m.References = []modmodel.Reference{
			{
				ID:             1,
				Title:          "An external paper",
				PublishedWhere: strPtr("Nature"),
				AuthorsRaw: &modmodel.RawAuthorList{
					Object: []modmodel.RawAuthor{{Given: "Marie", Family: "Curie"}},
				},
			},
		}

		md, err := a.Assemble(m, "b", submittedAt)
		require.NoError(t, err)
		require.Len(t, md.Citations, 1)
		assert.Equal(t, "Marie Curie", md.Citations[0].Authors[0].Name)
	})

	t.Run("bad reference aborts assembly", func(t *testing.T) {
		m := validModule()
		m.References = []modmodel.Reference{
			{
				ID:             1,
				Title:          "Broken",
				PublishedWhere: strPtr("Nature"),
				AuthorsRaw:     &modmodel.RawAuthorList{Object: []modmodel.RawAuthor{{}}},
			},
		}

		_, err := a.Assemble(m, "b", submittedAt)
		assertValidationCode(t, err)
	})
}

func TestIsURI(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://creativecommons.org/licenses/by/4.0/", true},
		{"http://example.org", true},
		{"ftp://example.org/file", false},
		{"not a url", false},
		{"", false},
		{"/relative/path", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, isURI(tt.in))
		})
	}
}
