package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/infrastructure/search"
)

func TestModuleIndexerUpsert(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := search.NewClientWithBaseURL("test-app", "test-key", srv.URL)
	indexer := NewModuleIndexer(client, "dev", "10.53962")

	publishedAt := time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC)
	err := indexer.Upsert(context.Background(), &modmodel.PublishedModule{
		ID:           42,
		Title:        "On Computable Numbers",
		Description:  "A study of computability.",
		Language:     "en",
		DisplayColor: "#574cfa",
		Prefix:       "10.53962",
		Suffix:       "abcd",
		PublishedAt:  publishedAt,
		URL:          "https://doi.org/10.53962/abcd",
		LicenseURL:   "https://creativecommons.org/licenses/by/4.0/",
		TypeName:     "Theory",
	})
	require.NoError(t, err)

	assert.Equal(t, "/1/indexes/dev_modules/42", gotPath)
	assert.Equal(t, "42", gotBody["objectID"])
	assert.Equal(t, "10.53962/abcd", gotBody["doi"])
	assert.Equal(t, "abcd", gotBody["suffix"])
	assert.Equal(t, "https://creativecommons.org/licenses/by/4.0/", gotBody["license"])
	assert.Equal(t, "Theory", gotBody["type"])
	assert.Equal(t, "en", gotBody["language"])
	assert.Equal(t, "#574cfa", gotBody["displayColor"])

	// Indexed under "name", not "title".
	assert.Equal(t, "On Computable Numbers", gotBody["name"])
	assert.NotContains(t, gotBody, "title")
}
