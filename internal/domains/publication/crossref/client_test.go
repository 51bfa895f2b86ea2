package crossref

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchequals-backend/internal/config"
	"researchequals-backend/internal/domains/publication/model"
)

func newTestClient(depositURL string) *Client {
	return NewClient(&config.CrossRefConfig{
		LoginID:       "test_login",
		LoginPassword: "test_passwd",
		DepositURL:    depositURL,
	})
}

func TestSubmit(t *testing.T) {
	document := []byte(`<?xml version="1.0"?><doi_batch/>`)

	t.Run("uploads the multipart deposit", func(t *testing.T) {
		var gotOperation, gotLogin, gotPasswd, gotFilename, gotContentType string
		var gotFile []byte

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotOperation = r.FormValue("operation")
			gotLogin = r.FormValue("login_id")
			gotPasswd = r.FormValue("login_passwd")

			file, header, err := r.FormFile("fname")
			require.NoError(t, err)
			defer file.Close()
			gotFilename = header.Filename
			gotContentType = header.Header.Get("Content-Type")
			gotFile, err = io.ReadAll(file)
			require.NoError(t, err)

			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.Submit(context.Background(), document, "abcd.xml")
		require.NoError(t, err)

		assert.Equal(t, "doMDUpload", gotOperation)
		assert.Equal(t, "test_login", gotLogin)
		assert.Equal(t, "test_passwd", gotPasswd)
		assert.Equal(t, "abcd.xml", gotFilename)
		assert.Equal(t, "text/xml", gotContentType)
		assert.Equal(t, document, gotFile)
	})

	t.Run("non-success status surfaces the response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("bad credentials"))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.Submit(context.Background(), document, "abcd.xml")
		require.Error(t, err)

		var pubErr *model.PublicationError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, model.ErrCodeSubmission, pubErr.Code)
		assert.Contains(t, pubErr.Message, "401")
		assert.Contains(t, pubErr.Message, "bad credentials")
	})

	t.Run("unreachable endpoint is a submission error", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:1")
		err := client.Submit(context.Background(), document, "abcd.xml")
		require.Error(t, err)

		var pubErr *model.PublicationError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, model.ErrCodeSubmission, pubErr.Code)
	})
}
