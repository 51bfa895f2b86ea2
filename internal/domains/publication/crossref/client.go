package crossref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"researchequals-backend/internal/config"
	"researchequals-backend/internal/domains/publication/model"
	"researchequals-backend/pkg/logger"
)

// Client submits encoded deposit documents to the registration
// authority's upload endpoint.
type Client struct {
	depositURL    string
	loginID       string
	loginPassword string
	httpClient    *http.Client
}

func NewClient(cfg *config.CrossRefConfig) *Client {
	return &Client{
		depositURL:    cfg.DepositURL,
		loginID:       cfg.LoginID,
		loginPassword: cfg.LoginPassword,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Submit uploads the document as a multipart deposit. The filename is
// "<suffix>.xml". Resubmitting an unchanged document under the same DOI
// is treated by the authority as a metadata update, which keeps
// webhook-redelivery retries safe.
func (c *Client) Submit(ctx context.Context, document []byte, filename string) error {
	// Step 1: build the multipart form
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("operation", "doMDUpload"); err != nil {
		return model.NewSubmissionError("failed to write form field", err)
	}
	if err := writer.WriteField("login_id", c.loginID); err != nil {
		return model.NewSubmissionError("failed to write form field", err)
	}
	if err := writer.WriteField("login_passwd", c.loginPassword); err != nil {
		return model.NewSubmissionError("failed to write form field", err)
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="fname"; filename="%s"`, filename)}
	header["Content-Type"] = []string{"text/xml"}
	part, err := writer.CreatePart(header)
	if err != nil {
		return model.NewSubmissionError("failed to create file part", err)
	}
	if _, err := part.Write(document); err != nil {
		return model.NewSubmissionError("failed to write deposit document", err)
	}
	if err := writer.Close(); err != nil {
		return model.NewSubmissionError("failed to finalize multipart form", err)
	}

	// Step 2: send the request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.depositURL, &buf)
	if err != nil {
		return model.NewSubmissionError("failed to create deposit request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewSubmissionError("deposit request failed", err)
	}
	defer resp.Body.Close()

	// Step 3: check the response. The authority's body is attached for
	// diagnostics on any non-success status.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Registration deposit failed", map[string]interface{}{
			"status":   resp.StatusCode,
			"filename": filename,
			"body":     string(respBody),
		})
		return model.NewSubmissionError(
			fmt.Sprintf("deposit rejected with status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	logger.Info("Registration deposit accepted", map[string]interface{}{
		"status":   resp.StatusCode,
		"filename": filename,
	})
	return nil
}
