package coverage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xctask/xctask/pkg/version"
)

// DefaultEndpoint is the Coveralls jobs API.
const DefaultEndpoint = "https://coveralls.io/api/v1/jobs"

// UploadFailedError reports a rejected or failed report upload.
type UploadFailedError struct {
	StatusCode int // HTTP status, 0 when no response was received
	Body       string
	Err        error
}

func (e *UploadFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	msg := fmt.Sprintf("upload failed (exited with status: %d)", e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *UploadFailedError) Unwrap() error { return e.Err }

// Uploader sends a written report file to the coverage service.
type Uploader interface {
	Upload(ctx context.Context, reportPath string) error
}

// HTTPUploader posts the report as the multipart field json_file.
type HTTPUploader struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Ensure HTTPUploader implements Uploader
var _ Uploader = (*HTTPUploader)(nil)

// NewHTTPUploader creates an uploader for endpoint, DefaultEndpoint when empty.
func NewHTTPUploader(endpoint string) *HTTPUploader {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPUploader{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, reportPath string) error {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("failed to read coverage report: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("json_file", filepath.Base(reportPath))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", version.UserAgent())

	client := u.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &UploadFailedError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UploadFailedError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return nil
}
