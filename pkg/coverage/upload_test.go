package coverage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeReportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coveralls.json")
	if err := os.WriteFile(path, []byte(`{"service_name":"travis-ci","source_files":[]}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHTTPUploaderUpload(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "xctask/") {
			t.Errorf("User-Agent = %q", ua)
		}
		file, header, err := r.FormFile("json_file")
		if err != nil {
			t.Errorf("missing json_file field: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "coveralls.json" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"message":"Job #1.1","url":"https://coveralls.io/jobs/1"}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL)
	if err := u.Upload(context.Background(), writeReportFile(t)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.Contains(gotBody, `"service_name":"travis-ci"`) {
		t.Errorf("server received %q", gotBody)
	}
}

func TestHTTPUploaderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Couldn't find a repository matching this job.", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewHTTPUploader(srv.URL).Upload(context.Background(), writeReportFile(t))
	var upErr *UploadFailedError
	if !errors.As(err, &upErr) {
		t.Fatalf("Upload() error = %v, want *UploadFailedError", err)
	}
	if upErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", upErr.StatusCode)
	}
	want := "upload failed (exited with status: 422): Couldn't find a repository matching this job."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHTTPUploaderConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPUploader(url).Upload(context.Background(), writeReportFile(t))
	var upErr *UploadFailedError
	if !errors.As(err, &upErr) {
		t.Fatalf("Upload() error = %v, want *UploadFailedError", err)
	}
	if upErr.StatusCode != 0 || !strings.HasPrefix(err.Error(), "upload failed: ") {
		t.Errorf("unexpected error %q", err.Error())
	}
}

func TestHTTPUploaderMissingReport(t *testing.T) {
	err := NewHTTPUploader("").Upload(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Upload() expected error for missing report")
	}
}

func TestNewHTTPUploaderDefaultEndpoint(t *testing.T) {
	if got := NewHTTPUploader("").Endpoint; got != DefaultEndpoint {
		t.Errorf("Endpoint = %s, want %s", got, DefaultEndpoint)
	}
}
