package coverage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportPercent(t *testing.T) {
	tests := []struct {
		name  string
		files []SourceFile
		want  float64
	}{
		{name: "no files", want: 0},
		{name: "no executable lines", files: []SourceFile{{Coverage: []*int{nil, nil}}}, want: 0},
		{
			name: "half covered",
			files: []SourceFile{
				{Coverage: []*int{nil, intPtr(3), intPtr(0)}},
				{Coverage: []*int{intPtr(0), intPtr(1)}},
			},
			want: 50,
		},
		{name: "fully covered", files: []SourceFile{{Coverage: []*int{intPtr(1)}}}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{SourceFiles: tt.files}
			if got := r.Percent(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReportEncode(t *testing.T) {
	r := &Report{
		RepoToken:    "secret",
		ServiceName:  "travis-ci",
		ServiceJobID: "1234",
		Git: &Git{
			Head:    Head{ID: "abc", AuthorName: "A", Message: "msg"},
			Branch:  "main",
			Remotes: []Remote{{Name: "origin", URL: "git@github.com:o/r.git"}},
		},
		SourceFiles: []SourceFile{{Name: "Foo.m", SourceDigest: "d41d8cd98f00b204e9800998ecf8427e", Coverage: []*int{nil, intPtr(2)}}},
	}

	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
		t.Errorf("expected a single JSON line, got %q", out)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"repo_token", "service_name", "service_job_id", "git", "source_files"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := decoded["parallel"]; ok {
		t.Error("parallel should be omitted when false")
	}
	if !strings.Contains(out, `"coverage":[null,2]`) {
		t.Errorf("coverage not encoded as [null,2]: %s", out)
	}
}

func TestReportEncodeEmptySourceFiles(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Report{}).Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"source_files":[]`) {
		t.Errorf("source_files should encode as an empty list: %s", buf.String())
	}
}

func TestReportApplyCI(t *testing.T) {
	r := &Report{ServiceName: "custom"}
	r.ApplyCI(CI{ServiceName: "circleci", JobID: "9", BuildNumber: "7", PullRequest: "12", Branch: "dev", Parallel: true})

	if r.ServiceName != "custom" {
		t.Errorf("ServiceName = %q, configured value should win", r.ServiceName)
	}
	if r.ServiceJobID != "9" || r.ServiceNumber != "7" || r.ServicePullRequest != "12" || r.ServiceBranch != "dev" {
		t.Errorf("CI values not applied: %+v", r)
	}
	if !r.Parallel {
		t.Error("Parallel should be set")
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coveralls.json")
	got, err := WriteReport(&Report{ServiceName: "travis-ci"}, path)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if got != path {
		t.Errorf("WriteReport() = %s, want %s", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"service_name":"travis-ci"`) {
		t.Errorf("unexpected report: %s", data)
	}

	tmp, err := WriteReport(&Report{}, "")
	if err != nil {
		t.Fatalf("WriteReport() to temp error = %v", err)
	}
	defer func() { _ = os.Remove(tmp) }()
	if _, err := os.Stat(tmp); err != nil {
		t.Errorf("temp report missing: %v", err)
	}
}
