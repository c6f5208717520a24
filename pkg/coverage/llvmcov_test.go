package coverage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xctask/xctask/pkg/runner"
)

const showOutput = `/src/App/Foo.swift:
       |    1|import Foundation
      3|    2|func foo() {
      0|    3|    bar()
   1.2k|    4|    baz()
      3|    5|}

"/src/App/Bar Baz.swift":
      2|    1|let x = 1
`

func TestParseShow(t *testing.T) {
	files, err := ParseShow(strings.NewReader(showOutput))
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Source != "/src/App/Foo.swift" {
		t.Errorf("files[0].Source = %q", files[0].Source)
	}
	if files[1].Source != "/src/App/Bar Baz.swift" {
		t.Errorf("files[1].Source = %q", files[1].Source)
	}

	var counts []string
	for _, l := range files[0].Lines {
		counts = append(counts, l.Count)
	}
	want := "- 3 ##### 1200 3"
	if got := strings.Join(counts, " "); got != want {
		t.Errorf("counts = %q, want %q", got, want)
	}
	if files[0].Lines[2].Text != "    bar()" {
		t.Errorf("line 3 text = %q", files[0].Lines[2].Text)
	}
}

func TestGcovCount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "-"},
		{raw: "  ", want: "-"},
		{raw: "0", want: "#####"},
		{raw: "42", want: "42"},
		{raw: "1.5k", want: "1500"},
		{raw: "2M", want: "2000000"},
		{raw: "1G", want: "1000000000"},
		{raw: "k", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := gcovCount(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("gcovCount(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("gcovCount(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestWriteGcovRoundTrip(t *testing.T) {
	files, err := ParseShow(strings.NewReader(showOutput))
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGcov(&buf, files[0]); err != nil {
		t.Fatalf("WriteGcov() error = %v", err)
	}

	parsed, err := ParseGcov(&buf)
	if err != nil {
		t.Fatalf("ParseGcov() error = %v", err)
	}
	if parsed.Source != "/src/App/Foo.swift" {
		t.Errorf("Source = %q", parsed.Source)
	}
	assertCoverage(t, parsed.Coverage, []*int{nil, intPtr(3), intPtr(0), intPtr(1200), intPtr(3)})
}

func TestExtractorExtract(t *testing.T) {
	dir := t.TempDir()
	profdata := filepath.Join(dir, "Coverage.profdata")

	rec := runner.NewRecorder()
	rec.Respond = func(runner.Command) ([]string, int) {
		return strings.Split(showOutput, "\n"), 0
	}

	e := &Extractor{Runner: rec}
	paths, err := e.Extract(context.Background(), profdata, "/build/App.app/App")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantCmd := "xcrun llvm-cov show -instr-profile " + profdata + " /build/App.app/App"
	if lines := rec.Lines(); len(lines) != 1 || lines[0] != wantCmd {
		t.Errorf("commands = %v, want [%s]", lines, wantCmd)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2", len(paths))
	}
	for _, p := range paths {
		if filepath.Dir(p) != dir || filepath.Ext(p) != ".gcov" {
			t.Errorf("unexpected output path %s", p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("output %s missing: %v", p, err)
		}
	}
}

func TestExtractorCommandFailure(t *testing.T) {
	rec := runner.NewRecorder()
	rec.Respond = func(runner.Command) ([]string, int) { return nil, 1 }

	e := &Extractor{Runner: rec, Tool: []string{"llvm-cov"}}
	if _, err := e.Extract(context.Background(), "x.profdata", "bin"); err == nil {
		t.Fatal("Extract() expected error")
	}
}

func TestExtractorSharedSourceTakesMax(t *testing.T) {
	dir := t.TempDir()
	outputs := map[string]string{
		"App":    "/src/Shared.swift:\n      3|    1|a\n      0|    2|b\n       |    3|c\n",
		"Widget": "/src/Shared.swift:\n      3|    1|a\n      5|    2|b\n      1|    4|d\n",
	}
	rec := runner.NewRecorder()
	rec.Respond = func(c runner.Command) ([]string, int) {
		return strings.Split(outputs[filepath.Base(c.Args[len(c.Args)-1])], "\n"), 0
	}

	e := &Extractor{Runner: rec, Dir: dir}
	first, err := e.Extract(context.Background(), "Coverage.profdata", "/build/App")
	if err != nil {
		t.Fatalf("Extract(App) error = %v", err)
	}
	second, err := e.Extract(context.Background(), "Coverage.profdata", "/build/Widget")
	if err != nil {
		t.Fatalf("Extract(Widget) error = %v", err)
	}
	if len(first) != 1 || len(second) != 0 {
		t.Fatalf("paths = %v, %v, want one file for the shared source", first, second)
	}
	if !IsSynthetic(first[0]) || filepath.Dir(first[0]) != dir {
		t.Errorf("unexpected output path %s", first[0])
	}

	f, err := os.Open(first[0])
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	parsed, err := ParseGcov(f)
	if err != nil {
		t.Fatalf("ParseGcov() error = %v", err)
	}
	assertCoverage(t, parsed.Coverage, []*int{intPtr(3), intPtr(5), nil, intPtr(1)})
}
