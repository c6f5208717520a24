package coverage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xctask/xctask/pkg/runner"
)

var (
	// showSourcePattern matches a section header: an absolute path, optionally quoted, then a colon.
	showSourcePattern = regexp.MustCompile(`^"?(/[^"]*?)"?:\s*$`)

	// showLinePattern matches "<count-or-blank>|<line>|<text>".
	showLinePattern = regexp.MustCompile(`^\s*([0-9.]*[kMG]?)\s*\|\s*(\d+)\|(.*)$`)
)

// ShowFile is one source section of `llvm-cov show` output.
type ShowFile struct {
	Source string
	Lines  []GcovLine
}

// ParseShow splits `llvm-cov show` output into per-source sections and
// converts each annotated line into gcov form: a blank count is "-", 0 is
// "#####" and any other count is written as an integer.
func ParseShow(r io.Reader) ([]ShowFile, error) {
	var (
		files   []ShowFile
		current *ShowFile
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		text := scanner.Text()

		if m := showSourcePattern.FindStringSubmatch(text); m != nil {
			files = append(files, ShowFile{Source: m[1]})
			current = &files[len(files)-1]
			continue
		}
		if current == nil {
			continue
		}

		m := showLinePattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		count, err := gcovCount(m[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", current.Source, number, err)
		}
		current.Lines = append(current.Lines, GcovLine{Count: count, Number: number, Text: m[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read llvm-cov output: %w", err)
	}
	return files, nil
}

// gcovCount maps an llvm-cov execution count to a gcov count field.
// Large counts are abbreviated by llvm-cov, e.g. "1.2k" or "3M".
func gcovCount(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return countNone, nil
	}

	multiplier := 1.0
	switch raw[len(raw)-1] {
	case 'k':
		multiplier = 1e3
	case 'M':
		multiplier = 1e6
	case 'G':
		multiplier = 1e9
	}
	if multiplier != 1 {
		raw = raw[:len(raw)-1]
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("invalid execution count %q", raw)
	}
	n := int64(math.Round(value * multiplier))
	if n == 0 {
		return countNeverRun, nil
	}
	return strconv.FormatInt(n, 10), nil
}

// WriteGcov writes a synthetic .gcov file with a Source: header at line 0.
func WriteGcov(w io.Writer, f ShowFile) error {
	bw := bufio.NewWriter(w)
	header := GcovLine{Count: countNone, Number: 0, Text: "Source:" + f.Source}
	if _, err := fmt.Fprintln(bw, header.String()); err != nil {
		return err
	}
	for _, line := range f.Lines {
		if _, err := fmt.Fprintln(bw, line.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SyntheticPrefix starts the name of every .gcov file written by an
// Extractor. FindFiles leaves such files out.
const SyntheticPrefix = "xctask-llvm-cov-"

// IsSynthetic reports whether path names a .gcov file written by an Extractor.
func IsSynthetic(path string) bool {
	return strings.HasPrefix(filepath.Base(path), SyntheticPrefix)
}

// Extractor runs `llvm-cov show` and writes one synthetic .gcov file per
// source into Dir, or next to the profile data when Dir is empty.
//
// A source reported by several binaries is written once. Its line counts
// are the maximum over the binaries, since they read the same profile.
type Extractor struct {
	Runner runner.Runner
	Tool   []string // defaults to xcrun llvm-cov
	Dir    string
	Logger logrus.FieldLogger

	written map[string]*extracted
}

type extracted struct {
	path string
	file ShowFile
}

// Extract returns the paths of the .gcov files written for new sources.
// Paths written by earlier calls are updated in place and not returned again.
func (e *Extractor) Extract(ctx context.Context, profdata, binary string) ([]string, error) {
	tool := e.Tool
	if len(tool) == 0 {
		tool = []string{"xcrun", "llvm-cov"}
	}

	args := append(append([]string(nil), tool...), "show", "-instr-profile", profdata, binary)
	res, err := e.Runner.Run(ctx, runner.Command{Args: args}, nil)
	if err != nil {
		return nil, err
	}

	files, err := ParseShow(strings.NewReader(strings.Join(res.Output, "\n")))
	if err != nil {
		return nil, err
	}

	dir := e.Dir
	if dir == "" {
		dir = filepath.Dir(profdata)
	}
	if e.written == nil {
		e.written = make(map[string]*extracted)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if prev, ok := e.written[f.Source]; ok {
			prev.file = maxShowFile(prev.file, f)
			if err := writeGcovFile(prev.path, prev.file); err != nil {
				return paths, err
			}
			continue
		}

		path := filepath.Join(dir, SyntheticPrefix+uuid.NewString()+".gcov")
		if err := writeGcovFile(path, f); err != nil {
			return paths, err
		}
		e.written[f.Source] = &extracted{path: path, file: f}
		if e.Logger != nil {
			e.Logger.WithField("source", f.Source).Debugf("wrote %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// maxShowFile merges b into a line by line, keeping the larger count.
func maxShowFile(a, b ShowFile) ShowFile {
	index := make(map[int]int, len(a.Lines))
	lines := append([]GcovLine(nil), a.Lines...)
	for i, l := range lines {
		index[l.Number] = i
	}
	for _, l := range b.Lines {
		i, ok := index[l.Number]
		if !ok {
			index[l.Number] = len(lines)
			lines = append(lines, l)
			continue
		}
		if countValue(l.Count) > countValue(lines[i].Count) {
			lines[i].Count = l.Count
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Number < lines[j].Number })
	return ShowFile{Source: a.Source, Lines: lines}
}

// countValue orders gcov count fields: "-" below "#####" below any count.
func countValue(count string) int64 {
	switch count {
	case countNone:
		return -1
	case countNeverRun:
		return 0
	}
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func writeGcovFile(path string, f ShowFile) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteGcov(out, f); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}
