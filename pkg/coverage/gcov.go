// Package coverage turns compiler coverage output into a Coveralls report.
//
// Two inputs are supported: .gcov files written by `gcov -l` and line
// annotations printed by `llvm-cov show`, which Extractor converts into
// synthetic .gcov files so both flow through the same parser.
package coverage

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	countNone     = "-"
	countNeverRun = "#####"
)

// gcovLinePattern matches "<count>:<line>:<text>" where count is a number, "-" or "#####".
var gcovLinePattern = regexp.MustCompile(`^\s*(\d+|-|#####):\s*(\d+):(.*)`)

// GcovLine is one line of a .gcov file.
type GcovLine struct {
	Count  string // decimal count, "-" or "#####"
	Number int    // 1-based; 0 carries metadata such as "Source:<path>"
	Text   string
}

// String renders the line the way gcov does: right-justified count and line number.
func (l GcovLine) String() string {
	return fmt.Sprintf("%9s:%5d:%s", l.Count, l.Number, l.Text)
}

// Hits converts the count field into a coverage slot. Nil means the line
// is not executable. "#####" is zero, except on a line holding only a
// closing brace, which compilers report for synthetic code.
func (l GcovLine) Hits() *int {
	switch l.Count {
	case countNone:
		return nil
	case countNeverRun:
		if strings.TrimSpace(l.Text) == "}" {
			return nil
		}
		zero := 0
		return &zero
	default:
		n, err := strconv.Atoi(l.Count)
		if err != nil {
			return nil
		}
		return &n
	}
}

// ParseGcovLine parses one line. ok is false for lines that are not coverage data.
func ParseGcovLine(line string) (GcovLine, bool) {
	m := gcovLinePattern.FindStringSubmatch(line)
	if m == nil {
		return GcovLine{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return GcovLine{}, false
	}
	return GcovLine{Count: m[1], Number: n, Text: m[3]}, true
}

// GcovFile is the parsed content of one .gcov file.
type GcovFile struct {
	Source   string // value of the Source: metadata line, as written
	Coverage []*int // index i holds line i+1
}

// ParseGcov reads a .gcov stream.
func ParseGcov(r io.Reader) (*GcovFile, error) {
	f := &GcovFile{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line, ok := ParseGcovLine(scanner.Text())
		if !ok {
			continue
		}

		if line.Number == 0 {
			key, value, found := strings.Cut(line.Text, ":")
			if found && key == "Source" {
				f.Source = value
			}
			continue
		}

		idx := line.Number - 1
		for len(f.Coverage) <= idx {
			f.Coverage = append(f.Coverage, nil)
		}
		f.Coverage[idx] = line.Hits()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gcov data: %w", err)
	}
	return f, nil
}

// mergeCoverage adds b into a, line by line. A line stays non-executable
// only when both sides say so.
func mergeCoverage(a, b []*int) []*int {
	if len(b) > len(a) {
		a = append(a, make([]*int, len(b)-len(a))...)
	}
	for i, hits := range b {
		switch {
		case hits == nil:
		case a[i] == nil:
			n := *hits
			a[i] = &n
		default:
			n := *a[i] + *hits
			a[i] = &n
		}
	}
	return a
}
