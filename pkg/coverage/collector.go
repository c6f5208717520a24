package coverage

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// SourceFile is the coverage of one source file in a report.
type SourceFile struct {
	Name         string `json:"name"`
	SourceDigest string `json:"source_digest"`
	Coverage     []*int `json:"coverage"`
}

// Collector reads .gcov files and builds the per-source entries of a
// report. Paths are reported relative to BaseDir.
type Collector struct {
	BaseDir         string
	Extensions      []string // allowlist, empty allows every extension
	Excludes        []string // path prefixes
	ExcludePatterns []*regexp.Regexp
	Logger          logrus.FieldLogger
}

// NewCollector compiles the exclude patterns.
func NewCollector(baseDir string, extensions, excludes, patterns []string) (*Collector, error) {
	c := &Collector{
		BaseDir:    baseDir,
		Extensions: extensions,
		Excludes:   excludes,
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		c.ExcludePatterns = append(c.ExcludePatterns, re)
	}
	return c, nil
}

// Collect reads every .gcov file below BaseDir.
func (c *Collector) Collect() ([]SourceFile, error) {
	files, err := FindFiles(c.BaseDir, ".gcov")
	if err != nil {
		return nil, err
	}
	return c.CollectFiles(files)
}

// CollectFiles reads the given .gcov files. Several files for the same
// source, one per object file compiled from it, are summed. Excluded sources and sources missing on disk are skipped.
func (c *Collector) CollectFiles(paths []string) ([]SourceFile, error) {
	var (
		sources []SourceFile
		index   = make(map[string]int)
	)

	for _, path := range paths {
		gcov, err := readGcovFile(path)
		if err != nil {
			return nil, err
		}
		if gcov.Source == "" {
			c.debug(path, "no Source: header")
			continue
		}

		source := gcov.Source
		if !filepath.IsAbs(source) {
			source = filepath.Join(filepath.Dir(path), source)
		}
		name, err := c.relative(source)
		if err != nil {
			return nil, err
		}
		if c.Excluded(name) {
			c.debug(name, "excluded")
			continue
		}

		if i, ok := index[name]; ok {
			sources[i].Coverage = mergeCoverage(sources[i].Coverage, gcov.Coverage)
			continue
		}

		digest, err := SourceDigest(source)
		if errors.Is(err, fs.ErrNotExist) {
			c.debug(name, "source no longer exists")
			continue
		}
		if err != nil {
			return nil, err
		}

		coverage := gcov.Coverage
		if coverage == nil {
			coverage = []*int{}
		}
		index[name] = len(sources)
		sources = append(sources, SourceFile{
			Name:         name,
			SourceDigest: digest,
			Coverage:     coverage,
		})
	}
	return sources, nil
}

// Excluded applies the exclusion rules in order: paths leaving the base
// directory, exclude prefixes, exclude patterns, then the extension allowlist.
func (c *Collector) Excluded(name string) bool {
	if strings.HasPrefix(name, "..") {
		return true
	}
	for _, prefix := range c.Excludes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, re := range c.ExcludePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	if len(c.Extensions) == 0 {
		return false
	}
	ext := filepath.Ext(name)
	for _, allowed := range c.Extensions {
		if ext == allowed {
			return false
		}
	}
	return true
}

func (c *Collector) relative(source string) (string, error) {
	base, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base dir: %w", err)
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", source, err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", source, base, err)
	}
	return filepath.ToSlash(rel), nil
}

func (c *Collector) debug(name, reason string) {
	if c.Logger != nil {
		c.Logger.WithField("file", name).Debug(reason)
	}
}

func readGcovFile(path string) (*GcovFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	gcov, err := ParseGcov(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gcov, nil
}

// SourceDigest returns the lowercase hex MD5 of the file, which Coveralls
// accepts in place of the full source text.
func SourceDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open source for hashing: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
