package coverage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xctask/xctask/pkg/context"
	"github.com/xctask/xctask/pkg/coverage"
	"github.com/xctask/xctask/pkg/pipe"
)

// GcovPipe runs `gcov -l` over the .gcda files below gcov_dir.
type GcovPipe struct{}

func (GcovPipe) String() string { return "running gcov" }

func (GcovPipe) Run(ctx *context.Context) error {
	dir := ctx.Config.Coverage.GcovDir
	if dir == "" {
		return pipe.Skip("coverage.gcov_dir is not set")
	}

	n, err := coverage.RunGcov(ctx.StdCtx, ctx.Runner, dir)
	if err != nil {
		return err
	}
	ctx.Logger.Infof("Processed %d .gcda files", n)
	return nil
}

// ExtractPipe converts llvm-cov profile data into .gcov files.
type ExtractPipe struct{}

func (ExtractPipe) String() string { return "extracting llvm-cov coverage" }

func (ExtractPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Coverage
	if cfg.Profdata == "" {
		return pipe.Skip("coverage.profdata is not set")
	}

	r := ctx.Coverage.ToolRunner
	if r == nil {
		r = ctx.Runner
	}
	dir, err := os.MkdirTemp("", coverage.SyntheticPrefix)
	if err != nil {
		return fmt.Errorf("failed to create llvm-cov output dir: %w", err)
	}
	ctx.Coverage.ExtractDir = dir

	e := &coverage.Extractor{Runner: r, Dir: dir, Logger: ctx.Logger}
	for _, binary := range cfg.Binaries {
		paths, err := e.Extract(ctx.StdCtx, cfg.Profdata, binary)
		ctx.Coverage.GcovFiles = append(ctx.Coverage.GcovFiles, paths...)
		if err != nil {
			removeExtracted(ctx)
			return fmt.Errorf("llvm-cov failed for %s: %w", binary, err)
		}
	}
	ctx.Logger.Infof("Extracted %d source files", len(ctx.Coverage.GcovFiles))
	return nil
}

// CollectPipe reads every .gcov file into report entries.
type CollectPipe struct{}

func (CollectPipe) String() string { return "collecting coverage" }

func (CollectPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Coverage
	c, err := coverage.NewCollector(ctx.Coverage.BaseDir, cfg.Extensions, cfg.Excludes, cfg.ExcludePatterns)
	if err != nil {
		return err
	}
	c.Logger = ctx.Logger

	paths, err := gcovFiles(ctx)
	if err != nil {
		return err
	}
	defer removeExtracted(ctx)

	files, err := c.CollectFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ctx.Logger.Warn("no coverage data found")
	}
	ctx.Coverage.SourceFiles = files
	ctx.Logger.Infof("Collected %d source files", len(files))
	return nil
}

// gcovFiles lists the .gcov files below the base dir and gcov_dir plus the
// extracted ones, each once.
func gcovFiles(ctx *context.Context) ([]string, error) {
	dirs := []string{ctx.Coverage.BaseDir}
	if dir := ctx.Config.Coverage.GcovDir; dir != "" {
		dirs = append(dirs, dir)
	}

	var (
		paths []string
		seen  = make(map[string]bool)
	)
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if !seen[abs] {
			seen[abs] = true
			paths = append(paths, abs)
		}
	}

	for _, dir := range dirs {
		found, err := coverage.FindFiles(dir, ".gcov")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	for _, p := range ctx.Coverage.GcovFiles {
		add(p)
	}
	return paths, nil
}

// removeExtracted deletes the synthetic .gcov files and their directory.
func removeExtracted(ctx *context.Context) {
	for _, p := range ctx.Coverage.GcovFiles {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			ctx.Logger.WithField("file", p).Debugf("failed to remove: %v", err)
		}
	}
	if dir := ctx.Coverage.ExtractDir; dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			ctx.Logger.WithField("dir", dir).Debugf("failed to remove: %v", err)
		}
	}
	ctx.Coverage.GcovFiles = nil
	ctx.Coverage.ExtractDir = ""
}
