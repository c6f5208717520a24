package coverage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/xctask/xctask/pkg/runner"
)

// FindFiles returns files below root with the given extension in lexical order.
func FindFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext && !IsSynthetic(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for %s files: %w", root, ext, err)
	}
	return files, nil
}

// RunGcov runs `gcov -l` for every .gcda file below dir, each inside the
// file's own directory so the .gcov output lands next to it.
func RunGcov(ctx context.Context, r runner.Runner, dir string) (int, error) {
	files, err := FindFiles(dir, ".gcda")
	if err != nil {
		return 0, err
	}

	for i, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return i, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		cmd := runner.Command{
			Args: []string{"gcov", "-l", abs},
			Dir:  filepath.Dir(abs),
		}
		if _, err := r.Run(ctx, cmd, nil); err != nil {
			return i, err
		}
	}
	return len(files), nil
}
