package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bioinsights/internal/config"
)

// ErrNoSourcesFound is returned when neither configured files nor discovery
// produce any input.
var ErrNoSourcesFound = errors.New("no source files found")

// sourceExtensions lists the file types the loader can read.
var sourceExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds source files relative to a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindFilesByPattern returns regular files in dir matching a glob pattern,
// sorted by name.
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	if _, err := os.Stat(fullPath); err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindSources returns the readable source files in dir matching pattern.
// Files with unsupported extensions are skipped.
func (d *Discovery) FindSources(dir, pattern string) ([]FileInfo, error) {
	all, err := d.FindFilesByPattern(dir, pattern)
	if err != nil {
		return nil, err
	}

	files := all[:0]
	for _, f := range all {
		if IsSourceFile(f.Name) {
			files = append(files, f)
		}
	}
	return files, nil
}

// ResolveSources returns the source paths to load: the configured files in
// their given order, or the discovered files when none are listed.
func (d *Discovery) ResolveSources(cfg config.SourcesConfig) ([]string, error) {
	if len(cfg.Files) > 0 {
		paths := make([]string, len(cfg.Files))
		for i, f := range cfg.Files {
			paths[i] = d.resolve(f)
		}
		return paths, nil
	}

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = config.DefaultSourcePattern
	}
	found, err := d.FindSources(cfg.Dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s matching %s", ErrNoSourcesFound, d.resolve(cfg.Dir), pattern)
	}

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.Path
	}
	return paths, nil
}

// IsSourceFile reports whether name has a supported source extension.
func IsSourceFile(name string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(name))]
}
