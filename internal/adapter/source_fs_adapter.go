// Package adapter contains filesystem, analyzer and report adapters for the typecov CLI.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	m "github.com/mouse-blink/typecov/internal/model"
)

// DefaultExtensions are the file extensions analyzed when none are configured.
var DefaultExtensions = []string{".php"}

// skippedDirs are never descended into during discovery.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"vendor":       {},
	"node_modules": {},
}

// DiscoveryOptions narrows which files Get returns.
type DiscoveryOptions struct {
	// Extensions lists accepted file extensions, including the dot.
	Extensions []string
	// Exclude lists regular expressions matched against the short path.
	Exclude []string
	// Base is the directory short paths are made relative to. Defaults to the
	// working directory.
	Base m.Path
}

// SourceFSAdapter abstracts the filesystem operations used by the domain layer
// so the workflow can be tested without touching the disk.
type SourceFSAdapter interface {
	// Get discovers source files below the provided roots, in walk order and
	// without duplicates.
	Get(roots []m.Path, opts DiscoveryOptions) ([]m.SourceFile, error)

	// Walk traverses the provided root path. When recursive is false the
	// implementation limits itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the disk-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get collects source files for the provided roots. Roots ending in /... are
// scanned recursively; plain directories only at their top level.
func (a *LocalSourceFSAdapter) Get(roots []m.Path, opts DiscoveryOptions) ([]m.SourceFile, error) {
	if len(roots) == 0 {
		return []m.SourceFile{}, nil
	}

	filter, err := newSourceFilter(opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[m.Path]struct{})
	sources := []m.SourceFile{}

	add := func(path string) error {
		source, ok, err := filter.sourceFor(path)
		if err != nil || !ok {
			return err
		}

		if _, exists := seen[source.FullPath]; exists {
			return nil
		}

		seen[source.FullPath] = struct{}{}
		sources = append(sources, source)

		return nil
	}

	for _, root := range roots {
		rootPath, recursive, err := normalizeRootPath(string(root))
		if err != nil {
			return nil, err
		}

		info, err := a.FileInfo(m.Path(rootPath))
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if err := add(rootPath); err != nil {
				return nil, err
			}

			continue
		}

		err = a.Walk(m.Path(rootPath), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if _, skip := skippedDirs[info.Name()]; skip && path != rootPath {
					return filepath.SkipDir
				}

				return nil
			}

			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}

	return sources, nil
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

type sourceFilter struct {
	base       string
	extensions map[string]struct{}
	exclude    []*regexp.Regexp
}

func newSourceFilter(opts DiscoveryOptions) (sourceFilter, error) {
	base := string(opts.Base)
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return sourceFilter{}, err
		}

		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return sourceFilter{}, err
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	f := sourceFilter{base: base, extensions: make(map[string]struct{}, len(extensions))}

	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		f.extensions[ext] = struct{}{}
	}

	for _, pattern := range opts.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return sourceFilter{}, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		f.exclude = append(f.exclude, re)
	}

	return f, nil
}

func (f sourceFilter) sourceFor(path string) (m.SourceFile, bool, error) {
	if _, ok := f.extensions[filepath.Ext(path)]; !ok {
		return m.SourceFile{}, false, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return m.SourceFile{}, false, err
	}

	short := absPath
	if rel, err := filepath.Rel(f.base, absPath); err == nil && !strings.HasPrefix(rel, "..") {
		short = rel
	}

	short = filepath.ToSlash(short)

	for _, re := range f.exclude {
		if re.MatchString(short) {
			return m.SourceFile{}, false, nil
		}
	}

	return m.SourceFile{FullPath: m.Path(absPath), ShortPath: m.Path(short)}, true, nil
}

func normalizeRootPath(root string) (string, bool, error) {
	rootStr, recursive := parseRootPath(root)

	if strings.HasPrefix(rootStr, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, err
		}

		suffix := strings.TrimPrefix(rootStr, "~")
		suffix = strings.TrimPrefix(suffix, string(os.PathSeparator))
		rootStr = filepath.Join(home, suffix)
	}

	if rootStr == "" {
		rootStr = "."
	}

	abs, err := filepath.Abs(rootStr)
	if err != nil {
		return "", false, err
	}

	return abs, recursive, nil
}

func parseRootPath(rootStr string) (path string, recursive bool) {
	if rootStr == "..." {
		return ".", true
	}

	if len(rootStr) >= 4 && rootStr[len(rootStr)-4:] == "/..." {
		return rootStr[:len(rootStr)-4], true
	}

	return rootStr, false
}
