package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/simscan/domain"
)

// FileReaderImpl implements the SubmissionFileReader interface
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// CollectFiles recursively finds the files under root that match an include
// pattern and no exclude pattern. Patterns are doublestar globs matched
// against the slash-separated path relative to root and against the base
// name. The result is sorted so that document ids are stable between runs.
func (f *FileReaderImpl) CollectFiles(root string, includePatterns, excludePatterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewFileNotFoundError(root, err)
	}

	if !info.IsDir() {
		if f.shouldIncludeFile(filepath.Base(root), includePatterns, excludePatterns) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, the rest of the tree is still walked
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && f.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if f.shouldIncludeFile(filepath.ToSlash(rel), includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// FilterByFilename keeps the paths whose base name equals name, ignoring case
func (f *FileReaderImpl) FilterByFilename(paths []string, name string) []string {
	var matched []string
	for _, p := range paths {
		if strings.EqualFold(filepath.Base(p), name) {
			matched = append(matched, p)
		}
	}
	return matched
}

// ReadFile reads the content of a file
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// FileExists checks if a file exists
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}

// matchesPattern matches a doublestar pattern against a relative path or its base name
func (f *FileReaderImpl) matchesPattern(pattern, relPath string) bool {
	if matched, _ := doublestar.Match(pattern, relPath); matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		matched, _ := doublestar.Match(pattern, filepath.Base(filepath.FromSlash(relPath)))
		return matched
	}
	return false
}

// shouldIncludeFile checks if a file should be included based on patterns
func (f *FileReaderImpl) shouldIncludeFile(relPath string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, relPath) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, relPath) {
			return true
		}
	}
	return false
}

// shouldSkipDirectory checks if a directory should be skipped entirely
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	if strings.HasPrefix(dirName, ".") {
		return true
	}
	switch strings.ToLower(dirName) {
	case "node_modules", "__pycache__", "__macosx":
		return true
	}
	return false
}

// SubmissionLabel names the submission that path belongs to: the first
// component of its absolute path that differs from neighbor's. Two identical
// paths cannot be told apart and yield an error.
func SubmissionLabel(path, neighbor string) (string, error) {
	a := splitPath(path)
	b := splitPath(neighbor)

	i := commonPrefixLen(a, b)
	if i == len(a) && i == len(b) {
		return "", domain.NewInvalidInputError(fmt.Sprintf("cannot derive a label from identical paths %q", path), nil)
	}
	if i >= len(a) {
		return a[len(a)-1], nil
	}
	return a[i], nil
}

// SubmissionLabels labels every path. Each path is named by the component at
// which it diverges from its closest peer, which is the submission directory
// for the usual root/<student>/.../<file> layout at any nesting depth. A
// lone path is named after its parent directory. When two paths would share
// a label, each of them is named by its components from the corpus root down
// to that divergence point, joined by "/", so root/a/x and root/b/x become
// "a/x" and "b/x".
func SubmissionLabels(paths []string) []string {
	labels := make([]string, len(paths))
	if len(paths) == 0 {
		return labels
	}
	if len(paths) == 1 {
		labels[0] = filepath.Base(filepath.Dir(absPath(paths[0])))
		return labels
	}

	split := make([][]string, len(paths))
	for i, p := range paths {
		split[i] = splitPath(p)
	}

	rootLen := len(split[0])
	depths := make([]int, len(paths))
	for i, a := range split {
		depth := 0
		for j, b := range split {
			if i == j {
				continue
			}
			n := commonPrefixLen(a, b)
			if n > depth {
				depth = n
			}
			if n < rootLen {
				rootLen = n
			}
		}
		if depth >= len(a) {
			depth = len(a) - 1
		}
		depths[i] = depth
		labels[i] = a[depth]
	}

	seen := make(map[string]int, len(labels))
	for _, l := range labels {
		seen[l]++
	}
	for i, l := range labels {
		if seen[l] < 2 {
			continue
		}
		start := min(rootLen, depths[i])
		labels[i] = strings.Join(split[i][start:depths[i]+1], "/")
	}
	return labels
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func splitPath(path string) []string {
	parts := strings.Split(filepath.ToSlash(absPath(path)), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
