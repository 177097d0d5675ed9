// Package ignore provides layered gitignore-format filtering of live
// directory entries during reconciliation. This sits alongside the
// manifest's own per-directory glob predicate: the manifest predicate
// decides what the collection tracks, while these patterns filter what
// the walker even looks at (VCS litter, editor droppings).
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName is looked up at the collection root.
const IgnoreFileName = ".fcmanignore"

// Matcher filters collection-relative paths.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher builds a matcher with layered patterns:
// 1. built-in defaults (VCS metadata)
// 2. <root>/.fcmanignore
// 3. ~/.fcman/.fcmanignore (user overrides)
func NewMatcher(root string) (*Matcher, error) {
	fs := osfs.New(root)

	var allPatterns []gitignore.Pattern
	for _, pattern := range []string{".git/**", ".hg/**", ".svn/**"} {
		allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
	}

	// Layer in .gitignore and related git ignore files when the
	// collection root is a repository.
	if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
		allPatterns = append(allPatterns, gitPatterns...)
	}

	if patterns, err := readIgnoreFile(filepath.Join(root, IgnoreFileName)); err == nil {
		for _, pattern := range patterns {
			allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userIgnorePath := filepath.Join(homeDir, ".fcman", IgnoreFileName)
		if patterns, err := readIgnoreFile(userIgnorePath); err == nil {
			for _, pattern := range patterns {
				allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
			}
		}
	}

	return &Matcher{matcher: gitignore.NewMatcher(allPatterns)}, nil
}

// readIgnoreFile reads patterns from a .fcmanignore file.
func readIgnoreFile(path string) ([]string, error) {
	cleaned := filepath.Clean(path)
	if filepath.Base(cleaned) != IgnoreFileName {
		return nil, os.ErrInvalid
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- base name allowlisted above
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// Match reports whether the collection-relative path segments should be
// skipped. A nil matcher matches nothing.
func (m *Matcher) Match(segments []string, isDir bool) bool {
	if m == nil || len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}
