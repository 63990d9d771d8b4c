package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreMatcher decides whether a repo-relative path is ignored. Patterns
// come from .gitignore at the repository root; .git/ itself is always
// ignored. Glob stars match within a path segment, a trailing slash
// restricts a pattern to directories, and there is no negation.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
}

// NewIgnoreMatcher loads .gitignore from repoRoot if present.
func NewIgnoreMatcher(repoRoot string) *IgnoreMatcher {
	m := &IgnoreMatcher{}

	f, err := os.Open(filepath.Join(repoRoot, ".gitignore"))
	if err != nil {
		return m
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			m.patterns = append(m.patterns, *p)
		}
	}
	return m
}

// parseIgnoreLine parses a single .gitignore line. Returns nil for blank
// lines and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	return p
}

// Ignored reports whether path (repo-relative, slash-separated) matches
// an ignore pattern. isDir tells the matcher whether the path names a
// directory, which directory-only patterns require.
func (m *IgnoreMatcher) Ignored(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	if path == ".git" || strings.HasPrefix(path, ".git/") {
		return true
	}
	for i := range m.patterns {
		if m.patterns[i].matches(path, isDir) {
			return true
		}
	}
	return false
}

func (p *ignorePattern) matches(path string, isDir bool) bool {
	if p.dirOnly {
		// A directory pattern matches the directory itself and
		// everything under it.
		if p.matchTarget(path) {
			return isDir
		}
		for i := 0; i < len(path); i++ {
			if path[i] == '/' && p.matchTarget(path[:i]) {
				return true
			}
		}
		return false
	}

	if p.hasSlash {
		return p.matchTarget(path)
	}
	// No slash: match the final path segment.
	return p.matchTarget(filepath.Base(path))
}

func (p *ignorePattern) matchTarget(target string) bool {
	if p.hasSlash {
		// Segment-wise match so '*' never crosses a '/'.
		pparts := strings.Split(p.pattern, "/")
		tparts := strings.Split(target, "/")
		if len(pparts) != len(tparts) {
			return false
		}
		for i := range pparts {
			if ok, _ := filepath.Match(pparts[i], tparts[i]); !ok {
				return false
			}
		}
		return true
	}
	ok, _ := filepath.Match(p.pattern, target)
	return ok
}
