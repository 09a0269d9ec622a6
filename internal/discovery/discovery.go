// Package discovery finds the campaign spreadsheets of one category under a
// fulfillment root.
//
// The expected layout is one subdirectory per client:
//
//	fulfillments/
//	    Acme/
//	        AcmeSmsQ1.xlsx
//	        AcmeMail.xlsx
//	    Globex/
//	        GlobexCalling.xlsx
//
// A file belongs to a category when its base name contains the category
// label as a case-sensitive substring. The match is deliberately loose and
// kept for compatibility with existing folder conventions: "Mail" also
// matches "DirectMail.xlsx" and "EmailList.xlsx".
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPatterns are the glob patterns used when none are configured.
var DefaultPatterns = []string{"*.xlsx"}

// Find returns the candidate files for category under root, sorted by path.
// A root that does not exist yields an empty result and no error.
func Find(root, category string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading fulfillment root %s: %w", root, err)
	}

	var found []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		clientDir := filepath.Join(root, entry.Name())

		files, err := matchClientDir(clientDir, category, patterns)
		if err != nil {
			return nil, err
		}
		found = append(found, files...)
	}

	sort.Strings(found)
	return found, nil
}

func matchClientDir(dir, category string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !Matches(filepath.Base(m), category) {
				continue
			}
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files, nil
}

// Matches reports whether a file name belongs to category. Excel lock files
// ("~$Client.xlsx") never match.
func Matches(name, category string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}
	return strings.Contains(name, category)
}
