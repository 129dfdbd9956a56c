// Package discover finds scraper definition documents and their optional
// settings overlay on disk. It only locates files — addon dependency
// resolution (following an addon.xml's <requires><import>) stays out of
// scope, matching original_source/parser.py's import_module without
// reimplementing its full directory-layout walk.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultPattern finds a directory's immediate *.xml children. Callers
// that want recursive discovery pass an explicit "**/*.xml"-style
// pattern instead; doublestar treats both the same way, a glob over an
// os.DirFS rooted at dir.
const defaultPattern = "*.xml"

// settingsFilenames are the overlay filenames checked alongside a
// scraper's definitions, in priority order.
var settingsFilenames = []string{"settings.yaml", "settings.yml"}

// Result is what Definitions finds in one directory: the scraper
// definition documents (sorted, for deterministic load order) and the
// path to a settings overlay, if any.
type Result struct {
	Definitions  []string
	SettingsPath string
}

// Definitions globs dir for scraper XML documents using pattern (empty
// defaults to the directory's immediate "*.xml" children; a pattern such
// as "**/*.xml" opts into recursive discovery) and looks for a sibling
// settings overlay file.
func Definitions(dir, pattern string) (Result, error) {
	if pattern == "" {
		pattern = defaultPattern
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return Result{}, err
	}
	sort.Strings(matches)

	defs := make([]string, 0, len(matches))
	for _, m := range matches {
		defs = append(defs, filepath.Join(dir, m))
	}

	res := Result{Definitions: defs}
	for _, name := range settingsFilenames {
		candidate := filepath.Join(dir, name)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			res.SettingsPath = candidate
			break
		}
	}
	return res, nil
}

// NormalizeURL rewrites the first "|" in a URL to "?", mirroring the
// scraping convention upstream scrapers use to encode query parameters
// in a fetch-time URL. This is applied only by collaborators that fetch
// source documents — the evaluator itself never calls it.
func NormalizeURL(raw string) string {
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		return raw[:i] + "?" + raw[i+1:]
	}
	return raw
}
