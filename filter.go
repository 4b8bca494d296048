package blocklog

import "strings"

/*
filter.go

Category filter deciding which records reach the renderer.

Patterns are either exact categories or prefixes ending with '*'. Exclusions
are weighed against the include pattern that matched: a wildcard exclusion
only wins over a shorter include pattern, so a broad exclusion can be
overridden by a more specific inclusion:

	category  a/b/c/x
	except    a/b*
	include   a/b/c*   -> admitted (the include is longer)

"Longer" is plain string length, not the number of path segments.
*/

// FilterSpec configures the category filter. A zero LevelMask disables level
// filtering, an empty Include admits every category.
type FilterSpec struct {
	LevelMask LogLevel
	Include   []string
	Exclude   []string
}

// Returns the admitted records keeping their order. The input slice is not
// modified.
func Admit(records []Record, spec FilterSpec) []Record {
	admitted := make([]Record, 0, len(records))
	for _, rec := range records {
		if spec.Admits(rec) {
			admitted = append(admitted, rec)
		}
	}
	return admitted
}

// Reports whether a single record passes the level mask and category rules.
func (f FilterSpec) Admits(rec Record) bool {
	if f.LevelMask != 0 && f.LevelMask&rec.Level == 0 {
		return false
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, include := range f.Include {
		if !patternMatches(rec.Category, include) {
			continue
		}
		if !f.excluded(rec.Category, include) {
			return true
		}
		// suppressed, a later (more specific) include may still match
	}
	return false
}

func (f FilterSpec) excluded(category, include string) bool {
	for _, ignore := range f.Exclude {
		if category == ignore {
			return true
		}
		if len(include) < len(ignore) && isWildcard(ignore) && hasPatternPrefix(category, ignore) {
			return true
		}
	}
	return false
}

func patternMatches(category, pattern string) bool {
	return category == pattern || (isWildcard(pattern) && hasPatternPrefix(category, pattern))
}

func isWildcard(pattern string) bool {
	return pattern != "" && strings.HasSuffix(pattern, "*")
}

func hasPatternPrefix(category, pattern string) bool {
	return strings.HasPrefix(category, strings.TrimRight(pattern, "*"))
}
