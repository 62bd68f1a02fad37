package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var slugInvalidRegex = regexp.MustCompile(`[^a-z0-9]+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Slugify produces a stable, url-safe identifier from a display name.
// Used when the source site exposes no id for an entity.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = slugInvalidRegex.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// SplitName splits a display name into first/last, everything after
// the first word becomes the last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := whitespaceRegex.Split(name, 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
