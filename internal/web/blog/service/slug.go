package service

import (
	"regexp"
	"strings"
)

var nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the url identifier of title.
//
// The title is lower-cased, every run of characters outside [a-z0-9]
// becomes a single hyphen, and leading or trailing hyphens are trimmed.
// A title without any letter or digit yields an empty slug.
func Slugify(title string) string {
	return strings.Trim(nonSlugRunes.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
