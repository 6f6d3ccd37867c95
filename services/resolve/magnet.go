package resolve

import (
	"regexp"
	"strings"
)

// magnetPattern accepts a btih magnet URI with a 40-char hash. Anything
// else is rejected outright, with no partial acceptance.
var magnetPattern = regexp.MustCompile(`^magnet:\?xt=urn:btih:[A-Za-z0-9]{40}.*`)

// magnetExtract finds a magnet URI embedded in free-form message text.
var magnetExtract = regexp.MustCompile(`magnet:\?xt=urn:btih:[A-Za-z0-9]{40}\S*`)

// ValidMagnet reports whether s is a well-formed magnet link. Pure and
// deterministic; no normalization happens here.
func ValidMagnet(s string) bool {
	return magnetPattern.MatchString(s)
}

// CanonicalMagnet strips trailing &-parameters and then validates, so
// logically identical links (same hash, different trackers) share one
// cache entry. Strip-then-validate is the canonical order everywhere in
// this service; the canonical form is the only thing that reaches the
// cache or the upstream API.
func CanonicalMagnet(s string) (string, bool) {
	link := s
	if i := strings.Index(link, "&"); i >= 0 {
		link = link[:i]
	}
	if !ValidMagnet(link) {
		return "", false
	}
	return link, true
}

// ExtractMagnet pulls the first magnet URI out of raw message text.
func ExtractMagnet(text string) (string, bool) {
	match := magnetExtract.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
