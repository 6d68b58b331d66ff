package mailprobe

import (
	"strings"

	"github.com/optimode/mailprobe/internal/levenshtein"
	"github.com/optimode/mailprobe/internal/static"
)

// typoThreshold is the maximum edit distance for a domain correction.
const typoThreshold = 2

// SuggestDomain proposes a likely intended domain when the given one is
// within a small edit distance of a well-known provider. An exact match
// never yields a suggestion; neither does a domain that is far from every
// known provider.
func SuggestDomain(domain string) (string, bool) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", false
	}

	bestDist := typoThreshold + 1
	best := ""
	for _, known := range static.FreeDomains() {
		if domain == known {
			return "", false
		}
		if dist := levenshtein.Distance(domain, known); dist < bestDist {
			bestDist = dist
			best = known
		}
	}
	if best == "" || bestDist > typoThreshold {
		return "", false
	}
	return best, true
}
