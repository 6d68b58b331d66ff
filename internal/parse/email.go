package parse

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Length limits from RFC 5321.
const (
	maxLocalLen  = 64
	maxDomainLen = 253
	maxTotalLen  = 254
)

// formatRe is the RFC 5322 shaped pattern used by IsValidFormat. Dot
// placement and length bounds are checked separately.
var formatRe = regexp.MustCompile(`^[a-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*$`)

// Email is the internal representation of a parsed email address.
type Email struct {
	Raw           string // the original input
	Normalized    string // trimmed, lower-cased
	Local         string // the part before @
	Domain        string // the part after @, ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode form (for display/typo detection)
	Valid         bool   // false if the address fails format validation
}

// NewEmail parses and normalizes the given address. Internationalized
// domains are converted to their ASCII/Punycode form before format
// validation, so "user@münchen.de" validates as user@xn--mnchen-3ya.de.
// If validation fails, Valid=false but Raw and Normalized are always populated.
func NewEmail(raw string) Email {
	normalized := Normalize(raw)
	e := Email{Raw: raw, Normalized: normalized}

	atIdx := strings.LastIndex(normalized, "@")
	if atIdx < 1 || atIdx == len(normalized)-1 {
		return e
	}
	local := normalized[:atIdx]
	domain := normalized[atIdx+1:]

	asciiDomain, unicodeDomain, ok := convertDomain(domain)
	if !ok {
		return e
	}

	if !IsValidFormat(local + "@" + asciiDomain) {
		return e
	}

	e.Local = local
	e.Domain = asciiDomain
	e.DomainUnicode = unicodeDomain
	e.Valid = true
	return e
}

// Normalize trims surrounding whitespace and lower-cases the address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ExtractLocalPart returns the normalized part before the last @, or ""
// when the input has no @.
func ExtractLocalPart(email string) string {
	n := Normalize(email)
	atIdx := strings.LastIndex(n, "@")
	if atIdx < 0 {
		return ""
	}
	return n[:atIdx]
}

// ExtractDomain returns the normalized part after the last @, or "" when
// the input has no @ or nothing follows it.
func ExtractDomain(email string) string {
	n := Normalize(email)
	atIdx := strings.LastIndex(n, "@")
	if atIdx < 0 || atIdx == len(n)-1 {
		return ""
	}
	return n[atIdx+1:]
}

// IsValidFormat reports whether the address is syntactically deliverable.
// The check is normalization-invariant: IsValidFormat(x) equals
// IsValidFormat(Normalize(x)).
func IsValidFormat(email string) bool {
	n := Normalize(email)
	if n == "" || len(n) > maxTotalLen {
		return false
	}

	atIdx := strings.LastIndex(n, "@")
	if atIdx < 1 || atIdx == len(n)-1 {
		return false
	}
	local := n[:atIdx]
	domain := n[atIdx+1:]

	if len(local) > maxLocalLen || len(domain) > maxDomainLen {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	if !formatRe.MatchString(n) {
		return false
	}

	// TLD must be at least two characters and not all digits.
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	allDigits := true
	for _, ch := range tld {
		if ch < '0' || ch > '9' {
			allDigits = false
			break
		}
	}
	return !allDigits
}

// convertDomain converts a domain to both ASCII/Punycode and Unicode forms.
// Returns (ascii, unicode, ok). ok is false if the domain contains
// non-ASCII characters that fail IDNA2008 validation.
func convertDomain(domain string) (ascii, unicode string, ok bool) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", false
		}
		return a, domain, true
	}

	// Pure ASCII domain: try to get Unicode display form
	// (handles existing Punycode like xn--mnchen-3ya.de → münchen.de)
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, true
}
