package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEmail_Valid(t *testing.T) {
	e := NewEmail("  User@Example.COM ")

	assert.True(t, e.Valid)
	assert.Equal(t, "user@example.com", e.Normalized)
	assert.Equal(t, "user", e.Local)
	assert.Equal(t, "example.com", e.Domain)
	assert.Equal(t, "example.com", e.DomainUnicode)
}

func TestNewEmail_IDN(t *testing.T) {
	e := NewEmail("user@münchen.de")

	assert.True(t, e.Valid)
	assert.Equal(t, "xn--mnchen-3ya.de", e.Domain)
	assert.Equal(t, "münchen.de", e.DomainUnicode)
}

func TestNewEmail_Invalid(t *testing.T) {
	for _, in := range []string{"", "plainaddress", "@no-local.com", "user@", "a@b"} {
		e := NewEmail(in)
		assert.False(t, e.Valid, "input %q", in)
		assert.Equal(t, Normalize(in), e.Normalized)
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@example.co.uk", true},
		{"user+tag@example.com", true},
		{"user_name-x@sub.example.com", true},
		{"", false},
		{"not-an-email", false},
		{"user@@example.com", false},
		{"user@example", false},         // single label
		{"user@example.c", false},       // TLD too short
		{"user@example.123", false},     // all-digit TLD
		{".user@example.com", false},    // leading dot
		{"user.@example.com", false},    // trailing dot
		{"us..er@example.com", false},   // consecutive dots
		{"user@-example.com", false},    // label starts with hyphen
		{"user name@example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidFormat(tt.email), "input %q", tt.email)
	}
}

func TestIsValidFormat_LengthBounds(t *testing.T) {
	local64 := strings.Repeat("a", 64)
	assert.True(t, IsValidFormat(local64+"@example.com"))
	assert.False(t, IsValidFormat(local64+"a@example.com"))

	// 254 total is the ceiling.
	domain := strings.Repeat("d", 63) + "." + strings.Repeat("e", 63) + "." + strings.Repeat("f", 57) + ".com"
	addr := local64 + "@" + domain
	assert.Len(t, addr, 254)
	assert.True(t, IsValidFormat(addr))
	assert.False(t, IsValidFormat("a"+addr))
}

func TestIsValidFormat_NormalizationInvariance(t *testing.T) {
	for _, in := range []string{"User@Example.COM", "  user@example.com  ", "BAD@@x.com", "MiXeD.CaSe@Sub.Domain.ORG"} {
		assert.Equal(t, IsValidFormat(in), IsValidFormat(Normalize(in)), "input %q", in)
	}
}

func TestExtractParts(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain(" User@Example.Com "))
	assert.Equal(t, "user", ExtractLocalPart(" User@Example.Com "))
	assert.Equal(t, "", ExtractDomain("no-at-sign"))
	assert.Equal(t, "", ExtractLocalPart("no-at-sign"))
	assert.Equal(t, "", ExtractDomain("user@"))
}
