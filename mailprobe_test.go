package mailprobe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailprobe"
)

func TestIsValidFormat(t *testing.T) {
	assert.True(t, mailprobe.IsValidFormat("user@example.com"))
	assert.True(t, mailprobe.IsValidFormat("  User@Example.COM "))
	assert.False(t, mailprobe.IsValidFormat("not-an-email"))
	assert.False(t, mailprobe.IsValidFormat(""))
}

func TestExtractHelpers(t *testing.T) {
	assert.Equal(t, "example.com", mailprobe.ExtractDomain("User@Example.com"))
	assert.Equal(t, "user", mailprobe.ExtractLocalPart("User@Example.com"))
}

func TestIsDisposableEmail(t *testing.T) {
	assert.True(t, mailprobe.IsDisposableEmail("test@mailinator.com"))
	assert.False(t, mailprobe.IsDisposableEmail("test@example.com"))
	assert.True(t, mailprobe.IsDisposableDomain("yopmail.com"))
}

func TestIsRoleBasedEmail(t *testing.T) {
	assert.True(t, mailprobe.IsRoleBasedEmail("info@x.com"))
	assert.True(t, mailprobe.IsRoleBasedLocalPart("no-reply"))
	assert.False(t, mailprobe.IsRoleBasedEmail("jane.doe@x.com"))
}

func TestIsFreeEmail(t *testing.T) {
	assert.True(t, mailprobe.IsFreeEmail("u@gmail.com"))
	assert.False(t, mailprobe.IsFreeEmail("u@acme-corp.com"))
	assert.True(t, mailprobe.IsFreeDomain("outlook.com"))
}

func TestDetectProvider(t *testing.T) {
	p := mailprobe.DetectProvider([]string{"ASPMX.L.GOOGLE.COM"})
	if assert.NotNil(t, p) {
		assert.Equal(t, "Google Workspace", p.Name)
	}
}

func TestSuggestDomain(t *testing.T) {
	got, ok := mailprobe.SuggestDomain("gmial.com")
	assert.True(t, ok)
	assert.Equal(t, "gmail.com", got)

	_, ok = mailprobe.SuggestDomain("gmail.com")
	assert.False(t, ok, "exact match is not a typo")

	_, ok = mailprobe.SuggestDomain("completely-different.example")
	assert.False(t, ok)
}

func TestDefaultOptions(t *testing.T) {
	opts := mailprobe.DefaultOptions()
	assert.True(t, opts.SMTPCheck)
	assert.True(t, opts.CatchAllCheck)
	assert.Equal(t, "test@example.com", opts.SenderEmail)
	assert.Equal(t, 25, opts.SMTPPort)
}
