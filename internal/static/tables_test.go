package static

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDisposableDomain(t *testing.T) {
	assert.True(t, IsDisposableDomain("mailinator.com"))
	assert.True(t, IsDisposableDomain("MAILINATOR.COM"))
	assert.True(t, IsDisposableDomain("10minutemail.com"))
	assert.False(t, IsDisposableDomain("example.com"))
	assert.False(t, IsDisposableDomain("gmail.com"))
}

func TestIsFreeDomain(t *testing.T) {
	assert.True(t, IsFreeDomain("gmail.com"))
	assert.True(t, IsFreeDomain("Yahoo.co.uk"))
	assert.True(t, IsFreeDomain("protonmail.com"))
	assert.False(t, IsFreeDomain("acme-corp.com"))
}

func TestIsRoleLocalPart(t *testing.T) {
	assert.True(t, IsRoleLocalPart("info"))
	assert.True(t, IsRoleLocalPart("no-reply"))
	assert.True(t, IsRoleLocalPart("noreply"))
	assert.True(t, IsRoleLocalPart("customer.service"))
	assert.True(t, IsRoleLocalPart("customer_service"))
	assert.True(t, IsRoleLocalPart("POSTMASTER"))
	assert.False(t, IsRoleLocalPart("john.smith"))
	assert.False(t, IsRoleLocalPart(""))
}

func TestIsFirstName(t *testing.T) {
	assert.True(t, IsFirstName("sarah"))
	assert.True(t, IsFirstName("Miguel"))
	assert.False(t, IsFirstName("x9x0john"))
	assert.False(t, IsFirstName(""))
}

func TestDetectProvider(t *testing.T) {
	google := DetectProvider([]string{"ASPMX.L.GOOGLE.COM"})
	if assert.NotNil(t, google) {
		assert.Equal(t, "google-workspace", google.Key)
		assert.Equal(t, "Google Workspace", google.Name)
	}

	m365 := DetectProvider([]string{"acme-com.mail.protection.outlook.com"})
	if assert.NotNil(t, m365) {
		assert.Equal(t, "microsoft-365", m365.Key)
	}

	// First matching host wins.
	pp := DetectProvider([]string{"mx1.acme.pphosted.com", "aspmx.l.google.com"})
	if assert.NotNil(t, pp) {
		assert.Equal(t, "proofpoint", pp.Key)
	}

	assert.Nil(t, DetectProvider([]string{"mx.unknown-isp.example"}))
	assert.Nil(t, DetectProvider(nil))
}

func TestFreeDomainsListPopulated(t *testing.T) {
	domains := FreeDomains()
	assert.GreaterOrEqual(t, len(domains), 100)
	assert.Contains(t, domains, "gmail.com")
}
