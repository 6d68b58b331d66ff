// Package static bundles the lookup tables consumed by the verification
// pipeline: disposable domains, free consumer providers, role-based local
// parts, mail-provider MX fingerprints and a set of common given names.
// All lookups are case-insensitive; no table is fetched at runtime.
package static

import (
	"strings"

	"github.com/optimode/mailprobe/types"
)

// providerPattern matches a substring of an MX hostname to a provider.
// More specific substrings must appear before the generic ones; the first
// match wins.
type providerPattern struct {
	substring string
	provider  types.Provider
}

var providerTable = []providerPattern{
	{"aspmx.l.google.com", types.Provider{Key: "google-workspace", Name: "Google Workspace"}},
	{"googlemail.com", types.Provider{Key: "google-workspace", Name: "Google Workspace"}},
	{"google.com", types.Provider{Key: "google-workspace", Name: "Google Workspace"}},
	{"olc.protection.outlook.com", types.Provider{Key: "outlook", Name: "Outlook.com"}},
	{"mail.protection.outlook.com", types.Provider{Key: "microsoft-365", Name: "Microsoft 365"}},
	{"protection.outlook.com", types.Provider{Key: "microsoft-365", Name: "Microsoft 365"}},
	{"outlook.com", types.Provider{Key: "microsoft-365", Name: "Microsoft 365"}},
	{"hotmail.com", types.Provider{Key: "outlook", Name: "Outlook.com"}},
	{"pphosted.com", types.Provider{Key: "proofpoint", Name: "Proofpoint"}},
	{"ppe-hosted.com", types.Provider{Key: "proofpoint", Name: "Proofpoint Essentials"}},
	{"mimecast.com", types.Provider{Key: "mimecast", Name: "Mimecast"}},
	{"barracudanetworks.com", types.Provider{Key: "barracuda", Name: "Barracuda"}},
	{"messagelabs.com", types.Provider{Key: "messagelabs", Name: "Broadcom MessageLabs"}},
	{"iphmx.com", types.Provider{Key: "cisco", Name: "Cisco Secure Email"}},
	{"mxthunder", types.Provider{Key: "spamhero", Name: "SpamHero"}},
	{"mx.cloudflare.net", types.Provider{Key: "cloudflare", Name: "Cloudflare Email Routing"}},
	{"mailgun.org", types.Provider{Key: "mailgun", Name: "Mailgun"}},
	{"sendgrid.net", types.Provider{Key: "sendgrid", Name: "SendGrid"}},
	{"amazonaws.com", types.Provider{Key: "amazon-ses", Name: "Amazon WorkMail/SES"}},
	{"mail.zoho.com", types.Provider{Key: "zoho", Name: "Zoho Mail"}},
	{"zoho.com", types.Provider{Key: "zoho", Name: "Zoho Mail"}},
	{"zoho.eu", types.Provider{Key: "zoho", Name: "Zoho Mail"}},
	{"yandex.net", types.Provider{Key: "yandex", Name: "Yandex 360"}},
	{"yandex.ru", types.Provider{Key: "yandex", Name: "Yandex 360"}},
	{"mail.ru", types.Provider{Key: "mailru", Name: "Mail.ru"}},
	{"emailsrvr.com", types.Provider{Key: "rackspace", Name: "Rackspace Email"}},
	{"secureserver.net", types.Provider{Key: "godaddy", Name: "GoDaddy Email"}},
	{"messagingengine.com", types.Provider{Key: "fastmail", Name: "Fastmail"}},
	{"fastmail.com", types.Provider{Key: "fastmail", Name: "Fastmail"}},
	{"protonmail.ch", types.Provider{Key: "proton", Name: "Proton Mail"}},
	{"icloud.com", types.Provider{Key: "icloud", Name: "iCloud Mail"}},
	{"me.com", types.Provider{Key: "icloud", Name: "iCloud Mail"}},
	{"yahoodns.net", types.Provider{Key: "yahoo", Name: "Yahoo Mail"}},
	{"yahoo.com", types.Provider{Key: "yahoo", Name: "Yahoo Mail"}},
	{"gmx.net", types.Provider{Key: "gmx", Name: "GMX"}},
	{"web.de", types.Provider{Key: "webde", Name: "WEB.DE"}},
	{"ovh.net", types.Provider{Key: "ovh", Name: "OVHcloud"}},
	{"mailbox.org", types.Provider{Key: "mailbox", Name: "mailbox.org"}},
	{"tutanota.de", types.Provider{Key: "tutanota", Name: "Tutanota"}},
	{"qq.com", types.Provider{Key: "tencent", Name: "Tencent Exmail"}},
}

// IsDisposableDomain reports whether domain is a known burner provider.
func IsDisposableDomain(domain string) bool {
	_, ok := disposableSet[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// IsFreeDomain reports whether domain is a free consumer provider.
func IsFreeDomain(domain string) bool {
	_, ok := freeSet[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// IsRoleLocalPart reports whether the local part names a function rather
// than a person (info, support, no-reply, ...). Separators are collapsed,
// so "customer-service" and "customer.service" both match.
func IsRoleLocalPart(local string) bool {
	key := stripSeparators(strings.ToLower(strings.TrimSpace(local)))
	_, ok := roleSet[key]
	return ok
}

// IsFirstName reports whether token is a known given name.
func IsFirstName(token string) bool {
	_, ok := nameSet[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// DetectProvider scans MX hostnames against the fingerprint table and
// returns the first match, or nil when the infrastructure is unrecognized.
func DetectProvider(mxHosts []string) *types.Provider {
	for _, host := range mxHosts {
		h := strings.ToLower(host)
		for _, p := range providerTable {
			if strings.Contains(h, p.substring) {
				prov := p.provider
				return &prov
			}
		}
	}
	return nil
}

// FreeDomains returns the bundled free-provider domain list, used for
// typo suggestions. The returned slice must not be mutated.
func FreeDomains() []string {
	return freeList
}
