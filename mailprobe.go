// Package mailprobe determines whether a message sent to an email
// address is likely to be accepted by the receiving mail system, without
// sending mail. It layers syntax validation, DNS resolution, a throttled
// SMTP RCPT TO probe and catch-all differentiation into a calibrated
// confidence score with structured diagnostic flags.
//
// Basic usage:
//
//	result, err := mailprobe.VerifyEmail(ctx, "user@example.com")
//
// Tuned pipeline:
//
//	engine := mailprobe.NewEngine(mailprobe.Options{
//	    SMTPTimeout: 5 * time.Second,
//	    SMTPCheck:   true,
//	    SenderEmail: "verify@myapp.com",
//	})
//	result, err := engine.VerifyEmail(ctx, "user@example.com")
//
// The package-level functions are sugar over a shared default engine
// whose caches and throttle state live for the process.
package mailprobe

import (
	"context"
	"sync"

	"github.com/optimode/mailprobe/internal/catchall"
	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/internal/static"
)

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the shared process-wide engine, creating it on first use.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// VerifyEmail verifies a single address through the default engine.
// Options, when given, apply to this call only; caches and throttle
// state stay shared.
func VerifyEmail(ctx context.Context, email string, opts ...Options) (VerificationResult, error) {
	return engineFor(opts).VerifyEmail(ctx, email)
}

// VerifyEmails verifies addresses sequentially through the default engine.
func VerifyEmails(ctx context.Context, emails []string, opts ...Options) ([]VerificationResult, error) {
	return engineFor(opts).VerifyEmails(ctx, emails)
}

// ClearCaches drops the default engine's cached results. Mostly for tests.
func ClearCaches() {
	Default().ClearCaches()
}

// ClearThrottle drops the default engine's per-host throttle state.
func ClearThrottle() {
	Default().ClearThrottle()
}

func engineFor(opts []Options) *Engine {
	if len(opts) == 0 {
		return Default()
	}
	return Default().WithOptions(opts[0])
}

// IsValidFormat reports whether the address is syntactically valid.
func IsValidFormat(email string) bool {
	return parse.IsValidFormat(email)
}

// ExtractDomain returns the normalized domain part of the address.
func ExtractDomain(email string) string {
	return parse.ExtractDomain(email)
}

// ExtractLocalPart returns the normalized local part of the address.
func ExtractLocalPart(email string) string {
	return parse.ExtractLocalPart(email)
}

// IsDisposableEmail reports whether the address uses a disposable domain.
func IsDisposableEmail(email string) bool {
	return static.IsDisposableDomain(parse.ExtractDomain(email))
}

// IsDisposableDomain reports whether the domain is a disposable provider.
func IsDisposableDomain(domain string) bool {
	return static.IsDisposableDomain(domain)
}

// IsRoleBasedEmail reports whether the address names a function rather
// than a person (info@, support@, ...).
func IsRoleBasedEmail(email string) bool {
	return static.IsRoleLocalPart(parse.ExtractLocalPart(email))
}

// IsRoleBasedLocalPart reports whether the local part is role-based.
func IsRoleBasedLocalPart(local string) bool {
	return static.IsRoleLocalPart(local)
}

// IsFreeEmail reports whether the address uses a free consumer provider.
func IsFreeEmail(email string) bool {
	return static.IsFreeDomain(parse.ExtractDomain(email))
}

// IsFreeDomain reports whether the domain is a free consumer provider.
func IsFreeDomain(domain string) bool {
	return static.IsFreeDomain(domain)
}

// DetectProvider identifies the mail hosting provider from MX hostnames.
func DetectProvider(mxHosts []string) *Provider {
	return static.DetectProvider(mxHosts)
}

// CheckDns resolves the domain's MX records (with A-record fallback)
// through the default engine's resolver and cache.
func CheckDns(ctx context.Context, domain string) DnsResult {
	return Default().lookupDNS(ctx, domain)
}

// GetPrimaryMx returns the lowest-priority MX host for the domain.
func GetPrimaryMx(ctx context.Context, domain string) (string, bool) {
	dns := CheckDns(ctx, domain)
	if !dns.HasValidDns || len(dns.MxRecords) == 0 {
		return "", false
	}
	return dns.MxRecords[0].Exchange, true
}

// SmtpProbe runs a single RCPT TO probe against one MX host.
func SmtpProbe(ctx context.Context, mxHost, recipient string) SmtpResult {
	return Default().prober.Probe(ctx, mxHost, recipient)
}

// ProbeWithFallback probes the hosts in order until one gives a
// definitive answer.
func ProbeWithFallback(ctx context.Context, mxHosts []string, recipient string) SmtpResult {
	return Default().prober.ProbeWithFallback(ctx, mxHosts, recipient)
}

// ProbeWithTimingStats runs n sequential probes and aggregates RCPT TO
// timing statistics.
func ProbeWithTimingStats(ctx context.Context, mxHosts []string, recipient string, n int) TimingStats {
	return Default().prober.ProbeWithTimingStats(ctx, mxHosts, recipient, n)
}

// AnalyzeCatchAllLegacy folds all catch-all signals into one weighted-sum
// score in [0, 1]. It is an alternate view for callers that want a single
// number; VerifyEmail scores catch-alls from the timing band instead.
func AnalyzeCatchAllLegacy(local string, realAvgRcptTo, fakeAvgRcptTo float64, mxCount int, hasSPF, hasDMARC bool) float64 {
	return catchall.WeightedConfidence(catchall.Input{
		Local:         local,
		RealAvgRcptTo: realAvgRcptTo,
		FakeAvgRcptTo: fakeAvgRcptTo,
		MxCount:       mxCount,
		HasSPF:        hasSPF,
		HasDMARC:      hasDMARC,
	})
}
