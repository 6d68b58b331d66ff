package mailprobe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/optimode/mailprobe/internal/catchall"
	"github.com/optimode/mailprobe/internal/dnsx"
	"github.com/optimode/mailprobe/internal/logging"
	"github.com/optimode/mailprobe/internal/metrics"
	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/internal/smtpprobe"
	"github.com/optimode/mailprobe/internal/static"
	"github.com/optimode/mailprobe/internal/throttle"
	"github.com/optimode/mailprobe/internal/ttlcache"
	"github.com/optimode/mailprobe/types"
)

// probeAttempts is how many sequential probes feed the timing aggregate.
const probeAttempts = 2

// Engine runs the verification pipeline. It owns the two result caches
// and the per-host throttle; concurrent VerifyEmail calls are safe, and
// calls hitting the same MX host are rate-limited together.
type Engine struct {
	opts Options

	emailCache *ttlcache.Cache[types.VerificationResult]
	dnsCache   *ttlcache.Cache[types.DnsResult]
	throttle   *throttle.Throttle
	resolver   *dnsx.Resolver
	prober     *smtpprobe.Prober
	baseLog    *logging.Logger
	log        *logging.Logger
}

// NewEngine creates an engine. With no arguments it uses DefaultOptions.
func NewEngine(opts ...Options) *Engine {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0].withDefaults()
	}
	return newEngine(o, logging.Default())
}

// NewEngineWithLogger creates an engine that logs through the given logger.
func NewEngineWithLogger(logger *logging.Logger, opts ...Options) *Engine {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0].withDefaults()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return newEngine(o, logger)
}

func newEngine(o Options, logger *logging.Logger) *Engine {
	return &Engine{
		opts:       o,
		emailCache: ttlcache.New[types.VerificationResult](ttlcache.DefaultTTL, ttlcache.DefaultMaxEntries),
		dnsCache:   ttlcache.New[types.DnsResult](ttlcache.DefaultTTL, ttlcache.DefaultMaxEntries),
		throttle:   throttle.New(throttle.DefaultConfig()),
		resolver:   dnsx.New(o.DNSTimeout),
		prober: smtpprobe.New(smtpprobe.Config{
			Port:        o.SMTPPort,
			Timeout:     o.SMTPTimeout,
			SenderEmail: o.SenderEmail,
			Logger:      logger,
		}),
		baseLog: logger,
		log:     logger.Engine(),
	}
}

// WithOptions returns an engine running with different options while
// sharing this engine's caches and throttle state.
func (e *Engine) WithOptions(opts Options) *Engine {
	o := opts.withDefaults()
	clone := newEngine(o, e.baseLog)
	clone.emailCache = e.emailCache
	clone.dnsCache = e.dnsCache
	clone.throttle = e.throttle
	return clone
}

// ClearCaches drops all cached verification and DNS results.
func (e *Engine) ClearCaches() {
	e.emailCache.Clear()
	e.dnsCache.Clear()
}

// ClearThrottle drops all per-host throttle state.
func (e *Engine) ClearThrottle() {
	e.throttle.Clear()
}

// VerifyEmails verifies addresses one at a time, in order. Batching is
// sequential so that per-host throttling shapes the probe rate.
func (e *Engine) VerifyEmails(ctx context.Context, emails []string) ([]types.VerificationResult, error) {
	results := make([]types.VerificationResult, 0, len(emails))
	for _, email := range emails {
		res, err := e.VerifyEmail(ctx, email)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// VerifyEmail runs the full pipeline for one address: cache lookup,
// static detections, syntax, DNS, throttled SMTP probe, catch-all
// differentiation and confidence synthesis. Network failures never
// surface as errors; they degrade the result instead.
func (e *Engine) VerifyEmail(ctx context.Context, email string) (types.VerificationResult, error) {
	addr := parse.NewEmail(email)
	cacheKey := addr.Normalized

	if cached, ok := e.emailCache.Get(cacheKey); ok {
		metrics.CacheHits.WithLabelValues("email").Inc()
		e.log.Debug("cache hit", "email", cacheKey)
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("email").Inc()

	res := types.VerificationResult{
		Email: addr.Normalized,
		Details: types.Details{
			SmtpStatus:        types.StatusSkipped,
			MxRecords:         []types.MxRecord{},
			ConfidenceReasons: []string{},
		},
	}

	// Static detections need no I/O and run even for doubtful syntax.
	localGuess := parse.ExtractLocalPart(addr.Normalized)
	domainGuess := parse.ExtractDomain(addr.Normalized)
	res.Checks.IsDisposableEmail = static.IsDisposableDomain(domainGuess)
	res.Checks.IsRoleBasedAccount = static.IsRoleLocalPart(localGuess)
	res.Checks.IsFreeEmailProvider = static.IsFreeDomain(domainGuess)
	if res.Checks.IsDisposableEmail {
		e.addReason(&res, "domain is a known disposable provider")
	}
	if res.Checks.IsRoleBasedAccount {
		e.addReason(&res, fmt.Sprintf("local part %q is a role account", localGuess))
	}
	if res.Checks.IsFreeEmailProvider {
		e.addReason(&res, "domain is a free consumer provider")
	}

	if !addr.Valid {
		e.addReason(&res, "address fails syntax validation")
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return res, nil // never cached
	}
	res.Checks.IsValidSyntax = true
	res.Details.FormatValid = true

	if suggestion, ok := SuggestDomain(addr.Domain); ok {
		res.Details.DidYouMean = addr.Local + "@" + suggestion
		e.addReason(&res, fmt.Sprintf("domain resembles %q", suggestion))
	}

	dns := e.lookupDNS(ctx, addr.Domain)
	res.Details.MxRecords = dns.MxRecords
	if !dns.HasValidDns {
		e.addReason(&res, "domain has neither MX nor A records")
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		e.emailCache.Set(cacheKey, res)
		return res, nil
	}
	res.Checks.IsValidDomain = true

	mxHosts := make([]string, len(dns.MxRecords))
	for i, mx := range dns.MxRecords {
		mxHosts[i] = mx.Exchange
	}
	if p := static.DetectProvider(mxHosts); p != nil {
		res.Details.Provider = p
		e.addReason(&res, "hosted on "+p.Name)
	}

	if !e.opts.SMTPCheck || len(mxHosts) == 0 {
		return e.composeSkipped(&res), nil
	}

	primary := mxHosts[0]
	if !e.throttle.CanProceed(primary) {
		metrics.ThrottleRejections.Inc()
		wait := e.throttle.GetWaitTime(primary)
		e.log.Debug("host throttled", "host", primary, "wait", wait)
		e.addReason(&res, fmt.Sprintf("probe deferred: %s is rate-limited (retry in %s)", primary, wait.Round(time.Millisecond)))
		return e.composeUnknown(&res), nil // never cached
	}
	e.throttle.Consume(primary)

	realStats := e.prober.ProbeWithTimingStats(ctx, mxHosts, addr.Normalized, probeAttempts)
	if realStats.Result.Status == types.StatusUnknown {
		e.throttle.RecordFailure(primary)
		metrics.ThrottleFailures.Inc()
	} else {
		e.throttle.RecordSuccess(primary)
	}

	res.Details.SmtpStatus = realStats.Result.Status

	switch realStats.Result.Status {
	case types.StatusRejected:
		res.Checks.CanConnectSmtp = true
		e.addReason(&res, fmt.Sprintf("mailbox rejected with %d %s",
			realStats.Result.ResponseCode, realStats.Result.ResponseMessage))
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		e.emailCache.Set(cacheKey, res)
		return res, nil

	case types.StatusUnknown:
		e.addReason(&res, "mail server gave no definitive answer: "+realStats.Result.ResponseMessage)
		return e.composeUnknown(&res), nil // never cached

	case types.StatusAccepted:
		// fall through to catch-all differentiation
	}

	res.Checks.CanConnectSmtp = true
	res.Checks.IsDeliverable = true
	e.addReason(&res, "mailbox accepted by mail server")

	var signals types.CatchAllSignals
	isCatchAll := false
	if e.opts.CatchAllCheck {
		// Best-effort token accounting; the differentiation probe is not
		// deferred once the real probe has been paid for.
		e.throttle.Consume(primary)
		synthetic := catchall.SyntheticLocal(addr.Local) + "@" + addr.Domain
		fakeStats := e.prober.ProbeWithTimingStats(ctx, mxHosts, synthetic, probeAttempts)
		isCatchAll = fakeStats.Result.Status == types.StatusAccepted
		res.Details.CatchAll = &isCatchAll
		res.Checks.IsCatchAllDomain = isCatchAll

		hasSPF, hasDMARC := e.lookupPolicies(ctx, addr.Domain)
		signals = catchall.Analyze(catchall.Input{
			Local:         addr.Local,
			IsCatchAll:    isCatchAll,
			RealAvgRcptTo: realStats.AvgRcptToTime,
			FakeAvgRcptTo: fakeStats.AvgRcptToTime,
			MxCount:       len(dns.MxRecords),
			HasSPF:        hasSPF,
			HasDMARC:      hasDMARC,
		})
		res.Details.CatchAllSignals = &signals
	}

	if isCatchAll {
		res.Valid = true
		res.Confidence = catchall.Confidence(signals)
		if signals.TimingScore <= 0.65 {
			res.Checks.IsUnknown = true
		}
		e.addReason(&res, "server accepts any recipient (catch-all)")
		if signals.TimingAnalysis != nil {
			e.addReason(&res, signals.TimingAnalysis.Reason)
		}
		e.describeSignals(&res, signals)
	} else {
		res.Valid = true
		res.Confidence = 0.95
	}

	res.IsSafeToSend = e.safeToSend(res.Checks, isCatchAll, signals.ZScore)
	metrics.VerificationsTotal.WithLabelValues("valid").Inc()
	e.emailCache.Set(cacheKey, res)
	return res, nil
}

// lookupDNS consults the domain cache before resolving.
func (e *Engine) lookupDNS(ctx context.Context, domain string) types.DnsResult {
	key := parse.Normalize(domain)
	if cached, ok := e.dnsCache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("dns").Inc()
		return cached
	}
	metrics.CacheMisses.WithLabelValues("dns").Inc()

	dns := e.resolver.CheckDns(ctx, domain)
	if dns.HasValidDns {
		metrics.DNSLookupsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.DNSLookupsTotal.WithLabelValues("empty").Inc()
	}
	e.dnsCache.Set(key, dns)
	return dns
}

// lookupPolicies fetches SPF and DMARC in parallel; both are advisory.
func (e *Engine) lookupPolicies(ctx context.Context, domain string) (hasSPF, hasDMARC bool) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hasSPF = e.resolver.CheckSPF(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		hasDMARC = e.resolver.CheckDMARC(ctx, domain)
	}()
	wg.Wait()
	return hasSPF, hasDMARC
}

// composeSkipped finalizes a result whose SMTP stage did not run.
func (e *Engine) composeSkipped(res *types.VerificationResult) types.VerificationResult {
	res.Valid = true
	res.Confidence = 0.70
	res.Checks.IsUnknown = true
	res.Details.SmtpStatus = types.StatusSkipped
	e.addReason(res, "SMTP probe skipped")
	res.IsSafeToSend = false
	metrics.VerificationsTotal.WithLabelValues("unknown").Inc()
	return *res
}

// composeUnknown finalizes a result whose probe gave no definitive
// answer. These are deliberately never cached so a later call can
// succeed once the server or the throttle recovers.
func (e *Engine) composeUnknown(res *types.VerificationResult) types.VerificationResult {
	res.Valid = true
	res.Confidence = 0.5
	res.Checks.IsUnknown = true
	res.Details.SmtpStatus = types.StatusUnknown
	res.IsSafeToSend = false
	metrics.VerificationsTotal.WithLabelValues("unknown").Inc()
	return *res
}

// safeToSend is the conservative send gate: deliverable, not disposable,
// not role-based, and for catch-alls only with meaningful timing
// separation.
func (e *Engine) safeToSend(c types.Checks, isCatchAll bool, zScore float64) bool {
	return c.IsValidSyntax &&
		c.IsValidDomain &&
		c.IsDeliverable &&
		!c.IsDisposableEmail &&
		!c.IsRoleBasedAccount &&
		(!isCatchAll || zScore > 2)
}

func (e *Engine) addReason(res *types.VerificationResult, reason string) {
	res.Details.ConfidenceReasons = append(res.Details.ConfidenceReasons, reason)
}

// describeSignals narrates the secondary catch-all evidence. SPF, DMARC
// and MX count inform the reader, not the score.
func (e *Engine) describeSignals(res *types.VerificationResult, s types.CatchAllSignals) {
	if s.PatternName != "" {
		e.addReason(res, fmt.Sprintf("local part matches %s pattern (%.2f)", s.PatternName, s.PatternMatch))
	}
	var posture []string
	if s.HasSPF {
		posture = append(posture, "SPF")
	}
	if s.HasDMARC {
		posture = append(posture, "DMARC")
	}
	if len(posture) > 0 {
		e.addReason(res, "domain publishes "+strings.Join(posture, " and "))
	}
	e.addReason(res, fmt.Sprintf("%d MX host(s) configured", s.MxCount))
}
