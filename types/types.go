// Package types contains the shared types for mailprobe.
// This package does not import anything from other mailprobe packages
// to avoid circular imports.
package types

// SmtpStatus is the outcome of an SMTP RCPT TO probe.
type SmtpStatus string

const (
	// StatusAccepted means the server answered 2xx to RCPT TO.
	StatusAccepted SmtpStatus = "accepted"
	// StatusRejected means the server answered 5xx to RCPT TO.
	StatusRejected SmtpStatus = "rejected"
	// StatusUnknown covers 4xx replies, timeouts, connection errors and
	// dialog failures before RCPT TO.
	StatusUnknown SmtpStatus = "unknown"
	// StatusSkipped means no probe was performed.
	StatusSkipped SmtpStatus = "skipped"
)

// MxRecord is a single mail exchanger for a domain.
type MxRecord struct {
	Exchange string `json:"exchange"`
	Priority uint16 `json:"priority"`
}

// DnsResult is the outcome of resolving a domain's mail routing.
// When a domain has no MX but does have an A record, MxRecords holds a
// single synthesized record {domain, 0} per the RFC 5321 implicit-MX rule.
type DnsResult struct {
	MxRecords   []MxRecord `json:"mxRecords"`
	HasValidDns bool       `json:"hasValidDns"`
}

// SmtpTiming records per-stage durations of one probe, in milliseconds.
// Total is end-to-end wall time and may slightly exceed the sum of the
// stages due to measurement skew.
type SmtpTiming struct {
	Connect  int64 `json:"connect"`
	Banner   int64 `json:"banner"`
	Ehlo     int64 `json:"ehlo"`
	MailFrom int64 `json:"mailFrom"`
	RcptTo   int64 `json:"rcptTo"`
	Total    int64 `json:"total"`
}

// SmtpResult is the outcome of a single probe against one MX host.
type SmtpResult struct {
	Status          SmtpStatus  `json:"status"`
	ResponseCode    int         `json:"responseCode,omitempty"`
	ResponseMessage string      `json:"responseMessage,omitempty"`
	ResponseTime    int64       `json:"responseTime,omitempty"`
	Timing          *SmtpTiming `json:"timing,omitempty"`
}

// TimingStats aggregates several sequential probes for the same recipient.
// Averages are taken only over probes whose RcptTo stage completed (>0 ms).
type TimingStats struct {
	Result        SmtpResult   `json:"result"`
	Timings       []SmtpTiming `json:"timings"`
	AvgRcptToTime float64      `json:"avgRcptToTime"`
	MinRcptToTime int64        `json:"minRcptToTime"`
	MaxRcptToTime int64        `json:"maxRcptToTime"`
}

// TimingAnalysis is the statistical comparison of real vs synthetic
// RCPT TO response times.
type TimingAnalysis struct {
	ZScore     float64 `json:"zScore"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// CatchAllSignals collects the evidence used to differentiate a real
// mailbox from a catch-all acceptance.
type CatchAllSignals struct {
	PatternMatch   float64         `json:"patternMatch"`
	PatternName    string          `json:"patternName,omitempty"`
	NameScore      float64         `json:"nameScore"`
	TimingScore    float64         `json:"timingScore"`
	ZScore         float64         `json:"zScore,omitempty"`
	HasSPF         bool            `json:"hasSPF"`
	HasDMARC       bool            `json:"hasDMARC"`
	MxCount        int             `json:"mxCount"`
	TimingAnalysis *TimingAnalysis `json:"timingAnalysis,omitempty"`
}

// Provider identifies a known mail hosting provider, detected from MX
// hostnames.
type Provider struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Checks are the independent boolean verdicts of a verification.
type Checks struct {
	IsValidSyntax       bool `json:"isValidSyntax"`
	IsValidDomain       bool `json:"isValidDomain"`
	CanConnectSmtp      bool `json:"canConnectSmtp"`
	IsDeliverable       bool `json:"isDeliverable"`
	IsCatchAllDomain    bool `json:"isCatchAllDomain"`
	IsDisposableEmail   bool `json:"isDisposableEmail"`
	IsRoleBasedAccount  bool `json:"isRoleBasedAccount"`
	IsFreeEmailProvider bool `json:"isFreeEmailProvider"`
	IsUnknown           bool `json:"isUnknown"`
}

// Details carries the supporting evidence behind a verification verdict.
// CatchAll is nil unless the SMTP probe was accepted and the catch-all
// check ran.
type Details struct {
	FormatValid       bool             `json:"formatValid"`
	MxRecords         []MxRecord       `json:"mxRecords"`
	SmtpStatus        SmtpStatus       `json:"smtpStatus"`
	CatchAll          *bool            `json:"catchAll"`
	Provider          *Provider        `json:"provider"`
	CatchAllSignals   *CatchAllSignals `json:"catchAllSignals,omitempty"`
	ConfidenceReasons []string         `json:"confidenceReasons"`
	DidYouMean        string           `json:"didYouMean,omitempty"`
}

// VerificationResult is the full outcome of verifying one address.
type VerificationResult struct {
	Email        string  `json:"email"`
	Valid        bool    `json:"valid"`
	Confidence   float64 `json:"confidence"`
	IsSafeToSend bool    `json:"isSafeToSend"`
	Checks       Checks  `json:"checks"`
	Details      Details `json:"details"`
}
