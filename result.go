package mailprobe

import "github.com/optimode/mailprobe/types"

// Re-exports from the types package so that consumers don't need to
// import it directly.
type (
	VerificationResult = types.VerificationResult
	Checks             = types.Checks
	Details            = types.Details
	SmtpStatus         = types.SmtpStatus
	SmtpResult         = types.SmtpResult
	SmtpTiming         = types.SmtpTiming
	TimingStats        = types.TimingStats
	MxRecord           = types.MxRecord
	DnsResult          = types.DnsResult
	CatchAllSignals    = types.CatchAllSignals
	TimingAnalysis     = types.TimingAnalysis
	Provider           = types.Provider
)

// Status constants re-exported.
const (
	StatusAccepted = types.StatusAccepted
	StatusRejected = types.StatusRejected
	StatusUnknown  = types.StatusUnknown
	StatusSkipped  = types.StatusSkipped
)
