package mailprobe

import "time"

// Options configures a verification run.
type Options struct {
	// DNSTimeout bounds each DNS lookup. Default: 5s
	DNSTimeout time.Duration
	// SMTPTimeout bounds the TCP connect and each expected SMTP read. Default: 10s
	SMTPTimeout time.Duration
	// SMTPCheck enables the RCPT TO probe. Default (via DefaultOptions): true
	SMTPCheck bool
	// CatchAllCheck enables the synthetic-address probe that detects
	// catch-all servers. Only runs when the real probe was accepted.
	// Default (via DefaultOptions): true
	CatchAllCheck bool
	// SenderEmail is used in MAIL FROM and to derive the EHLO domain.
	// Default: test@example.com
	SenderEmail string
	// SMTPPort is the target port for probes. Default: 25
	SMTPPort int
}

// DefaultOptions returns the standard configuration. Start from here when
// toggling individual fields.
func DefaultOptions() Options {
	return Options{
		DNSTimeout:    5 * time.Second,
		SMTPTimeout:   10 * time.Second,
		SMTPCheck:     true,
		CatchAllCheck: true,
		SenderEmail:   "test@example.com",
		SMTPPort:      25,
	}
}

// withDefaults fills unset scalar fields. The boolean toggles are taken
// as given.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DNSTimeout <= 0 {
		o.DNSTimeout = def.DNSTimeout
	}
	if o.SMTPTimeout <= 0 {
		o.SMTPTimeout = def.SMTPTimeout
	}
	if o.SenderEmail == "" {
		o.SenderEmail = def.SenderEmail
	}
	if o.SMTPPort <= 0 {
		o.SMTPPort = def.SMTPPort
	}
	return o
}
