// Package dnsx resolves the mail routing of a domain: MX records with the
// RFC 5321 implicit-MX fallback to A records, plus advisory SPF and DMARC
// TXT lookups. Lookup failures and timeouts are never surfaced as errors;
// DNS here is advisory, not fatal.
package dnsx

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/mailprobe/types"
)

// DefaultTimeout bounds each lookup when the caller passes none.
const DefaultTimeout = 5 * time.Second

// Resolver performs MX/A/TXT lookups. The three lookup functions are
// injectable for testability; they default to net.DefaultResolver.
type Resolver struct {
	Timeout time.Duration

	lookupMX   func(ctx context.Context, domain string) ([]*net.MX, error)
	lookupHost func(ctx context.Context, domain string) ([]string, error)
	lookupTXT  func(ctx context.Context, domain string) ([]string, error)
}

// New creates a resolver backed by net.DefaultResolver.
func New(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := net.DefaultResolver
	return &Resolver{
		Timeout:    timeout,
		lookupMX:   r.LookupMX,
		lookupHost: r.LookupHost,
		lookupTXT:  r.LookupTXT,
	}
}

// NewWithLookups is a test-oriented constructor overriding the lookup
// functions. Nil functions keep the net.DefaultResolver behavior.
func NewWithLookups(
	timeout time.Duration,
	mx func(ctx context.Context, domain string) ([]*net.MX, error),
	host func(ctx context.Context, domain string) ([]string, error),
	txt func(ctx context.Context, domain string) ([]string, error),
) *Resolver {
	res := New(timeout)
	if mx != nil {
		res.lookupMX = mx
	}
	if host != nil {
		res.lookupHost = host
	}
	if txt != nil {
		res.lookupTXT = txt
	}
	return res
}

// CheckDns resolves the domain's mail exchangers, sorted by ascending
// priority with a stable tie-break. When no MX exists but an A record
// does, a single implicit record {domain, 0} is synthesized.
func (r *Resolver) CheckDns(ctx context.Context, domain string) types.DnsResult {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	mxs, err := r.lookupMX(ctx, domain)
	if err == nil && len(mxs) > 0 {
		records := make([]types.MxRecord, 0, len(mxs))
		for _, mx := range mxs {
			host := strings.TrimSuffix(mx.Host, ".")
			if host == "" {
				continue
			}
			records = append(records, types.MxRecord{Exchange: host, Priority: mx.Pref})
		}
		if len(records) > 0 {
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Priority < records[j].Priority
			})
			return types.DnsResult{MxRecords: records, HasValidDns: true}
		}
	}

	addrs, err := r.lookupHost(ctx, domain)
	if err == nil && len(addrs) > 0 {
		return types.DnsResult{
			MxRecords:   []types.MxRecord{{Exchange: domain, Priority: 0}},
			HasValidDns: true,
		}
	}

	return types.DnsResult{MxRecords: []types.MxRecord{}, HasValidDns: false}
}

// CheckSPF reports whether the domain publishes an SPF policy.
func (r *Resolver) CheckSPF(ctx context.Context, domain string) bool {
	return r.hasTXTPrefix(ctx, domain, "v=spf1")
}

// CheckDMARC reports whether the domain publishes a DMARC policy at
// _dmarc.<domain>.
func (r *Resolver) CheckDMARC(ctx context.Context, domain string) bool {
	return r.hasTXTPrefix(ctx, "_dmarc."+domain, "v=dmarc1")
}

func (r *Resolver) hasTXTPrefix(ctx context.Context, name, prefix string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	txts, err := r.lookupTXT(ctx, name)
	if err != nil {
		return false
	}
	for _, txt := range txts {
		if strings.HasPrefix(strings.ToLower(txt), prefix) {
			return true
		}
	}
	return false
}
