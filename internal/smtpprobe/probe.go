// Package smtpprobe performs one-shot SMTP RCPT TO probes against MX
// hosts. A probe walks the dialog CONNECT → BANNER → EHLO (HELO fallback)
// → MAIL FROM → RCPT TO → QUIT, recording a per-stage millisecond timing,
// and never issues DATA. The socket is closed on every exit path.
package smtpprobe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/optimode/mailprobe/internal/logging"
	"github.com/optimode/mailprobe/internal/metrics"
	"github.com/optimode/mailprobe/types"
)

// Defaults applied by New.
const (
	DefaultPort    = 25
	DefaultTimeout = 10 * time.Second
	DefaultSender  = "test@example.com"

	// interProbePause spaces sequential probes against the same host so
	// the aggregate does not look like a connection flood.
	interProbePause = 100 * time.Millisecond
)

// DialFunc opens the TCP connection to an MX host. Injectable for tests.
type DialFunc func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error)

// Config configures the prober.
type Config struct {
	Port        int
	Timeout     time.Duration // per-operation (connect and each expected read)
	SenderEmail string        // used in MAIL FROM and to derive the EHLO domain
	Dial        DialFunc
	Logger      *logging.Logger
}

// Prober runs RCPT TO probes. Safe for concurrent use; every probe owns
// its socket exclusively.
type Prober struct {
	cfg   Config
	helo  string
	log   *logging.Logger
	sleep func(ctx context.Context, d time.Duration) error // injectable for tests
}

// New creates a prober, filling unset config fields with defaults.
func New(cfg Config) *Prober {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SenderEmail == "" {
		cfg.SenderEmail = DefaultSender
	}
	if cfg.Dial == nil {
		cfg.Dial = func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, "tcp", address)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	helo := "localhost"
	if at := strings.LastIndex(cfg.SenderEmail, "@"); at >= 0 && at < len(cfg.SenderEmail)-1 {
		helo = cfg.SenderEmail[at+1:]
	}

	return &Prober{
		cfg:  cfg,
		helo: helo,
		log:  cfg.Logger.SMTP(),
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-time.After(d):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// Probe runs the RCPT TO dialog against a single MX host.
// 2xx to RCPT TO yields accepted, 5xx rejected; everything else
// (4xx replies, timeouts, connection and dialog failures) is unknown.
func (p *Prober) Probe(ctx context.Context, mxHost, recipient string) types.SmtpResult {
	start := time.Now()
	timing := &types.SmtpTiming{}

	result := p.dialog(ctx, mxHost, recipient, timing)

	timing.Total = msSince(start)
	result.Timing = timing
	result.ResponseTime = timing.Total

	metrics.SMTPProbesTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	p.log.Debug("probe finished",
		"host", mxHost, "recipient", recipient,
		"status", string(result.Status), "code", result.ResponseCode, "ms", timing.Total)
	return result
}

// dialog walks the SMTP state machine, filling timing as it goes.
func (p *Prober) dialog(ctx context.Context, mxHost, recipient string, timing *types.SmtpTiming) types.SmtpResult {
	address := net.JoinHostPort(mxHost, strconv.Itoa(p.cfg.Port))

	connectStart := time.Now()
	conn, err := p.cfg.Dial(ctx, address, p.cfg.Timeout)
	timing.Connect = msSince(connectStart)
	if err != nil {
		return unknown(0, fmt.Sprintf("connect to %s: %v", address, err))
	}
	defer conn.Close()

	s := &session{conn: conn, reader: bufio.NewReader(conn), timeout: p.cfg.Timeout, ctx: ctx}

	// Banner
	bannerStart := time.Now()
	code, msg, err := s.readReply()
	timing.Banner = msSince(bannerStart)
	if err != nil {
		return unknown(0, fmt.Sprintf("banner: %v", err))
	}
	if code/100 != 2 {
		return unknown(code, msg)
	}

	// EHLO, with one HELO retry. Both round-trips charge the same slot.
	ehloStart := time.Now()
	code, msg, err = s.command("EHLO " + p.helo)
	if err == nil && code/100 != 2 {
		code, msg, err = s.command("HELO localhost")
	}
	timing.Ehlo = msSince(ehloStart)
	if err != nil {
		return unknown(0, fmt.Sprintf("ehlo: %v", err))
	}
	if code/100 != 2 {
		return unknown(code, msg)
	}

	// MAIL FROM
	mailStart := time.Now()
	code, msg, err = s.command("MAIL FROM:<" + p.cfg.SenderEmail + ">")
	timing.MailFrom = msSince(mailStart)
	if err != nil {
		return unknown(0, fmt.Sprintf("mail from: %v", err))
	}
	if code/100 != 2 {
		return unknown(code, msg)
	}

	// RCPT TO carries the verdict.
	rcptStart := time.Now()
	code, msg, err = s.command("RCPT TO:<" + recipient + ">")
	timing.RcptTo = msSince(rcptStart)
	if err != nil {
		return unknown(0, fmt.Sprintf("rcpt to: %v", err))
	}

	s.quit()

	switch {
	case code/100 == 2:
		return types.SmtpResult{Status: types.StatusAccepted, ResponseCode: code, ResponseMessage: msg}
	case code/100 == 5:
		return types.SmtpResult{Status: types.StatusRejected, ResponseCode: code, ResponseMessage: msg}
	default:
		return unknown(code, msg)
	}
}

// ProbeWithFallback probes hosts in order and returns the first
// definitive answer. An unknown moves on to the next host; if every host
// is unknown, the last unknown is returned.
func (p *Prober) ProbeWithFallback(ctx context.Context, mxHosts []string, recipient string) types.SmtpResult {
	if len(mxHosts) == 0 {
		return unknown(0, "no MX hosts to probe")
	}

	var last types.SmtpResult
	for _, host := range mxHosts {
		if ctx.Err() != nil {
			return unknown(0, fmt.Sprintf("cancelled: %v", ctx.Err()))
		}
		last = p.Probe(ctx, host, recipient)
		if last.Status != types.StatusUnknown {
			return last
		}
	}
	return last
}

// ProbeWithTimingStats runs n sequential probes (default 2) for the same
// recipient with a short pause in between, and aggregates RCPT TO
// timings over the probes that reached that stage. The reported result is
// the last non-unknown one, or the final unknown when none were.
func (p *Prober) ProbeWithTimingStats(ctx context.Context, mxHosts []string, recipient string, n int) types.TimingStats {
	if n <= 0 {
		n = 2
	}

	stats := types.TimingStats{}
	var lastDefinitive *types.SmtpResult

	for i := 0; i < n; i++ {
		if i > 0 {
			if err := p.sleep(ctx, interProbePause); err != nil {
				break
			}
		}

		res := p.ProbeWithFallback(ctx, mxHosts, recipient)
		if res.Timing != nil {
			stats.Timings = append(stats.Timings, *res.Timing)
		}
		if res.Status != types.StatusUnknown {
			cp := res
			lastDefinitive = &cp
		}
		stats.Result = res
	}

	if lastDefinitive != nil {
		stats.Result = *lastDefinitive
	}

	var sum int64
	var count int64
	for _, tm := range stats.Timings {
		if tm.RcptTo <= 0 {
			continue
		}
		sum += tm.RcptTo
		count++
		if stats.MinRcptToTime == 0 || tm.RcptTo < stats.MinRcptToTime {
			stats.MinRcptToTime = tm.RcptTo
		}
		if tm.RcptTo > stats.MaxRcptToTime {
			stats.MaxRcptToTime = tm.RcptTo
		}
	}
	if count > 0 {
		stats.AvgRcptToTime = float64(sum) / float64(count)
	}
	return stats
}

// session holds the read/write state of one probe connection.
type session struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	ctx     context.Context
}

// command sends one SMTP command line and reads the reply.
func (s *session) command(cmd string) (int, string, error) {
	if err := s.setDeadline(); err != nil {
		return 0, "", err
	}
	if _, err := s.conn.Write([]byte(cmd + "\r\n")); err != nil {
		return 0, "", err
	}
	return s.readReply()
}

// readReply reads a complete, possibly multi-line SMTP reply. Lines of a
// multi-line reply carry a '-' after the code; the final line a space.
func (s *session) readReply() (int, string, error) {
	if err := s.setDeadline(); err != nil {
		return 0, "", err
	}

	var lines []string
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return 0, "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("short SMTP reply line")
		}
		lines = append(lines, line)
		// A '-' in the 4th column marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	last := lines[len(lines)-1]
	code, err := strconv.Atoi(last[:3])
	if err != nil {
		return 0, "", fmt.Errorf("malformed SMTP reply code %q", last[:3])
	}

	msg := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(l) > 4 {
			msg = append(msg, l[4:])
		}
	}
	return code, strings.Join(msg, " "), nil
}

// quit is fire-and-forget; the verdict is already in hand.
func (s *session) quit() {
	_ = s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = s.conn.Write([]byte("QUIT\r\n"))
}

// setDeadline applies the per-operation timeout, tightened by the context
// deadline when that is sooner.
func (s *session) setDeadline() error {
	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := s.ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return s.conn.SetDeadline(deadline)
}

func unknown(code int, msg string) types.SmtpResult {
	return types.SmtpResult{Status: types.StatusUnknown, ResponseCode: code, ResponseMessage: msg}
}

func msSince(t time.Time) int64 {
	ms := time.Since(t).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
