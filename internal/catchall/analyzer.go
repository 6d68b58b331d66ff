// Package catchall disambiguates real mailboxes from catch-all
// acceptance. A catch-all server says 2xx to anything, so the RCPT
// answer alone is worthless; instead we fuse the timing difference
// between a real and a synthetically invalid recipient with how much the
// local part looks like a person.
package catchall

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/optimode/mailprobe/internal/static"
	"github.com/optimode/mailprobe/types"
)

// SyntheticLocal builds the deliberately-invalid local part probed to
// detect catch-all behavior. The prefix makes a collision with a real
// mailbox vanishingly unlikely.
func SyntheticLocal(local string) string {
	return "x9x0" + local
}

// localPattern scores how strongly a local part resembles a personal
// address convention. First match wins; higher-scoring patterns first.
type localPattern struct {
	re    *regexp.Regexp
	score float64
	name  string
}

var localPatterns = []localPattern{
	{regexp.MustCompile(`^[a-z]+\.[a-z]+$`), 0.90, "first.last"},
	{regexp.MustCompile(`^[a-z]+\.[a-z]\.[a-z]+$`), 0.90, "first.m.last"},
	{regexp.MustCompile(`^[a-z]+_[a-z]+$`), 0.85, "first_last"},
	{regexp.MustCompile(`^[a-z]+-[a-z]+$`), 0.85, "first-last"},
	{regexp.MustCompile(`^[a-z]{4,}[a-z]{3,}$`), 0.70, "firstlast"},
	{regexp.MustCompile(`^[a-z][a-z]{3,}$`), 0.60, "flast"},
	{regexp.MustCompile(`^[a-z]{3,}[a-z]$`), 0.50, "firstl"},
}

var (
	singleWordRe = regexp.MustCompile(`^[a-z]{3,12}$`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	alphaRe      = regexp.MustCompile(`^[a-z]+$`)
	oddCharRe    = regexp.MustCompile(`[^a-z._-]`)
)

// PatternScore rates the local part against common personal-address
// conventions, returning the score and the matched pattern name.
func PatternScore(local string) (float64, string) {
	local = strings.ToLower(strings.TrimSpace(local))
	if local == "" {
		return 0, ""
	}

	for _, p := range localPatterns {
		if p.re.MatchString(local) {
			return p.score, p.name
		}
	}

	for _, token := range splitSeparators(local) {
		if static.IsFirstName(token) {
			return 0.60, "contains_name"
		}
	}
	if singleWordRe.MatchString(local) {
		return 0.40, "single_word"
	}
	if digitRe.MatchString(local) {
		return 0.20, "contains_numbers"
	}
	return 0.30, "unknown"
}

// NameScore rates how person-like the local part is, independently of
// punctuation convention.
func NameScore(local string) float64 {
	local = strings.ToLower(strings.TrimSpace(local))
	if local == "" {
		return 0
	}

	parts := splitSeparators(local)
	if len(parts) >= 2 && looksLikeNameToken(parts[0]) && looksLikeNameToken(parts[1]) {
		if static.IsFirstName(parts[0]) {
			return 0.95
		}
		return 0.75
	}
	if static.IsFirstName(local) {
		return 0.70
	}
	if singleWordRe.MatchString(local) {
		return 0.50
	}
	if digitRe.MatchString(local) || oddCharRe.MatchString(local) {
		return 0.20
	}
	return 0.30
}

func looksLikeNameToken(token string) bool {
	return len(token) >= 2 && len(token) <= 15 && alphaRe.MatchString(token)
}

// AnalyzeTiming compares the mean RCPT TO latency of the real and
// synthetic recipients. The spread is expressed as a z-score against an
// estimated deviation of max(30% of the synthetic mean, 30ms); wider
// separation means the server is actually looking the mailbox up.
func AnalyzeTiming(realAvg, fakeAvg float64) types.TimingAnalysis {
	if realAvg <= 0 || fakeAvg <= 0 {
		return types.TimingAnalysis{Confidence: 0.50, Reason: "insufficient timing data"}
	}

	sigma := math.Max(0.3*fakeAvg, 30)
	z := math.Abs(realAvg-fakeAvg) / sigma

	a := types.TimingAnalysis{ZScore: z}
	switch {
	case z > 5:
		a.Confidence = 0.85
		a.Reason = fmt.Sprintf("very strong timing separation (z=%.1f)", z)
	case z > 3:
		a.Confidence = 0.75
		a.Reason = fmt.Sprintf("strong timing separation (z=%.1f)", z)
	case z > 2:
		a.Confidence = 0.65
		a.Reason = fmt.Sprintf("moderate timing separation (z=%.1f)", z)
	default:
		a.Confidence = 0.50
		a.Reason = fmt.Sprintf("no meaningful timing separation (z=%.1f)", z)
	}
	return a
}

// PatternPenalty is the deduction applied to a catch-all confidence when
// the local part does not look like a person. A strong name score softens
// the middle bands.
func PatternPenalty(patternScore, nameScore float64) float64 {
	switch {
	case patternScore >= 0.70:
		return 0
	case patternScore >= 0.50:
		if nameScore >= 0.70 {
			return 0
		}
		return -0.05
	case patternScore >= 0.30:
		if nameScore >= 0.70 {
			return -0.10
		}
		return -0.15
	default:
		return -0.25
	}
}

// Input is everything the analyzer needs from the orchestrator.
type Input struct {
	Local         string
	IsCatchAll    bool
	RealAvgRcptTo float64
	FakeAvgRcptTo float64
	MxCount       int
	HasSPF        bool
	HasDMARC      bool
}

// Analyze computes the full signal set for a recipient.
func Analyze(in Input) types.CatchAllSignals {
	patternScore, patternName := PatternScore(in.Local)
	timing := AnalyzeTiming(in.RealAvgRcptTo, in.FakeAvgRcptTo)

	return types.CatchAllSignals{
		PatternMatch:   patternScore,
		PatternName:    patternName,
		NameScore:      NameScore(in.Local),
		TimingScore:    timing.Confidence,
		ZScore:         timing.ZScore,
		HasSPF:         in.HasSPF,
		HasDMARC:       in.HasDMARC,
		MxCount:        in.MxCount,
		TimingAnalysis: &timing,
	}
}

// Confidence assembles the authoritative catch-all confidence: the
// timing band as the base, minus the pattern penalty, clamped to
// [0, 0.85]. A catch-all can never reach the non-catch-all 0.95.
func Confidence(s types.CatchAllSignals) float64 {
	conf := s.TimingScore + PatternPenalty(s.PatternMatch, s.NameScore)
	return math.Max(0, math.Min(0.85, conf))
}

func splitSeparators(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
}
