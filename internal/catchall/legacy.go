package catchall

import "math"

// Weighted-sum weights for the alternate scorer.
const (
	weightTiming  = 0.40
	weightPattern = 0.25
	weightName    = 0.20
	weightSPF     = 0.05
	weightDMARC   = 0.05
	weightMX      = 0.05
)

// WeightedConfidence is the older weighted-sum catch-all scorer, kept as
// an alternate entry point for callers that want all signals folded into
// one number. It never drives the public confidence; Confidence does.
func WeightedConfidence(in Input) float64 {
	patternScore, _ := PatternScore(in.Local)
	nameScore := NameScore(in.Local)
	timing := AnalyzeTiming(in.RealAvgRcptTo, in.FakeAvgRcptTo)

	score := weightTiming*timing.Confidence +
		weightPattern*patternScore +
		weightName*nameScore

	if in.HasSPF {
		score += weightSPF
	}
	if in.HasDMARC {
		score += weightDMARC
	}
	mx := float64(in.MxCount)
	if mx > 3 {
		mx = 3
	}
	score += weightMX * mx / 3

	return math.Max(0, math.Min(1, score))
}
