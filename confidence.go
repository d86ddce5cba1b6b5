package codeshift

// ConfidenceTracker keeps running statistics of how often the rule-based
// result was good enough to be final.
//
// It is not safe for concurrent use; the Engine serializes access.
type ConfidenceTracker struct {
	stats Stats
}

// NewConfidenceTracker returns a tracker at the initial prior.
func NewConfidenceTracker() *ConfidenceTracker {
	return &ConfidenceTracker{stats: Stats{CurrentConfidence: InitialConfidence}}
}

// RecordOutcome records one conversion. usedRuleAsFinal is true when the
// rule-based result was returned (trusted, verified or fallback) and false
// when the model result replaced it.
func (c *ConfidenceTracker) RecordOutcome(usedRuleAsFinal bool) {
	c.stats.TotalConversions++
	if usedRuleAsFinal {
		c.stats.ManualSuccesses++
	} else {
		c.stats.AICorrections++
	}
	c.recompute()
}

func (c *ConfidenceTracker) recompute() {
	if c.stats.TotalConversions > 0 {
		c.stats.CurrentConfidence = float64(c.stats.ManualSuccesses) / float64(c.stats.TotalConversions)
	}
}

// Confidence returns the current confidence in [0, 1].
func (c *ConfidenceTracker) Confidence() float64 {
	return c.stats.CurrentConfidence
}

// Snapshot returns a copy of the current statistics.
func (c *ConfidenceTracker) Snapshot() Stats {
	return c.stats
}

// Restore loads persisted statistics. Negative counters are clamped to zero
// and the confidence is recomputed from the counters, so a corrupted blob
// can never push it outside [0, 1].
func (c *ConfidenceTracker) Restore(s Stats) {
	c.stats = Stats{
		TotalConversions:  max(s.TotalConversions, 0),
		ManualSuccesses:   max(s.ManualSuccesses, 0),
		AICorrections:     max(s.AICorrections, 0),
		CurrentConfidence: InitialConfidence,
	}
	if c.stats.ManualSuccesses > c.stats.TotalConversions {
		c.stats.ManualSuccesses = c.stats.TotalConversions
	}
	c.recompute()
}

// Reset returns the tracker to the initial prior.
func (c *ConfidenceTracker) Reset() {
	c.stats = Stats{CurrentConfidence: InitialConfidence}
}
