package alerting

import "time"

// FilterCooldown suppresses candidates whose rule already produced an
// alert within the cooldown window. This is what keeps a persistently-true
// condition (engagement stuck below threshold, say) from flooding the
// collection on every tick. Suppression is silent: no error, no retry.
//
// A cooldown of zero or less disables suppression entirely.
//
// The window is measured against wall-clock timestamps, so a system clock
// jump (sleep/resume) can cause premature re-firing or missed suppression.
// Accepted limitation; see the monotonic-clock note in DESIGN.md.
func FilterCooldown(candidates []Alert, existing AlertCollection, cooldown time.Duration) []Alert {
	if cooldown <= 0 || len(candidates) == 0 {
		return candidates
	}

	// Latest prior firing per rule.
	lastFired := make(map[string]time.Time, len(existing))
	for i := range existing {
		a := &existing[i]
		if prev, ok := lastFired[a.RuleID]; !ok || a.Timestamp.After(prev) {
			lastFired[a.RuleID] = a.Timestamp
		}
	}

	out := candidates[:0:0]
	for i := range candidates {
		c := &candidates[i]
		if prev, ok := lastFired[c.RuleID]; ok {
			delta := c.Timestamp.Sub(prev)
			if delta < 0 {
				delta = -delta
			}
			if delta < cooldown {
				continue
			}
		}
		out = append(out, *c)
	}
	return out
}
