package alerting

import "sort"

// Merge reconciles server-known and locally generated alerts into one
// ordered, deduplicated, size-bounded collection. Alerts are unique by ID;
// when both sides carry the same ID the server version wins outright,
// including its read state — the server is authoritative once it has
// observed an alert. Local alerts the server has not seen yet are
// retained so locally detected conditions surface before the backend
// catches up.
//
// The result is sorted most-recent-first (ID as a deterministic tiebreak)
// and truncated to maxAlerts. Merge is idempotent and commutative across
// repeated applications of the same inputs.
func Merge(serverAlerts, localAlerts []Alert, maxAlerts int) AlertCollection {
	if maxAlerts <= 0 {
		maxAlerts = DefaultMaxAlerts
	}

	byID := make(map[string]Alert, len(serverAlerts)+len(localAlerts))
	for i := range localAlerts {
		byID[localAlerts[i].ID] = localAlerts[i]
	}
	for i := range serverAlerts {
		byID[serverAlerts[i].ID] = serverAlerts[i]
	}

	merged := make(AlertCollection, 0, len(byID))
	for _, a := range byID {
		merged = append(merged, a)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].ID < merged[j].ID
	})

	if len(merged) > maxAlerts {
		merged = merged[:maxAlerts]
	}
	return merged
}

// Remove returns a collection without the matching alert. Removing an
// unknown ID yields an equivalent collection; it is an idempotent no-op,
// since another tab may have deleted the alert first. Removal is
// client-side only — propagating deletions to the backend is a
// collaborator's responsibility.
func Remove(c AlertCollection, alertID string) AlertCollection {
	out := make(AlertCollection, 0, len(c))
	for i := range c {
		if c[i].ID == alertID {
			continue
		}
		out = append(out, c[i])
	}
	return out
}

// MarkRead returns a collection with the matching alert flagged read.
// Unknown IDs are a no-op.
func MarkRead(c AlertCollection, alertID string) AlertCollection {
	out := make(AlertCollection, len(c))
	copy(out, c)
	for i := range out {
		if out[i].ID == alertID {
			out[i].Read = true
			break
		}
	}
	return out
}
