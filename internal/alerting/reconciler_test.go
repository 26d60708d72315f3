package alerting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_ServerWinsOnSharedID(t *testing.T) {
	ts := time.Now()
	server := []Alert{{ID: "a1", RuleID: "r1", Timestamp: ts, Read: true}}
	local := []Alert{{ID: "a1", RuleID: "r1", Timestamp: ts, Read: false}}

	merged := Merge(server, local, DefaultMaxAlerts)

	require.Len(t, merged, 1)
	assert.True(t, merged[0].Read, "server read state must win")
}

func TestMerge_LocalOnlyAlertsRetained(t *testing.T) {
	ts := time.Now()
	server := []Alert{{ID: "a1", Timestamp: ts}}
	local := []Alert{{ID: "a2", Timestamp: ts.Add(time.Second)}}

	merged := Merge(server, local, DefaultMaxAlerts)

	require.Len(t, merged, 2)
	assert.Equal(t, "a2", merged[0].ID, "newer local alert sorts first")
	assert.Equal(t, "a1", merged[1].ID)
}

func TestMerge_Idempotent(t *testing.T) {
	base := time.Now()
	var server, local []Alert
	for i := 0; i < 10; i++ {
		server = append(server, Alert{ID: fmt.Sprintf("s%d", i), Timestamp: base.Add(time.Duration(i) * time.Second)})
		local = append(local, Alert{ID: fmt.Sprintf("l%d", i), Timestamp: base.Add(time.Duration(i) * time.Millisecond)})
	}

	first := Merge(server, local, DefaultMaxAlerts)
	second := Merge(server, local, DefaultMaxAlerts)
	again := Merge(server, first, DefaultMaxAlerts)

	assert.Equal(t, first, second)
	assert.Equal(t, first, again, "re-merging the merged collection changes nothing")
}

func TestMerge_TruncatesToMostRecent(t *testing.T) {
	base := time.Now()
	var local []Alert
	for i := 0; i < 60; i++ {
		local = append(local, Alert{
			ID:        fmt.Sprintf("a%02d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	merged := Merge(nil, local, 50)

	require.Len(t, merged, 50)
	assert.Equal(t, "a59", merged[0].ID, "newest first")
	assert.Equal(t, "a10", merged[49].ID, "ten oldest evicted")
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Timestamp.After(merged[i-1].Timestamp),
			"collection must be ordered most-recent-first")
	}
}

func TestMerge_DeterministicTiebreak(t *testing.T) {
	ts := time.Now()
	alerts := []Alert{
		{ID: "b", Timestamp: ts},
		{ID: "a", Timestamp: ts},
		{ID: "c", Timestamp: ts},
	}

	merged := Merge(nil, alerts, DefaultMaxAlerts)

	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, "c", merged[2].ID)
}

func TestMerge_ZeroCapFallsBackToDefault(t *testing.T) {
	base := time.Now()
	var local []Alert
	for i := 0; i < DefaultMaxAlerts+10; i++ {
		local = append(local, Alert{ID: fmt.Sprintf("a%d", i), Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	merged := Merge(nil, local, 0)
	assert.Len(t, merged, DefaultMaxAlerts)
}

func TestRemove_DropsMatchingAlert(t *testing.T) {
	c := AlertCollection{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	out := Remove(c, "a2")
	require.Len(t, out, 2)
	assert.Equal(t, "a1", out[0].ID)
	assert.Equal(t, "a3", out[1].ID)
	assert.Len(t, c, 3, "input collection untouched")
}

func TestRemove_UnknownIDIsNoOp(t *testing.T) {
	c := AlertCollection{{ID: "a1"}}
	out := Remove(c, "missing")
	assert.Equal(t, c, out)
}

func TestMarkRead_FlagsOnlyMatch(t *testing.T) {
	c := AlertCollection{{ID: "a1"}, {ID: "a2"}}
	out := MarkRead(c, "a2")

	assert.False(t, out[0].Read)
	assert.True(t, out[1].Read)
	assert.False(t, c[1].Read, "input collection untouched")
}

func TestUnreadCount_Derived(t *testing.T) {
	c := AlertCollection{{ID: "a1"}, {ID: "a2", Read: true}, {ID: "a3"}}
	assert.Equal(t, 2, c.UnreadCount())
	assert.Equal(t, 1, MarkRead(c, "a1").UnreadCount())
	assert.Equal(t, 0, AlertCollection{}.UnreadCount())
}
