package health_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
)

func TestAlarmLog_Append_AssignsMonotonicUniqueIDs(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(0)

	a := &core.Alarm{ID: 1, Name: "cpu_usage"}
	e1 := log.Append(a, time.Now(), 0, 0, 0)
	e2 := log.Append(a, time.Now(), 0, 0, 0)

	assert.Less(t, e1.UniqueID, e2.UniqueID)
	assert.Equal(t, uint64(1), e1.AlarmEventID)
	assert.Equal(t, uint64(2), e2.AlarmEventID)
}

func TestAlarmLog_Append_EvictsOnlyWhenOverMax(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(100)

	a := &core.Alarm{ID: 1}
	for i := 0; i < 150; i++ {
		log.Append(a, time.Now(), 0, 0, 0)
	}

	// Scenario 6: once the log exceeds its max, it evicts in a batch down
	// to floor(2*max/3), not back down to max on every append.
	require.Equal(t, 66, log.Len())
}

func TestAlarmLog_Append_DoesNotEvictAtOrUnderMax(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(2)

	a := &core.Alarm{ID: 1}
	log.Append(a, time.Now(), 0, 0, 0)
	log.Append(a, time.Now(), 0, 0, 0)

	require.Equal(t, 2, log.Len())
}

func TestAlarmLog_LastExecRun(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(0)

	a := &core.Alarm{ID: 7}
	e1 := log.Append(a, time.Now(), 0, 0, 0)
	e1.Flags = e1.Flags.Set(core.FlagExecRun)
	log.Append(a, time.Now(), 0, 0, 0) // no exec-run flag

	last, found := log.LastExecRun(7)
	require.True(t, found)
	assert.Equal(t, e1.UniqueID, last.UniqueID)

	_, found = log.LastExecRun(99)
	assert.False(t, found)
}

func TestAlarmLog_Since(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(0)

	a := &core.Alarm{ID: 1}
	e1 := log.Append(a, time.Now(), 0, 0, 0)
	e2 := log.Append(a, time.Now(), 0, 0, 0)

	entries := log.Since(e1.UniqueID)
	require.Len(t, entries, 1)
	assert.Equal(t, e2.UniqueID, entries[0].UniqueID)
}

func TestAlarmLog_MarkUpdated(t *testing.T) {
	t.Parallel()
	log := infrahealth.NewAlarmLog(0)

	a := &core.Alarm{ID: 1}
	e := log.Append(a, time.Now(), 0, 0, 0)

	log.MarkUpdated()
	assert.True(t, e.Flags.Has(core.FlagUpdated))
}
