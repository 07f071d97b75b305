package health_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

func newTestAlarm(name, chart, host string) *core.Alarm {
	return &core.Alarm{
		ID:      1,
		Name:    name,
		ChartID: chart,
		Host:    host,
		Context: "system.cpu",
		Family:  "cpu",
	}
}

func TestSilencerMatcher_Apply_AllAlarmsDisable(t *testing.T) {
	t.Parallel()
	store := core.NewSilencerStore()
	store.Replace(core.SilenceDisableAlarms, true, nil)

	m := businesshealth.NewSilencerMatcher(0, nil)
	a := newTestAlarm("cpu_usage", "system.cpu", "host1")

	disabled := m.Apply(store, a)

	require.True(t, disabled)
	assert.True(t, a.Flags.Has(core.FlagDisabled))
	assert.False(t, a.Flags.Has(core.FlagSilenced))
}

func TestSilencerMatcher_Apply_SpecificSilencerSilences(t *testing.T) {
	t.Parallel()
	store := core.NewSilencerStore()
	store.Replace(core.SilenceNotifications, false, []core.Silencer{
		{Alarms: "cpu_*", Charts: "", Contexts: "", Hosts: "", Families: ""},
	})

	m := businesshealth.NewSilencerMatcher(0, nil)
	a := newTestAlarm("cpu_usage", "system.cpu", "host1")

	disabled := m.Apply(store, a)

	require.False(t, disabled)
	assert.True(t, a.Flags.Has(core.FlagSilenced))
}

func TestSilencerMatcher_Apply_NoMatchClearsFlags(t *testing.T) {
	t.Parallel()
	store := core.NewSilencerStore()
	store.Replace(core.SilenceNotifications, false, []core.Silencer{
		{Alarms: "mem_*"},
	})

	m := businesshealth.NewSilencerMatcher(0, nil)
	a := newTestAlarm("cpu_usage", "system.cpu", "host1")
	a.Flags = a.Flags.Set(core.FlagSilenced | core.FlagDisabled)

	disabled := m.Apply(store, a)

	assert.False(t, disabled)
	assert.False(t, a.Flags.Has(core.FlagSilenced))
	assert.False(t, a.Flags.Has(core.FlagDisabled))
}

func TestSilencerMatcher_Apply_AllFieldsMustMatch(t *testing.T) {
	t.Parallel()
	store := core.NewSilencerStore()
	store.Replace(core.SilenceDisableAlarms, false, []core.Silencer{
		{Alarms: "cpu_*", Hosts: "host2"},
	})

	m := businesshealth.NewSilencerMatcher(0, nil)
	a := newTestAlarm("cpu_usage", "system.cpu", "host1")

	disabled := m.Apply(store, a)

	assert.False(t, disabled)
}
