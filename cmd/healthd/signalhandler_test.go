package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businesshealth "github.com/vitaliisemenov/healthd/internal/business/health"
	core "github.com/vitaliisemenov/healthd/internal/core/health"
	infrahealth "github.com/vitaliisemenov/healthd/internal/infrastructure/health"
	"github.com/vitaliisemenov/healthd/internal/supervisor"
)

type fakeSilencerLoader struct {
	stype     core.SilenceType
	allAlarms bool
	silencers []core.Silencer
}

func (f fakeSilencerLoader) Load(string) (core.SilenceType, bool, []core.Silencer, error) {
	return f.stype, f.allAlarms, f.silencers, nil
}

func TestSignalHandler_Reload_AppliesSilencersAndHosts(t *testing.T) {
	host := core.NewHost("h1", "host1")
	a := &core.Alarm{ID: 1, DelayUpCurrent: 5 * time.Second, DelayUpToTimestamp: time.Now()}
	require.NoError(t, host.AddAlarm(a))

	log := infrahealth.NewAlarmLog(10)
	loop := supervisor.NewMainLoop(nil)
	loop.Hosts = []*core.Host{host}
	loop.Log = log
	loop.SilencerStore = core.NewSilencerStore()
	loop.Reload = businesshealth.NewReloadCoordinator(
		fakeSilencerLoader{stype: core.SilenceNotifications, allAlarms: true},
		nil,
	)

	h := newSignalHandler(loop, nil)
	h.reload()

	stype, allAlarms, _ := loop.SilencerStore.Snapshot()
	assert.Equal(t, core.SilenceNotifications, stype)
	assert.True(t, allAlarms)
	assert.Zero(t, a.DelayUpCurrent)
	assert.True(t, a.DelayUpToTimestamp.IsZero())
}

func TestSignalHandler_Debounced(t *testing.T) {
	h := newSignalHandler(supervisor.NewMainLoop(nil), nil)
	assert.False(t, h.debounced())

	h.lastReloadTime.Store(time.Now())
	assert.True(t, h.debounced())

	h.lastReloadTime.Store(time.Now().Add(-2 * time.Second))
	assert.False(t, h.debounced())
}
