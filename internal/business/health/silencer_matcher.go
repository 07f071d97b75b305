// Package health implements the evaluation engine's business logic:
// runnability, lookup/calc, status transitions with hysteresis, the
// silencer matcher, the notification dispatcher, suspension detection, and
// reload coordination. It depends only on internal/core/health's domain
// types and the collaborator interfaces declared there.
package health

import (
	"log/slog"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
	"github.com/vitaliisemenov/healthd/internal/business/health/globmatch"
)

// SilencerMatcher re-evaluates the disabled/silenced flags on an alarm
// against the current silencer store, mirroring original_source's
// update_disabled_silenced: it clears both flags first, then either
// applies the store's mode directly (when AllAlarms is set) or walks the
// silencer list looking for one whose five glob fields all match.
type SilencerMatcher struct {
	cache  *globmatch.Cache
	logger *slog.Logger
}

// NewSilencerMatcher returns a matcher backed by its own compiled-glob
// cache. logger may be nil, in which case slog.Default() is used.
func NewSilencerMatcher(cacheSize int, logger *slog.Logger) *SilencerMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SilencerMatcher{
		cache:  globmatch.NewCache(cacheSize),
		logger: logger,
	}
}

// Apply re-evaluates a against the store and returns whether a is now
// disabled (and therefore must be skipped by the runnability predicate).
// It logs only when the disabled/silenced flags actually changed, matching
// original_source's single info() call per flip.
func (m *SilencerMatcher) Apply(store *core.SilencerStore, a *core.Alarm) bool {
	before := a.Flags

	a.Flags = a.Flags.Clear(core.FlagDisabled | core.FlagSilenced)

	stype, allAlarms, silencers := store.Snapshot()

	switch {
	case allAlarms:
		a.Flags = m.applyType(a.Flags, stype)
	default:
		for _, s := range silencers {
			if m.matches(s, a) {
				a.Flags = m.applyType(a.Flags, stype)
				break
			}
		}
	}

	if a.Flags != before {
		m.logger.Info("alarm silence state changed",
			"alarm", a.Name,
			"host", a.Host,
			"disabled", a.Flags.Has(core.FlagDisabled),
			"silenced", a.Flags.Has(core.FlagSilenced))
	}

	return a.Flags.Has(core.FlagDisabled)
}

func (m *SilencerMatcher) applyType(flags core.Flags, stype core.SilenceType) core.Flags {
	switch stype {
	case core.SilenceDisableAlarms:
		return flags.Set(core.FlagDisabled)
	case core.SilenceNotifications:
		return flags.Set(core.FlagSilenced)
	default:
		return flags
	}
}

func (m *SilencerMatcher) matches(s core.Silencer, a *core.Alarm) bool {
	return m.cache.Match(s.Alarms, a.Name) &&
		m.cache.Match(s.Charts, a.ChartID) &&
		m.cache.Match(s.Contexts, a.Context) &&
		m.cache.Match(s.Hosts, a.Host) &&
		m.cache.Match(s.Families, a.Family)
}
