package health

import "time"

// AlarmLogEntry is one append-only record of an alarm's status transition
// (spec §4.6). UniqueID is monotonically increasing across the whole log;
// AlarmEventID counts how many times this particular AlarmID has appeared
// in the log (its "incarnation") and is passed to the notifier; the
// dispatcher's suppression check finds the alarm's prior entries by
// AlarmID, not by AlarmEventID.
type AlarmLogEntry struct {
	UniqueID     uint64
	AlarmID      uint32
	AlarmEventID uint64

	Name    string
	ChartID string
	Host    string
	Family  string
	Context string
	Units   string
	Info    string

	OldStatus Status
	NewStatus Status
	OldValue  float64
	NewValue  float64

	When             time.Time
	Duration         time.Duration
	NonClearDuration time.Duration

	// Delay is the notification delay computed for this transition
	// (spec §4.4's delay_last); DelayUpToTimestamp is when that delay
	// expires and the dispatch scan may act on this entry (spec §4.6/§4.7).
	Delay              time.Duration
	DelayUpToTimestamp time.Time

	ExprSource string
	ExprError  string

	ExecRunTimestamp time.Time
	ExecCode         int

	Flags Flags
}

// NewAlarmLogEntry builds an entry from an alarm's current transition
// state at the moment it is appended to the log. It captures the alarm's
// silenced flag as it stands right now, the way health_create_alarm_entry
// folds RRDCALC_FLAG_SILENCED into the entry's own flags at creation —
// later changes to the alarm's live flags must not retroactively alter an
// already-logged entry's suppression.
func NewAlarmLogEntry(a *Alarm, uniqueID uint64, eventID uint64, when time.Time) *AlarmLogEntry {
	var flags Flags
	if a.Flags.Has(FlagSilenced) {
		flags = flags.Set(FlagSilenced)
	}
	return &AlarmLogEntry{
		UniqueID:     uniqueID,
		AlarmID:      a.ID,
		AlarmEventID: eventID,
		Name:         a.Name,
		ChartID:      a.ChartID,
		Host:         a.Host,
		Family:       a.Family,
		Context:      a.Context,
		Units:        a.Units,
		Info:         a.Info,
		OldStatus:    a.OldStatus,
		NewStatus:    a.Status,
		OldValue:     a.OldValue,
		NewValue:     a.Value,
		When:         when,
		Flags:        flags,
	}
}

// HasFlag reports whether the entry's flags include all of want.
func (e *AlarmLogEntry) HasFlag(want Flags) bool {
	return e.Flags.Has(want)
}
