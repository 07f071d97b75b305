// Package health provides the infrastructure-layer collaborators for the
// evaluation engine: the bounded alarm log, the subprocess notifier, and
// the silencer file loader. It depends only on internal/core/health's
// domain types, never on internal/business/health, so the business layer
// can depend on it without a cycle.
package health

import (
	"sync"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// AlarmLog is the bounded, append-only alarm transition log (spec §4.6).
// Entries are appended in unique_id order and evicted from the oldest end
// once the log exceeds its configured maximum.
//
// original_source's health_alarm_log_process evicts old entries with a
// loop that, for non-repeating entries, both decrements the live count and
// frees the node twice — a documented double-free/double-decrement bug.
// This implementation evicts by re-slicing the oldest entries off in a
// single step; there is no manual free to double up on, and the
// remaining-count bookkeeping is simply len(entries), which cannot drift.
type AlarmLog struct {
	mu sync.RWMutex

	entries []*core.AlarmLogEntry
	max     int

	nextUniqueID uint64
	eventCounts  map[uint32]uint64
}

// NewAlarmLog returns an empty log bounded to at most max entries. max<=0
// means unbounded.
func NewAlarmLog(max int) *AlarmLog {
	return &AlarmLog{
		max:         max,
		eventCounts: make(map[uint32]uint64),
	}
}

// Append records a's current transition as a new log entry and returns it.
// duration is how long the alarm held its previous status; nonClearDur is
// how long it has been continuously non-clear (zero once it clears); delay
// is the notification delay the hysteresis engine computed for this
// transition (spec §4.4) — the entry records its own expiry,
// DelayUpToTimestamp, which the dispatch scan gates on (spec §4.6/§4.7).
func (l *AlarmLog) Append(a *core.Alarm, when time.Time, duration, nonClearDur, delay time.Duration) *core.AlarmLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextUniqueID++
	l.eventCounts[a.ID]++

	entry := core.NewAlarmLogEntry(a, l.nextUniqueID, l.eventCounts[a.ID], when)
	entry.Duration = duration
	entry.NonClearDuration = nonClearDur
	entry.Delay = delay
	entry.DelayUpToTimestamp = when.Add(delay)

	l.entries = append(l.entries, entry)
	l.evict()

	return entry
}

// AppendEphemeral records a repeating-alarm notification (spec §5) without
// linking it into the main log: it gets a unique ID for dispatcher
// bookkeeping but is not retained or subject to eviction, mirroring
// original_source's repeating-alarm path which dispatches an ad hoc entry
// and frees it immediately after.
func (l *AlarmLog) AppendEphemeral(a *core.Alarm, when time.Time) *core.AlarmLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextUniqueID++
	entry := core.NewAlarmLogEntry(a, l.nextUniqueID, l.eventCounts[a.ID], when)
	return entry
}

// evict trims the log only once it exceeds max, batching down to the
// most-recent floor(2*max/3) entries (spec §4.6) rather than trimming to
// exactly max on every append.
func (l *AlarmLog) evict() {
	if l.max <= 0 || len(l.entries) <= l.max {
		return
	}
	keep := (2 * l.max) / 3
	if keep < 0 {
		keep = 0
	}
	l.entries = l.entries[len(l.entries)-keep:]
}

// LastExecRun implements businesshealth.AlarmLogStore: the most recent
// entry for alarmID that actually ran the notifier, scanning from the
// newest entry backward.
func (l *AlarmLog) LastExecRun(alarmID uint32) (*core.AlarmLogEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.AlarmID == alarmID && e.Flags.Has(core.FlagExecRun) {
			return e, true
		}
	}
	return nil, false
}

// Len returns the current number of retained entries.
func (l *AlarmLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Since returns every retained entry with UniqueID > cursor, in ascending
// order, for the dispatch scan (spec §4.6/§4.7): the supervisor walks
// forward from its last processed unique_id each tick.
func (l *AlarmLog) Since(cursor uint64) []*core.AlarmLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*core.AlarmLogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.UniqueID > cursor {
			out = append(out, e)
		}
	}
	return out
}

// MarkUpdated sets FlagUpdated on every retained, non-removed entry, used
// by the reload coordinator so the dispatch scan does not notify entries
// logged before a configuration change (original_source's
// health_reload_host).
func (l *AlarmLog) MarkUpdated() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.NewStatus != core.StatusRemoved {
			e.Flags = e.Flags.Set(core.FlagUpdated)
		}
	}
}
