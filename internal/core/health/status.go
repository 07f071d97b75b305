// Package health holds the domain types for the health evaluation engine:
// alarms, alarm-log entries, hosts, silencers, and the external-collaborator
// contracts (time-series lookup, expression evaluation, notifier execution).
package health

// Status is the runtime state of an alarm instance.
//
// Ordering matters: the dispatcher treats every value below StatusClear as
// an internal status, and hysteresis decides "is this a raise" with Higher,
// which ranks clear < warning < critical and puts Undefined, Uninitialized
// and Removed below Clear.
type Status int

const (
	StatusUndefined Status = iota
	StatusUninitialized
	StatusRemoved
	StatusClear
	StatusWarning
	StatusCritical
)

// String renders the status the way the notifier argument vector and logs expect.
func (s Status) String() string {
	switch s {
	case StatusUndefined:
		return "UNDEFINED"
	case StatusUninitialized:
		return "UNINITIALIZED"
	case StatusRemoved:
		return "REMOVED"
	case StatusClear:
		return "CLEAR"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Higher reports whether s represents a more severe state than other, using
// the clear < warning < critical ordering from spec §4.4. Undefined is
// treated as the lowest rank.
func (s Status) Higher(other Status) bool {
	return rank(s) > rank(other)
}

func rank(s Status) int {
	switch s {
	case StatusClear:
		return 1
	case StatusWarning:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// SilenceType is the effect a silencer (or the global silencer-store mode)
// applies to a matching alarm.
type SilenceType int

const (
	// SilenceNone has no effect; a silencer matched but no mode was set.
	SilenceNone SilenceType = iota
	// SilenceNotifications suppresses the dispatcher's notifier invocation
	// but the alarm is still evaluated and logged.
	SilenceNotifications
	// SilenceDisableAlarms prevents the alarm from being evaluated at all.
	SilenceDisableAlarms
)

func (t SilenceType) String() string {
	switch t {
	case SilenceNotifications:
		return "SILENCE"
	case SilenceDisableAlarms:
		return "DISABLE"
	default:
		return "NONE"
	}
}
