package health

import (
	"context"
	"strings"
	"time"
)

// NotificationRequest carries everything the dispatcher's suppression law
// has already decided needs to go out, in the shape the notifier argument
// vector (spec §6) is built from.
type NotificationRequest struct {
	UniqueID     uint64
	AlarmID      uint32
	AlarmEventID uint64
	When         time.Time

	AlarmName   string
	Host        string
	Chart       string
	Family      string
	Units       string
	Info        string
	OldStatus   Status
	NewStatus   Status
	OldValue    float64
	NewValue    float64
	Source      string
	Duration    int64 // seconds the alarm stayed in OldStatus
	NonClearDur int64 // seconds since the alarm last left CLEAR
	ExprSource  string
	ExprError   string
	Recipients  []string

	// WarnCount and CritCount are how many alarms on the host, including
	// this one, are currently warning/critical, for notifier templates that
	// report aggregate host health.
	WarnCount int
	CritCount int
}

// Recipient renders the request's recipients as the single comma-joined
// field the notifier argument vector expects in position one.
func (r NotificationRequest) Recipient() string {
	return strings.Join(r.Recipients, ",")
}

// NotifierResult is what a Notifier invocation reports back for log-entry
// bookkeeping (FlagExecRun / FlagExecFailed).
type NotifierResult struct {
	ExitCode int
	Err      error
}

// Notifier executes the external notification program for a single alarm
// transition. Implementations spawn a subprocess (or call out to a webhook,
// etc.); this package only needs the pass/fail/exit-code outcome.
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest) NotifierResult
}
