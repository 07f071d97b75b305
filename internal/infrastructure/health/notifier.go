package health

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	core "github.com/vitaliisemenov/healthd/internal/core/health"
)

// ProcessNotifier invokes an external notification program as a
// subprocess, the way internal/infrastructure/migrations/backup.go shells
// out to pg_dump: exec.CommandContext with an explicit timeout and
// CombinedOutput for error reporting, rather than streaming pipes.
type ProcessNotifier struct {
	// Path is the notifier executable, e.g. the stock
	// notify.sh-equivalent script.
	Path string
	// Timeout bounds a single invocation; zero means no timeout beyond
	// ctx's own deadline.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewProcessNotifier returns a ProcessNotifier invoking path.
func NewProcessNotifier(path string, timeout time.Duration, logger *slog.Logger) *ProcessNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessNotifier{Path: path, Timeout: timeout, Logger: logger}
}

// Notify builds the argument vector described in spec §6 and runs the
// notifier, reporting its exit code and any invocation error.
func (n *ProcessNotifier) Notify(ctx context.Context, req core.NotificationRequest) core.NotifierResult {
	if n.Path == "" {
		return core.NotifierResult{Err: core.ErrNoNotifierConfigured}
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	args := buildArgs(req)
	cmd := exec.CommandContext(ctx, n.Path, args...)

	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		n.Logger.Error("notifier invocation timed out",
			"alarm", req.AlarmName, "host", req.Host)
		return core.NotifierResult{Err: core.ErrNotifierTimeout}
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			n.Logger.Error("notifier invocation failed",
				"alarm", req.AlarmName, "host", req.Host, "error", err, "output", string(output))
			return core.NotifierResult{Err: err}
		}
	}

	n.Logger.Debug("notifier invoked",
		"alarm", req.AlarmName, "host", req.Host,
		"status", req.NewStatus.String(), "exit_code", exitCode)

	return core.NotifierResult{ExitCode: exitCode}
}

// buildArgs renders the notifier argument vector in the fixed order spec
// §6 documents:
//
//	<recipient> <hostname> <unique_id> <alarm_id> <alarm_event_id>
//	<when> <name> <chart|"NOCHART"> <family|"NOFAMILY"> <new_status>
//	<old_status> <new_value> <old_value> <source|"UNKNOWN">
//	<duration> <non_clear_duration> <units> <info>
//	<new_value_string> <old_value_string>
//	<expr_source|"NOSOURCE"> <expr_error|"NOERRMSG"> <n_warn> <n_crit>
//
// (the notifier program itself is argv[0], supplied separately to
// exec.CommandContext, so it is not repeated here).
func buildArgs(req core.NotificationRequest) []string {
	return []string{
		req.Recipient(),
		req.Host,
		strconv.FormatUint(req.UniqueID, 10),
		strconv.FormatUint(uint64(req.AlarmID), 10),
		strconv.FormatUint(req.AlarmEventID, 10),
		strconv.FormatInt(req.When.Unix(), 10),
		req.AlarmName,
		orDefault(req.Chart, "NOCHART"),
		orDefault(req.Family, "NOFAMILY"),
		req.NewStatus.String(),
		req.OldStatus.String(),
		formatFloat(req.NewValue),
		formatFloat(req.OldValue),
		orDefault(req.Source, "UNKNOWN"),
		strconv.FormatInt(req.Duration, 10),
		strconv.FormatInt(req.NonClearDur, 10),
		req.Units,
		req.Info,
		formatValueString(req.NewValue, req.Units),
		formatValueString(req.OldValue, req.Units),
		orDefault(req.ExprSource, "NOSOURCE"),
		orDefault(req.ExprError, "NOERRMSG"),
		strconv.Itoa(req.WarnCount),
		strconv.Itoa(req.CritCount),
	}
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}

// formatValueString renders the formatted-string form of a value (spec §6's
// new_value_string/old_value_string), which carries the units the bare
// numeric fields don't.
func formatValueString(v float64, units string) string {
	s := formatFloat(v)
	if units == "" {
		return s
	}
	return s + " " + units
}

// orDefault returns s, or def when s is empty, for the argv positions spec
// §6 gives a sentinel placeholder to (NOCHART, NOFAMILY, UNKNOWN, NOSOURCE,
// NOERRMSG).
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
