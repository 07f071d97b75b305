package health

import (
	"context"
	"time"
)

// LookupParams describes a single aggregated-value lookup against a chart's
// retained time series, as used by an alarm's "lookup" clause.
type LookupParams struct {
	ChartID string
	// After and Before are offsets in seconds relative to now, mirroring
	// the alarm config's after/before clause (typically negative for
	// After, meaning "that many seconds into the past").
	After  int
	Before int
	// Method is the aggregation method, e.g. "average", "sum", "min",
	// "max" — opaque to this package, interpreted by the implementation.
	Method string
	// Options carry lookup modifiers such as percentage/absolute/unaligned,
	// also opaque here.
	Options []string
}

// LookupResult is the outcome of a single TimeSeriesLookup.Query call.
type LookupResult struct {
	Value float64
	// OK is false when the query could not produce a value (no data in the
	// window, backing store error). The caller distinguishes "no data"
	// (NaN-equivalent) from a hard error via Err.
	OK  bool
	Err error
}

// TimeSeriesLookup is the single-aggregated-value retrieval contract the
// evaluator uses during the lookup phase. A concrete implementation backs
// this with whatever time-series store a deployment uses; this package has
// no opinion on storage.
type TimeSeriesLookup interface {
	Query(ctx context.Context, params LookupParams, now time.Time) LookupResult
}
