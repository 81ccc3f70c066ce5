// Package telemetry provides profiling label helpers built on Go's native
// pprof labels API, so hot service paths can be sliced by operation in
// standard profiling tools.
package telemetry

import (
	"context"
	"maps"
	"runtime/pprof"
	"sort"
)

// Constants for profiling labels.
const (
	// ProfilingLabelController is the label key for the handler/controller name.
	ProfilingLabelController = "controller"
	// ProfilingLabelOperation is the label key for the operation name.
	ProfilingLabelOperation = "operation"
	// ProfilingLabelRegion is the label key for code regions (e.g., "db_query", "bank_file").
	ProfilingLabelRegion = "region"
)

// MaxLabelValueLength is the maximum allowed length for label values
// to prevent high cardinality and memory issues.
const MaxLabelValueLength = 128

// HighCardinalityLabels contains label keys that are filtered out to
// prevent accidentally attaching unbounded values to profiles.
var HighCardinalityLabels = map[string]bool{
	"user_id":     true,
	"request_id":  true,
	"employee_id": true,
	"payment_id":  true,
	"trace_id":    true,
	"span_id":     true,
}

// WithProfilingLabels wraps a function with pprof labels.
// Labels allow slicing and filtering profiling data by operation.
//
// Example usage:
//
//	telemetry.WithProfilingLabels(ctx, map[string]string{
//	    "controller": "PayrollCalculationService",
//	    "operation": "CalculatePeriod",
//	}, func(c context.Context) {
//	    runCalculation(c)
//	})
//
// The labels map is copied internally, so it is safe to modify the original
// map after calling this function.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if len(labels) == 0 {
		fn(ctx)
		return
	}

	labelsCopy := make(map[string]string, len(labels))
	maps.Copy(labelsCopy, labels)

	labelPairs := sanitizeLabels(labelsCopy)
	if len(labelPairs) == 0 {
		fn(ctx)
		return
	}

	pprof.Do(ctx, pprof.Labels(labelPairs...), fn)
}

// OperationLabels builds the standard label set for a service operation.
func OperationLabels(controller, operation string) map[string]string {
	return map[string]string{
		ProfilingLabelController: controller,
		ProfilingLabelOperation:  operation,
	}
}

// sanitizeLabels filters out high-cardinality keys and over-long values,
// returning a deterministic flat key/value slice.
func sanitizeLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		if HighCardinalityLabels[k] {
			continue
		}
		v := labels[k]
		if v == "" || len(v) > MaxLabelValueLength {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, labels[k])
	}
	return pairs
}
