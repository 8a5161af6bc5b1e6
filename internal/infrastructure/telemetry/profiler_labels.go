package telemetry

import (
	"context"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Well-known profiling label keys. Keep these low cardinality: Pyroscope
// stores one profile series per label combination.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelTenantID   = "tenant_id"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelRegion     = "region"
)

// MaxLabelValueLength caps label values before they reach the profiler
const MaxLabelValueLength = 128

// HighCardinalityLabels lists keys that must never become profiling labels.
// Per-request and per-entity identifiers would explode the series count.
// tenant_id stays allowed; the tenant population is bounded.
var HighCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"order_id":   true,
	"trace_id":   true,
	"span_id":    true,
	"session_id": true,
}

// WithProfilingLabels runs fn with the given labels attached to the
// Pyroscope profiling context. Labels are sanitized first; with nothing
// left after sanitization, fn runs without a tag wrapper.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	flat := sanitizeLabels(labels)
	if len(flat) == 0 {
		fn(ctx)
		return
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(flat...), fn)
}

// WithPprofLabels is the runtime/pprof equivalent of WithProfilingLabels,
// for code paths profiled with standard Go tooling instead of the
// Pyroscope SDK. Both APIs produce the same label behavior.
func WithPprofLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	flat := sanitizeLabels(labels)
	if len(flat) == 0 {
		fn(ctx)
		return
	}

	pprof.Do(ctx, pprof.Labels(flat...), fn)
}

// sanitizeLabels flattens a label map into the alternating key/value slice
// the profiler APIs take. Empty keys and values are dropped, high-cardinality
// keys are skipped silently (this runs on hot paths), values are truncated,
// and keys come out sorted so label sets are deterministic.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flat := make([]string, 0, len(labels)*2)
	for _, k := range keys {
		v := labels[k]
		if k == "" || v == "" || HighCardinalityLabels[k] {
			continue
		}

		key := sanitizeLabelKey(k)
		if key == "" {
			continue
		}

		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}

		flat = append(flat, key, v)
	}
	return flat
}

// sanitizeLabelKey normalizes a key to snake_case: lowercased, spaces and
// dashes become underscores, anything else non-alphanumeric is dropped
func sanitizeLabelKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case c == ' ' || c == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ProfilingScope accumulates labels fluently before running a profiled
// section. It copies the initial map, so later mutation of the original
// does not leak in. Not safe for concurrent use.
type ProfilingScope struct {
	labels map[string]string
}

// NewProfilingScope creates a scope seeded with a copy of initial
func NewProfilingScope(initial map[string]string) *ProfilingScope {
	labels := make(map[string]string, len(initial)+4)
	for k, v := range initial {
		labels[k] = v
	}
	return &ProfilingScope{labels: labels}
}

// WithLabel sets an arbitrary label
func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

// WithController sets the controller label
func (s *ProfilingScope) WithController(controller string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelController, controller)
}

// WithRoute sets the route label
func (s *ProfilingScope) WithRoute(route string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRoute, route)
}

// WithMethod sets the HTTP method label
func (s *ProfilingScope) WithMethod(method string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelMethod, method)
}

// WithTenantID sets the tenant label
func (s *ProfilingScope) WithTenantID(tenantID string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelTenantID, tenantID)
}

// WithOperation sets the operation label
func (s *ProfilingScope) WithOperation(operation string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelOperation, operation)
}

// WithRegion sets the region label marking a sub-section of work, for
// example "db_query" or "shopify_api"
func (s *ProfilingScope) WithRegion(region string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRegion, region)
}

// Labels returns a copy of the accumulated labels
func (s *ProfilingScope) Labels() map[string]string {
	out := make(map[string]string, len(s.labels))
	for k, v := range s.labels {
		out[k] = v
	}
	return out
}

// Run executes fn under the scope's labels
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// HTTPRequestLabels builds the standard label set for an HTTP request.
// Empty fields are omitted.
func HTTPRequestLabels(controller, route, method, tenantID string) map[string]string {
	labels := make(map[string]string, 4)
	if controller != "" {
		labels[ProfilingLabelController] = controller
	}
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	if tenantID != "" {
		labels[ProfilingLabelTenantID] = tenantID
	}
	return labels
}

// OperationLabels builds labels for a named operation plus any extras
func OperationLabels(operation string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelOperation] = operation
	return labels
}

// RegionLabels builds labels for a profiled region plus any extras
func RegionLabels(region string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelRegion] = region
	return labels
}
