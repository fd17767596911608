package aw

import (
	"fmt"
	"strings"
)

// Query builders compose programs in the server's query language. The
// emitted text is an external contract: the statement set and the
// `;`-separated multi-statement form must stay compatible with the
// server's transform primitives (query_bucket, filter_keyvals,
// filter_period_intersect, merge_events_by_keys, sort_by_duration,
// sort_by_timestamp).

func program(statements ...string) string {
	return strings.Join(statements, "; ") + ";"
}

// WorkMetricsQuery returns per-app work totals: window events
// intersected with not-afk periods, merged by app, longest first.
func WorkMetricsQuery(windowBucket, afkBucket string) string {
	return program(
		fmt.Sprintf("window_events = query_bucket('%s')", windowBucket),
		fmt.Sprintf("not_afk = query_bucket('%s')", afkBucket),
		"not_afk = filter_keyvals(not_afk, 'status', ['not-afk'])",
		"window_events = filter_period_intersect(window_events, not_afk)",
		"merged_events = merge_events_by_keys(window_events, ['app'])",
		"merged_events = sort_by_duration(merged_events)",
		"RETURN = merged_events",
	)
}

// AfkMetricsQuery returns afk/not-afk totals merged by status.
func AfkMetricsQuery(afkBucket string) string {
	return program(
		fmt.Sprintf("afk_events = query_bucket('%s')", afkBucket),
		"afk_events = filter_keyvals(afk_events, 'status', ['afk', 'not-afk'])",
		"merged_events = merge_events_by_keys(afk_events, ['status'])",
		"merged_events = sort_by_duration(merged_events)",
		"RETURN = merged_events",
	)
}

// AfkEventsQuery returns the raw afk/not-afk event stream in timestamp
// order, for hourly binning and sleep analysis.
func AfkEventsQuery(afkBucket string) string {
	return program(
		fmt.Sprintf("afk_events = query_bucket('%s')", afkBucket),
		"afk_events = filter_keyvals(afk_events, 'status', ['afk', 'not-afk'])",
		"afk_events = sort_by_timestamp(afk_events)",
		"RETURN = afk_events",
	)
}

// EditorProjectsQuery returns per-project editor totals: editor events
// intersected with not-afk periods, merged by project, longest first.
func EditorProjectsQuery(editorBucket, afkBucket string) string {
	return program(
		fmt.Sprintf("editor_events = query_bucket('%s')", editorBucket),
		fmt.Sprintf("not_afk = query_bucket('%s')", afkBucket),
		"not_afk = filter_keyvals(not_afk, 'status', ['not-afk'])",
		"editor_events = filter_period_intersect(editor_events, not_afk)",
		"merged_events = merge_events_by_keys(editor_events, ['project'])",
		"merged_events = sort_by_duration(merged_events)",
		"RETURN = merged_events",
	)
}
