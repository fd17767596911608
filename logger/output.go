package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors with hints, final status
//	1 (-v)      - + Progress, job status, tick summaries
//	2 (-vv)     - + Query details, timing, config loaded, HTTP requests
//	3 (-vvv)    - + Subprocess stdout/stderr, SQL, state store reads
//	4 (-vvvv)   - + Full request/response bodies, data structure dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Command output
	OutputErrors                           // Errors with hints and resolution steps
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress      // Progress indicators (e.g., "Fetching day 3/7")
	OutputStartup       // Startup info, config summary
	OutputJobStatus     // Job executed/skipped/notified status
	OutputOperationInfo // High-level operation summaries

	// Level 2 (-vv) - Detailed
	OutputQueries   // Activity query construction and execution details
	OutputTiming    // Operation timing (e.g., "query took 42ms")
	OutputConfig    // Config values loaded/applied
	OutputHTTPCalls // External HTTP requests made

	// Level 3 (-vvv) - Debug
	OutputSubprocess // Notifier/renderer subprocess stdout/stderr
	OutputSQLQueries // Usage database queries executed
	OutputStateIO    // State store reads and writes

	// Level 4 (-vvvv) - Full dump
	OutputRequestBody  // Full HTTP request bodies
	OutputResponseBody // Full HTTP response bodies
	OutputDataDump     // Full data structure contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress:      VerbosityInfo,
	OutputStartup:       VerbosityInfo,
	OutputJobStatus:     VerbosityInfo,
	OutputOperationInfo: VerbosityInfo,

	OutputQueries:   VerbosityDebug,
	OutputTiming:    VerbosityDebug,
	OutputConfig:    VerbosityDebug,
	OutputHTTPCalls: VerbosityDebug,

	OutputSubprocess: VerbosityTrace,
	OutputSQLQueries: VerbosityTrace,
	OutputStateIO:    VerbosityTrace,

	OutputRequestBody:  VerbosityAll,
	OutputResponseBody: VerbosityAll,
	OutputDataDump:     VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:       "results",
	OutputErrors:        "errors",
	OutputUserStatus:    "status",
	OutputProgress:      "progress",
	OutputStartup:       "startup",
	OutputJobStatus:     "job-status",
	OutputOperationInfo: "operation-info",
	OutputQueries:       "queries",
	OutputTiming:        "timing",
	OutputConfig:        "config",
	OutputHTTPCalls:     "http",
	OutputSubprocess:    "subprocess",
	OutputSQLQueries:    "sql",
	OutputStateIO:       "state-io",
	OutputRequestBody:   "request-body",
	OutputResponseBody:  "response-body",
	OutputDataDump:      "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "results and errors only"
	case VerbosityInfo:
		return "results, errors, progress, and job status"
	case VerbosityDebug:
		return "above + queries, timing, config details"
	case VerbosityTrace:
		return "above + subprocess output, SQL, state reads"
	case VerbosityAll:
		return "full output including request/response bodies"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}
