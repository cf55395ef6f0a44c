package domain

// Summary is the metrics record written once per CI run.
// Field order matches the layout of ci-metrics.json.
type Summary struct {
	CommitSHA   string      `json:"commit-sha"`
	BuildStatus BuildStatus `json:"build-status"`
	Coverage    Coverage    `json:"coverage"`
	Tests       Counts      `json:"tests"`
	Lint        Counts      `json:"lint"`
}

// BuildStatus holds data about the pipelines of the project.
type BuildStatus struct {
	Last LastBuild `json:"last"`
}

// LastBuild describes the latest pipeline on the watched branch.
type LastBuild struct {
	// Timestamp is in seconds since the epoch.
	Timestamp Metric[float64] `json:"timestamp"`
}

// Coverage holds the line coverage of the test run.
type Coverage struct {
	Percentage Metric[float64] `json:"percentage"`
}

// Counts are the aggregated results of a test or lint report.
type Counts struct {
	Errors   Metric[int] `json:"errors"`
	Failures Metric[int] `json:"failures"`
	Total    Metric[int] `json:"total"`
}

// Complete reports whether all three counts are known.
func (c Counts) Complete() bool {
	return c.Errors.IsKnown() && c.Failures.IsKnown() && c.Total.IsKnown()
}
