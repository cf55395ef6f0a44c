package domain

const (
	// DefaultBranch is the branch scanned for the last build when none is configured.
	DefaultBranch = "master"

	// Unknown is written in place of any metric that could not be determined.
	Unknown = "unknown"
)
