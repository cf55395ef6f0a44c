package domain

import (
	"fmt"
	"time"
)

// CreatedAtLayout is the format GitLab uses for pipeline timestamps
// (UTC, up to microsecond precision).
const CreatedAtLayout = "2006-01-02T15:04:05.999999Z"

// Pipeline represents a CI/CD pipeline run as reported by the platform.
type Pipeline struct {
	ID        string
	ProjectID string
	Branch    string
	Status    string

	// CreatedAt is kept as sent by the API; see CreatedTime.
	CreatedAt string
}

// CreatedTime parses CreatedAt as a UTC timestamp.
func (p Pipeline) CreatedTime() (time.Time, error) {
	t, err := time.ParseInLocation(CreatedAtLayout, p.CreatedAt, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q for pipeline %s: %w", p.CreatedAt, p.ID, err)
	}
	return t, nil
}

// FindLatestOnBranch returns the first pipeline built from branch.
// Pipelines are expected newest first, the order the API returns them in.
func FindLatestOnBranch(pipelines []Pipeline, branch string) (Pipeline, bool) {
	for _, p := range pipelines {
		if p.Branch == branch {
			return p, true
		}
	}
	return Pipeline{}, false
}

// UnixSeconds converts t to fractional seconds since the epoch, keeping microseconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
