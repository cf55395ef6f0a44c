package api

import (
	"context"
	"net/http"

	"github.com/vilaca/ci-metrics/internal/domain"
)

// PipelineClient defines the CI platform operations the metrics collector needs.
type PipelineClient interface {
	// GetPipelines returns the pipelines of a project in the order the platform
	// lists them (most recent first).
	GetPipelines(ctx context.Context, projectID string) ([]domain.Pipeline, error)
}

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	Token   string
}
