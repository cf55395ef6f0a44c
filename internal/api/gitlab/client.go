package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vilaca/ci-metrics/internal/api"
	"github.com/vilaca/ci-metrics/internal/domain"
)

// Client implements api.PipelineClient for GitLab.
type Client struct {
	baseURL    string
	token      string
	httpClient api.HTTPClient
}

// NewClient creates a new GitLab client.
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
	}
}

// GetPipelines retrieves the pipelines of a project, newest first.
func (c *Client) GetPipelines(ctx context.Context, projectID string) ([]domain.Pipeline, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/pipelines", c.baseURL, url.PathEscape(projectID))

	var glPipelines []gitlabPipeline
	if err := c.doRequest(ctx, endpoint, &glPipelines); err != nil {
		return nil, fmt.Errorf("failed to get pipelines: %w", err)
	}

	pipelines := make([]domain.Pipeline, len(glPipelines))
	for i, glp := range glPipelines {
		pipelines[i] = c.convertPipeline(glp, projectID)
	}

	return pipelines, nil
}

// doRequest performs an HTTP GET against the GitLab API and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// convertPipeline converts a GitLab pipeline to domain model.
func (c *Client) convertPipeline(glp gitlabPipeline, projectID string) domain.Pipeline {
	return domain.Pipeline{
		ID:        string(glp.ID),
		ProjectID: projectID,
		Branch:    string(glp.Ref),
		Status:    string(glp.Status),
		CreatedAt: string(glp.CreatedAt),
	}
}

// GitLab API response types
type gitlabPipeline struct {
	ID        looseString `json:"id"`
	Status    looseString `json:"status"`
	Ref       looseString `json:"ref"`
	CreatedAt looseString `json:"created_at"`
}

// looseString holds a JSON string as is and any other JSON value as its raw
// text, so one odd entry cannot fail the whole list. A value of the wrong type
// only matters once the entry is picked, where it fails to parse or to match.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	*s = looseString(data)
	return nil
}
