package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vilaca/ci-metrics/internal/domain"
)

// ErrMissingEnv is returned when a required environment variable is not set.
var ErrMissingEnv = errors.New("required environment variable not set")

// Default report file names, relative to the reports directory.
const (
	DefaultReportsDir   = "build/reports"
	CoverageReportName  = "code-coverage.xml"
	UnitTestsReportName = "unit-tests.xml"
	LintReportName      = "linting.xml"
	MetricsOutputName   = "ci-metrics.json"
)

const (
	DefaultGitLabURL     = "https://gitlab.com"
	DefaultGitLabTimeout = 30 * time.Second
	DefaultS3Region      = "us-east-1"

	commitSHAEnv = "CI_COMMIT_SHA"
	projectIDEnv = "CI_PROJECT_ID"
)

// Config holds application configuration.
type Config struct {
	// CI job identity, provided by the CI runner.
	CommitSHA string
	ProjectID string

	// Whether the variables above are set at all. An empty value still counts.
	hasCommitSHA bool
	hasProjectID bool

	// GitLab configuration
	GitLabURL     string
	GitLabToken   string
	GitLabTimeout time.Duration

	// Branch is scanned for the latest pipeline.
	Branch string

	// Report locations
	ReportsDir    string
	CoveragePath  string
	UnitTestsPath string
	LintPath      string
	OutputPath    string

	S3 S3Config

	// loadErr holds the problems met by Load and RecordError.
	loadErr error
}

// S3Config describes the bucket summaries are published to.
type S3Config struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Load loads configuration from the optional YAML file at configFile and
// from environment variables. Environment variables take precedence.
// Required variables are not checked here; see Validate.
//
// The returned Config is never nil. A setting that fails to load keeps its
// default and the failure is returned, and is reported again by Err and
// Validate, so callers that do not need the broken setting can go on.
func Load(configFile string) (*Config, error) {
	cfg := &Config{
		GitLabURL:     DefaultGitLabURL,
		GitLabTimeout: DefaultGitLabTimeout,
		Branch:        domain.DefaultBranch,
		ReportsDir:    DefaultReportsDir,
		S3: S3Config{
			Region: DefaultS3Region,
			UseSSL: true,
		},
	}

	if configFile != "" {
		if err := applyFile(cfg, configFile); err != nil {
			cfg.RecordError(err)
		}
	}

	cfg.CommitSHA, cfg.hasCommitSHA = os.LookupEnv(commitSHAEnv)
	cfg.ProjectID, cfg.hasProjectID = os.LookupEnv(projectIDEnv)
	cfg.GitLabURL = getEnvOrDefault("GITLAB_URL", cfg.GitLabURL)
	cfg.GitLabToken = os.Getenv("GITLAB_TOKEN")
	cfg.Branch = getEnvOrDefault("CI_METRICS_BRANCH", cfg.Branch)
	cfg.ReportsDir = getEnvOrDefault("CI_METRICS_REPORTS_DIR", cfg.ReportsDir)

	if timeoutStr := os.Getenv("GITLAB_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			cfg.RecordError(fmt.Errorf("invalid GITLAB_TIMEOUT: %w", err))
		} else {
			cfg.GitLabTimeout = timeout
		}
	}

	cfg.S3.Endpoint = getEnvOrDefault("S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.Bucket = getEnvOrDefault("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnvOrDefault("S3_REGION", cfg.S3.Region)
	cfg.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if sslStr := os.Getenv("S3_USE_SSL"); sslStr != "" {
		cfg.S3.UseSSL = sslStr != "false" && sslStr != "0"
	}

	cfg.ResolvePaths()
	return cfg, cfg.loadErr
}

// RecordError adds a configuration problem found outside Load, such as an
// unreadable env file. It is reported by Err and Validate.
func (c *Config) RecordError(err error) {
	c.loadErr = errors.Join(c.loadErr, err)
}

// Err returns the configuration problems recorded so far, or nil.
func (c *Config) Err() error {
	return c.loadErr
}

// ResolvePaths fills every unset report path with its default name inside ReportsDir.
func (c *Config) ResolvePaths() {
	c.CoveragePath = defaultPath(c.CoveragePath, c.ReportsDir, CoverageReportName)
	c.UnitTestsPath = defaultPath(c.UnitTestsPath, c.ReportsDir, UnitTestsReportName)
	c.LintPath = defaultPath(c.LintPath, c.ReportsDir, LintReportName)
	c.OutputPath = defaultPath(c.OutputPath, c.ReportsDir, MetricsOutputName)
}

// Validate checks the variables a collection run cannot do without, after
// any recorded configuration problem. CI_COMMIT_SHA and CI_PROJECT_ID only
// have to be set; an empty value is accepted.
func (c *Config) Validate() error {
	if c.loadErr != nil {
		return fmt.Errorf("invalid configuration: %w", c.loadErr)
	}
	if c.CommitSHA == "" && !c.hasCommitSHA {
		return fmt.Errorf("%s: %w", commitSHAEnv, ErrMissingEnv)
	}
	if c.ProjectID == "" && !c.hasProjectID {
		return fmt.Errorf("%s: %w", projectIDEnv, ErrMissingEnv)
	}
	return nil
}

// ValidateS3 checks the settings needed to publish a summary.
func (c *Config) ValidateS3() error {
	if c.loadErr != nil {
		return fmt.Errorf("invalid configuration: %w", c.loadErr)
	}
	if c.ProjectID == "" {
		return fmt.Errorf("%s: %w", projectIDEnv, ErrMissingEnv)
	}

	required := []struct {
		name  string
		value string
	}{
		{"S3_ENDPOINT", c.S3.Endpoint},
		{"S3_BUCKET", c.S3.Bucket},
		{"S3_ACCESS_KEY_ID", c.S3.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", c.S3.SecretAccessKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s: %w", r.name, ErrMissingEnv)
		}
	}
	return nil
}

// HasGitLabToken returns true if requests to GitLab are authenticated.
func (c *Config) HasGitLabToken() bool {
	return c.GitLabToken != ""
}

func defaultPath(current, dir, name string) string {
	if current != "" {
		return current
	}
	return filepath.Join(dir, name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
