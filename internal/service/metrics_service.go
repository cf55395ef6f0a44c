package service

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vilaca/ci-metrics/internal/api"
	"github.com/vilaca/ci-metrics/internal/config"
	"github.com/vilaca/ci-metrics/internal/domain"
	"github.com/vilaca/ci-metrics/internal/report"
)

// MetricsService gathers CI metrics from the pipeline API and the build
// reports and writes them as a single summary.
//
// Every source is best effort: a failing source is logged as a warning and
// its metrics are marked unknown, without affecting the other sources.
type MetricsService struct {
	cfg    *config.Config
	client api.PipelineClient
	store  *SummaryStore
	logger logrus.FieldLogger
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(cfg *config.Config, client api.PipelineClient, store *SummaryStore, logger logrus.FieldLogger) *MetricsService {
	return &MetricsService{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logger,
	}
}

// Collect builds and saves the summary for the current run.
// It returns a nil summary, and reads nothing, when the output file already exists.
// Missing CI_COMMIT_SHA or CI_PROJECT_ID, or a configuration problem recorded
// on the Config, is returned as an error.
func (s *MetricsService) Collect(ctx context.Context) (*domain.Summary, error) {
	exists, err := s.store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Infof("%s file already exists, using the data present in that file", filepath.Base(s.store.Path()))
		return nil, nil
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		CommitSHA: s.cfg.CommitSHA,
		BuildStatus: domain.BuildStatus{
			Last: domain.LastBuild{Timestamp: s.lastBuildTimestamp(ctx)},
		},
		Coverage: domain.Coverage{Percentage: s.coveragePercentage()},
		Tests:    s.reportCounts(s.cfg.UnitTestsPath),
		Lint:     s.reportCounts(s.cfg.LintPath),
	}

	if err := s.store.Save(summary); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"path":      s.store.Path(),
		"timestamp": summary.BuildStatus.Last.Timestamp,
		"coverage":  summary.Coverage.Percentage,
	}).Info("CI metrics written")

	return summary, nil
}

// lastBuildTimestamp returns the creation time of the newest pipeline on the configured branch.
func (s *MetricsService) lastBuildTimestamp(ctx context.Context) domain.Metric[float64] {
	pipelines, err := s.client.GetPipelines(ctx, s.cfg.ProjectID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed accessing pipeline data")
		return domain.Unavailable[float64]()
	}

	pipeline, ok := domain.FindLatestOnBranch(pipelines, s.cfg.Branch)
	if !ok {
		s.logger.WithField("branch", s.cfg.Branch).Warn("No pipeline found for branch")
		return domain.Unavailable[float64]()
	}

	created, err := pipeline.CreatedTime()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to parse pipeline data")
		return domain.Unavailable[float64]()
	}

	s.logger.WithFields(logrus.Fields{
		"pipeline": pipeline.ID,
		"status":   pipeline.Status,
		"created":  pipeline.CreatedAt,
	}).Debug("Found latest pipeline")

	return domain.Known(domain.UnixSeconds(created))
}

func (s *MetricsService) coveragePercentage() domain.Metric[float64] {
	name := filepath.Base(s.cfg.CoveragePath)

	percentage, err := report.ReadCoverage(s.cfg.CoveragePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warnf("%s file not found", name)
		return domain.Unavailable[float64]()
	case err != nil:
		s.logger.WithError(err).Warnf("Make sure that the file %s has the correct '%s' attribute", name, report.LineRateAttr)
		return domain.Unavailable[float64]()
	}

	return domain.Known(percentage)
}

// reportCounts aggregates a test or lint report. All counts are unknown if
// the report cannot be read.
func (s *MetricsService) reportCounts(path string) domain.Counts {
	name := filepath.Base(path)

	var counts domain.Counts
	suites, err := report.ReadSuites(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warnf("%s file not found", name)
	case err != nil:
		s.logger.WithError(err).Warnf("Failed to read %s", name)
	default:
		for _, suite := range suites {
			s.logger.WithFields(logrus.Fields{
				"report":   name,
				"suite":    suite.Name,
				"errors":   suite.Errors,
				"failures": suite.Failures,
				"tests":    suite.Tests,
			}).Debug("Suite counts")
		}
		counts = report.Aggregate(suites)
	}

	if !counts.Complete() {
		s.logger.Warnf("Attribute not found. Make sure that the file %s is in the correct format", name)
	}

	return counts
}
