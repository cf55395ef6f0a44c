package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vilaca/ci-metrics/internal/api"
	"github.com/vilaca/ci-metrics/internal/api/gitlab"
	"github.com/vilaca/ci-metrics/internal/service"
)

func newCollectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect CI metrics and write the summary file",
		Long: `Reads the GitLab pipelines of CI_PROJECT_ID, the coverage report and the
unit-test and lint reports, and writes the summary for CI_COMMIT_SHA.

Unavailable metrics are written as "unknown". If the summary file already
exists nothing is read or written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd, opts)
		},
	}
}

// runCollect wires the collection dependencies and runs one collection.
func runCollect(cmd *cobra.Command, opts *options) error {
	cfg := opts.cfg

	httpClient := &http.Client{
		Timeout: cfg.GitLabTimeout,
	}
	gitlabClient := gitlab.NewClient(api.ClientConfig{
		BaseURL: cfg.GitLabURL,
		Token:   cfg.GitLabToken,
	}, httpClient)

	opts.logger.WithFields(logrus.Fields{
		"gitlab":        cfg.GitLabURL,
		"authenticated": cfg.HasGitLabToken(),
		"branch":        cfg.Branch,
		"output":        cfg.OutputPath,
	}).Debug("Collecting CI metrics")

	store := service.NewSummaryStore(cfg.OutputPath, opts.logger)
	metricsService := service.NewMetricsService(cfg, gitlabClient, store, opts.logger)

	_, err := metricsService.Collect(cmd.Context())
	return err
}
