package main

import (
	"github.com/spf13/cobra"

	"github.com/vilaca/ci-metrics/internal/service"
)

func newPublishCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the metrics summary to S3-compatible storage",
		Long: `Uploads the summary file to <S3_BUCKET>/<project-id>/<commit-sha>/ci-metrics.json.

Requires S3_ENDPOINT, S3_BUCKET, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and
CI_PROJECT_ID. The bucket is created if it does not exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if err := cfg.ValidateS3(); err != nil {
				return err
			}

			summary, err := service.NewSummaryStore(cfg.OutputPath, opts.logger).Load()
			if err != nil {
				return err
			}

			publisher, err := service.NewS3Publisher(cfg.S3, opts.logger)
			if err != nil {
				return err
			}

			_, err = publisher.Publish(cmd.Context(), cfg.ProjectID, summary)
			return err
		},
	}
}
