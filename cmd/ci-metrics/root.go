package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vilaca/ci-metrics/internal/config"
)

// options holds the flags shared by all commands and the state built from them.
type options struct {
	envFile    string
	configFile string
	verbose    bool

	output    string
	coverage  string
	unitTests string
	lint      string
	branch    string
	gitlabURL string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ci-metrics",
		Short: "Collect CI run metrics into a single summary file",
		Long: `ci-metrics gathers the latest pipeline timestamp from GitLab, code coverage,
unit-test and lint results from the build reports, and writes them to
build/reports/ci-metrics.json.

Run without a subcommand to collect. Nothing is done if the summary already exists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", "", "Environment file to load (default .env if present)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "Optional YAML configuration file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&opts.output, "output", "o", "", "Path of the metrics summary (default build/reports/ci-metrics.json)")
	flags.StringVar(&opts.coverage, "coverage-report", "", "Path of the coverage report")
	flags.StringVar(&opts.unitTests, "unit-tests-report", "", "Path of the unit-test report")
	flags.StringVar(&opts.lint, "lint-report", "", "Path of the lint report")
	flags.StringVar(&opts.branch, "branch", "", "Branch scanned for the latest pipeline (default master)")
	flags.StringVar(&opts.gitlabURL, "gitlab-url", "", "GitLab base URL (default https://gitlab.com)")

	rootCmd.AddCommand(newCollectCmd(opts), newShowCmd(opts), newPublishCmd(opts))

	return rootCmd
}

// setup loads the environment file and configuration, then applies flag overrides.
// Configuration problems are recorded on the Config instead of failing here:
// collect reports them only once the existing-output check has passed, the
// other commands check them first thing.
func (o *options) setup(cmd *cobra.Command) error {
	envErr := config.LoadEnvFile(o.envFile)

	o.logger = newLogger(o.verbose)
	o.logger.SetOutput(cmd.OutOrStdout())

	cfg, _ := config.Load(o.configFile)
	if envErr != nil {
		cfg.RecordError(envErr)
	}
	if err := cfg.Err(); err != nil {
		o.logger.WithError(err).Debug("Configuration loaded with errors")
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"output", o.output, &cfg.OutputPath},
		{"coverage-report", o.coverage, &cfg.CoveragePath},
		{"unit-tests-report", o.unitTests, &cfg.UnitTestsPath},
		{"lint-report", o.lint, &cfg.LintPath},
		{"branch", o.branch, &cfg.Branch},
		{"gitlab-url", o.gitlabURL, &cfg.GitLabURL},
	}
	for _, ov := range overrides {
		if cmd.Flags().Changed(ov.flag) {
			*ov.dst = ov.value
		}
	}

	o.cfg = cfg
	return nil
}

// newLogger creates a logger writing to stdout. The level comes from LOG_LEVEL,
// or debug when verbose is set.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level := logrus.InfoLevel
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		parsed, err := logrus.ParseLevel(logLevel)
		if err != nil {
			log.Warnf("Invalid LOG_LEVEL '%s', defaulting to 'info'", logLevel)
		} else {
			level = parsed
		}
	}
	if verbose {
		level = logrus.DebugLevel
	}

	log.SetLevel(level)
	return log
}
