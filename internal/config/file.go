package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// fileConfig is the layout of the optional YAML configuration file.
type fileConfig struct {
	GitLab struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"gitlab"`
	Branch  string `yaml:"branch"`
	Reports struct {
		Dir       string `yaml:"dir"`
		Coverage  string `yaml:"coverage"`
		UnitTests string `yaml:"unit_tests"`
		Lint      string `yaml:"lint"`
	} `yaml:"reports"`
	Output string `yaml:"output"`
	S3     struct {
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
		Region   string `yaml:"region"`
	} `yaml:"s3"`
}

// applyFile overlays the settings of a YAML configuration file on cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setIfNotEmpty(&cfg.GitLabURL, fc.GitLab.URL)
	setIfNotEmpty(&cfg.Branch, fc.Branch)
	setIfNotEmpty(&cfg.ReportsDir, fc.Reports.Dir)
	setIfNotEmpty(&cfg.CoveragePath, fc.Reports.Coverage)
	setIfNotEmpty(&cfg.UnitTestsPath, fc.Reports.UnitTests)
	setIfNotEmpty(&cfg.LintPath, fc.Reports.Lint)
	setIfNotEmpty(&cfg.OutputPath, fc.Output)
	setIfNotEmpty(&cfg.S3.Endpoint, fc.S3.Endpoint)
	setIfNotEmpty(&cfg.S3.Bucket, fc.S3.Bucket)
	setIfNotEmpty(&cfg.S3.Region, fc.S3.Region)

	if fc.GitLab.Timeout != "" {
		timeout, err := time.ParseDuration(fc.GitLab.Timeout)
		if err != nil {
			return fmt.Errorf("invalid gitlab.timeout in %s: %w", path, err)
		}
		cfg.GitLabTimeout = timeout
	}

	return nil
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// LoadEnvFile loads the specified environment file into the process
// environment. Variables already set are not overridden. A missing default
// .env file is not an error.
func LoadEnvFile(file string) error {
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		if file == ".env" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", file, err)
	}

	return nil
}
