package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/ci-metrics/internal/config"
)

type cliFixture struct {
	dir      string
	output   string
	server   *httptest.Server
	requests int
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	f := &cliFixture{dir: t.TempDir()}
	f.output = filepath.Join(f.dir, "ci-metrics.json")

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if r.URL.Path != "/api/v4/projects/42/pipelines" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 8, "ref": "develop", "status": "running", "created_at": "2024-01-02T00:00:00.000Z"},
			{"id": 7, "ref": "master", "status": "success", "created_at": "2024-01-01T10:00:00.000000Z"}
		]`))
	}))
	t.Cleanup(f.server.Close)

	t.Setenv("CI_COMMIT_SHA", "abc123")
	t.Setenv("CI_PROJECT_ID", "42")
	t.Setenv("GITLAB_TOKEN", "")

	return f
}

func (f *cliFixture) writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *cliFixture) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--gitlab-url", f.server.URL,
		"--output", f.output,
		"--coverage-report", filepath.Join(f.dir, "code-coverage.xml"),
		"--unit-tests-report", filepath.Join(f.dir, "unit-tests.xml"),
		"--lint-report", filepath.Join(f.dir, "linting.xml"),
	}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestCollectCommand(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	f.writeReport(t, "code-coverage.xml", `<coverage line-rate="0.8"/>`)
	f.writeReport(t, "unit-tests.xml", `<testsuites>
		<testsuite errors="1" tests="10" failures="2"/>
		<testsuite errors="0" tests="5"/>
	</testsuites>`)

	// Act
	out, err := f.run("collect")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.requests)
	assert.Contains(t, out, "linting.xml file not found")

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"commit-sha": "abc123",
		"build-status": {"last": {"timestamp": 1704103200}},
		"coverage": {"percentage": 80},
		"tests": {"errors": 1, "failures": 2, "total": 15},
		"lint": {"errors": "unknown", "failures": "unknown", "total": "unknown"}
	}`, string(data))
}

func TestRootCommandCollectsByDefault(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run()

	require.NoError(t, err)
	assert.FileExists(t, f.output)
}

func TestCollectCommand_ExistingOutput(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	require.NoError(t, os.WriteFile(f.output, []byte(`{}`), 0644))

	// Act
	out, err := f.run("collect")

	// Assert
	require.NoError(t, err)
	assert.Zero(t, f.requests)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestCollectCommand_MissingEnvironment(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	require.NoError(t, os.Unsetenv("CI_COMMIT_SHA"))

	// Act
	_, err := f.run("collect")

	// Assert
	assert.ErrorIs(t, err, config.ErrMissingEnv)
	assert.Zero(t, f.requests)
	assert.NoFileExists(t, f.output)
}

func TestCollectCommand_EmptyCommitSHA(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	t.Setenv("CI_COMMIT_SHA", "")

	// Act
	_, err := f.run("collect")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.requests)

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"commit-sha":""`)
}

func TestCollectCommand_ExistingOutputWithInvalidConfig(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	t.Setenv("GITLAB_TIMEOUT", "soon")
	require.NoError(t, os.WriteFile(f.output, []byte(`{}`), 0644))

	// Act
	out, err := f.run("collect", "--env", filepath.Join(f.dir, "missing.env"))

	// Assert
	require.NoError(t, err)
	assert.Zero(t, f.requests)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestCollectCommand_InvalidConfig(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	t.Setenv("GITLAB_TIMEOUT", "soon")

	// Act
	_, err := f.run("collect")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITLAB_TIMEOUT")
	assert.Zero(t, f.requests)
	assert.NoFileExists(t, f.output)
}

func TestShowCommand(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	require.NoError(t, os.WriteFile(f.output, []byte(`{
		"commit-sha": "abc123",
		"build-status": {"last": {"timestamp": 1704103200}},
		"coverage": {"percentage": 80},
		"tests": {"errors": 1, "failures": 2, "total": 15},
		"lint": {"errors": "unknown", "failures": "unknown", "total": "unknown"}
	}`), 0644))

	// Act
	out, err := f.run("show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "2024-01-01T10:00:00Z")
	assert.Contains(t, out, "80.00%")
	assert.Contains(t, out, "errors=1 failures=2 total=15")
	assert.Contains(t, out, "errors=unknown failures=unknown total=unknown")

	assert.Contains(t, out, "METRIC")
	assert.Contains(t, out, "+--")
	assert.Regexp(t, `\|\s*Coverage\s*\|\s*80\.00%\s*\|`, out)
}

func TestShowCommand_NoSummary(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run("show")

	assert.Error(t, err)
}

func TestShowCommand_InvalidConfig(t *testing.T) {
	f := newCLIFixture(t)
	t.Setenv("GITLAB_TIMEOUT", "soon")
	require.NoError(t, os.WriteFile(f.output, []byte(`{"commit-sha": "abc123"}`), 0644))

	_, err := f.run("show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestPublishCommand_RequiresS3Settings(t *testing.T) {
	f := newCLIFixture(t)
	t.Setenv("S3_ENDPOINT", "")

	_, err := f.run("publish")

	assert.ErrorIs(t, err, config.ErrMissingEnv)
}
