package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/ci-metrics/internal/domain"
)

func TestSummaryStore_SaveAndLoad(t *testing.T) {
	// Arrange
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "nested", "reports", "ci-metrics.json")
	store := NewSummaryStore(path, logger)

	summary := &domain.Summary{
		CommitSHA: "abc123",
		BuildStatus: domain.BuildStatus{
			Last: domain.LastBuild{Timestamp: domain.Known(1704103200.5)},
		},
		Coverage: domain.Coverage{Percentage: domain.Unavailable[float64]()},
		Tests: domain.Counts{
			Errors:   domain.Known(1),
			Failures: domain.Known(2),
			Total:    domain.Known(15),
		},
	}

	// Act
	exists, err := store.Exists()
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Save(summary))
	loaded, err := store.Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, summary, loaded)

	exists, err = store.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestSummaryStore_LoadMissing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := NewSummaryStore(filepath.Join(t.TempDir(), "ci-metrics.json"), logger)

	_, err := store.Load()
	assert.Error(t, err)
}

func TestSummaryStore_LoadInvalid(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "ci-metrics.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"coverage": {"percentage": "n/a"}}`), 0644))

	_, err := NewSummaryStore(path, logger).Load()
	assert.Error(t, err)
}
