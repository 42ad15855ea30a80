// Package testutil provides test fixtures for bears packages
package testutil

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// LettersCSV is a small table with a numeric column A and a text key B.
// Grouped by B it gives count 2,1,2, sum 4,2,9 and mean 2,2,4.5.
const LettersCSV = "A,B\n1,x\n2,y\n3,x\n4,z\n5,z\n"

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// WriteFile writes content to name inside a per-test temporary directory
// and returns the path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCSV writes header and rows as a CSV file and returns the path
func WriteCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	f, err := os.Create(path) //nolint:gosec // G304: test path
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))
	return path
}

// CensusTracts returns the path of the census tract fixture
func CensusTracts() string {
	return filepath.Join(censusTestdata(), "censustract-00-10.csv")
}

// CensusReport returns the expected report for CensusTracts
func CensusReport(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(censusTestdata(), "report.golden.csv"))
	require.NoError(t, err)
	return string(data)
}

func censusTestdata() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "census", "testdata")
}
