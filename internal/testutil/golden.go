package testutil

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Flag to update golden files during test runs
var updateGolden = flag.Bool("update-golden", false, "Update golden files")

// GoldenConfig holds configuration for golden file operations
type GoldenConfig struct {
	// Dir is the directory where golden files are stored
	Dir string
	// FileExtension is the extension for golden files (default: .golden)
	FileExtension string
	// Indent controls JSON formatting for readability
	Indent bool
}

// DefaultGoldenConfig returns a default configuration for golden files
func DefaultGoldenConfig() *GoldenConfig {
	return &GoldenConfig{
		Dir:           filepath.Join(GetProjectRoot(), "testdata", "golden"),
		FileExtension: ".golden",
		Indent:        true,
	}
}

// GoldenTester provides methods for golden file testing
type GoldenTester struct {
	config *GoldenConfig
}

// NewGoldenTester creates a new golden file tester with the provided configuration
func NewGoldenTester(config *GoldenConfig) *GoldenTester {
	if config == nil {
		config = DefaultGoldenConfig()
	}

	return &GoldenTester{
		config: config,
	}
}

// GetDefaultGoldenTester returns a golden tester with default configuration
func GetDefaultGoldenTester() *GoldenTester {
	return NewGoldenTester(nil)
}

// AssertJSON compares JSON data against a golden file
func (gt *GoldenTester) AssertJSON(t *testing.T, name string, data interface{}) {
	t.Helper()

	jsonBytes, err := gt.toJSON(data)
	require.NoError(t, err, "Failed to marshal data to JSON")

	gt.assertBytes(t, name, jsonBytes)
}

// AssertBytes compares raw byte data (pixel buffers, tables) against a golden file
func (gt *GoldenTester) AssertBytes(t *testing.T, name string, data []byte) {
	t.Helper()
	gt.assertBytes(t, name, data)
}

// assertBytes is the core comparison function for golden file testing
func (gt *GoldenTester) assertBytes(t *testing.T, name string, actual []byte) {
	t.Helper()

	err := os.MkdirAll(gt.config.Dir, 0o755)
	require.NoError(t, err, "Failed to create golden directory")

	goldenPath := gt.getGoldenPath(name)

	if *updateGolden {
		err := os.WriteFile(goldenPath, actual, 0o644)
		require.NoError(t, err, "Failed to write golden file: %s", goldenPath)
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		// Golden file doesn't exist - create it and fail the test
		err := os.WriteFile(goldenPath, actual, 0o644)
		require.NoError(t, err, "Failed to create golden file: %s", goldenPath)

		require.Fail(t, "Golden file created",
			"Golden file %s did not exist and has been created. "+
				"Re-run the test to verify the output is correct.", goldenPath)
		return
	}
	require.NoError(t, err, "Failed to read golden file: %s", goldenPath)

	if !bytes.Equal(expected, actual) {
		gt.logDifference(t, name, expected, actual)

		assert.Equal(t, expected, actual,
			"Golden file mismatch for %s. Use -update-golden to update the golden file.", name)
	}
}

// getGoldenPath constructs the full path to a golden file
func (gt *GoldenTester) getGoldenPath(name string) string {
	return filepath.Join(gt.config.Dir, gt.sanitizeFilename(name)+gt.config.FileExtension)
}

// sanitizeFilename makes a name safe for use as a filename
func (gt *GoldenTester) sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)

	return replacer.Replace(name)
}

func (gt *GoldenTester) toJSON(data interface{}) ([]byte, error) {
	if !gt.config.Indent {
		return json.Marshal(data)
	}
	return json.MarshalIndent(data, "", "  ")
}

// logDifference logs the first differing region when golden data doesn't match.
// Binary data is shown as hex so pixel mismatches are readable.
func (gt *GoldenTester) logDifference(t *testing.T, name string, expected, actual []byte) {
	t.Helper()

	t.Logf("Golden file mismatch for %s:", name)
	t.Logf("Expected length: %d bytes", len(expected))
	t.Logf("Actual length: %d bytes", len(actual))

	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			lo := i &^ 15
			hi := min(lo+16, n)
			t.Logf("First difference at byte %d:", i)
			t.Logf("  Expected: %s", hex.EncodeToString(expected[lo:hi]))
			t.Logf("  Actual:   %s", hex.EncodeToString(actual[lo:hi]))
			break
		}
	}

	t.Logf("To update the golden file, run: go test -update-golden -run %s", t.Name())
	t.Logf("Golden file path: %s", gt.getGoldenPath(name))
}

// LoadGoldenFile loads the contents of a golden file for manual comparison
func (gt *GoldenTester) LoadGoldenFile(t *testing.T, name string) []byte {
	t.Helper()

	goldenPath := gt.getGoldenPath(name)
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "Failed to read golden file: %s", goldenPath)

	return data
}

// AssertGoldenJSON compares JSON data against a golden file using default configuration
func AssertGoldenJSON(t *testing.T, name string, data interface{}) {
	t.Helper()
	GetDefaultGoldenTester().AssertJSON(t, name, data)
}

// AssertGoldenBytes compares byte data against a golden file using default configuration
func AssertGoldenBytes(t *testing.T, name string, data []byte) {
	t.Helper()
	GetDefaultGoldenTester().AssertBytes(t, name, data)
}

// LoadGoldenFile loads a golden file using default configuration
func LoadGoldenFile(t *testing.T, name string) []byte {
	t.Helper()
	return GetDefaultGoldenTester().LoadGoldenFile(t, name)
}
