package cli_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyscope/internal/cache"
	"github.com/rshade/energyscope/internal/cli"
	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/ingest"
)

const testDataset = `[
  {"year": 2000, "countries": [
    {"name": "Alpha", "total": 100, "energy": {"oil": 60, "coal": 40}},
    {"name": "Beta", "total": 300, "energy": {"gas": 200, "nuclear": 100}}
  ]},
  {"year": 2001, "countries": [
    {"name": "Alpha", "total": 120, "energy": {"oil": 80, "coal": 40}},
    {"name": "Beta", "total": 1300.5, "energy": {"gas": 1200.5, "nuclear": 100}}
  ]}
]`

// setupCLITest isolates config and logging and writes the test dataset. It returns
// the dataset path.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvDataSource, "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)

	path := filepath.Join(home, "energy_data.json")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0600))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStackTable(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "stack", "--data", data, "--year", "2001")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[0], "NATURAL GAS")
	assert.True(t, strings.HasPrefix(lines[1], "1"))
	assert.Contains(t, lines[1], "Beta")
	assert.Contains(t, lines[1], "1,300.50")
	assert.Contains(t, lines[2], "Alpha")
}

func TestStackPaginationAndSort(t *testing.T) {
	data := setupCLITest(t)

	out, stderr, err := execute(t, "stack", "--data", data, "--year", "2001", "--page", "2", "--page-size", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "2"), "rank continues across pages")
	assert.Contains(t, lines[1], "Alpha")
	assert.Contains(t, stderr, "Showing 1 of 2 countries (page 2 of 2)")

	out, _, err = execute(t, "stack", "--data", data, "--year", "2001", "--sort", "oil", "-o", "json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Alpha", records[0]["country"])

	_, _, err = execute(t, "stack", "--data", data, "--sort", "wattage")
	require.Error(t, err)
}

func TestFlagOverridesStayWithOneInvocation(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "map", "--data", data, "-o", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))

	out, _, err = execute(t, "map", "--data", data)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(out, "["), "--output does not outlive its command")
	assert.Equal(t, 5, strings.Count(out, "\n"))

	_, _, err = execute(t, "stack", "--year", "2001")
	require.ErrorIs(t, err, ingest.ErrLoad, "--data does not outlive its command")

	out, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_format: table")
	assert.NotContains(t, out, data)
}

func TestStackDefaultYearFromConfig(t *testing.T) {
	data := setupCLITest(t)
	cfgPath := filepath.Join(os.Getenv(config.EnvHome), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("timeline:\n  start: 1990\n  end: 2010\n  default_year: 2000\n"), 0600))

	out, _, err := execute(t, "stack", "--data", data, "-o", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.InDelta(t, 300.0, rows[0]["total"], 1e-9)
}

func TestStackEmptyYear(t *testing.T) {
	data := setupCLITest(t)

	out, errOut, err := execute(t, "stack", "--data", data, "--year", "1965", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
	assert.Contains(t, errOut, "No data for year 1965")
}

func TestAverage(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "average", "--data", data, "--from", "2001", "--to", "2000", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Beta", rows[0]["country"])
	assert.InDelta(t, 800.25, rows[0]["total"], 1e-9)
	assert.InDelta(t, 110.0, rows[1]["total"], 1e-9)

	_, _, err = execute(t, "average", "--data", data, "--from", "2000")
	require.Error(t, err)
}

func TestSeriesNDJSON(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "series", "--data", data, "--output", "ndjson", "--country", "Alpha")
	require.NoError(t, err)

	var points []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var p map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p))
		points = append(points, p)
	}
	require.Len(t, points, 2)
	assert.InDelta(t, 2000.0, points[0]["year"], 1e-9)
	assert.InDelta(t, 100.0, points[0]["totalConsumption"], 1e-9)
	assert.InDelta(t, 120.0, points[1]["totalConsumption"], 1e-9)
}

func TestSeriesTable(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "series", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "YEAR")
	assert.Contains(t, out, "1,420.50")
}

func TestMap(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "map", "--data", data, "--from", "2000", "--to", "2001", "-o", "json")
	require.NoError(t, err)

	var records []ingest.YearRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 2001, records[0].Year)
	assert.Equal(t, "Beta", records[0].Countries[0].Name)

	out, _, err = execute(t, "map", "--data", data)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "\n"), "header plus one row per country per year")

	_, _, err = execute(t, "map", "--data", data, "--to", "2001")
	require.ErrorIs(t, err, cli.ErrIncompleteRange)
}

func TestTypes(t *testing.T) {
	setupCLITest(t)

	out, _, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Natural Gas")
	assert.Contains(t, out, "#FFD700")

	out, _, err = execute(t, "types", "--category", "nuclear", "-o", "json")
	require.NoError(t, err)
	var types []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Len(t, types, 1)
	assert.Equal(t, "nuclear", types[0]["type"])

	_, _, err = execute(t, "types", "--category", "geothermal")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	data := setupCLITest(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	out, _, err := execute(t, "export", "--data", data, "--out", path, "--year", "2000", "--from", "2000", "--to", "2001")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)
}

func TestInvalidOutputFormat(t *testing.T) {
	data := setupCLITest(t)

	_, _, err := execute(t, "stack", "--data", data, "-o", "xml")
	require.ErrorIs(t, err, cli.ErrInvalidOutputFormat)
}

func TestMissingDataset(t *testing.T) {
	setupCLITest(t)

	_, _, err := execute(t, "stack", "--data", filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ingest.ErrLoad)
}

func TestConfigShowAndValidate(t *testing.T) {
	data := setupCLITest(t)

	out, _, err := execute(t, "config", "show", "--data", data, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "source: "+data)
	assert.Contains(t, out, "enabled: false")

	out, _, err = execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Timeline: 1965-2023 (default 2023)")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	setupCLITest(t)
	cfgPath := filepath.Join(os.Getenv(config.EnvHome), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  default_format: xml\n  precision: 2\n"), 0600))

	_, _, err := execute(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.default_format")
}

func TestCacheCommands(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()
	t.Setenv(cache.EnvCacheDir, dir)
	t.Setenv(cache.EnvCacheEnabled, "true")

	store, err := cache.NewFileStore(dir, true, cache.MinTTLSeconds, 0)
	require.NoError(t, err)
	const fresh = "https://example.com/energy_data.json"
	require.NoError(t, store.Put(cache.KeyForSource(fresh), fresh, json.RawMessage(`[]`)))
	require.NoError(t, store.Put(cache.KeyForSource("https://example.com/other.json"), "https://example.com/other.json", json.RawMessage(`[]`)))

	stale := cache.NewEntry("stale", "https://example.com/old.json", json.RawMessage(`[]`), cache.MinTTLSeconds)
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	staleData, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.json"), staleData, 0600))

	out, _, err := execute(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Directory: "+dir)
	assert.Contains(t, out, "TTL:       1d")
	assert.Contains(t, out, "Entries:   3")

	out, _, err = execute(t, "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 1 expired entries, 2 remain")

	_, _, err = execute(t, "cache", "clear", fresh)
	require.NoError(t, err)
	_, err = store.Get(cache.KeyForSource(fresh))
	require.ErrorIs(t, err, cache.ErrNotFound)

	_, _, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	out, _, err = execute(t, "cache", "info", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache: disabled")

	_, _, err = execute(t, "cache", "purge", "--no-cache")
	require.ErrorIs(t, err, cache.ErrDisabled)
}
