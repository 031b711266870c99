package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spektr-org/agriclimate/config"
)

const testCSV = `country,year,crop_type,adaptation_strategy,emissions,economic_impact
India,2020,Wheat,Crop Rotation,12.5,340
India,2021,Rice,Irrigation,8.0,290
China,2020,Rice,Irrigation,20,100
`

// run executes the CLI against a temp compact dataset and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(data, []byte(testCSV), 0o644))

	root := newRootCmd(&app{logger: zap.NewNop()})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--data", data,
		"--schema", "compact",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "agriclimate "+version+"\n", out)
}

func TestViewJSON(t *testing.T) {
	out, err := run(t, "view", "emissions", "--country", "India")
	require.NoError(t, err)

	var got struct {
		Success bool   `json:"success"`
		View    string `json:"view"`
		Country string `json:"country"`
		Series  []struct {
			Label string  `json:"label"`
			Value float64 `json:"value"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "emissions", got.View)
	assert.Equal(t, "India", got.Country)
	require.Len(t, got.Series, 2)
	assert.Equal(t, "2020", got.Series[0].Label)
	assert.Equal(t, "2021", got.Series[1].Label)
}

func TestViewCSVDefaultsToTable(t *testing.T) {
	out, err := run(t, "view", "emissions", "--country", "India", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Year,CO2 Emissions (MT)\n2020,12.50\n2021,8\nTotal (2 rows),20.50\n", out)
}

func TestViewGlobalByDefault(t *testing.T) {
	out, err := run(t, "view", "economic", "--format", "pretty")
	require.NoError(t, err)
	assert.Contains(t, out, `"country": "Global"`)
}

func TestViewSVG(t *testing.T) {
	out, err := run(t, "view", "adaptation", "--format", "svg")
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
}

func TestViewNoDataIsNotAnError(t *testing.T) {
	out, err := run(t, "view", "economic", "--country", "Brazil")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestViewRejectsUnknownViewAndFormat(t *testing.T) {
	_, err := run(t, "view", "yield")
	assert.Error(t, err)

	_, err = run(t, "view", "economic", "--format", "xml")
	assert.Error(t, err)
}

func TestViewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, "view", "economic", "--country", "India", "--format", "csv", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Crop Type,"), string(data))
}

func TestCountries(t *testing.T) {
	out, err := run(t, "countries")
	require.NoError(t, err)
	assert.Contains(t, out, "* Global\n")
	assert.Contains(t, out, "* India\n")
	assert.Contains(t, out, "  Brazil\n")
}

func TestExportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.xlsx")
	_, err := run(t, "export", "--out", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"adaptation", "economic", "emissions"}, f.GetSheetList())
}

func TestSchemaCheck(t *testing.T) {
	out, err := run(t, "schema", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, `"compact"`)

	out, err = run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"presets"`)
}

func TestMissingDataFails(t *testing.T) {
	root := newRootCmd(&app{logger: zap.NewNop()})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--data", filepath.Join(t.TempDir(), "nope.csv"), "view", "economic"})
	assert.Error(t, root.Execute())
}

func TestSchemaDiscover(t *testing.T) {
	out, err := run(t, "schema", "--discover")
	require.NoError(t, err)
	assert.Equal(t, "data:\n  schema: compact\n", out)
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agriclimate.yaml")
	args := []string{"--config", path, "--data", "mine.csv", "--schema", "compact", "init"}

	root := newRootCmd(&app{logger: zap.NewNop()})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs(args)
	require.NoError(t, root.Execute())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mine.csv", cfg.Data.Source)
	assert.Equal(t, "compact", cfg.Data.Schema)

	root = newRootCmd(&app{logger: zap.NewNop()})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs(args)
	assert.Error(t, root.Execute(), "existing file needs --force")
}
