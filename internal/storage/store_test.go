package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

func runFigureEight(t *testing.T) *dynamo.Result {
	t.Helper()
	s := sim.New(physics.Derivative, integrators.NewRK4())
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	res, err := s.Run(context.Background(), physics.FigureEight(), dynamo.Config{Duration: 0.05, ValidateState: true})
	require.NoError(t, err)
	return res
}

func TestSaveAndLoad(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "runs"))
	res := runFigureEight(t)

	id, err := store.Save(RunInfo{Scenario: "figure8", Integrator: "rk4", Duration: 0.05}, res, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "figure8_"))

	meta, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "rk4", meta.Integrator)
	assert.Equal(t, 50, meta.Steps)
	assert.Equal(t, 0.001, meta.StepSize)
	assert.Equal(t, [dynamo.NumBodies]float64{1, 1, 1}, meta.Masses)
	assert.Empty(t, meta.Halted)
	assert.Contains(t, meta.Metrics, "energy_drift")

	states, err := store.LoadStates(id)
	require.NoError(t, err)
	require.Len(t, states, len(res.States))
	assert.Equal(t, res.States, states)
}

func TestSaveUniqueIDs(t *testing.T) {
	store := New(t.TempDir())
	res := runFigureEight(t)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := store.Save(RunInfo{Scenario: "figure8"}, res, nil)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	runs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSaveRecordsHalt(t *testing.T) {
	store := New(t.TempDir())
	res := runFigureEight(t)
	res.Metrics["closest_approach"] = math.Inf(1)

	haltErr := &dynamo.SimulationError{Step: 7, Time: 0.007, Wrapped: dynamo.ErrSingular}
	id, err := store.Save(RunInfo{Scenario: "crash"}, res, haltErr)
	require.NoError(t, err)

	meta, err := store.Load(id)
	require.NoError(t, err)
	assert.Contains(t, meta.Halted, "singular")
	assert.NotContains(t, meta.Metrics, "closest_approach")
}

func TestSaveSanitizesScenarioName(t *testing.T) {
	root := t.TempDir()
	store := New(filepath.Join(root, "runs"))
	res := runFigureEight(t)

	tests := map[string]string{
		"../escape":  "escape_",
		"a/b c":      "a-b-c_",
		"..":         "run_",
		"":           "run_",
		"figure8.v2": "figure8.v2_",
	}
	for name, prefix := range tests {
		id, err := store.Save(RunInfo{Scenario: name}, res, nil)
		require.NoError(t, err, "scenario %q", name)
		assert.True(t, strings.HasPrefix(id, prefix), "scenario %q gave id %q", name, id)

		meta, err := store.Load(id)
		require.NoError(t, err)
		assert.Equal(t, name, meta.Scenario)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "runs", entries[0].Name())
}

func TestLoadRejectsPathIDs(t *testing.T) {
	store := New(t.TempDir())
	for _, id := range []string{"", "..", "../runs", "a/b"} {
		_, err := store.Load(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestSaveEmptyResult(t *testing.T) {
	_, err := New(t.TempDir()).Save(RunInfo{}, &dynamo.Result{}, nil)
	assert.Error(t, err)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestListSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", "metadata.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644))

	runs, err := New(dir).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCSVFormat(t *testing.T) {
	var buf bytes.Buffer
	st := physics.FigureEight()
	require.NoError(t, WriteCSV(&buf, []dynamo.SimulationState{st}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "t,x1,vx1,y1,vy1,x2,vx2,y2,vy2,x3,vx3,y3,vy3", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,0.97000436,0.466203685,-0.24308753,"))
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	bad := strings.Join(CSVHeader(), ",") + "\n" + "0,1,2,3,4,5,6,7,8,9,10,11,oops\n"
	_, err = ReadCSV(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2 column 13")

	short := strings.Join(CSVHeader(), ",") + "\n0,1\n"
	_, err = ReadCSV(strings.NewReader(short))
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := &RunMetadata{ID: "figure8_x", Integrator: "rk4"}
	states := []dynamo.SimulationState{physics.FigureEight()}

	require.NoError(t, ExportJSON(&buf, meta, states))

	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Steps)
	assert.Equal(t, "figure8_x", decoded.Run.ID)
	assert.Equal(t, states, decoded.States)
}
