// Package storage records finished batch runs on disk: a metadata.json and
// a states.csv per run directory. Recordings are for plotting and export.
// Nothing reads them back into a live simulation.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/threebody/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was produced.
type RunInfo struct {
	Scenario   string
	Integrator string
	Duration   float64
}

type RunMetadata struct {
	ID         string                    `json:"id"`
	Scenario   string                    `json:"scenario"`
	Timestamp  time.Time                 `json:"timestamp"`
	Integrator string                    `json:"integrator"`
	StepSize   float64                   `json:"step_size"`
	Duration   float64                   `json:"duration"`
	Steps      int                       `json:"steps"`
	Masses     [dynamo.NumBodies]float64 `json:"masses"`
	Halted     string                    `json:"halted,omitempty"`
	Metrics    map[string]float64        `json:"metrics"`
}

// Save writes a run and returns its ID. runErr, if set, is recorded as the
// reason the run stopped early.
func (s *Store) Save(info RunInfo, result *dynamo.Result, runErr error) (string, error) {
	if result == nil || len(result.States) == 0 {
		return "", errors.New("storage: empty result")
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.makeRunDir(info.Scenario, now)
	if err != nil {
		return "", err
	}

	first := result.States[0]
	meta := RunMetadata{
		ID:         runID,
		Scenario:   info.Scenario,
		Timestamp:  now,
		Integrator: info.Integrator,
		StepSize:   first.StepSize,
		Duration:   info.Duration,
		Steps:      result.StepsTaken,
		Masses:     first.Masses(),
		Metrics:    finiteMetrics(result.Metrics),
	}
	if runErr != nil {
		meta.Halted = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.States); err != nil {
		return "", err
	}
	return runID, csvFile.Close()
}

// slug keeps letters, digits, dot, dash and underscore, replaces anything
// else with a dash and strips leading dots and dashes, so a scenario name
// always stays one directory below the data dir.
func slug(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
	out = strings.TrimLeft(out, ".-")
	if out == "" {
		return "run"
	}
	return out
}

func (s *Store) makeRunDir(scenario string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%s", slug(scenario), now.Format("20060102-150405"))
	id := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

// finiteMetrics drops values JSON cannot represent.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if runID == "" || slug(runID) != runID {
		return nil, fmt.Errorf("storage: invalid run id %q", runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads a run's trajectory back with masses and step size taken
// from its metadata.
func (s *Store) LoadStates(runID string) ([]dynamo.SimulationState, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	states, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	for i := range states {
		states[i].StepSize = meta.StepSize
		for b := range states[i].Bodies {
			states[i].Bodies[b].Mass = meta.Masses[b]
		}
	}
	return states, nil
}

// CSVHeader names the columns: t, then x, vx, y, vy for each body.
func CSVHeader() []string {
	header := []string{"t"}
	for i := 1; i <= dynamo.NumBodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("vx%d", i),
			fmt.Sprintf("y%d", i), fmt.Sprintf("vy%d", i))
	}
	return header
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, states []dynamo.SimulationState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}

	row := make([]string, 0, 1+4*dynamo.NumBodies)
	for _, st := range states {
		row = append(row[:0], formatFloat(st.T))
		for _, b := range st.Bodies {
			for _, v := range b.State.Values() {
				row = append(row, formatFloat(v))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the format written by WriteCSV. Masses and step size are
// not part of it.
func ReadCSV(r io.Reader) ([]dynamo.SimulationState, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 1 + 4*dynamo.NumBodies

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("missing header")
	}

	states := make([]dynamo.SimulationState, 0, len(records)-1)
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line+2, j+1, err)
			}
			vals[j] = v
		}

		st := dynamo.SimulationState{T: vals[0]}
		for b := range st.Bodies {
			o := 1 + 4*b
			st.Bodies[b].State = dynamo.NewBodyState(vals[o], vals[o+1], vals[o+2], vals[o+3])
		}
		states = append(states, st)
	}
	return states, nil
}
