// Package storage keeps simulated runs on disk: one directory per run with
// a metadata.json and a trajectory.csv of (time, x, y, vx, vy).
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/integrators"
	"github.com/san-kum/webswing/internal/physics"
	"github.com/san-kum/webswing/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// ErrRunNotFound is returned when a run ID has no directory.
var ErrRunNotFound = errors.New("storage: run not found")

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

// PhaseRecord summarizes the solver diagnostics of one phase.
type PhaseRecord struct {
	Status      string  `json:"status"`
	Success     bool    `json:"success"`
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	EventTime   float64 `json:"event_time,omitempty"`
	Message     string  `json:"message"`
}

func phaseRecord(d dynamo.Diagnostics) PhaseRecord {
	return PhaseRecord{
		Status:      d.Status.String(),
		Success:     d.Success,
		Steps:       d.Steps,
		Rejected:    d.Rejected,
		Evaluations: d.Evaluations,
		EventTime:   d.EventTime,
		Message:     d.Message,
	}
}

// ParamsRecord is the JSON form of physics.Params, angle in radians.
type ParamsRecord struct {
	Height           float64 `json:"height"`
	Gravity          float64 `json:"gravity"`
	Mass             float64 `json:"mass"`
	Area             float64 `json:"area"`
	Rho              float64 `json:"rho"`
	TerminalVelocity float64 `json:"v_term"`
	Length           float64 `json:"length"`
	Angle            float64 `json:"angle"`
	K                float64 `json:"k"`
	T0               float64 `json:"t0"`
	TEnd             float64 `json:"t_end"`
}

func paramsRecord(p physics.Params) ParamsRecord {
	return ParamsRecord{
		Height:           p.Height,
		Gravity:          p.Gravity,
		Mass:             p.Mass,
		Area:             p.Area,
		Rho:              p.Rho,
		TerminalVelocity: p.TerminalVelocity,
		Length:           p.Length,
		Angle:            p.Angle,
		K:                p.K,
		T0:               p.T0,
		TEnd:             p.TEnd,
	}
}

// SolverRecord holds the integrator settings a run used.
type SolverRecord struct {
	Method     string  `json:"method"`
	MaxStep    float64 `json:"max_step"`
	MinStep    float64 `json:"min_step"`
	InitStep   float64 `json:"init_step,omitempty"`
	ATol       float64 `json:"atol"`
	RTol       float64 `json:"rtol"`
	MaxSteps   int     `json:"max_steps"`
	StateBound float64 `json:"state_bound"`
	EventTol   float64 `json:"event_tol"`
}

func solverRecord(sv *integrators.Solver) SolverRecord {
	c := sv.Config
	return SolverRecord{
		Method:     sv.Method,
		MaxStep:    c.MaxStep,
		MinStep:    c.MinStep,
		InitStep:   c.InitStep,
		ATol:       c.ATol,
		RTol:       c.RTol,
		MaxSteps:   c.MaxSteps,
		StateBound: c.StateBound,
		EventTol:   c.EventTol,
	}
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Method     string             `json:"method"`
	Params     ParamsRecord       `json:"params"`
	FreeFlight float64            `json:"free_flight"`
	Solver     *SolverRecord      `json:"solver,omitempty"`
	Release    float64            `json:"release"`
	Speed      float64            `json:"speed"`
	Angle      float64            `json:"angle"`
	Landed     bool               `json:"landed"`
	Range      float64            `json:"range"`
	FlightTime float64            `json:"flight_time"`
	Swing      PhaseRecord        `json:"swing"`
	Flight     PhaseRecord        `json:"flight"`
	Samples    int                `json:"samples"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// NewMetadata describes res, a run of s. kind labels what produced it
// ("run", "optimize-release", ...).
func NewMetadata(kind string, s *sim.Simulator, res *sim.Result) RunMetadata {
	angle, speed := res.Launch.Polar()
	meta := RunMetadata{
		Kind:       kind,
		Timestamp:  time.Now(),
		Params:     paramsRecord(s.Params),
		FreeFlight: s.FreeFlight,
		Release:    res.Release,
		Speed:      speed,
		Angle:      angle,
		Landed:     res.Landed,
		Range:      res.Range,
		FlightTime: res.FlightTime,
		Swing:      phaseRecord(res.Swing),
		Flight:     phaseRecord(res.Flight),
		Samples:    res.Trajectory.Len(),
	}
	if s.Solver != nil {
		meta.Method = s.Solver.Method
		rec := solverRecord(s.Solver)
		meta.Solver = &rec
	}
	return meta
}

// Save writes a run and returns its ID. An empty meta.ID is filled from the
// kind and the current time.
func (s *Store) Save(meta RunMetadata, tr *dynamo.Trajectory) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	if meta.ID == "" {
		id, err := s.newID(meta.Kind)
		if err != nil {
			return "", err
		}
		meta.ID = id
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Samples = tr.Len()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}
	err = writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return WriteCSV(w, tr)
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// writeFile creates path, fills it with write and closes it. A failed Close
// is reported since buffered data may not have reached the disk.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

func (s *Store) newID(kind string) (string, error) {
	if kind == "" {
		kind = "run"
	}
	base := fmt.Sprintf("%s_%d", kind, time.Now().Unix())
	id := base
	for n := 2; ; n++ {
		_, err := os.Stat(filepath.Join(s.baseDir, id))
		if os.IsNotExist(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	tr, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return tr, nil
}
