// Package telemetry writes per-tick run records and a final summary to disk.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

// TickRecord is one CSV row of the telemetry stream.
type TickRecord struct {
	Tick            int     `csv:"tick"`
	Time            float64 `csv:"time"`
	FieldEnergy     float64 `csv:"field_energy"`
	MeanCoherence   float64 `csv:"mean_coherence"`
	MeanPhi         float64 `csv:"mean_phi"`
	FlashFraction   float64 `csv:"flash_fraction"`
	ActiveParticles int     `csv:"active_particles"`
}

// RunSummary is written once at the end of a run.
type RunSummary struct {
	Preset    string             `json:"preset"`
	Seed      int64              `json:"seed"`
	Timestamp time.Time          `json:"timestamp"`
	StepDt    float64            `json:"step_dt"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
}

// OutputManager buffers tick records and flushes them as CSV. A nil manager
// is valid and silently discards everything, so callers don't branch on
// whether output is enabled.
type OutputManager struct {
	dir           string
	file          *os.File
	headerWritten bool
	buf           []*TickRecord
}

// NewOutputManager creates the output directory and telemetry file.
// Returns nil when dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &OutputManager{dir: dir, file: f}, nil
}

func (om *OutputManager) Record(r TickRecord) {
	if om == nil {
		return
	}
	om.buf = append(om.buf, &r)
	if len(om.buf) >= 256 {
		om.Flush()
	}
}

func (om *OutputManager) Flush() error {
	if om == nil || len(om.buf) == 0 {
		return nil
	}
	var err error
	if !om.headerWritten {
		err = gocsv.Marshal(om.buf, om.file)
		om.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(om.buf, om.file)
	}
	om.buf = om.buf[:0]
	return err
}

// WriteSummary writes run.json next to the telemetry stream.
func (om *OutputManager) WriteSummary(s RunSummary) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "run.json"))
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if err := om.Flush(); err != nil {
		om.file.Close()
		return err
	}
	return om.file.Close()
}
