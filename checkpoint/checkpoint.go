// Package checkpoint saves and restores populations as CBOR snapshots.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/program"
)

// Version is bumped whenever the snapshot layout changes.
const Version = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("checkpoint: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

type Individual struct {
	Program string    `cbor:"1,keyasint"`
	Fitness float64   `cbor:"2,keyasint"`
	Errors  []float64 `cbor:"3,keyasint,omitempty"`
}

type Snapshot struct {
	Version    int          `cbor:"1,keyasint"`
	Seed       int64        `cbor:"2,keyasint"`
	Generation int          `cbor:"3,keyasint"`
	Population []Individual `cbor:"4,keyasint"`
}

// Take captures the current generation of sim.
func Take(sim *gp.Simulation) *Snapshot {
	s := &Snapshot{
		Version:    Version,
		Seed:       sim.Params().Seed,
		Generation: sim.Generation(),
		Population: make([]Individual, len(sim.Population())),
	}
	for i, ind := range sim.Population() {
		s.Population[i] = Individual{
			Program: ind.Program.String(),
			Fitness: ind.Fitness,
			Errors:  ind.Errors,
		}
	}
	return s
}

func Marshal(s *Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("checkpoint: unmarshal snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("checkpoint: unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}

// Save writes s to path, replacing any previous snapshot atomically.
func Save(path string, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	return nil
}

func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// Programs parses the saved programs with parse, typically the Parse method
// of the interpreter the run continues on.
func (s *Snapshot) Programs(parse func(string) (*program.Program, error)) ([]*program.Program, error) {
	programs := make([]*program.Program, len(s.Population))
	for i, ind := range s.Population {
		p, err := parse(ind.Program)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: individual %d: %w", i, err)
		}
		programs[i] = p
	}
	return programs, nil
}

// Writer is a gp.ReportSink saving a snapshot every Every generations and
// after the final report.
type Writer struct {
	Path  string
	Every int
}

func (w *Writer) WriteReport(sim *gp.Simulation, report *gp.Report) error {
	if !report.Final && (w.Every <= 0 || report.Generation%w.Every != 0) {
		return nil
	}
	return Save(w.Path, Take(sim))
}
