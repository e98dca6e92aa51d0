package gp

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Report struct {
	Generation int

	BestFitness float64
	MeanFitness float64
	MeanSize    float64

	Best       string
	BestErrors []float64

	// Best after autosimplification
	Simplified        string
	SimplifiedFitness float64
	SimplifiedSize    int

	Success bool
	Final   bool
}

func (r *Report) String() string {
	p := message.NewPrinter(language.English)
	var buf strings.Builder

	if r.Final {
		p.Fprintf(&buf, "Final report after generation %d\n", r.Generation)
	} else {
		p.Fprintf(&buf, "Generation %d\n", r.Generation)
	}
	p.Fprintf(&buf, "  best fitness:       %.4f\n", r.BestFitness)
	p.Fprintf(&buf, "  mean fitness:       %.4f\n", r.MeanFitness)
	p.Fprintf(&buf, "  mean size:          %.1f\n", r.MeanSize)
	p.Fprintf(&buf, "  best program:       %s\n", r.Best)
	p.Fprintf(&buf, "  best errors:        %v\n", r.BestErrors)
	p.Fprintf(&buf, "  simplified (%d):    %s\n", r.SimplifiedSize, r.Simplified)
	p.Fprintf(&buf, "  simplified fitness: %.4f\n", r.SimplifiedFitness)
	if r.Success {
		p.Fprintf(&buf, "  SOLVED\n")
	}
	return buf.String()
}
